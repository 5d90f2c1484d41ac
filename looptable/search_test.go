package looptable_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
	"github.com/katalvlaran/ringloop/looptable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snapshot copies every bin so tests can prove lookups do not mutate.
func snapshot(tbl *looptable.Table) [][]fragment.Fragment {
	out := make([][]fragment.Fragment, looptable.BinCount)
	var b int
	for b = 0; b < looptable.BinCount; b++ {
		out[b] = tbl.Bin(b)
	}

	return out
}

// firstEntry returns some stored fragment.
func firstEntry(tbl *looptable.Table) fragment.Fragment {
	var out fragment.Fragment
	tbl.Each(func(_ int, f fragment.Fragment) bool {
		out = f
		return false
	})

	return out
}

func TestGetClosest_EmptyAndUnadjusted(t *testing.T) {
	empty := looptable.NewTable(2)
	_, _, err := empty.GetClosest(fragment.Fragment{}, 0)
	assert.ErrorIs(t, err, looptable.ErrEmptyTable)
	_, err = empty.GetNClosest(fragment.Fragment{}, 3)
	assert.ErrorIs(t, err, looptable.ErrEmptyTable)

	staged := looptable.NewTable(1)
	require.NoError(t, staged.Store(fragment.NewSingleResidue(-60, -40)))
	_, _, err = staged.GetClosest(fragment.Fragment{}, 0)
	assert.ErrorIs(t, err, looptable.ErrUnadjusted)

	_, _, err = baseTable(t, 5, 1).GetClosest(fragment.Fragment{}, -1)
	assert.ErrorIs(t, err, looptable.ErrInvalidCount)
	_, err = baseTable(t, 5, 1).GetNClosest(fragment.Fragment{}, 0)
	assert.ErrorIs(t, err, looptable.ErrInvalidCount)
}

func TestGetClosest_FindsStoredEntry(t *testing.T) {
	one := baseTable(t, 40, 21)
	// soft closure disabled so the returned fragment is the stored one
	six := built(t, built(t, built(t, one, one, 6, 6, 22), one, 6, 6, 23), built(t, built(t, one, one, 6, 6, 24), one, 6, 6, 25), 30, 30, 26, looptable.WithSoftClosure(0))

	target := firstEntry(six)
	m, ok, err := six.GetClosest(target, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.0, m.Deviation, 1e-12)
	assert.Equal(t, target, m.Fragment)
	assert.False(t, m.SoftClosed)
	assert.Equal(t, six.BinOf(target), m.Bin)
}

func TestGetClosest_RanksAscend(t *testing.T) {
	one := baseTable(t, 50, 31)
	two := built(t, one, one, 20, 20, 32)
	four := built(t, two, two, 40, 40, 33)

	target := fragment.NewSingleResidue(-60, -45).Concatenate(fragment.NewSingleResidue(-60, -45), 1, 2)
	target = target.Concatenate(target, 2, 4)

	prev := -1.0
	var rank int
	for rank = 0; rank < 10; rank++ {
		m, ok, err := four.GetClosest(target, rank)
		require.NoError(t, err)
		require.True(t, ok)
		assert.GreaterOrEqual(t, m.Deviation, prev)
		prev = m.Deviation
	}

	// a rank beyond the table is not an error, just no match
	_, ok, err := four.GetClosest(target, four.Size())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetNClosest_DeviationBound(t *testing.T) {
	one := baseTable(t, 50, 41)
	two := built(t, one, one, 20, 20, 42)
	four := built(t, two, two, 40, 40, 43)

	rng := rand.New(rand.NewSource(44))
	var trial int
	for trial = 0; trial < 20; trial++ {
		target := firstEntry(four)
		target.End.Origin = target.End.Origin.Add(geom.Vec3{rng.Float64(), rng.Float64(), rng.Float64()})

		ms, err := four.GetNClosest(target, 25)
		require.NoError(t, err)
		require.NotEmpty(t, ms)
		require.LessOrEqual(t, len(ms), 25)

		best := ms[0].Deviation
		var i int
		for i = range ms {
			assert.LessOrEqual(t, ms[i].Deviation, looptable.DeviationSpread*best+1e-12)
			if i > 0 {
				assert.GreaterOrEqual(t, ms[i].Deviation, ms[i-1].Deviation)
			}
		}
	}
}

func TestLookups_SoftCloseWithoutMutating(t *testing.T) {
	one := baseTable(t, 50, 51)
	two := built(t, one, one, 20, 20, 52)
	before := snapshot(two)

	target := firstEntry(two)
	target.End.Origin = target.End.Origin.Add(geom.Vec3{0.3, 0.1, -0.2})

	m, ok, err := two.GetClosest(target, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, m.SoftClosed)
	assert.Equal(t, target.End.Origin, m.Fragment.End.Origin)

	ms, err := two.GetNClosest(target, 5)
	require.NoError(t, err)
	for _, x := range ms {
		assert.Equal(t, target.End.Origin, x.Fragment.End.Origin)
	}

	assert.Equal(t, before, snapshot(two), "lookups must not modify the table")

	// the raw stored entry differs from the soft-closed copy by half the gap on its mid
	raw := two.Bin(m.Bin)[m.Offset]
	delta := target.End.Origin.Sub(raw.End.Origin).Scale(0.5)
	assert.InDelta(t, 0.0, raw.Mid.Origin.Add(delta).Dist(m.Fragment.Mid.Origin), 1e-12)
}

func TestLookups_LongChainsAreNotSoftClosed(t *testing.T) {
	one := baseTable(t, 30, 61)
	three := built(t, built(t, one, one, 6, 6, 62), one, 6, 6, 63)
	six := built(t, three, three, 20, 20, 64)

	target := firstEntry(six)
	target.End.Origin = target.End.Origin.Add(geom.Vec3{0.5, 0, 0})
	m, ok, err := six.GetClosest(target, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, m.SoftClosed)
	assert.Equal(t, six.Bin(m.Bin)[m.Offset], m.Fragment)
}

func TestGetClosest_QueryOutsideLimitsIsClamped(t *testing.T) {
	two := built(t, baseTable(t, 20, 71), baseTable(t, 20, 71), 10, 10, 72)
	far := fragment.Fragment{End: fragment.Frame{Origin: geom.Vec3{1000, 0, 0}, Direction: geom.UnitX, Normal: geom.UnitY}}

	m, ok, err := two.GetClosest(far, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Greater(t, m.Deviation, 900.0)
}

func TestLookups_RankAndCountBeyondTable(t *testing.T) {
	two := built(t, baseTable(t, 20, 91), baseTable(t, 20, 92), 10, 10, 93)
	require.Equal(t, 100, two.Size())
	target := firstEntry(two)

	assert.NotPanics(t, func() {
		_, ok, err := two.GetClosest(target, math.MaxInt-1)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
	assert.NotPanics(t, func() {
		ms, err := two.GetNClosest(target, math.MaxInt)
		assert.NoError(t, err)
		assert.NotEmpty(t, ms)
		assert.LessOrEqual(t, len(ms), two.Size())
	})
}
