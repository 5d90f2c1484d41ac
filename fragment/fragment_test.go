package fragment_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertVec(t *testing.T, want, got geom.Vec3, delta float64) {
	t.Helper()
	var i int
	for i = 0; i < 3; i++ {
		assert.InDeltaf(t, want[i], got[i], delta, "component %d: want %v got %v", i, want, got)
	}
}

func assertFrame(t *testing.T, want, got fragment.Frame, delta float64) {
	t.Helper()
	assertVec(t, want.Origin, got.Origin, delta)
	assertVec(t, want.Direction, got.Direction, delta)
	assertVec(t, want.Normal, got.Normal, delta)
}

// randomResidue draws a single-residue fragment with uniformly random dihedrals.
func randomResidue(r *rand.Rand) fragment.Fragment {
	return fragment.NewSingleResidue(r.Float64()*360-180, r.Float64()*360-180)
}

// chain concatenates residues left to right, tracking the chain length.
func chain(rs ...fragment.Fragment) fragment.Fragment {
	out := rs[0]
	var i int
	for i = 1; i < len(rs); i++ {
		out = out.Concatenate(rs[i], i, i+1)
	}

	return out
}

func TestSetToSingleAminoAcid_CanonicalGeometry(t *testing.T) {
	var f fragment.Fragment
	f.SetToSingleAminoAcid()

	var g fragment.Fragment
	g.SetToSingleAminoAcid()
	require.Equal(t, f, g, "single residue must be deterministic")

	// trans peptide: consecutive CA atoms sit ~3.8 Å apart
	assert.InDelta(t, 3.8, f.End.Origin.Norm(), 0.05)
	assert.Equal(t, f.End, f.Mid)
	assert.InDelta(t, 1.0, f.End.Direction.Norm(), eps)
	assert.InDelta(t, 1.0, f.End.Normal.Norm(), eps)
	assert.InDelta(t, 0.0, f.End.Direction.Dot(f.End.Normal), eps)
}

func TestNewSingleResidue_Dihedrals(t *testing.T) {
	phi, psi := -63.0, -42.0
	f := fragment.NewSingleResidue(phi, psi)

	r0 := fragment.Canonical().Backbone(0)
	r1 := f.End.Backbone(1)

	assert.InDelta(t, geom.Radians(psi), geom.Dihedral(r0.N, r0.CA, r0.C, r1.N), 1e-9)
	assert.InDelta(t, math.Pi, math.Abs(geom.Dihedral(r0.CA, r0.C, r1.N, r1.CA)), 1e-9)
	assert.InDelta(t, geom.Radians(phi), geom.Dihedral(r0.C, r1.N, r1.CA, r1.C), 1e-9)
	assert.InDelta(t, fragment.BondCN, r0.C.Dist(r1.N), 1e-9)
}

func TestBackbone_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	f := randomResidue(r).End
	res := f.Backbone(4)

	assert.Equal(t, 4, res.Index)
	assertFrame(t, f, res.Frame(), 1e-9)
	assert.InDelta(t, fragment.BondNCA, res.N.Dist(res.CA), 1e-12)
	assert.InDelta(t, fragment.BondCAC, res.C.Dist(res.CA), 1e-12)
	assert.InDelta(t, geom.Radians(fragment.AngleNCAC), geom.Angle(res.N, res.CA, res.C), 1e-9)
}

func TestConcatenate_EndpointComposition(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	a := chain(randomResidue(r), randomResidue(r))
	b := chain(randomResidue(r), randomResidue(r), randomResidue(r))

	ab := a.Concatenate(b, 2, 5)

	// apply a's end frame to b directly, without going through Concatenate
	var ts geom.TransformStack
	ts.AddFrame(a.End.Origin, a.End.Direction, a.End.Normal)
	assertVec(t, ts.Transform(b.End.Origin), ab.End.Origin, 1e-12)
	assertVec(t, ts.TransformVector(b.End.Direction), ab.End.Direction, 1e-12)
	assertVec(t, ts.TransformVector(b.End.Normal), ab.End.Normal, 1e-12)

	// 2 is not ceil(5/2), so a's own mid is kept
	assert.Equal(t, a.Mid, ab.Mid)

	// 3+2: first half is ceil(5/2) ⇒ its end becomes the mid
	c := b.Concatenate(a, 3, 5)
	assert.Equal(t, b.End, c.Mid)
}

func TestConcatenate_Associative(t *testing.T) {
	r := rand.New(rand.NewSource(9))
	var i int
	for i = 0; i < 20; i++ {
		a := chain(randomResidue(r), randomResidue(r))
		b := chain(randomResidue(r), randomResidue(r))
		c := chain(randomResidue(r), randomResidue(r))

		left := a.Concatenate(b, 2, 4).Concatenate(c, 4, 6)
		right := a.Concatenate(b.Concatenate(c, 2, 4), 2, 6)
		assertFrame(t, left.End, right.End, 1e-9)
	}
}

func TestConcatenate_MatchesAtomicChain(t *testing.T) {
	// two residues concatenated must land where building the atoms does
	phi := []float64{-60, -140}
	psi := []float64{-45, 135}
	f := fragment.NewSingleResidue(phi[0], psi[0]).Concatenate(fragment.NewSingleResidue(phi[1], psi[1]), 1, 2)

	r0 := fragment.Canonical().Backbone(0)
	n1 := fragment.NextN(r0, psi[0])
	ca1 := geom.PlaceAtom(r0.CA, r0.C, n1, fragment.BondNCA, geom.Radians(fragment.AngleCNCA), math.Pi)
	c1 := geom.PlaceAtom(r0.C, n1, ca1, fragment.BondCAC, geom.Radians(fragment.AngleNCAC), geom.Radians(phi[0]))
	r1 := fragment.Residue{Index: 1, N: n1, CA: ca1, C: c1}
	n2 := fragment.NextN(r1, psi[1])
	ca2 := geom.PlaceAtom(r1.CA, r1.C, n2, fragment.BondNCA, geom.Radians(fragment.AngleCNCA), math.Pi)
	c2 := geom.PlaceAtom(r1.C, n2, ca2, fragment.BondCAC, geom.Radians(fragment.AngleNCAC), geom.Radians(phi[1]))

	assertFrame(t, r1.Frame(), f.Mid, 1e-9)
	assertFrame(t, fragment.FrameFromBackbone(n2, ca2, c2), f.End, 1e-9)
}

func TestRotateIntoXYPlane(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	orig := chain(randomResidue(r), randomResidue(r), randomResidue(r))

	f := orig
	var ts geom.TransformStack
	angle := f.RotateIntoXYPlane(&ts)

	assert.InDelta(t, 0.0, f.End.Direction.Z(), 1e-12)
	assert.GreaterOrEqual(t, f.End.Direction.Y(), 0.0)
	assert.InDelta(t, orig.End.Origin.Norm(), f.End.Origin.Norm(), 1e-9)
	assert.InDelta(t, math.Atan2(orig.End.Direction.Z(), orig.End.Direction.Y()), angle, 1e-12)

	// the recorded inverse takes the rotated fragment back
	assertFrame(t, orig.End, f.End.Apply(ts), 1e-9)
	assertFrame(t, orig.Mid, f.Mid.Apply(ts), 1e-9)

	// idempotent once in the plane
	again := f
	assert.InDelta(t, 0.0, again.RotateIntoXYPlane(nil), 1e-12)
}

func TestSetToOrigin(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	base := chain(randomResidue(r), randomResidue(r), randomResidue(r), randomResidue(r))
	target := chain(randomResidue(r), randomResidue(r))

	var ts geom.TransformStack
	rebased := base.SetToOrigin(target, fragment.EndFrame, &ts)
	assertFrame(t, target.End, rebased.End.Apply(ts), 1e-9)
	assertFrame(t, target.Mid, rebased.Mid.Apply(ts), 1e-9)

	// the selected frame itself becomes canonical
	self := base.SetToOrigin(base, fragment.MidFrame, nil)
	assertFrame(t, fragment.Canonical(), self.Mid, 1e-9)
}

func TestDeviation(t *testing.T) {
	r := rand.New(rand.NewSource(19))
	a := randomResidue(r)
	b := randomResidue(r)

	assert.InDelta(t, 0.0, a.Deviation(a, fragment.DefaultWeights), eps)
	assert.InDelta(t, a.Deviation(b, fragment.DefaultWeights), b.Deviation(a, fragment.DefaultWeights), eps)

	w := fragment.Weights{Point: 1}
	assert.InDelta(t, a.End.Origin.Dist(b.End.Origin), a.Deviation(b, w), eps)
}

func TestSoftClose_DoesNotTouchOriginal(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	f := chain(randomResidue(r), randomResidue(r))
	before := f
	target := f.End.Origin.Add(geom.Vec3{0.4, -0.2, 0})

	closed := f.SoftClose(target)
	assert.Equal(t, before, f)
	assert.Equal(t, target, closed.End.Origin)
	assertVec(t, f.Mid.Origin.Add(geom.Vec3{0.2, -0.1, 0}), closed.Mid.Origin, 1e-12)
	assert.Equal(t, f.End.Direction, closed.End.Direction)
}

func TestVectors_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	f := chain(randomResidue(r), randomResidue(r))
	assert.Equal(t, f, fragment.FromVectors(f.Vectors()))
	assert.True(t, f.IsFinite())
}

func TestFromAnchor(t *testing.T) {
	_, err := fragment.FromAnchor(nil)
	assert.ErrorIs(t, err, fragment.ErrDegenerateFrame)

	_, err = fragment.FromAnchor(fragment.Frame{Direction: geom.UnitX, Normal: geom.UnitX})
	assert.ErrorIs(t, err, fragment.ErrDegenerateFrame)

	f, err := fragment.FromAnchor(fragment.Frame{Origin: geom.Vec3{1, 1, 1}, Direction: geom.Vec3{2, 0, 0}, Normal: geom.Vec3{1, 3, 0}})
	require.NoError(t, err)
	assertFrame(t, fragment.Frame{Origin: geom.Vec3{1, 1, 1}, Direction: geom.UnitX, Normal: geom.UnitY}, f, 1e-12)
}

func TestMidLength(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 64: 32, 65: 33}
	for n, want := range cases {
		assert.Equalf(t, want, fragment.MidLength(n), "MidLength(%d)", n)
	}
}
