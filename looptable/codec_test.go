package looptable_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/looptable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var i int
	for i = 0; i < 10000; i++ {
		lo := rng.Float64()*20 - 10
		hi := lo + rng.Float64()*15
		v := lo + rng.Float64()*(hi-lo)

		code, err := looptable.Quantize(v, lo, hi)
		require.NoError(t, err)
		require.LessOrEqual(t, code, uint16(looptable.QuantScale))
		got := looptable.Dequantize(code, lo, hi)
		require.LessOrEqual(t, got-v, (hi-lo)/looptable.QuantScale+1e-12)
		require.GreaterOrEqual(t, got-v, -(hi-lo)/looptable.QuantScale-1e-12)
	}
}

func TestQuantize_Edges(t *testing.T) {
	code, err := looptable.Quantize(2, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), code)

	code, err = looptable.Quantize(5, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, uint16(looptable.QuantScale), code)
	assert.Equal(t, 5.0, looptable.Dequantize(code, 2, 5))

	code, err = looptable.Quantize(3, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), code)

	_, err = looptable.Quantize(5.0001, 2, 5)
	assert.ErrorIs(t, err, looptable.ErrOutOfBounds)
	_, err = looptable.Quantize(1.9999, 2, 5)
	assert.ErrorIs(t, err, looptable.ErrOutOfBounds)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	one := baseTable(t, 40, 81)
	three := built(t, built(t, one, one, 8, 8, 82), one, 10, 10, 83)

	var buf bytes.Buffer
	require.NoError(t, three.Write(&buf))

	// header + counts + limits + bounds + records
	wantLen := 4*(2+looptable.BinCount) + 8*2 + 8*18*2 + three.Size()*18*2
	assert.Equal(t, wantLen, buf.Len())

	got := looptable.NewTable(0)
	require.NoError(t, got.Read(bytes.NewReader(buf.Bytes())))

	assert.Equal(t, three.ChainLength(), got.ChainLength())
	assert.Equal(t, three.Size(), got.Size())
	lo, hi := three.Limits()
	glo, ghi := got.Limits()
	assert.Equal(t, lo, glo)
	assert.Equal(t, hi, ghi)
	assert.Equal(t, three.Bounds(), got.Bounds())

	bounds := three.Bounds()
	var b int
	for b = 0; b < looptable.BinCount; b++ {
		want := three.Bin(b)
		have := got.Bin(b)
		require.Len(t, have, len(want), "bin %d population", b)
		for i := range want {
			wv := want[i].Vectors()
			hv := have[i].Vectors()
			for v := range wv {
				for d := 0; d < 3; d++ {
					tol := (bounds.Max[v][d]-bounds.Min[v][d])/looptable.QuantScale + 1e-12
					require.InDelta(t, wv[v][d], hv[v][d], tol)
				}
			}
		}
	}

	// a table that was read can be written again
	var again bytes.Buffer
	require.NoError(t, got.Write(&again))
	assert.Equal(t, buf.Len(), again.Len())
}

func TestRead_DecodedEntriesStayFindable(t *testing.T) {
	one := baseTable(t, 60, 111)
	two := built(t, one, one, 30, 30, 112)
	four := built(t, two, two, 40, 40, 113)

	var buf bytes.Buffer
	require.NoError(t, four.Write(&buf))
	got := looptable.NewTable(0)
	require.NoError(t, got.Read(&buf))

	got.Each(func(bin int, f fragment.Fragment) bool {
		// quantisation may nudge an end point across a bin edge, never further
		drift := got.BinOf(f) - bin
		assert.LessOrEqual(t, drift, looptable.EdgeRadius)
		assert.GreaterOrEqual(t, drift, -looptable.EdgeRadius)

		m, ok, err := got.GetClosest(f, 0)
		require.NoError(t, err)
		require.True(t, ok)
		assert.InDelta(t, 0.0, m.Deviation, 1e-12, "decoded entry in bin %d not found", bin)

		return true
	})
}

func TestWrite_Unadjusted(t *testing.T) {
	tbl := looptable.NewTable(1)
	require.NoError(t, tbl.Store(fragment.NewSingleResidue(-60, -40)))
	assert.ErrorIs(t, tbl.Write(io.Discard), looptable.ErrUnadjusted)
}

func TestRead_BadBinCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{2, 64}))
	err := looptable.NewTable(0).Read(&buf)
	assert.ErrorIs(t, err, looptable.ErrBadBinCount)
}

func TestRead_BadChainLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint32{0, looptable.BinCount}))
	err := looptable.NewTable(0).Read(&buf)
	assert.ErrorIs(t, err, looptable.ErrBadChainLength)
}

func TestRead_Truncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, baseTable(t, 10, 84).Write(&buf))
	data := buf.Bytes()[:buf.Len()-5]

	err := looptable.NewTable(0).Read(bytes.NewReader(data))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFile_RoundTripAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := looptable.TablePath(dir, 1)
	assert.Equal(t, filepath.Join(dir, "looptable_01.lt"), path)

	_, err := looptable.ReadTable(path)
	assert.ErrorIs(t, err, looptable.ErrTableMissing)
	assert.Contains(t, err.Error(), path)

	one := baseTable(t, 25, 85)
	require.NoError(t, one.WriteFile(path))

	got, err := looptable.ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Size())
	assert.Equal(t, 1, got.ChainLength())
}
