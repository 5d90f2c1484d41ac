package looptable

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
)

// recordSize is the size in bytes of one quantised fragment.
const recordSize = fragment.VectorCount * 3 * 2

// Quantize encodes v relative to [lo, hi] as round((v-lo)·QuantScale/(hi-lo)).
// Values outside [lo, hi] are a precondition violation. A zero-width range
// encodes as 0.
func Quantize(v, lo, hi float64) (uint16, error) {
	if math.IsNaN(v) || v < lo || v > hi {
		return 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfBounds, v, lo, hi)
	}
	if hi <= lo {
		return 0, nil
	}
	code := math.Round((v - lo) * QuantScale / (hi - lo))
	if code < 0 {
		code = 0
	} else if code > QuantScale {
		code = QuantScale
	}

	return uint16(code), nil
}

// Dequantize is the inverse of Quantize: lo + code·(hi-lo)/QuantScale.
// The round-trip error is at most (hi-lo)/QuantScale.
func Dequantize(code uint16, lo, hi float64) float64 {
	if code >= QuantScale {
		return hi
	}

	return math.Min(lo+float64(code)*(hi-lo)/QuantScale, hi)
}

// header mirrors the fixed-size prefix of a table file after the counts.
type header struct {
	Lower, Upper float64
	Max          [fragment.VectorCount][3]float64
	Min          [fragment.VectorCount][3]float64
}

// Write encodes the table in the binary table format. The table must be
// adjusted.
func (t *Table) Write(w io.Writer) error {
	if !t.Adjusted() {
		return ErrUnadjusted
	}
	bw := bufio.NewWriter(w)

	prefix := make([]uint32, 2+BinCount)
	prefix[0] = uint32(t.chainLength)
	prefix[1] = BinCount
	var b int
	for b = 0; b < BinCount; b++ {
		prefix[2+b] = uint32(t.BinSize(b))
	}
	if err := binary.Write(bw, binary.LittleEndian, prefix); err != nil {
		return fmt.Errorf("looptable: write header: %w", err)
	}
	h := header{Lower: t.lower, Upper: t.upper, Max: t.bounds.Max, Min: t.bounds.Min}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("looptable: write limits: %w", err)
	}

	buf := make([]byte, recordSize)
	for i := range t.arena {
		if err := t.encode(t.arena[i], buf); err != nil {
			return fmt.Errorf("looptable: entry %d: %w", i, err)
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("looptable: write entry %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// encode quantises f into buf against the table bounds.
func (t *Table) encode(f fragment.Fragment, buf []byte) error {
	vs := f.Vectors()
	var i, d int
	for i = range vs {
		for d = 0; d < 3; d++ {
			code, err := Quantize(vs[i][d], t.bounds.Min[i][d], t.bounds.Max[i][d])
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint16(buf[(i*3+d)*2:], code)
		}
	}

	return nil
}

// decode is the inverse of encode.
func (t *Table) decode(buf []byte) fragment.Fragment {
	var vs [fragment.VectorCount]geom.Vec3
	var i, d int
	for i = range vs {
		for d = 0; d < 3; d++ {
			code := binary.LittleEndian.Uint16(buf[(i*3+d)*2:])
			vs[i][d] = Dequantize(code, t.bounds.Min[i][d], t.bounds.Max[i][d])
		}
	}

	return fragment.FromVectors(vs)
}

// Read replaces t's contents with a table decoded from r. Lookup options set
// on t are kept. A bin count other than BinCount is fatal.
//
// Entries stay in the bins the file lists. Quantisation can move an end
// point's norm across a bin edge by a fraction of a step, so after Read an
// entry is within EdgeRadius bins of BinOf; lookups always scan that far.
func (t *Table) Read(r io.Reader) error {
	br := bufio.NewReader(r)

	var lengths [2]uint32
	if err := binary.Read(br, binary.LittleEndian, &lengths); err != nil {
		return fmt.Errorf("looptable: read header: %w", err)
	}
	chainLength, binCount := int(lengths[0]), int(lengths[1])
	if binCount != BinCount {
		return fmt.Errorf("%w: file has %d bins, want %d", ErrBadBinCount, binCount, BinCount)
	}
	if chainLength < 1 || chainLength > MaxChainLength {
		return fmt.Errorf("%w: %d", ErrBadChainLength, chainLength)
	}

	var counts [BinCount]uint32
	if err := binary.Read(br, binary.LittleEndian, &counts); err != nil {
		return fmt.Errorf("looptable: read bin counts: %w", err)
	}
	var h header
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("looptable: read limits: %w", err)
	}

	var offsets [BinCount + 1]int
	var b int
	for b = 0; b < BinCount; b++ {
		offsets[b+1] = offsets[b] + int(counts[b])
	}

	t.chainLength = chainLength
	t.lower, t.upper = h.Lower, h.Upper
	t.bounds = Bounds{Min: h.Min, Max: h.Max}
	t.seen = offsets[BinCount] > 0

	arena := make([]fragment.Fragment, 0, min(offsets[BinCount], 1<<20))
	buf := make([]byte, recordSize)
	var i int
	for i = 0; i < offsets[BinCount]; i++ {
		if _, err := io.ReadFull(br, buf); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("looptable: read entry %d of %d: %w", i, offsets[BinCount], err)
		}
		arena = append(arena, t.decode(buf))
	}

	t.arena = arena
	t.offsets = offsets
	t.staging = nil

	return nil
}

// WriteFile writes the table to path, replacing any existing file.
func (t *Table) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("looptable: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("looptable: %w", err)
	}
	if err = t.Write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("looptable: %w", err)
	}

	return os.Rename(tmp, path)
}

// ReadFile reads the table stored at path. A missing file yields
// ErrTableMissing: tables are built out of band with `looptable build`.
func (t *Table) ReadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s (build it first with `looptable build`)", ErrTableMissing, path)
	}
	if err != nil {
		return fmt.Errorf("looptable: %w", err)
	}
	defer f.Close()

	if err = t.Read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

// ReadTable is a convenience wrapper returning a new table read from path.
func ReadTable(path string, opts ...TableOption) (*Table, error) {
	t := NewTable(0, opts...)
	if err := t.ReadFile(path); err != nil {
		return nil, err
	}

	return t, nil
}
