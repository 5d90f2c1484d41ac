package looptable

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/rama"
)

// Table is a binned collection of fragments of one chain length.
//
// Binned fragments live in a single arena ordered by bin; bin b is
// arena[offsets[b]:offsets[b+1]]. Fragments stored after the last
// AdjustTable wait in staging and are invisible to lookups.
type Table struct {
	chainLength int

	arena   []fragment.Fragment
	offsets [BinCount + 1]int
	staging []fragment.Fragment

	lower, upper float64 // observed min/max ‖endPoint‖
	bounds       Bounds  // observed per-axis min/max of all six vectors
	seen         bool    // at least one fragment has updated the limits

	weights        fragment.Weights
	softClosureMax int
}

// NewTable returns an empty table for chains of the given length, using
// fragment.DefaultWeights and SoftClosureMaxLength unless opts say otherwise.
func NewTable(chainLength int, opts ...TableOption) *Table {
	t := &Table{
		chainLength:    chainLength,
		weights:        fragment.DefaultWeights,
		softClosureMax: SoftClosureMaxLength,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// ChainLength returns k, the number of residues each fragment spans.
func (t *Table) ChainLength() int { return t.chainLength }

// Size returns the number of fragments, binned or staged.
func (t *Table) Size() int { return len(t.arena) + len(t.staging) }

// Adjusted reports whether every fragment has been binned.
func (t *Table) Adjusted() bool { return len(t.staging) == 0 }

// Limits returns the observed lower and upper ‖endPoint‖.
func (t *Table) Limits() (lower, upper float64) { return t.lower, t.upper }

// Bounds returns the observed per-axis extremes used for quantisation.
func (t *Table) Bounds() Bounds { return t.bounds }

// Step returns the bin width.
func (t *Table) Step() float64 { return (t.upper - t.lower) / (BinCount - 1) }

// BinSize returns the number of fragments in bin b.
func (t *Table) BinSize(b int) int {
	if b < 0 || b >= BinCount {
		return 0
	}

	return t.offsets[b+1] - t.offsets[b]
}

// Bin returns a copy of the fragments in bin b.
func (t *Table) Bin(b int) []fragment.Fragment {
	if b < 0 || b >= BinCount {
		return nil
	}

	return append([]fragment.Fragment(nil), t.arena[t.offsets[b]:t.offsets[b+1]]...)
}

// Each calls fn for every binned fragment in bin order until fn returns false.
func (t *Table) Each(fn func(bin int, f fragment.Fragment) bool) {
	var b, i int
	for b = 0; b < BinCount; b++ {
		for i = t.offsets[b]; i < t.offsets[b+1]; i++ {
			if !fn(b, t.arena[i]) {
				return
			}
		}
	}
}

// Store stages f and widens the table's limits and bounds to include it.
func (t *Table) Store(f fragment.Fragment) error {
	if !f.IsFinite() {
		return ErrNonFinite
	}
	t.observe(f)
	t.staging = append(t.staging, f)

	return nil
}

// observe folds f into the running limits and per-axis bounds.
func (t *Table) observe(f fragment.Fragment) {
	norm := f.End.Origin.Norm()
	vs := f.Vectors()
	if !t.seen {
		t.lower, t.upper = norm, norm
		var i int
		for i = range vs {
			t.bounds.Min[i] = vs[i]
			t.bounds.Max[i] = vs[i]
		}
		t.seen = true

		return
	}

	t.lower = math.Min(t.lower, norm)
	t.upper = math.Max(t.upper, norm)
	var i, d int
	for i = range vs {
		for d = 0; d < 3; d++ {
			t.bounds.Min[i][d] = math.Min(t.bounds.Min[i][d], vs[i][d])
			t.bounds.Max[i][d] = math.Max(t.bounds.Max[i][d], vs[i][d])
		}
	}
}

// binIndex maps an end-point length to its bin, clamped into [0, BinCount).
func (t *Table) binIndex(norm float64) int {
	step := t.Step()
	if step <= 0 || math.IsNaN(norm) {
		return 0
	}
	if norm >= t.upper {
		return BinCount - 1
	}
	idx := int(math.Floor((norm - t.lower) / step))
	if idx < 0 {
		return 0
	}
	if idx >= BinCount {
		return BinCount - 1
	}

	return idx
}

// BinOf returns the bin the end point of f falls into.
func (t *Table) BinOf(f fragment.Fragment) int { return t.binIndex(f.End.Origin.Norm()) }

// AdjustTable distributes every fragment into its bin using the current
// limits. Fragments already binned keep their relative order and precede
// newly staged ones inside a bin.
func (t *Table) AdjustTable() {
	all := make([]fragment.Fragment, 0, t.Size())
	all = append(all, t.arena...)
	all = append(all, t.staging...)

	bins := make([]int, len(all))
	var counts [BinCount]int
	for i := range all {
		bins[i] = t.binIndex(all[i].End.Origin.Norm())
		counts[bins[i]]++
	}

	var b int
	t.offsets[0] = 0
	for b = 0; b < BinCount; b++ {
		t.offsets[b+1] = t.offsets[b] + counts[b]
	}

	// counting sort into a fresh arena
	next := t.offsets
	arena := make([]fragment.Fragment, len(all))
	for i := range all {
		arena[next[bins[i]]] = all[i]
		next[bins[i]]++
	}

	t.arena = arena
	t.staging = nil
}

// BuildBase fills a length-1 table with n single residues whose dihedrals are
// drawn from sampler, then bins them.
func (t *Table) BuildBase(n int, rng *rand.Rand, sampler rama.Sampler) error {
	if t.chainLength != 1 {
		return fmt.Errorf("%w: base table must have length 1, got %d", ErrBadChainLength, t.chainLength)
	}
	if n <= 0 {
		return ErrInvalidCount
	}
	if sampler == nil {
		sampler = rama.Default()
	}
	if rng == nil {
		rng = rngFromSeed(0)
	}

	var i int
	for i = 0; i < n; i++ {
		f := fragment.NewSingleResidue(sampler.Sample(rng))
		f.RotateIntoXYPlane(nil)
		if err := t.Store(f); err != nil {
			return err
		}
	}
	t.AdjustTable()

	return nil
}

// Concatenate builds t by Monte-Carlo sampling of the concatenation space of
// src1 and src2: n1 draws from src1, each combined with n2 draws from src2.
// Every product is rotated into the xy-plane, stored, and finally binned.
// src1 must be the first half of t: its length is ceil(k/2) and the two
// source lengths add up to k.
//
// The result holds exactly n1·n2 fragments (fewer only if some product is
// non-finite). Coverage improves with n1·n2; this is a sample, not an
// enumeration.
//
// Policy: draws are with replacement and all come from rng (nil ⇒ seed 0);
// length-1 sources with a sampler yield fresh residues instead of stored
// ones. One seed reproduces the table exactly.
//
// Complexity: O(n1·n2) time and O(n1·n2) space, plus the O(N) binning pass.
func (t *Table) Concatenate(src1, src2 *Table, n1, n2 int, rng *rand.Rand, sampler rama.Sampler) error {
	if src1 == nil || src2 == nil {
		return fmt.Errorf("%w: nil source table", ErrEmptyTable)
	}
	if t.chainLength < 2 || t.chainLength > MaxChainLength ||
		src1.chainLength+src2.chainLength != t.chainLength ||
		src1.chainLength != fragment.MidLength(t.chainLength) {
		return fmt.Errorf("%w: cannot build %d from %d+%d",
			ErrBadChainLength, t.chainLength, src1.chainLength, src2.chainLength)
	}
	if n1 <= 0 || n2 <= 0 {
		return ErrInvalidCount
	}
	if rng == nil {
		rng = rngFromSeed(0)
	}

	var i, j int
	for i = 0; i < n1; i++ {
		a, err := src1.selectOccurrence(rng, sampler)
		if err != nil {
			return fmt.Errorf("looptable: drawing from table %d: %w", src1.chainLength, err)
		}
		for j = 0; j < n2; j++ {
			b, err := src2.selectOccurrence(rng, sampler)
			if err != nil {
				return fmt.Errorf("looptable: drawing from table %d: %w", src2.chainLength, err)
			}
			c := a.Concatenate(b, src1.chainLength, t.chainLength)
			c.RotateIntoXYPlane(nil)
			if !c.IsFinite() {
				continue
			}
			_ = t.Store(c)
		}
	}
	t.AdjustTable()

	return nil
}

// selectOccurrence draws one fragment from t. Length-1 tables with a sampler
// generate a fresh residue from a random dihedral pair; every other table
// returns a uniformly random stored entry.
func (t *Table) selectOccurrence(rng *rand.Rand, sampler rama.Sampler) (fragment.Fragment, error) {
	if t.chainLength == 1 && sampler != nil {
		return fragment.NewSingleResidue(sampler.Sample(rng)), nil
	}
	n := t.Size()
	if n == 0 {
		return fragment.Fragment{}, ErrEmptyTable
	}
	i := rng.Intn(n)
	if i < len(t.arena) {
		return t.arena[i], nil
	}

	return t.staging[i-len(t.arena)], nil
}
