package closure

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
	"github.com/katalvlaran/ringloop/looptable"
)

// Solver closes gaps using the tables of a TableSource.
type Solver struct {
	src  TableSource
	opts Options
}

// NewSolver returns a Solver reading tables from src.
func NewSolver(src TableSource, opts ...Option) *Solver {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.clamp()

	return &Solver{src: src, opts: o}
}

// Options returns the solver configuration.
func (s *Solver) Options() Options { return s.opts }

// partial is the result of closing one sub-range.
type partial struct {
	residues []fragment.Residue
	torsion  float64 // rotation reaching the first residue of the range
}

// Solve closes gap residues between the residue at start and the residue at
// end. The chain spans gap+1 residue steps; the last step lands on end and is
// reported in Candidate.End rather than in Residues.
//
// Candidates are ordered by ascending Deviation, then Closure. An empty slice
// with a nil error means no closure was found.
func (s *Solver) Solve(start, end fragment.Anchor, gap int) ([]Candidate, error) {
	if gap < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadGap, gap)
	}
	n := gap + 1
	if n > looptable.MaxChainLength {
		return nil, fmt.Errorf("%w: %d steps, max %d", ErrChainTooLong, n, looptable.MaxChainLength)
	}
	sf, err := fragment.FromAnchor(start)
	if err != nil {
		return nil, fmt.Errorf("closure: start anchor: %w", err)
	}
	ef, err := fragment.FromAnchor(end)
	if err != nil {
		return nil, fmt.Errorf("closure: end anchor: %w", err)
	}

	dest := fragment.Fragment{End: sf.Relative(ef)}
	dest.Mid = dest.End
	cands, err := s.RingClosureBase(nil, dest, 0, n, 0, sf.Transform())
	if err != nil {
		return nil, err
	}

	for i := range cands {
		c := &cands[i]
		c.End = c.Residues[n-1]
		c.Residues = c.Residues[:n-1]
		c.Closure = math.Abs(c.Residues[n-2].C.Dist(c.End.N) - fragment.BondCN)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Deviation != cands[j].Deviation {
			return cands[i].Deviation < cands[j].Deviation
		}
		return cands[i].Closure < cands[j].Closure
	})
	s.logf("closure: gap %d (%.2f Å): %d candidates", gap, sf.Origin.Dist(ef.Origin), len(cands))

	return cands, nil
}

// RingClosureBase is the breadth variant of RingClosure used at the top
// level: it takes up to Num matches from the length-n table and, for each,
// tries Depth ranks for the sub-problems. Each success becomes a Candidate
// holding all n placed residues.
//
// Policy: chains of two steps try a single rank, since both halves come from
// the base table and nothing below is ranked. Num and Depth are bounded by
// MaxNum and MaxDepth when the Solver is built.
//
// Complexity: O(Num·Depth·n) sub-lookups in the worst case, each one a
// bin-window scan of the table at that level.
func (s *Solver) RingClosureBase(source *fragment.Frame, dest fragment.Fragment, offset, n int,
	angleOffset float64, tr geom.TransformStack) ([]Candidate, error) {
	if err := s.check(n); err != nil {
		return nil, err
	}
	dest, phi, ok := prepare(source, dest, &tr)
	if !ok {
		return nil, nil
	}

	if n == 1 {
		p, ok := place(dest, offset, angleOffset+phi, tr)
		if !ok {
			return nil, nil
		}
		return []Candidate{s.candidate(p, 0)}, nil
	}

	t, err := s.src.Table(n)
	if err != nil {
		return nil, err
	}
	matches, err := t.GetNClosest(dest, s.opts.Num)
	if err != nil {
		return nil, fmt.Errorf("closure: table %d: %w", n, err)
	}

	// with both halves of length 1 nothing below is ranked
	ranks := s.opts.Depth
	if n <= 2 {
		ranks = 1
	}
	out := make([]Candidate, 0, len(matches)*ranks)
	var r int
	for _, m := range matches {
		for r = 0; r < ranks; r++ {
			p, ok, err := s.split(dest, m, offset, n, angleOffset+phi, tr, r)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			out = append(out, s.candidate(p, m.Deviation))
		}
	}
	s.logf("closure: length %d: %d matches, %d candidates", n, len(matches), len(out))

	return out, nil
}

// RingClosure closes n residue steps from source to dest using the rank-th
// best match of the length-n table; sub-problems use their best match.
//
// source and dest are expressed in the same local coordinates, which tr maps
// to world coordinates. A nil or zero source means the canonical frame.
// offset is the number of residues preceding the range and becomes the Index
// of its first residue. angleOffset accumulates the rotation applied about
// the start of the chain.
//
// ok is false when some table held too few candidates; that is not an error.
func (s *Solver) RingClosure(source *fragment.Frame, dest fragment.Fragment, offset, n int,
	angleOffset float64, tr geom.TransformStack, rank int) ([]fragment.Residue, bool, error) {
	p, ok, err := s.close(source, dest, offset, n, angleOffset, tr, rank)

	return p.residues, ok, err
}

// close is RingClosure returning the partial, so split can merge both halves
// along with the torsion reaching the first residue. Every level re-bases,
// rotates into the xy-plane, then either places a leaf or splits the rank-th
// match of its table.
func (s *Solver) close(source *fragment.Frame, dest fragment.Fragment, offset, n int,
	angleOffset float64, tr geom.TransformStack, rank int) (partial, bool, error) {
	if err := s.check(n); err != nil {
		return partial{}, false, err
	}
	dest, phi, ok := prepare(source, dest, &tr)
	if !ok {
		return partial{}, false, nil
	}
	if n == 1 {
		p, ok := place(dest, offset, angleOffset+phi, tr)
		return p, ok, nil
	}

	t, err := s.src.Table(n)
	if err != nil {
		return partial{}, false, err
	}
	m, ok, err := t.GetClosest(dest, rank)
	if err != nil {
		return partial{}, false, fmt.Errorf("closure: table %d: %w", n, err)
	}
	if !ok {
		return partial{}, false, nil
	}

	return s.split(dest, m, offset, n, angleOffset+phi, tr, 0)
}

// split closes [1, mid] towards the bisecting residue of m and
// [mid+1, n] from there on to dest. Both halves look up rank.
func (s *Solver) split(dest fragment.Fragment, m looptable.Match, offset, n int,
	angleOffset float64, tr geom.TransformStack, rank int) (partial, bool, error) {
	mid := fragment.MidLength(n)

	first, ok, err := s.close(nil, m.Fragment.PromoteMid(), offset, mid, angleOffset, tr, rank)
	if err != nil || !ok {
		return partial{}, false, err
	}
	midFrame := m.Fragment.Mid
	second, ok, err := s.close(&midFrame, dest, offset+mid, n-mid, 0, tr, rank)
	if err != nil || !ok {
		return partial{}, false, err
	}

	residues := make([]fragment.Residue, 0, n)
	residues = append(residues, first.residues...)
	residues = append(residues, second.residues...)

	return partial{residues: residues, torsion: first.torsion}, true, nil
}

// prepare re-bases dest into source (when given) and rotates it into the
// xy-plane, recording both moves in tr.
func prepare(source *fragment.Frame, dest fragment.Fragment, tr *geom.TransformStack) (fragment.Fragment, float64, bool) {
	if source != nil && !source.IsZero() {
		base, err := source.Orthonormalize()
		if err != nil {
			return dest, 0, false
		}
		dest = fragment.Fragment{End: base}.SetToOrigin(dest, fragment.EndFrame, tr)
	}
	phi := dest.RotateIntoXYPlane(tr)

	return dest, phi, true
}

// place puts the single residue of a length-1 range onto dest's end frame.
func place(dest fragment.Fragment, offset int, torsion float64, tr geom.TransformStack) (partial, bool) {
	end, err := dest.End.Orthonormalize()
	if err != nil {
		return partial{}, false
	}
	res := end.Backbone(offset).Apply(tr)

	return partial{residues: []fragment.Residue{res}, torsion: torsion}, true
}

// check rejects a missing table source and chain lengths outside
// [1, looptable.MaxChainLength].
func (s *Solver) check(n int) error {
	if s.src == nil {
		return ErrNilSource
	}
	if n < 1 {
		return fmt.Errorf("%w: %d", looptable.ErrBadChainLength, n)
	}
	if n > looptable.MaxChainLength {
		return fmt.Errorf("%w: %d steps, max %d", ErrChainTooLong, n, looptable.MaxChainLength)
	}

	return nil
}

// candidate wraps a fully placed range in a Candidate under a fresh ID. The
// torsion is reported in degrees within (-180, 180]; End and Closure are
// filled in by Solve.
func (s *Solver) candidate(p partial, deviation float64) Candidate {
	return Candidate{
		ID:           uuid.New().String(),
		Residues:     p.residues,
		Deviation:    deviation,
		StartTorsion: geom.Degrees(wrapAngle(p.torsion)),
	}
}

// wrapAngle maps a into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}

	return a
}

func (s *Solver) logf(format string, args ...interface{}) {
	if s.opts.Logger != nil {
		s.opts.Logger.Printf(format, args...)
	}
}
