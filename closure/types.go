package closure

import (
	"errors"
	"log"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/geom"
	"github.com/katalvlaran/ringloop/looptable"
)

// Sentinel errors returned by the closure package.
var (
	// ErrChainTooLong indicates a gap whose step count exceeds
	// looptable.MaxChainLength.
	ErrChainTooLong = errors.New("closure: chain too long")

	// ErrBadGap indicates a gap of fewer than one residue.
	ErrBadGap = errors.New("closure: gap must be at least one residue")

	// ErrSequenceLength indicates a residue type sequence that does not match
	// the candidate's residue count.
	ErrSequenceLength = errors.New("closure: sequence length does not match loop")

	// ErrNilSource indicates a Solver without a table source.
	ErrNilSource = errors.New("closure: nil table source")
)

const (
	// MaxNum caps the top-level matches a Solver takes.
	MaxNum = 1000

	// MaxDepth caps the sub-problem ranks tried per top-level match.
	MaxDepth = 100
)

// TableSource hands out loop tables by chain length. *looptable.Library
// satisfies it.
type TableSource interface {
	Table(n int) (*looptable.Table, error)
}

// Options configures a Solver.
//
//   - Num    — matches taken from the top-level table (breadth).
//   - Depth  — ranks tried for the sub-problems of every top-level match.
//   - Logger — optional trace of the search (nil ⇒ silent).
type Options struct {
	Num    int
	Depth  int
	Logger *log.Logger
}

// DefaultOptions returns five matches with two ranks each.
func DefaultOptions() Options {
	return Options{Num: 5, Depth: 2}
}

// Option customises Options.
type Option func(*Options)

// WithBreadth sets the number of top-level matches and sub-problem ranks.
// Values are clamped to [1, MaxNum] and [1, MaxDepth].
func WithBreadth(num, depth int) Option {
	return func(o *Options) {
		o.Num = num
		o.Depth = depth
	}
}

// clamp applies the WithBreadth limits to o.
func (o *Options) clamp() {
	o.Num = min(max(o.Num, 1), MaxNum)
	o.Depth = min(max(o.Depth, 1), MaxDepth)
}

// WithLogger traces the search to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Candidate is one closed loop in world coordinates.
type Candidate struct {
	ID string `json:"id"`

	// Residues are the placed loop residues in chain order.
	Residues []fragment.Residue `json:"residues"`

	// End is the end anchor residue as reconstructed by the closure. The loop
	// is bonded to it.
	End fragment.Residue `json:"-"`

	// Deviation of the top-level table match from the target end frame.
	Deviation float64 `json:"deviation"`

	// StartTorsion is the rotation, in degrees, applied about the start
	// anchor's CA–C bond, i.e. the change of its ψ.
	StartTorsion float64 `json:"start_torsion"`

	// Closure is |‖C(last) − N(end)‖ − fragment.BondCN| in Å: how far the
	// final peptide bond is from ideal.
	Closure float64 `json:"closure"`
}

// Atom is one placed backbone atom.
type Atom struct {
	Name     string    `json:"name"`
	Position geom.Vec3 `json:"position"`
	BFactor  float64   `json:"b_factor"`
}

// LoopResidue is a typed residue of a Loop.
type LoopResidue struct {
	Index int    `json:"index"`
	Type  string `json:"type"`
	Atoms []Atom `json:"atoms"`
}

// Loop is a candidate turned into typed backbone atoms.
type Loop struct {
	ID       string        `json:"id"`
	Residues []LoopResidue `json:"residues"`
	Quality  float64       `json:"quality"`
	Closure  float64       `json:"closure"`
}

// B-factor heuristic: anchors are well determined, the loop middle is not.
const (
	AnchorBFactor = 10.0
	MidBFactor    = 60.0
)
