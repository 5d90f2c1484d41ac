package looptable

import (
	"errors"

	"github.com/katalvlaran/ringloop/fragment"
)

const (
	// BinCount is the number of ‖endPoint‖ bins per table.
	BinCount = 128

	// QuantScale is the largest quantisation code. It is deliberately below
	// the uint16 maximum so existing table files stay bit-compatible.
	QuantScale = 65500

	// MaxChainLength is the longest chain a table (and a closure) may span.
	MaxChainLength = 64

	// SoftClosureMaxLength is the default longest chain length whose matches
	// are soft-closed onto the query end point.
	SoftClosureMaxLength = 5

	// NoSoftClosure in Options.SoftClosure turns soft closure off for every
	// table of a Library. Zero there means SoftClosureMaxLength.
	NoSoftClosure = -1

	// MinCandidateFraction: a lookup keeps widening its bin window until it
	// has gathered Size()/MinCandidateFraction candidates.
	MinCandidateFraction = 5

	// DeviationSpread bounds GetNClosest results to this multiple of the best
	// deviation found.
	DeviationSpread = 20

	// EdgeRadius is the bin window every lookup scans regardless of how full
	// the query bin is. Tables decoded from disk carry quantised end points
	// whose norm can cross a bin edge by a fraction of a step, so the direct
	// neighbours are always searched.
	EdgeRadius = 1
)

// Sentinel errors returned by the looptable package.
var (
	// ErrEmptyTable indicates a lookup or draw on a table without fragments.
	ErrEmptyTable = errors.New("looptable: empty table")

	// ErrUnadjusted indicates staged fragments that AdjustTable has not binned.
	ErrUnadjusted = errors.New("looptable: table has unbinned fragments")

	// ErrBadChainLength indicates a chain length outside [1, MaxChainLength]
	// or source tables whose lengths do not add up.
	ErrBadChainLength = errors.New("looptable: invalid chain length")

	// ErrBadBinCount indicates a table file written with a different bin count.
	ErrBadBinCount = errors.New("looptable: bin count mismatch")

	// ErrOutOfBounds indicates a value outside the recorded per-axis bounds
	// at quantisation time.
	ErrOutOfBounds = errors.New("looptable: value outside quantisation bounds")

	// ErrNonFinite indicates a fragment with NaN or infinite components.
	ErrNonFinite = errors.New("looptable: non-finite fragment")

	// ErrInvalidCount indicates a non-positive sample or result count.
	ErrInvalidCount = errors.New("looptable: count must be positive")

	// ErrTableMissing indicates a table file that has not been built yet.
	ErrTableMissing = errors.New("looptable: table file missing")
)

// Match is one lookup result: a copy of a stored fragment, its deviation from
// the query and where it lives in the table.
type Match struct {
	Fragment   fragment.Fragment
	Deviation  float64
	Bin        int
	Offset     int  // position within Bin
	SoftClosed bool // Fragment was soft-closed onto the query end point
}

// Bounds are the per-axis extremes of the six fragment vectors, in
// fragment.Vectors order.
type Bounds struct {
	Min [fragment.VectorCount][3]float64
	Max [fragment.VectorCount][3]float64
}

// TableOption customises lookup behaviour of a Table.
type TableOption func(*Table)

// WithWeights sets the deviation weights used by lookups and Cluster.
func WithWeights(w fragment.Weights) TableOption {
	return func(t *Table) { t.weights = w }
}

// WithSoftClosure sets the longest chain length whose matches are soft-closed.
// Zero disables soft closure.
func WithSoftClosure(maxLength int) TableOption {
	return func(t *Table) { t.softClosureMax = maxLength }
}
