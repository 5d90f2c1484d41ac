package looptable

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/katalvlaran/ringloop/fragment"
	"github.com/katalvlaran/ringloop/rama"
)

// Options configures a Library.
//
//   - Dir           — directory holding looptable_NN.lt files ("" ⇒ memory only).
//   - BaseSamples   — single residues drawn for the length-1 table.
//   - Samples1      — draws from the first-half table per Concatenate (n1).
//   - Samples2      — draws from the second-half table per first draw (n2).
//   - ClusterCutoff — Cluster cutoff applied after building (≤0 ⇒ no clustering).
//   - Seed          — base seed; each length derives its own stream (0 ⇒ fixed default).
//   - Sampler       — Ramachandran source for length-1 draws (nil ⇒ rama.Default()).
//   - BuildMissing  — build tables absent from Dir instead of failing.
//   - Persist       — write tables built on demand back into Dir.
//   - Weights       — deviation weights for every table (zero ⇒ fragment.DefaultWeights).
//   - SoftClosure   — longest soft-closed chain length (0 ⇒ SoftClosureMaxLength,
//     NoSoftClosure ⇒ off).
//   - Logger        — optional progress log (nil ⇒ silent).
type Options struct {
	Dir           string
	BaseSamples   int
	Samples1      int
	Samples2      int
	ClusterCutoff float64
	Seed          int64
	Sampler       rama.Sampler
	BuildMissing  bool
	Persist       bool
	Weights       fragment.Weights
	SoftClosure   int
	Logger        *log.Logger
}

// DefaultOptions returns a memory-only library that builds what it needs.
func DefaultOptions() Options {
	return Options{
		BaseSamples:   1000,
		Samples1:      100,
		Samples2:      100,
		ClusterCutoff: 0.05,
		Seed:          0,
		Sampler:       rama.Default(),
		BuildMissing:  true,
		Weights:       fragment.DefaultWeights,
		SoftClosure:   SoftClosureMaxLength,
	}
}

// TableInfo summarises a loaded table.
type TableInfo struct {
	ChainLength int     `json:"chain_length"`
	Size        int     `json:"size"`
	Lower       float64 `json:"lower_limit"`
	Upper       float64 `json:"upper_limit"`
	Step        float64 `json:"step"`
	Populated   int     `json:"populated_bins"`
}

// Library hands out tables by chain length, loading them from Dir or building
// them on first use and caching the result. Cached tables are read-only, so a
// Library may be shared between goroutines.
type Library struct {
	opts   Options
	mu     sync.RWMutex
	tables map[int]*Table
}

// NewLibrary validates opts and returns an empty library.
func NewLibrary(opts Options) (*Library, error) {
	if opts.BuildMissing || opts.Persist {
		if opts.BaseSamples <= 0 || opts.Samples1 <= 0 || opts.Samples2 <= 0 {
			return nil, fmt.Errorf("%w: samples must be positive to build tables", ErrInvalidCount)
		}
	}
	if opts.Persist && opts.Dir == "" {
		return nil, errors.New("looptable: Persist requires Dir")
	}
	if opts.Sampler == nil {
		opts.Sampler = rama.Default()
	}
	if opts.Weights == (fragment.Weights{}) {
		opts.Weights = fragment.DefaultWeights
	}
	if opts.SoftClosure == 0 {
		opts.SoftClosure = SoftClosureMaxLength
	}

	return &Library{opts: opts, tables: make(map[int]*Table)}, nil
}

// TablePath returns the file a table of chain length n is stored in.
func TablePath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("looptable_%02d.lt", n))
}

// Lengths returns, ascending, every chain length the recursive halving of n
// touches, down to and including the base length 1. These are exactly the
// tables a closure of n residues queries plus the ones they are built from.
func Lengths(n int) []int {
	seen := make(map[int]bool)
	var walk func(k int)
	walk = func(k int) {
		if k < 1 || seen[k] {
			return
		}
		seen[k] = true
		if k > 1 {
			mid := fragment.MidLength(k)
			walk(mid)
			walk(k - mid)
		}
	}
	walk(n)

	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)

	return out
}

// Add registers an already built table, replacing any cached one.
func (l *Library) Add(t *Table) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tables[t.ChainLength()] = t
}

// Table returns the table of chain length n.
func (l *Library) Table(n int) (*Table, error) {
	if n < 1 || n > MaxChainLength {
		return nil, fmt.Errorf("%w: %d", ErrBadChainLength, n)
	}

	l.mu.RLock()
	t, ok := l.tables[n]
	l.mu.RUnlock()
	if ok {
		return t, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tableLocked(n)
}

// Preload makes sure every table a closure of n residues needs is cached.
func (l *Library) Preload(n int) error {
	for _, k := range Lengths(n) {
		if _, err := l.Table(k); err != nil {
			return err
		}
	}

	return nil
}

// tableLocked resolves n from cache, disk or a fresh build. l.mu is held.
func (l *Library) tableLocked(n int) (*Table, error) {
	if t, ok := l.tables[n]; ok {
		return t, nil
	}

	if l.opts.Dir != "" {
		t := l.newTable(n)
		err := t.ReadFile(TablePath(l.opts.Dir, n))
		switch {
		case err == nil:
			if t.ChainLength() != n {
				return nil, fmt.Errorf("%w: %s holds length %d", ErrBadChainLength, TablePath(l.opts.Dir, n), t.ChainLength())
			}
			l.logf("loaded table %d (%d fragments)", n, t.Size())
			l.tables[n] = t
			return t, nil
		case !errors.Is(err, ErrTableMissing) || !l.opts.BuildMissing:
			return nil, err
		}
	} else if !l.opts.BuildMissing {
		return nil, fmt.Errorf("%w: length %d (no table directory configured)", ErrTableMissing, n)
	}

	t, err := l.buildLocked(n)
	if err != nil {
		return nil, err
	}
	if l.opts.Persist {
		if err = t.WriteFile(TablePath(l.opts.Dir, n)); err != nil {
			return nil, err
		}
		l.logf("wrote %s", TablePath(l.opts.Dir, n))
	}
	l.tables[n] = t

	return t, nil
}

// buildLocked builds table n from its halves. l.mu is held.
func (l *Library) buildLocked(n int) (*Table, error) {
	start := time.Now()
	rng := lengthRNG(l.opts.Seed, n)
	t := l.newTable(n)

	if n == 1 {
		if err := t.BuildBase(l.opts.BaseSamples, rng, l.opts.Sampler); err != nil {
			return nil, err
		}
	} else {
		mid := fragment.MidLength(n)
		src1, err := l.tableLocked(mid)
		if err != nil {
			return nil, err
		}
		src2, err := l.tableLocked(n - mid)
		if err != nil {
			return nil, err
		}
		if err = t.Concatenate(src1, src2, l.opts.Samples1, l.opts.Samples2, rng, l.opts.Sampler); err != nil {
			return nil, err
		}
	}

	removed := 0
	if l.opts.ClusterCutoff > 0 {
		var err error
		if removed, err = t.Cluster(l.opts.ClusterCutoff); err != nil {
			return nil, err
		}
	}
	l.logf("built table %d: %d fragments (%d clustered away) in %s", n, t.Size(), removed, time.Since(start).Round(time.Millisecond))

	return t, nil
}

// Build builds and, when Dir is set, writes every table from 1 to maxLength
// that is not already cached. Existing files are loaded instead of rebuilt
// unless overwrite is true.
func (l *Library) Build(ctx context.Context, maxLength int, overwrite bool) error {
	if maxLength < 1 || maxLength > MaxChainLength {
		return fmt.Errorf("%w: %d", ErrBadChainLength, maxLength)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for n = 1; n <= maxLength; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := l.tables[n]; ok && !overwrite {
			continue
		}
		if l.opts.Dir != "" && !overwrite {
			if _, err := os.Stat(TablePath(l.opts.Dir, n)); err == nil {
				if _, err = l.tableLocked(n); err != nil {
					return err
				}
				continue
			}
		}

		t, err := l.buildLocked(n)
		if err != nil {
			return err
		}
		if l.opts.Dir != "" {
			if err = t.WriteFile(TablePath(l.opts.Dir, n)); err != nil {
				return err
			}
			l.logf("wrote %s", TablePath(l.opts.Dir, n))
		}
		l.tables[n] = t
	}

	return nil
}

// Loaded describes every cached table, ordered by chain length.
func (l *Library) Loaded() []TableInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]TableInfo, 0, len(l.tables))
	for _, t := range l.tables {
		out = append(out, Describe(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainLength < out[j].ChainLength })

	return out
}

// Describe summarises t.
func Describe(t *Table) TableInfo {
	lo, hi := t.Limits()
	info := TableInfo{ChainLength: t.ChainLength(), Size: t.Size(), Lower: lo, Upper: hi, Step: t.Step()}
	var b int
	for b = 0; b < BinCount; b++ {
		if t.BinSize(b) > 0 {
			info.Populated++
		}
	}

	return info
}

// newTable returns an empty length-n table carrying the library's lookup
// options, ready to be read or built into.
func (l *Library) newTable(n int) *Table {
	return NewTable(n, WithWeights(l.opts.Weights), WithSoftClosure(l.opts.SoftClosure))
}

func (l *Library) logf(format string, args ...interface{}) {
	if l.opts.Logger != nil {
		l.opts.Logger.Printf(format, args...)
	}
}
