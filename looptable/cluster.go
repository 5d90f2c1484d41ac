package looptable

import "github.com/katalvlaran/ringloop/fragment"

// Cluster removes near-duplicates inside each bin: walking a bin in order, a
// fragment whose deviation from an already kept representative is ≤ cutoff is
// dropped. Limits and bounds are left untouched, so every remaining fragment
// stays in its bin. It returns the number of fragments removed.
//
// Complexity: O(Σ nᵦ²) over bins b.
func (t *Table) Cluster(cutoff float64) (int, error) {
	if !t.Adjusted() {
		return 0, ErrUnadjusted
	}
	if cutoff < 0 || len(t.arena) == 0 {
		return 0, nil
	}

	kept := make([]fragment.Fragment, 0, len(t.arena))
	var offsets [BinCount + 1]int
	var b, i, j int
	for b = 0; b < BinCount; b++ {
		offsets[b] = len(kept)
		start := len(kept)
		for i = t.offsets[b]; i < t.offsets[b+1]; i++ {
			f := t.arena[i]
			dup := false
			for j = start; j < len(kept); j++ {
				if f.Deviation(kept[j], t.weights) <= cutoff {
					dup = true
					break
				}
			}
			if !dup {
				kept = append(kept, f)
			}
		}
	}
	offsets[BinCount] = len(kept)

	removed := len(t.arena) - len(kept)
	t.arena = kept
	t.offsets = offsets

	return removed, nil
}
