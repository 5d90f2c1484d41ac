package looptable

import (
	"container/heap"

	"github.com/katalvlaran/ringloop/fragment"
)

// GetClosest returns the rank-th best match (0 = best) for dest, judged by
// deviation of the end frames. ok is false when the search window gathered
// no more than rank candidates; that is a sparse table, not an error.
//
// Short chains (ChainLength ≤ the soft-closure limit) come back soft-closed
// onto dest's end point. The stored fragment is never modified.
func (t *Table) GetClosest(dest fragment.Fragment, rank int) (Match, bool, error) {
	if rank < 0 {
		return Match{}, false, ErrInvalidCount
	}
	if err := t.checkQueryable(); err != nil {
		return Match{}, false, err
	}

	// the window can never hold more than the whole table
	if rank >= t.Size() {
		return Match{}, false, nil
	}
	pq := t.candidates(dest, rank+1)
	if pq.Len() <= rank {
		return Match{}, false, nil
	}
	var item *matchItem
	var i int
	for i = 0; i <= rank; i++ {
		item = heap.Pop(&pq).(*matchItem)
	}

	return t.finish(item, dest), true, nil
}

// GetNClosest returns up to count matches for dest in ascending deviation,
// keeping only those within DeviationSpread times the best deviation found.
// An empty result means the search window held no candidates.
func (t *Table) GetNClosest(dest fragment.Fragment, count int) ([]Match, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if err := t.checkQueryable(); err != nil {
		return nil, err
	}

	pq := t.candidates(dest, count)
	if pq.Len() == 0 {
		return nil, nil
	}

	out := make([]Match, 0, min(count, pq.Len()))
	best := pq[0].dev
	limit := best * DeviationSpread
	for pq.Len() > 0 && len(out) < count {
		item := heap.Pop(&pq).(*matchItem)
		if item.dev > limit {
			break
		}
		out = append(out, t.finish(item, dest))
	}

	return out, nil
}

// checkQueryable enforces the lookup preconditions.
func (t *Table) checkQueryable() error {
	if t.Size() == 0 {
		return ErrEmptyTable
	}
	if !t.Adjusted() {
		return ErrUnadjusted
	}

	return nil
}

// candidates gathers the search window around dest's bin into a min-heap.
// Starting from the query bin it adds bins index-1, index+1, index-2, ...
// until the heap holds at least max(Size()/MinCandidateFraction, need)
// fragments or the radius exceeds BinCount/2. The EdgeRadius neighbours are
// always included.
//
// Policy: need is capped at Size(); asking for more than the table holds
// just widens the window to its limit.
//
// Complexity: O(w·c) time for w gathered fragments and c the cost of one
// Deviation, plus O(w) for heap.Init; O(w) space.
func (t *Table) candidates(dest fragment.Fragment, need int) matchPQ {
	want := t.Size() / MinCandidateFraction
	if need > want {
		want = need
	}
	if want > t.Size() {
		want = t.Size()
	}

	idx := t.binIndex(dest.End.Origin.Norm())
	pq := make(matchPQ, 0, want)
	pq = t.pushBin(pq, idx, dest)

	var r int
	for r = 1; (r <= EdgeRadius || len(pq) < want) && r <= BinCount/2; r++ {
		pq = t.pushBin(pq, idx-r, dest)
		pq = t.pushBin(pq, idx+r, dest)
	}
	heap.Init(&pq)

	return pq
}

// pushBin appends every fragment of bin b with its deviation from dest.
func (t *Table) pushBin(pq matchPQ, b int, dest fragment.Fragment) matchPQ {
	if b < 0 || b >= BinCount {
		return pq
	}
	var i int
	for i = t.offsets[b]; i < t.offsets[b+1]; i++ {
		pq = append(pq, &matchItem{
			index: i,
			bin:   b,
			dev:   t.arena[i].Deviation(dest, t.weights),
		})
	}

	return pq
}

// finish copies the arena entry out and applies soft closure when due.
func (t *Table) finish(item *matchItem, dest fragment.Fragment) Match {
	m := Match{
		Fragment:  t.arena[item.index],
		Deviation: item.dev,
		Bin:       item.bin,
		Offset:    item.index - t.offsets[item.bin],
	}
	if t.chainLength <= t.softClosureMax {
		m.Fragment = m.Fragment.SoftClose(dest.End.Origin)
		m.SoftClosed = true
	}

	return m
}

// matchItem is one heap entry: an arena index and its deviation.
type matchItem struct {
	index int     // arena index
	bin   int     // bin the entry lives in
	dev   float64 // deviation from the query
}

// matchPQ is a min-heap of *matchItem ordered by ascending deviation; ties
// fall back to arena order so results are deterministic.
type matchPQ []*matchItem

// Len returns the number of items in the heap.
func (pq matchPQ) Len() int { return len(pq) }

// Less orders by deviation, then by arena index.
func (pq matchPQ) Less(i, j int) bool {
	if pq[i].dev != pq[j].dev {
		return pq[i].dev < pq[j].dev
	}

	return pq[i].index < pq[j].index
}

// Swap swaps two elements in the heap.
func (pq matchPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push adds x, which must be a *matchItem.
func (pq *matchPQ) Push(x interface{}) { *pq = append(*pq, x.(*matchItem)) }

// Pop removes and returns the last element; heap.Pop handles ordering.
func (pq *matchPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
