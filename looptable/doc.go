// Package looptable stores statistical libraries of backbone fragments and
// answers "which stored fragment ends closest to here?" queries against them.
//
// 🚀 What is a loop table?
//
//	A Table holds many fragment.Fragment values of one chain length k. Each
//	fragment summarises where a k-residue stretch of backbone can end up when
//	it starts in the canonical frame. Fragments are binned by the length of
//	their end point ‖endPoint‖ into BinCount (128) equally wide bins between
//	the smallest and largest length ever stored.
//
// ✨ What can it do?
//
//   - Store / AdjustTable — stage fragments, then bin them once
//   - Concatenate        — Monte-Carlo build of a k-table from two shorter ones
//   - GetClosest         — the rank-th best match for a target end frame
//   - GetNClosest        — up to N good matches (within 20× of the best)
//   - Cluster            — drop near-duplicates within each bin
//   - Read / Write       — 16-bit quantised binary persistence
//   - Library            — lazy, cached access to tables on disk
//
// ⚙️ Usage:
//
//	rng := rand.New(rand.NewSource(1))
//	one := looptable.NewTable(1)
//	_ = one.BuildBase(500, rng, rama.Default())
//
//	two := looptable.NewTable(2)
//	_ = two.Concatenate(one, one, 100, 100, rng, rama.Default())
//
//	m, ok, err := two.GetClosest(target, 0)
//
// Lookups never modify a table: once AdjustTable (or Read) has run a Table is
// read-only and may be shared between goroutines. Building a table is
// stochastic; pass a seeded *rand.Rand to make it reproducible.
//
// File format (little-endian, no magic number):
//
//	uint32            chainLength
//	uint32            binCount (must be 128)
//	uint32[binCount]  per-bin entry count
//	float64           lowerLimit
//	float64           upperLimit
//	float64[6][3]     per-axis max (endPoint, endDirection, endNormal, midPoint, midDirection, midNormal)
//	float64[6][3]     per-axis min
//	uint16[6][3]      one quantised record per fragment, bin by bin
package looptable
