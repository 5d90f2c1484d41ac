// Package ringloop closes gaps in protein backbones by divide-and-conquer
// lookups in precomputed fragment tables.
//
// 🚀 What is ringloop?
//
//	Given the residue before a gap and the residue after it, ringloop proposes
//	backbone conformations (N, CA, C, O) for the residues in between. It does
//	not enumerate dihedrals; it splits the gap in half, asks a table which
//	stored fragment ends closest to the target, and recurses on both halves.
//
//		• geom       – vectors, rotations, TransformStack, NeRF placement
//		• fragment   – residue frames and the six-vector fragment summary
//		• rama       – Ramachandran samplers for building tables
//		• looptable  – binned fragment tables, lookup, clustering, persistence
//		• closure    – the recursive solver and loop assembly
//		• api        – HTTP service (gin)
//
// ✨ Binaries:
//
//   - cmd/looptable – build and inspect table files
//   - cmd/loopd     – serve closures over HTTP
//
// ⚙️ Quick start:
//
//	looptable -dir ./tables -max 16 build
//	loopd -dir ./tables
package ringloop
