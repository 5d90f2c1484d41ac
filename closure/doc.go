// Package closure closes backbone gaps by recursive divide-and-conquer over
// loop tables.
//
// 🚀 How does it work?
//
//	Given the frame of the residue before a gap and the frame of the residue
//	after it, the gap of n steps is described by one Fragment: the end frame
//	seen from the start frame. The Solver asks the length-n table for the
//	stored fragment ending closest to that target, takes its bisecting residue
//	as a new intermediate target, and recurses on both halves:
//
//	    start ──[1 … ceil(n/2)]──▶ mid ──[ceil(n/2)+1 … n]──▶ end
//
//	Each level halves n, so the recursion is O(log n) deep and only the chain
//	lengths in looptable.Lengths(n) are ever needed. A half of length 1 is
//	placed in closed form from its target frame.
//
//	A geom.TransformStack is threaded through the recursion. Every sub-problem
//	is solved in its own canonical frame, rotated about +x so the target lies
//	in the xy-plane (that rotation is a free change of the preceding ψ), and
//	the stack carries the way back to world coordinates.
//
// ✨ Entry points:
//
//   - Solve            — gap residues between two anchors, ranked candidates
//   - RingClosureBase  — breadth search: num matches × depth ranks per level
//   - RingClosure      — a single deterministic closure for one rank
//   - CalculateLoop    — typed backbone atoms with B-factors for a candidate
//
// ⚙️ Usage:
//
//	lib, _ := looptable.NewLibrary(looptable.DefaultOptions())
//	s := closure.NewSolver(lib, closure.WithBreadth(5, 2))
//	cands, err := s.Solve(startAnchor, endAnchor, 6)
//	loop, err := closure.CalculateLoop(cands[0], []string{"GLY", "SER", ...})
//
// Tables are read-only once loaded, so one Solver may serve concurrent
// callers as long as its TableSource can.
package closure
