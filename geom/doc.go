// Package geom provides the small amount of 3-D geometry the loop closure
// engine is built on: fixed-size vectors and quaternion rotations over
// gonum's spatial/r3, a composable rigid transform stack and natural-extension
// atom placement.
//
// 🚀 What lives here?
//
//	• Vec3           — value-typed 3-vector with the usual arithmetic
//	• Rotation       — unit quaternion, convertible to gonum r3.Rotation
//	• TransformStack — accumulated rigid transform p ↦ R·p + t
//	• PlaceAtom      — place atom D from A, B, C, a bond, an angle, a torsion
//
// All types are plain values: nothing here allocates on the heap, nothing is
// shared, and every method is safe to call from any goroutine on its own copy.
//
// Composition order:
//
//	ts.AddTrans(t)          // applied to a point LAST
//	ts.AddAlignVectors(a,b) // applied to a point FIRST
//
// The most recently added operation acts on the point first, exactly as in
// the product R1·R2·…·Rk·p. This lets a recursive caller push
// "how do I get from this sub-problem's local frame back to the caller's
// frame" while descending and apply the whole chain once at the leaves.
package geom
