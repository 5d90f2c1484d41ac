// Package fragment describes the rigid-body end state of a short stretch of
// protein backbone and how such stretches compose.
//
// A Fragment of chain length k answers one question: if residue 0 sits in the
// canonical frame (CA at the origin, CA→C along +x, N in the xy-plane with
// positive y), where does the frame of residue k end up, and where is the
// frame of the bisecting residue ceil(k/2)? Each answer is a Frame (a point,
// a direction and a normal), so a Fragment is six 3-vectors:
//
//	End.Origin  End.Direction  End.Normal   (endPoint, endDirection, endNormal)
//	Mid.Origin  Mid.Direction  Mid.Normal   (midPoint, midDirection, midNormal)
//
// Fragments are values. Every method either returns a new Fragment or
// mutates only its receiver; nothing is shared.
//
// Composition:
//
//	a := fragment.NewSingleResidue(phi1, psi1)     // k = 1
//	b := fragment.NewSingleResidue(phi2, psi2)     // k = 1
//	ab := a.Concatenate(b, 1, 2)                   // k = 2, Mid = a.End
//
// Concatenation is a rigid-body product and therefore associative on End up to
// floating-point rounding.
package fragment
