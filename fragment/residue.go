package fragment

import (
	"math"

	"github.com/katalvlaran/ringloop/geom"
)

// Ideal backbone geometry (Engh & Huber). Lengths in Å, angles in degrees.
const (
	BondNCA = 1.458 // N–CA
	BondCAC = 1.525 // CA–C
	BondCN  = 1.329 // C–N (peptide bond)
	BondCO  = 1.231 // C=O

	AngleNCAC = 111.2 // N–CA–C
	AngleCACN = 116.2 // CA–C–N
	AngleCNCA = 121.7 // C–N–CA
	AngleCACO = 120.1 // CA–C=O

	Omega = 180.0 // trans peptide

	// Extended-strand dihedrals used by SetToSingleAminoAcid.
	DefaultPhi = -120.0
	DefaultPsi = 120.0
)

// Residue holds the backbone heavy atoms of one placed residue.
type Residue struct {
	Index int // position within the loop, 0-based
	N     geom.Vec3
	CA    geom.Vec3
	C     geom.Vec3
}

// Apply maps every atom of r through ts.
func (r Residue) Apply(ts geom.TransformStack) Residue {
	return Residue{
		Index: r.Index,
		N:     ts.Transform(r.N),
		CA:    ts.Transform(r.CA),
		C:     ts.Transform(r.C),
	}
}

// Frame returns the residue frame spanned by its N, CA and C atoms.
func (r Residue) Frame() Frame { return FrameFromBackbone(r.N, r.CA, r.C) }

// canonicalBackbone returns N, CA, C of residue 0 in the canonical frame.
func canonicalBackbone() (n, ca, c geom.Vec3) {
	res := Canonical().Backbone(0)

	return res.N, res.CA, res.C
}

// NewSingleResidue returns the closed-form fragment of chain length 1: the
// frame of residue 1 seen from residue 0 when residue 0 has the given psi and
// residue 1 the given phi (both in degrees), with a trans peptide in between.
// Mid equals End.
func NewSingleResidue(phi, psi float64) Fragment {
	n0, ca0, c0 := canonicalBackbone()
	n1 := geom.PlaceAtom(n0, ca0, c0, BondCN, geom.Radians(AngleCACN), geom.Radians(psi))
	ca1 := geom.PlaceAtom(ca0, c0, n1, BondNCA, geom.Radians(AngleCNCA), geom.Radians(Omega))
	c1 := geom.PlaceAtom(c0, n1, ca1, BondCAC, geom.Radians(AngleNCAC), geom.Radians(phi))

	end := FrameFromBackbone(n1, ca1, c1)

	return Fragment{End: end, Mid: end}
}

// NextN returns where the N atom of the residue following r sits when r has
// the given psi (degrees). Used to orient the carbonyl oxygen.
func NextN(r Residue, psi float64) geom.Vec3 {
	return geom.PlaceAtom(r.N, r.CA, r.C, BondCN, geom.Radians(AngleCACN), geom.Radians(psi))
}

// CarbonylO places the backbone O of r in the peptide plane, anti to the next
// residue's N.
func CarbonylO(r Residue, nextN geom.Vec3) geom.Vec3 {
	return geom.PlaceAtom(nextN, r.CA, r.C, BondCO, geom.Radians(AngleCACO), math.Pi)
}
