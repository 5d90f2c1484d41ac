package geom

import "math"

// PlaceAtom returns the position of atom d such that |cd| = bond, the angle
// b-c-d equals angle and the torsion a-b-c-d equals torsion (angles in
// radians). This is the natural extension reference frame construction used
// to grow a backbone one atom at a time.
//
// a, b and c must not be collinear.
func PlaceAtom(a, b, c Vec3, bond, angle, torsion float64) Vec3 {
	bc := c.Sub(b).Unit()
	n := b.Sub(a).Cross(bc).Unit()
	m := n.Cross(bc)

	sa, ca := math.Sincos(angle)
	st, ct := math.Sincos(torsion)
	// local offset in the (bc, m, n) basis
	dx := -bond * ca
	dy := bond * sa * ct
	dz := bond * sa * st

	return c.Add(bc.Scale(dx)).Add(m.Scale(dy)).Add(n.Scale(dz))
}
