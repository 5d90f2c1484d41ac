package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the tolerance below which lengths are treated as zero.
const Epsilon = 1e-12

// Vec3 is a point or direction in 3-D space. Components stay addressable by
// index for the table codec; arithmetic goes through gonum's r3.
type Vec3 [3]float64

// R3 converts v to gonum's r3.Vec.
func (v Vec3) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// FromR3 converts a gonum r3.Vec to a Vec3.
func FromR3(p r3.Vec) Vec3 { return Vec3{p.X, p.Y, p.Z} }

// Common axes of the canonical frame.
var (
	Zero  = Vec3{0, 0, 0}
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

// X returns the first component.
func (v Vec3) X() float64 { return v[0] }

// Y returns the second component.
func (v Vec3) Y() float64 { return v[1] }

// Z returns the third component.
func (v Vec3) Z() float64 { return v[2] }

// Add returns v+w.
func (v Vec3) Add(w Vec3) Vec3 { return FromR3(r3.Add(v.R3(), w.R3())) }

// Sub returns v-w.
func (v Vec3) Sub(w Vec3) Vec3 { return FromR3(r3.Sub(v.R3(), w.R3())) }

// Scale returns s·v.
func (v Vec3) Scale(s float64) Vec3 { return FromR3(r3.Scale(s, v.R3())) }

// Dot returns the scalar product.
func (v Vec3) Dot(w Vec3) float64 { return r3.Dot(v.R3(), w.R3()) }

// Cross returns the right-handed vector product v×w.
func (v Vec3) Cross(w Vec3) Vec3 { return FromR3(r3.Cross(v.R3(), w.R3())) }

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 { return r3.Norm(v.R3()) }

// Dist returns the Euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 { return r3.Norm(r3.Sub(v.R3(), w.R3())) }

// Unit returns v scaled to length 1. A zero-length vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	if v.Norm() < Epsilon {
		return v
	}

	return FromR3(r3.Unit(v.R3()))
}

// IsZero reports whether every component is within Epsilon of zero.
func (v Vec3) IsZero() bool { return v.Norm() < Epsilon }

// IsFinite reports whether no component is NaN or ±Inf.
func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}

	return true
}

// Lerp returns v + t·(w−v).
func (v Vec3) Lerp(w Vec3, t float64) Vec3 { return v.Add(w.Sub(v).Scale(t)) }

// Reject returns the component of v orthogonal to the unit vector axis.
func (v Vec3) Reject(axis Vec3) Vec3 { return v.Sub(axis.Scale(v.Dot(axis))) }

// Angle returns the angle in radians at vertex b formed by a-b-c.
func Angle(a, b, c Vec3) float64 {
	u := a.Sub(b).Unit()
	w := c.Sub(b).Unit()
	cos := u.Dot(w)
	// clamp against rounding just outside [-1,1]
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos)
}

// Dihedral returns the torsion angle in radians of a-b-c-d, in (-π, π].
func Dihedral(a, b, c, d Vec3) float64 {
	b0 := a.Sub(b)
	b1 := c.Sub(b).Unit()
	b2 := d.Sub(c)
	v := b0.Reject(b1)
	w := b2.Reject(b1)
	x := v.Dot(w)
	y := b1.Cross(v).Dot(w)

	return math.Atan2(y, x)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
