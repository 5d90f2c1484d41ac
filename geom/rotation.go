package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is a unit-quaternion rotation. It shares its representation with
// gonum's r3.Rotation, so the two convert freely.
type Rotation r3.Rotation

// Identity returns the rotation that leaves every vector unchanged.
func Identity() Rotation { return Rotation{Real: 1} }

// Apply rotates v.
func (r Rotation) Apply(v Vec3) Vec3 { return FromR3(r3.Rotation(r).Rotate(v.R3())) }

// Mul returns the rotation applying inner first and r second, the analogue of
// the matrix product R·S. The result is renormalized to curb drift over long
// chains.
func (r Rotation) Mul(inner Rotation) Rotation {
	return normalize(quat.Mul(quat.Number(r), quat.Number(inner)))
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation { return Rotation(quat.Conj(quat.Number(r))) }

// String renders the quaternion as (w; x, y, z).
func (r Rotation) String() string {
	return fmt.Sprintf("(%.6g; %.6g, %.6g, %.6g)", r.Real, r.Imag, r.Jmag, r.Kmag)
}

// normalize rescales q to unit length. A zero quaternion becomes the identity.
func normalize(q quat.Number) Rotation {
	n := quat.Abs(q)
	if n < Epsilon {
		return Identity()
	}

	return Rotation(quat.Scale(1/n, q))
}

// RotationX returns the right-handed rotation by angle radians about +x.
func RotationX(angle float64) Rotation {
	return Rotation(r3.NewRotation(angle, UnitX.R3()))
}

// AxisAngle returns the right-handed rotation by angle radians about axis.
// A zero axis yields the identity.
func AxisAngle(axis Vec3, angle float64) Rotation {
	if axis.IsZero() {
		return Identity()
	}

	return Rotation(r3.NewRotation(angle, axis.Unit().R3()))
}

// AlignVectors returns the minimal rotation taking the direction of a onto
// the direction of b. Zero-length inputs yield the identity. When a and b are
// antiparallel the result is a half turn about an axis perpendicular to a.
func AlignVectors(a, b Vec3) Rotation {
	if a.IsZero() || b.IsZero() {
		return Identity()
	}
	u := a.Unit()
	w := b.Unit()
	axis := u.Cross(w)
	c := u.Dot(w)

	if axis.Norm() < 1e-9 {
		if c > 0 {
			return Identity()
		}

		return AxisAngle(perpendicular(u), math.Pi)
	}

	return AxisAngle(axis, math.Atan2(axis.Norm(), c))
}

// FrameRotation returns the rotation taking +x onto dir and +y onto normal,
// and hence +z onto dir×normal. dir and normal must be orthonormal.
func FrameRotation(dir, normal Vec3) Rotation {
	first := AlignVectors(UnitX, dir)
	y := first.Apply(UnitY)
	d := dir.Unit()
	// signed angle about dir carrying y onto normal
	angle := math.Atan2(d.Dot(y.Cross(normal)), y.Dot(normal))

	return AxisAngle(d, angle).Mul(first)
}

// perpendicular returns some unit vector orthogonal to the unit vector u,
// built against the canonical axis u is least aligned with.
func perpendicular(u Vec3) Vec3 {
	axis := UnitX
	if math.Abs(u[1]) < math.Abs(u[0]) && math.Abs(u[1]) <= math.Abs(u[2]) {
		axis = UnitY
	} else if math.Abs(u[2]) < math.Abs(u[0]) {
		axis = UnitZ
	}

	return u.Cross(axis).Unit()
}
