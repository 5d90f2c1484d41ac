package fragment

import (
	"errors"
	"math"

	"github.com/katalvlaran/ringloop/geom"
)

// ErrDegenerateFrame is returned when a direction or normal has zero length
// or the two are parallel, so no right-handed frame can be built.
var ErrDegenerateFrame = errors.New("fragment: degenerate frame")

// Anchor is anything that pins a chain terminus in space: a position, the
// bond direction leaving it and the normal of its backbone plane. Loop closure
// only ever reads an Anchor.
type Anchor interface {
	Position() geom.Vec3
	BondDirection() geom.Vec3
	PlaneNormal() geom.Vec3
}

// Frame is a right-handed local coordinate frame: Origin, the x axis
// Direction and the y axis Normal. The z axis is Direction × Normal.
type Frame struct {
	Origin    geom.Vec3
	Direction geom.Vec3
	Normal    geom.Vec3
}

// Canonical returns the frame every fragment starts from.
func Canonical() Frame {
	return Frame{Origin: geom.Zero, Direction: geom.UnitX, Normal: geom.UnitY}
}

// Position implements Anchor.
func (f Frame) Position() geom.Vec3 { return f.Origin }

// BondDirection implements Anchor.
func (f Frame) BondDirection() geom.Vec3 { return f.Direction }

// PlaneNormal implements Anchor.
func (f Frame) PlaneNormal() geom.Vec3 { return f.Normal }

// Binormal returns Direction × Normal.
func (f Frame) Binormal() geom.Vec3 { return f.Direction.Cross(f.Normal) }

// IsZero reports whether the frame carries no orientation at all.
func (f Frame) IsZero() bool { return f.Direction.IsZero() && f.Normal.IsZero() }

// Transform returns the map from f's local coordinates to the coordinates f
// is expressed in.
func (f Frame) Transform() geom.TransformStack {
	var ts geom.TransformStack
	ts.AddFrame(f.Origin, f.Direction, f.Normal)

	return ts
}

// Apply maps f through ts: the origin as a point, the axes as directions.
func (f Frame) Apply(ts geom.TransformStack) Frame {
	return Frame{
		Origin:    ts.Transform(f.Origin),
		Direction: ts.TransformVector(f.Direction),
		Normal:    ts.TransformVector(f.Normal),
	}
}

// Relative expresses other in f's local coordinates.
func (f Frame) Relative(other Frame) Frame { return other.Apply(f.Transform().Inverse()) }

// Distance is the unweighted sum of the origin, direction and normal distances.
func (f Frame) Distance(other Frame) float64 {
	return f.Origin.Dist(other.Origin) + f.Direction.Dist(other.Direction) + f.Normal.Dist(other.Normal)
}

// Orthonormalize returns f with a unit Direction and a unit Normal made
// orthogonal to it (Gram–Schmidt).
func (f Frame) Orthonormalize() (Frame, error) {
	d := f.Direction
	if d.IsZero() || !d.IsFinite() {
		return Frame{}, ErrDegenerateFrame
	}
	d = d.Unit()
	n := f.Normal.Reject(d)
	if n.Norm() < 1e-9 || !n.IsFinite() {
		return Frame{}, ErrDegenerateFrame
	}

	return Frame{Origin: f.Origin, Direction: d, Normal: n.Unit()}, nil
}

// FromAnchor reads an Anchor into an orthonormal Frame.
func FromAnchor(a Anchor) (Frame, error) {
	if a == nil {
		return Frame{}, ErrDegenerateFrame
	}

	return Frame{Origin: a.Position(), Direction: a.BondDirection(), Normal: a.PlaneNormal()}.Orthonormalize()
}

// FrameFromBackbone builds the residue frame from its N, CA and C atoms:
// origin CA, direction CA→C, normal the part of CA→N orthogonal to it.
func FrameFromBackbone(n, ca, c geom.Vec3) Frame {
	d := c.Sub(ca).Unit()

	return Frame{Origin: ca, Direction: d, Normal: n.Sub(ca).Reject(d).Unit()}
}

// Backbone places N, CA and C of a residue whose frame is f, using ideal bond
// lengths and the N–CA–C angle. Coordinates are in the space f is expressed
// in. The result is exact and deterministic.
func (f Frame) Backbone(index int) Residue {
	theta := geom.Radians(AngleNCAC)
	s, c := math.Sincos(theta)
	nDir := f.Direction.Scale(c).Add(f.Normal.Scale(s))

	return Residue{
		Index: index,
		N:     f.Origin.Add(nDir.Scale(BondNCA)),
		CA:    f.Origin,
		C:     f.Origin.Add(f.Direction.Scale(BondCAC)),
	}
}
