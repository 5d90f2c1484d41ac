package fragment

import (
	"math"

	"github.com/katalvlaran/ringloop/geom"
)

// VectorCount is the number of 3-vectors a Fragment is made of.
const VectorCount = 6

// FrameSelector picks which of a fragment's two frames to use.
type FrameSelector int

const (
	// EndFrame selects the frame of the last residue.
	EndFrame FrameSelector = iota

	// MidFrame selects the frame of the bisecting residue.
	MidFrame
)

// Weights scales the three terms of Deviation.
type Weights struct {
	Point     float64
	Direction float64
	Normal    float64
}

// DefaultWeights weighs position, direction and normal equally.
var DefaultWeights = Weights{Point: 1, Direction: 1, Normal: 1}

// Fragment is the geometric summary of k residues relative to the canonical
// frame of the residue preceding them.
type Fragment struct {
	End Frame
	Mid Frame
}

// MidLength is the chain length of the first half when a chain of length n is
// split for ring closure: ceil(n/2).
func MidLength(n int) int { return (n + 1) / 2 }

// SetToSingleAminoAcid resets f to the extended single-residue fragment.
func (f *Fragment) SetToSingleAminoAcid() {
	*f = NewSingleResidue(DefaultPhi, DefaultPsi)
}

// Frame returns the selected frame.
func (f Fragment) Frame(sel FrameSelector) Frame {
	if sel == MidFrame {
		return f.Mid
	}

	return f.End
}

// Concatenate appends other (expressed in its own canonical frame) to the end
// of f. firstLength is f's chain length and newLength the combined length.
// When f is exactly the first half of the result its end becomes the new mid;
// otherwise f's own mid is kept.
//
// Policy: other's mid frame is discarded; f is never modified.
//
// Complexity: O(1), one frame transform per vector.
func (f Fragment) Concatenate(other Fragment, firstLength, newLength int) Fragment {
	ts := f.End.Transform()
	out := Fragment{End: other.End.Apply(ts), Mid: f.Mid}
	if firstLength == MidLength(newLength) {
		out.Mid = f.End
	}

	return out
}

// Apply maps both frames of f through ts.
func (f Fragment) Apply(ts geom.TransformStack) Fragment {
	return Fragment{End: f.End.Apply(ts), Mid: f.Mid.Apply(ts)}
}

// RotateIntoXYPlane rotates f about +x until End.Direction has no z component
// and a non-negative y component. If End.Direction is parallel to x, End.Origin
// is used instead. The inverse rotation is appended to ts (which may be nil)
// and the removed angle, in radians, is returned.
func (f *Fragment) RotateIntoXYPlane(ts *geom.TransformStack) float64 {
	v := f.End.Direction
	byOrigin := false
	if math.Hypot(v[1], v[2]) < 1e-9 {
		v = f.End.Origin
		byOrigin = true
	}
	if math.Hypot(v[1], v[2]) < 1e-9 {
		return 0
	}
	angle := math.Atan2(v[2], v[1])

	var rot geom.TransformStack
	rot.AddRotationX(-angle)
	*f = f.Apply(rot)
	// snap the rounding residue so the plane invariant holds exactly
	if byOrigin {
		f.End.Origin[2] = 0
	} else {
		f.End.Direction[2] = 0
	}

	if ts != nil {
		ts.AddRotationX(angle)
	}

	return angle
}

// SetToOrigin re-expresses other in the selected frame of f, so that frame
// becomes the canonical origin. The map back out of that frame is appended
// to ts (which may be nil).
func (f Fragment) SetToOrigin(other Fragment, sel FrameSelector, ts *geom.TransformStack) Fragment {
	base := f.Frame(sel)
	toBase := base.Transform()
	out := other.Apply(toBase.Inverse())
	if ts != nil {
		ts.Append(toBase)
	}

	return out
}

// Deviation is the weighted sum of the distances between the end points,
// end directions and end normals of f and other.
func (f Fragment) Deviation(other Fragment, w Weights) float64 {
	return w.Point*f.End.Origin.Dist(other.End.Origin) +
		w.Direction*f.End.Direction.Dist(other.End.Direction) +
		w.Normal*f.End.Normal.Dist(other.End.Normal)
}

// SoftClose returns a copy of f with End.Origin snapped onto target and
// Mid.Origin moved by half of that correction, spreading the closure error
// over both halves of the chain.
func (f Fragment) SoftClose(target geom.Vec3) Fragment {
	delta := target.Sub(f.End.Origin)
	f.Mid.Origin = f.Mid.Origin.Add(delta.Scale(0.5))
	f.End.Origin = target

	return f
}

// PromoteMid returns the fragment that ends where f's mid is.
func (f Fragment) PromoteMid() Fragment { return Fragment{End: f.Mid, Mid: f.Mid} }

// Vectors returns the six vectors in file order: endPoint, endDirection,
// endNormal, midPoint, midDirection, midNormal.
func (f Fragment) Vectors() [VectorCount]geom.Vec3 {
	return [VectorCount]geom.Vec3{
		f.End.Origin, f.End.Direction, f.End.Normal,
		f.Mid.Origin, f.Mid.Direction, f.Mid.Normal,
	}
}

// FromVectors is the inverse of Vectors.
func FromVectors(v [VectorCount]geom.Vec3) Fragment {
	return Fragment{
		End: Frame{Origin: v[0], Direction: v[1], Normal: v[2]},
		Mid: Frame{Origin: v[3], Direction: v[4], Normal: v[5]},
	}
}

// IsFinite reports whether every component of every vector is finite.
func (f Fragment) IsFinite() bool {
	for _, v := range f.Vectors() {
		if !v.IsFinite() {
			return false
		}
	}

	return true
}
