package geom

// TransformStack accumulates translations and rotations into a single rigid
// transform p ↦ R·p + t, with R held as a unit quaternion. The zero value is
// the identity.
//
// Each Add* call composes the new operation on the inside of the current
// stack, so the most recently added operation touches a point first:
//
//	var ts TransformStack
//	ts.AddTrans(origin)     // 2) then move to origin
//	ts.AddRotationX(angle)  // 1) rotate about x first
//
// TransformStack is a value type. Copying it forks the stack; the copy can be
// extended without affecting the original.
type TransformStack struct {
	r     Rotation // accumulated rotation (valid only when set)
	t     Vec3     // accumulated translation
	set   bool     // false ⇒ identity
	depth int      // number of composed operations
}

// rot returns the accumulated rotation, treating the zero value as identity.
func (ts *TransformStack) rot() Rotation {
	if !ts.set {
		return Identity()
	}

	return ts.r
}

// compose appends the affine map q ↦ m·q + v on the inside of the stack.
func (ts *TransformStack) compose(m Rotation, v Vec3) {
	r := ts.rot()
	ts.t = r.Apply(v).Add(ts.t)
	ts.r = r.Mul(m)
	ts.set = true
	ts.depth++
}

// AddTrans appends a translation by v.
func (ts *TransformStack) AddTrans(v Vec3) { ts.compose(Identity(), v) }

// AddRotation appends an arbitrary rotation.
func (ts *TransformStack) AddRotation(m Rotation) { ts.compose(m, Zero) }

// AddAlignVectors appends the rotation that takes the direction of a onto the
// direction of b.
func (ts *TransformStack) AddAlignVectors(a, b Vec3) { ts.compose(AlignVectors(a, b), Zero) }

// AddRotationX appends a right-handed rotation by angle radians about +x.
func (ts *TransformStack) AddRotationX(angle float64) { ts.compose(RotationX(angle), Zero) }

// AddFrame appends the map from the canonical frame (origin 0, x, y, z) to
// the frame located at origin whose x axis is dir and y axis is normal.
// dir and normal must be orthonormal.
func (ts *TransformStack) AddFrame(origin, dir, normal Vec3) {
	ts.compose(FrameRotation(dir, normal), origin)
}

// Append composes other on the inside of ts: afterwards ts.Transform(p)
// equals the old ts.Transform(other.Transform(p)).
func (ts *TransformStack) Append(other TransformStack) {
	if !other.set {
		return
	}
	ts.compose(other.r, other.t)
	ts.depth += other.depth - 1
}

// Transform applies the full stack to point p.
func (ts TransformStack) Transform(p Vec3) Vec3 {
	if !ts.set {
		return p
	}

	return ts.r.Apply(p).Add(ts.t)
}

// TransformVector applies only the rotational part to the direction v.
func (ts TransformStack) TransformVector(v Vec3) Vec3 {
	if !ts.set {
		return v
	}

	return ts.r.Apply(v)
}

// Inverse returns the transform undoing ts.
func (ts TransformStack) Inverse() TransformStack {
	if !ts.set {
		return ts
	}
	ri := ts.r.Inverse()

	return TransformStack{r: ri, t: ri.Apply(ts.t).Scale(-1), set: true, depth: ts.depth}
}

// Rotation returns the accumulated rotation.
func (ts TransformStack) Rotation() Rotation { return ts.rot() }

// Translation returns the accumulated translation.
func (ts TransformStack) Translation() Vec3 { return ts.t }

// Depth returns how many operations have been composed into the stack.
func (ts TransformStack) Depth() int { return ts.depth }

// IsIdentity reports whether nothing has been added yet.
func (ts TransformStack) IsIdentity() bool { return !ts.set }
