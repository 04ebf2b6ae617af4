// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/echolink/spatialcore/geom"
)

// ShapeKind enumerates the collision primitives a Shape may hold,
// narrowed from the teacher's open Shape interface (which also
// supported planes, rays and convex hulls) down to the three variants
// this runtime requires: Box, Capsule, Sphere.
type ShapeKind uint8

const (
	// ShapeBox is a box described by half extents along X, Y and Z.
	ShapeBox ShapeKind = iota
	// ShapeCapsule is a vertical capsule described by radius and the
	// length of its cylindrical segment (excluding the end caps).
	ShapeCapsule
	// ShapeSphere is a sphere described by radius.
	ShapeSphere
)

// Shape is an interned, immutable collision primitive. Many bodies may
// reference one Shape by its ShapeHandle; the shape store never
// mutates a Shape once created.
type Shape struct {
	Kind        ShapeKind
	HalfExtents geom.Vec3 // ShapeBox
	Radius      float64   // ShapeCapsule, ShapeSphere
	CapsuleLen  float64   // ShapeCapsule: length of the cylindrical segment
}

// ShapeHandle is an opaque reference into a ShapeStore.
type ShapeHandle struct{ index int }

// Valid reports whether h refers to a shape (as opposed to the zero
// value ShapeHandle{}, which is not valid since index 0 is reserved by
// construction -- see invalidShapeHandle).
func (h ShapeHandle) Valid() bool { return h.index >= 0 }

var invalidShapeHandle = ShapeHandle{index: -1}

// ShapeStore is an append-only pool of interned shapes, keyed by
// ShapeHandle, matching the teacher's "shape store is an append-only
// pool" guidance.
type ShapeStore struct {
	shapes []Shape
}

// NewShapeStore returns an empty shape store.
func NewShapeStore() *ShapeStore { return &ShapeStore{} }

// Intern adds shape to the store and returns its handle. Callers that
// want deduplication should compare Shape values themselves before
// interning; the store itself never merges duplicates.
func (s *ShapeStore) Intern(shape Shape) ShapeHandle {
	s.shapes = append(s.shapes, shape)
	return ShapeHandle{index: len(s.shapes) - 1}
}

// Lookup returns the shape for handle h. ok is false for an invalid or
// out of range handle.
func (s *ShapeStore) Lookup(h ShapeHandle) (Shape, bool) {
	if h.index < 0 || h.index >= len(s.shapes) {
		return Shape{}, false
	}
	return s.shapes[h.index], true
}

// NewBoxShape returns a Shape for a box with the given half extents.
// Negative components are made positive.
func NewBoxShape(halfExtents geom.Vec3) Shape {
	return Shape{
		Kind: ShapeBox,
		HalfExtents: geom.Vec3{
			X: math.Abs(halfExtents.X),
			Y: math.Abs(halfExtents.Y),
			Z: math.Abs(halfExtents.Z),
		},
	}
}

// NewCapsuleShape returns a Shape for a vertical capsule.
func NewCapsuleShape(radius, length float64) Shape {
	return Shape{Kind: ShapeCapsule, Radius: math.Abs(radius), CapsuleLen: math.Abs(length)}
}

// NewSphereShape returns a Shape for a sphere.
func NewSphereShape(radius float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: math.Abs(radius)}
}

// LocalAABB returns the shape's bounding box in its own local space,
// centered at the origin and unrotated.
func (s Shape) LocalAABB() geom.AABB {
	switch s.Kind {
	case ShapeBox:
		return geom.AABB{Min: s.HalfExtents.Neg(), Max: s.HalfExtents}
	case ShapeCapsule:
		half := s.CapsuleLen*0.5 + s.Radius
		ext := geom.Vec3{X: s.Radius, Y: half, Z: s.Radius}
		return geom.AABB{Min: ext.Neg(), Max: ext}
	case ShapeSphere:
		ext := geom.Vec3{X: s.Radius, Y: s.Radius, Z: s.Radius}
		return geom.AABB{Min: ext.Neg(), Max: ext}
	default:
		return geom.AABB{}
	}
}

// WorldAABB returns the shape's bounding box transformed by pose and
// grown by margin, matching the teacher's
// Shape.Aabb(transform, ab, margin) contract. Rotation is handled
// conservatively by bounding every corner of the local box, which is
// exact for spheres/capsules (rotationally symmetric about their
// center) and correctly widens for rotated boxes.
func (s Shape) WorldAABB(pose geom.RigidPose, margin float64) geom.AABB {
	he := s.LocalAABB().HalfExtents()
	corners := [8]geom.Vec3{
		{X: he.X, Y: he.Y, Z: he.Z}, {X: he.X, Y: he.Y, Z: -he.Z},
		{X: he.X, Y: -he.Y, Z: he.Z}, {X: he.X, Y: -he.Y, Z: -he.Z},
		{X: -he.X, Y: he.Y, Z: he.Z}, {X: -he.X, Y: he.Y, Z: -he.Z},
		{X: -he.X, Y: -he.Y, Z: he.Z}, {X: -he.X, Y: -he.Y, Z: -he.Z},
	}
	box := geom.AABB{Min: pose.Position, Max: pose.Position}
	for _, c := range corners {
		world := pose.Position.Add(pose.Rotation.RotateVec3(c))
		box = box.ExpandPoint(world)
	}
	return box.Expand(margin)
}

// Volume returns the shape's volume, used to derive mass properties
// when the caller specifies density rather than mass directly.
func (s Shape) Volume() float64 {
	switch s.Kind {
	case ShapeBox:
		return 8 * s.HalfExtents.X * s.HalfExtents.Y * s.HalfExtents.Z
	case ShapeSphere:
		return (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
	case ShapeCapsule:
		cyl := math.Pi * s.Radius * s.Radius * s.CapsuleLen
		caps := (4.0 / 3.0) * math.Pi * s.Radius * s.Radius * s.Radius
		return cyl + caps
	default:
		return 0
	}
}

// InverseInertiaTensor returns the diagonal inverse inertia tensor for
// a body of the given mass using this shape, following the teacher's
// body.setMaterial pattern of zeroing any axis whose inertia is
// (almost) zero rather than dividing by it.
func (s Shape) InverseInertiaTensor(mass float64) geom.Vec3 {
	if mass <= 0 {
		return geom.Vec3{}
	}
	var ix, iy, iz float64
	switch s.Kind {
	case ShapeBox:
		hx, hy, hz := s.HalfExtents.X, s.HalfExtents.Y, s.HalfExtents.Z
		w, h, d := 2*hx, 2*hy, 2*hz
		ix = (mass / 12.0) * (h*h + d*d)
		iy = (mass / 12.0) * (w*w + d*d)
		iz = (mass / 12.0) * (w*w + h*h)
	case ShapeSphere:
		i := 0.4 * mass * s.Radius * s.Radius
		ix, iy, iz = i, i, i
	case ShapeCapsule:
		// Approximated as a cylinder. Good enough for a character
		// capsule that only ever needs linear response; angular
		// velocity is optional for agents.
		r, l := s.Radius, s.CapsuleLen
		iy = 0.5 * mass * r * r
		ix = (mass / 12.0) * (3*r*r + l*l)
		iz = ix
	}
	inv := func(i float64) float64 {
		if i < geom.Epsilon {
			return 0
		}
		return 1.0 / i
	}
	return geom.Vec3{X: inv(ix), Y: inv(iy), Z: inv(iz)}
}

// GroundLike reports whether this shape, when static, qualifies as
// "ground-like": a Box whose height is strictly smaller than both of
// its horizontal extents.
func (s Shape) GroundLike() bool {
	if s.Kind != ShapeBox {
		return false
	}
	height := 2 * s.HalfExtents.Y
	width := 2 * s.HalfExtents.X
	depth := 2 * s.HalfExtents.Z
	return height < width && height < depth
}
