// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/echolink/spatialcore/geom"
)

// Contact is a single narrow-phase contact point between two bodies,
// analogous to the teacher's contactPair/pointOfContact pair in
// move.go's collider, but produced for the Box/Capsule/Sphere set this
// runtime supports rather than the teacher's full convex-hull set.
type Contact struct {
	Normal      geom.Vec3 // points from body A toward body B
	Point       geom.Vec3 // world-space contact point, roughly midway between the surfaces
	Penetration float64   // positive: overlapping; negative: separated by up to the margin
}

// capsuleAxis returns the world-space segment endpoints and radius for
// a sphere or capsule shape. A sphere is treated as a zero-length
// capsule so sphere/capsule/sphere-capsule pairs all reduce to one
// segment-vs-segment routine.
func capsuleAxis(pose geom.RigidPose, shape Shape) (a, b geom.Vec3, radius float64) {
	switch shape.Kind {
	case ShapeSphere:
		return pose.Position, pose.Position, shape.Radius
	case ShapeCapsule:
		half := pose.Rotation.RotateVec3(geom.Vec3{Y: shape.CapsuleLen * 0.5})
		return pose.Position.Add(half), pose.Position.Sub(half), shape.Radius
	default:
		return pose.Position, pose.Position, 0
	}
}

// closestPointOnSegment returns the point on segment ab closest to p.
func closestPointOnSegment(p, a, b geom.Vec3) geom.Vec3 {
	ab := b.Sub(a)
	lenSq := ab.LenSq()
	if lenSq < geom.Epsilon {
		return a
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = geom.Clamp(t, 0, 1)
	return a.Add(ab.Scale(t))
}

// segmentSegmentClosest returns the closest points between segments
// p1q1 and p2q2, following the standard clamped-parametric approach
// (Ericson, Real-Time Collision Detection §5.1.9).
func segmentSegmentClosest(p1, q1, p2, q2 geom.Vec3) (geom.Vec3, geom.Vec3) {
	d1 := q1.Sub(p1)
	d2 := q2.Sub(p2)
	r := p1.Sub(p2)
	a := d1.LenSq()
	e := d2.LenSq()
	f := d2.Dot(r)

	var s, t float64
	if a < geom.Epsilon && e < geom.Epsilon {
		return p1, p2
	}
	if a < geom.Epsilon {
		s = 0
		t = geom.Clamp(f/e, 0, 1)
	} else {
		c := d1.Dot(r)
		if e < geom.Epsilon {
			t = 0
			s = geom.Clamp(-c/a, 0, 1)
		} else {
			b := d1.Dot(d2)
			denom := a*e - b*b
			if denom > geom.Epsilon {
				s = geom.Clamp((b*f-c*e)/denom, 0, 1)
			} else {
				s = 0
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = geom.Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = geom.Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return p1.Add(d1.Scale(s)), p2.Add(d2.Scale(t))
}

// closestPointOnOBB returns the point on the surface (or interior, if
// worldPoint lies inside) of an oriented box closest to worldPoint.
func closestPointOnOBB(pose geom.RigidPose, halfExtents geom.Vec3, worldPoint geom.Vec3) geom.Vec3 {
	local := pose.Rotation.Conjugate().RotateVec3(worldPoint.Sub(pose.Position))
	clamped := geom.Vec3{
		X: geom.Clamp(local.X, -halfExtents.X, halfExtents.X),
		Y: geom.Clamp(local.Y, -halfExtents.Y, halfExtents.Y),
		Z: geom.Clamp(local.Z, -halfExtents.Z, halfExtents.Z),
	}
	return pose.Position.Add(pose.Rotation.RotateVec3(clamped))
}

// generateContact runs narrow-phase detection for the (shapeA, shapeB)
// pair at poseA/poseB. ok is false when the surfaces are separated by
// more than margin. Penetration follows the sign convention documented
// on Contact.
func generateContact(poseA geom.RigidPose, shapeA Shape, poseB geom.RigidPose, shapeB Shape, margin float64) (Contact, bool) {
	aIsBox := shapeA.Kind == ShapeBox
	bIsBox := shapeB.Kind == ShapeBox

	switch {
	case !aIsBox && !bIsBox:
		a1, a2, ra := capsuleAxis(poseA, shapeA)
		b1, b2, rb := capsuleAxis(poseB, shapeB)
		ca, cb := segmentSegmentClosest(a1, a2, b1, b2)
		delta := cb.Sub(ca)
		dist := delta.Len()
		normal := geom.Vec3{Y: 1}
		if dist > geom.Epsilon {
			normal = delta.Scale(1 / dist)
		}
		penetration := (ra + rb) - dist
		if -penetration > margin {
			return Contact{}, false
		}
		mid := ca.Add(normal.Scale(ra)).Lerp(cb.Sub(normal.Scale(rb)), 0.5)
		return Contact{Normal: normal, Point: mid, Penetration: penetration}, true

	case aIsBox != bIsBox:
		boxPose, boxShape, otherPose, otherShape, otherIsA := poseA, shapeA, poseB, shapeB, false
		if !aIsBox {
			boxPose, boxShape, otherPose, otherShape, otherIsA = poseB, shapeB, poseA, shapeA, true
		}
		o1, o2, r := capsuleAxis(otherPose, otherShape)
		segPoint := o1
		for i := 0; i < 3; i++ {
			boxPoint := closestPointOnOBB(boxPose, boxShape.HalfExtents, segPoint)
			segPoint = closestPointOnSegment(boxPoint, o1, o2)
		}
		boxPoint := closestPointOnOBB(boxPose, boxShape.HalfExtents, segPoint)
		delta := segPoint.Sub(boxPoint)
		dist := delta.Len()
		normalFromBoxToOther := geom.Vec3{Y: 1}
		if dist > geom.Epsilon {
			normalFromBoxToOther = delta.Scale(1 / dist)
		}
		penetration := r - dist
		if -penetration > margin {
			return Contact{}, false
		}
		mid := boxPoint.Lerp(segPoint.Sub(normalFromBoxToOther.Scale(r)), 0.5)
		normal := normalFromBoxToOther
		if otherIsA {
			// otherShape is A and box is B: Contact.Normal must point A->B.
			normal = normal.Neg()
		}
		return Contact{Normal: normal, Point: mid, Penetration: penetration}, true

	default: // both boxes: AABB-overlap axis test
		boxA := shapeA.WorldAABB(poseA, 0)
		boxB := shapeB.WorldAABB(poseB, 0)
		overlapX := math.Min(boxA.Max.X, boxB.Max.X) - math.Max(boxA.Min.X, boxB.Min.X)
		overlapY := math.Min(boxA.Max.Y, boxB.Max.Y) - math.Max(boxA.Min.Y, boxB.Min.Y)
		overlapZ := math.Min(boxA.Max.Z, boxB.Max.Z) - math.Max(boxA.Min.Z, boxB.Min.Z)
		if overlapX < -margin || overlapY < -margin || overlapZ < -margin {
			return Contact{}, false
		}
		cA, cB := boxA.Center(), boxB.Center()
		normal := geom.Vec3{Y: 1}
		penetration := overlapY
		switch {
		case overlapX <= overlapY && overlapX <= overlapZ:
			penetration = overlapX
			normal = geom.Vec3{X: 1}
			if cA.X > cB.X {
				normal = normal.Neg()
			}
		case overlapZ <= overlapX && overlapZ <= overlapY:
			penetration = overlapZ
			normal = geom.Vec3{Z: 1}
			if cA.Z > cB.Z {
				normal = normal.Neg()
			}
		default:
			if cA.Y > cB.Y {
				normal = normal.Neg()
			}
		}
		mid := cA.Lerp(cB, 0.5)
		return Contact{Normal: normal, Point: mid, Penetration: penetration}, true
	}
}
