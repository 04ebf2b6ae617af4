// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import "math"

// Quat is a unit-length quaternion tracking rotation. X, Y, Z are the
// rotation axis scaled by sin(angle/2) and W is cos(angle/2), matching
// the teacher's lin.Q layout.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quat{0, 0, 0, 1}

// QuatFromAxisAngle builds a quaternion representing a rotation of
// angleRad radians around axis (which need not be normalized).
func QuatFromAxisAngle(axis Vec3, angleRad float64) Quat {
	axis = axis.Normalize()
	half := angleRad * 0.5
	s := math.Sin(half)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math.Cos(half)}
}

// Eq (==) reports whether q and r have identical components.
func (q Quat) Eq(r Quat) bool { return q.X == r.X && q.Y == r.Y && q.Z == r.Z && q.W == r.W }

// Aeq (~=) reports whether q and r are almost-equal component-wise.
func (q Quat) Aeq(r Quat) bool {
	return Aeq(q.X, r.X) && Aeq(q.Y, r.Y) && Aeq(q.Z, r.Z) && Aeq(q.W, r.W)
}

// Conjugate returns the conjugate of q, equal to its inverse when q is
// unit-length.
func (q Quat) Conjugate() Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// Mul returns the Hamilton product q*r (apply r first, then q).
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Normalize returns q scaled to unit length. The identity quaternion is
// returned if q is degenerate.
func (q Quat) Normalize() Quat {
	lenSq := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if lenSq < Epsilon {
		return QuatIdentity
	}
	inv := 1.0 / math.Sqrt(lenSq)
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// RotateVec3 rotates v by q.
func (q Quat) RotateVec3(v Vec3) Vec3 {
	qv := Vec3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// IntegrateAngularVelocity advances q by angular velocity omega
// (radians/second, world space) over dt seconds using the standard
// first-order quaternion integration, matching the teacher's
// lin.T.Integrate angular term.
func (q Quat) IntegrateAngularVelocity(omega Vec3, dt float64) Quat {
	delta := Quat{omega.X * dt * 0.5, omega.Y * dt * 0.5, omega.Z * dt * 0.5, 0}
	sum := Quat{
		q.X + (delta.W*q.X + delta.X*q.W + delta.Y*q.Z - delta.Z*q.Y),
		q.Y + (delta.W*q.Y - delta.X*q.Z + delta.Y*q.W + delta.Z*q.X),
		q.Z + (delta.W*q.Z + delta.X*q.Y - delta.Y*q.X + delta.Z*q.W),
		q.W + (delta.W*q.W - delta.X*q.X - delta.Y*q.Y - delta.Z*q.Z),
	}
	return sum.Normalize()
}
