// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import "math"

// Vec3 is a 3 element vector, also usable as a point in space.
// Values are immutable: every method returns a new Vec3 rather than
// mutating the receiver, matching the value semantics the teacher's
// physics code already uses for its per-body world position fields.
type Vec3 struct {
	X, Y, Z float64
}

// Vec3Zero is the additive identity.
var Vec3Zero = Vec3{}

// Add returns v+a.
func (v Vec3) Add(a Vec3) Vec3 { return Vec3{v.X + a.X, v.Y + a.Y, v.Z + a.Z} }

// Sub returns v-a.
func (v Vec3) Sub(a Vec3) Vec3 { return Vec3{v.X - a.X, v.Y - a.Y, v.Z - a.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Neg returns the additive inverse of v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Dot returns the dot product of v and a.
func (v Vec3) Dot(a Vec3) float64 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Cross returns the cross product v×a.
func (v Vec3) Cross(a Vec3) Vec3 {
	return Vec3{
		v.Y*a.Z - v.Z*a.Y,
		v.Z*a.X - v.X*a.Z,
		v.X*a.Y - v.Y*a.X,
	}
}

// LenSq returns the squared length of v. Prefer this over Len when
// only comparing magnitudes, to avoid the sqrt.
func (v Vec3) LenSq() float64 { return v.Dot(v) }

// Len returns the length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns v scaled to unit length. The zero vector normalizes
// to itself.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return v.Scale(1.0 / l)
}

// Lerp linearly interpolates from v to a by ratio t.
func (v Vec3) Lerp(a Vec3, t float64) Vec3 {
	return Vec3{Lerp(v.X, a.X, t), Lerp(v.Y, a.Y, t), Lerp(v.Z, a.Z, t)}
}

// XZ returns the horizontal (X,Z) projection of v, with Y zeroed.
func (v Vec3) XZ() Vec3 { return Vec3{v.X, 0, v.Z} }

// DistXZ returns the horizontal distance between v and a, ignoring Y.
func (v Vec3) DistXZ(a Vec3) float64 {
	dx, dz := v.X-a.X, v.Z-a.Z
	return math.Sqrt(dx*dx + dz*dz)
}

// Dist returns the full 3D distance between v and a.
func (v Vec3) Dist(a Vec3) float64 { return v.Sub(a).Len() }

// Eq (==) reports whether v and a have identical components.
func (v Vec3) Eq(a Vec3) bool { return v.X == a.X && v.Y == a.Y && v.Z == a.Z }

// Aeq (~=) reports whether v and a are almost-equal component-wise.
func (v Vec3) Aeq(a Vec3) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) && Aeq(v.Z, a.Z) }

// AeqZ (~=) reports whether v is almost-equal to the zero vector.
func (v Vec3) AeqZ() bool { return v.LenSq() < Epsilon }

// IsFinite reports whether every component of v is a finite number,
// i.e. neither NaN nor ±Inf. Used to reject pathological input at API
// boundaries per spec §7 (InvalidParameter).
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// RightXZ returns the vector rotated 90 degrees clockwise (right-hand
// perpendicular) in the XZ plane, used by the motion orchestrator's
// detour-insertion logic (spec §4.5.4).
func (v Vec3) RightXZ() Vec3 { return Vec3{v.Z, 0, -v.X} }

// Min returns the component-wise minimum of v and a.
func (v Vec3) Min(a Vec3) Vec3 {
	return Vec3{math.Min(v.X, a.X), math.Min(v.Y, a.Y), math.Min(v.Z, a.Z)}
}

// Max returns the component-wise maximum of v and a.
func (v Vec3) Max(a Vec3) Vec3 {
	return Vec3{math.Max(v.X, a.X), math.Max(v.Y, a.Y), math.Max(v.Z, a.Z)}
}
