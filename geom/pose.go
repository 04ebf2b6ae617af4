// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

// RigidPose is a rigid body's position and orientation in world space.
type RigidPose struct {
	Position Vec3
	Rotation Quat
}

// IdentityPose returns the pose at the origin with no rotation.
func IdentityPose() RigidPose { return RigidPose{Rotation: QuatIdentity} }

// Integrate advances a pose by linear velocity lvel and angular
// velocity avel (radians/second) over dt seconds, matching the
// teacher's lin.T.Integrate used by both the old mover and the
// newer PBD bodies to predict and finalize transforms each step.
func (p RigidPose) Integrate(lvel, avel Vec3, dt float64) RigidPose {
	return RigidPose{
		Position: p.Position.Add(lvel.Scale(dt)),
		Rotation: p.Rotation.IntegrateAngularVelocity(avel, dt),
	}
}

// Eq (==) reports whether p and o are componentwise identical.
func (p RigidPose) Eq(o RigidPose) bool { return p.Position.Eq(o.Position) && p.Rotation.Eq(o.Rotation) }

// Aeq (~=) reports whether p and o are almost-equal.
func (p RigidPose) Aeq(o RigidPose) bool { return p.Position.Aeq(o.Position) && p.Rotation.Aeq(o.Rotation) }
