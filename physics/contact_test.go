// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
)

func TestGenerateContactSphereSphereOverlap(t *testing.T) {
	shape := NewSphereShape(1)
	poseA := geom.RigidPose{Rotation: geom.QuatIdentity}
	poseB := geom.RigidPose{Position: geom.Vec3{X: 1.5}, Rotation: geom.QuatIdentity}
	contact, ok := generateContact(poseA, shape, poseB, shape, 0.1)
	require.True(t, ok)
	require.Greater(t, contact.Penetration, 0.0)
	require.InDelta(t, 1.0, contact.Normal.X, 1e-6)
}

func TestGenerateContactSphereSphereSeparatedBeyondMargin(t *testing.T) {
	shape := NewSphereShape(1)
	poseA := geom.RigidPose{Rotation: geom.QuatIdentity}
	poseB := geom.RigidPose{Position: geom.Vec3{X: 10}, Rotation: geom.QuatIdentity}
	_, ok := generateContact(poseA, shape, poseB, shape, 0.1)
	require.False(t, ok)
}

func TestGenerateContactCapsuleBox(t *testing.T) {
	capsule := NewCapsuleShape(0.5, 0.8)
	ground := NewBoxShape(geom.Vec3{X: 10, Y: 0.05, Z: 10})
	agentPose := geom.RigidPose{Position: geom.Vec3{Y: 0.5}, Rotation: geom.QuatIdentity}
	groundPose := geom.RigidPose{Position: geom.Vec3{Y: -0.05}, Rotation: geom.QuatIdentity}
	contact, ok := generateContact(agentPose, capsule, groundPose, ground, 0.1)
	require.True(t, ok)
	require.Greater(t, contact.Penetration, 0.0)
}

func TestGenerateContactBoxBoxOverlap(t *testing.T) {
	shape := NewBoxShape(geom.Vec3{X: 1, Y: 1, Z: 1})
	poseA := geom.RigidPose{Rotation: geom.QuatIdentity}
	poseB := geom.RigidPose{Position: geom.Vec3{X: 1.5}, Rotation: geom.QuatIdentity}
	contact, ok := generateContact(poseA, shape, poseB, shape, 0.0)
	require.True(t, ok)
	require.InDelta(t, 0.5, contact.Penetration, 1e-9)
}

func TestSegmentSegmentClosestParallel(t *testing.T) {
	a1 := geom.Vec3{X: 0}
	a2 := geom.Vec3{X: 1}
	b1 := geom.Vec3{X: 0, Y: 1}
	b2 := geom.Vec3{X: 1, Y: 1}
	ca, cb := segmentSegmentClosest(a1, a2, b1, b2)
	require.InDelta(t, 1.0, cb.Sub(ca).Len(), 1e-6)
}
