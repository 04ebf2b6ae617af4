// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
)

func TestClassifyAgentAgentNonPushable(t *testing.T) {
	policy := DefaultContactMaterialPolicy{}
	shape := NewCapsuleShape(0.5, 0.8)
	a := Body{EntityType: Player}
	b := Body{EntityType: NPC}
	props := policy.Classify(a, b, shape, shape)
	require.Equal(t, 0.0, props.FrictionCoefficient)
	require.Equal(t, 0.0, props.MaxRecoveryVelocity)
	require.Equal(t, 240.0, props.SpringFrequencyHz)
}

func TestClassifyAgentAgentPushable(t *testing.T) {
	policy := DefaultContactMaterialPolicy{}
	shape := NewCapsuleShape(0.5, 0.8)
	a := Body{EntityType: Player, IsPushable: true}
	b := Body{EntityType: NPC}
	props := policy.Classify(a, b, shape, shape)
	require.Equal(t, math.Inf(1), props.MaxRecoveryVelocity)
	require.Equal(t, 30.0, props.SpringFrequencyHz)
}

func TestClassifyAgentGroundLikeStatic(t *testing.T) {
	policy := DefaultContactMaterialPolicy{}
	agentShape := NewCapsuleShape(0.5, 0.8)
	groundShape := NewBoxShape(geom.Vec3{X: 10, Y: 0.05, Z: 10})
	agent := Body{EntityType: Player}
	ground := Body{Mobility: Static}
	props := policy.Classify(agent, ground, agentShape, groundShape)
	require.Equal(t, 180.0, props.SpringFrequencyHz)
	require.Equal(t, 0.30, props.SpeculativeMargin)
}

func TestClassifyOtherPair(t *testing.T) {
	policy := DefaultContactMaterialPolicy{}
	projectileShape := NewSphereShape(0.1)
	obstacleShape := NewBoxShape(geom.Vec3{X: 0.2, Y: 0.2, Z: 0.2})
	projectile := Body{EntityType: Projectile}
	obstacle := Body{EntityType: Obstacle, Mobility: Static}
	props := policy.Classify(projectile, obstacle, projectileShape, obstacleShape)
	require.Equal(t, 30.0, props.SpringFrequencyHz)
	require.Equal(t, 0.15, props.SpeculativeMargin)
}

func TestGroundLikeShapeDefinition(t *testing.T) {
	require.True(t, NewBoxShape(geom.Vec3{X: 10, Y: 0.05, Z: 10}).GroundLike())
	require.False(t, NewBoxShape(geom.Vec3{X: 0.2, Y: 1.0, Z: 0.2}).GroundLike())
}
