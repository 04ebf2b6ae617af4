// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package spatialcore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/physics"
	"github.com/echolink/spatialcore/spatialcfg"
)

func flatGround(halfSize float64) navmesh.TriangleSoup {
	positions := []geom.Vec3{
		{X: -halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: halfSize},
		{X: -halfSize, Y: 0, Z: halfSize},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return navmesh.TriangleSoup{Positions: positions, Indices: indices}
}

func TestNewWiresAllComponents(t *testing.T) {
	world, err := New(flatGround(20), spatialcfg.Defaults())
	require.NoError(t, err)
	require.NotNil(t, world.Physics)
	require.NotNil(t, world.NavMesh)
	require.NotNil(t, world.Motion)
}

func TestRegisterAgentAndRequestMovementReachesDestination(t *testing.T) {
	cfg := spatialcfg.Defaults()
	world, err := New(flatGround(20), cfg)
	require.NoError(t, err)

	const id physics.EntityId = 1
	groundedY := cfg.Agent.Height/2 + cfg.Agent.Radius
	start := geom.RigidPose{Position: geom.Vec3{X: -8, Y: groundedY, Z: 0}}
	_, err = world.RegisterAgent(id, physics.Player, start, 80)
	require.NoError(t, err)

	require.NoError(t, world.RequestMovement(id, geom.Vec3{X: 8, Y: 0, Z: 0}, 3))

	reachedAt := -1
	const dt = 0.008
	for i := 0; i < 4000; i++ {
		world.Step(dt)
		if _, err := world.Motion.GetWaypoints(id); err == nil {
			idx, _ := world.Motion.GetCurrentWaypointIndex(id)
			wps, _ := world.Motion.GetWaypoints(id)
			if idx == len(wps)-1 {
				pose, err := world.Physics.GetPose(id)
				require.NoError(t, err)
				if pose.Position.DistXZ(wps[len(wps)-1]) <= cfg.Pathfinder.DestinationReachedThreshold {
					reachedAt = i
					break
				}
			}
		}
	}
	require.NotEqual(t, -1, reachedAt, "agent should reach its destination within the simulated budget")
}

func TestRegisterStaticObstacleBlocksDirectPath(t *testing.T) {
	cfg := spatialcfg.Defaults()
	world, err := New(flatGround(20), cfg)
	require.NoError(t, err)

	_, err = world.RegisterStaticObstacle(2, geom.RigidPose{Position: geom.Vec3{X: 0, Y: 1, Z: 0}}, geom.Vec3{X: 1, Y: 1, Z: 1})
	require.NoError(t, err)

	typ, err := world.Physics.EntityType(2)
	require.NoError(t, err)
	require.Equal(t, physics.Obstacle, typ)
}

func TestFindPathIndependentOfMovementState(t *testing.T) {
	world, err := New(flatGround(20), spatialcfg.Defaults())
	require.NoError(t, err)

	path, err := world.FindPath(geom.Vec3{X: -5, Y: 0, Z: 0}, geom.Vec3{X: 5, Y: 0, Z: 0})
	require.NoError(t, err)
	require.NotEmpty(t, path.Waypoints)
}
