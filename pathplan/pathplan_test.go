// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/spatialerr"
)

func flatGroundSoup(halfSize float64) navmesh.TriangleSoup {
	positions := []geom.Vec3{
		{X: -halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: halfSize},
		{X: -halfSize, Y: 0, Z: halfSize},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return navmesh.TriangleSoup{Positions: positions, Indices: indices}
}

func buildFlatNavMesh(t *testing.T) *navmesh.NavMesh {
	t.Helper()
	agent := navmesh.DefaultAgentConfig()
	nm, err := navmesh.BuildNavMesh(flatGroundSoup(10), agent, navmesh.DefaultBuildOptions())
	require.NoError(t, err)
	require.NotEmpty(t, nm.Polygons)
	return nm
}

func TestFindPathOnFlatGroundStaysWithinBounds(t *testing.T) {
	nm := buildFlatNavMesh(t)
	path, err := FindPath(nm, geom.Vec3{X: -8, Y: 1, Z: -8}, geom.Vec3{X: 8, Y: 1, Z: 8}, DefaultSnapExtents)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(path.Waypoints), 2)
	for _, w := range path.Waypoints {
		require.InDelta(t, 0, w.Y, 0.6)
		require.LessOrEqual(t, w.X, 10.01)
		require.GreaterOrEqual(t, w.X, -10.01)
	}
}

func TestFindPathFailsWhenGoalUnreachable(t *testing.T) {
	nm := buildFlatNavMesh(t)
	_, err := FindPath(nm, geom.Vec3{X: -8, Y: 1, Z: -8}, geom.Vec3{X: 5000, Y: 1, Z: 5000}, DefaultSnapExtents)
	require.ErrorIs(t, err, spatialerr.ErrNotOnNavMesh)
}

func TestValidatePathAcceptsFlatSegments(t *testing.T) {
	agent := navmesh.DefaultAgentConfig()
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}}
	require.NoError(t, ValidatePath(path, agent))
}

func TestValidatePathRejectsExcessiveClimb(t *testing.T) {
	agent := navmesh.DefaultAgentConfig()
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0.05, Y: 3, Z: 0}}}
	err := ValidatePath(path, agent)
	require.ErrorIs(t, err, spatialerr.ErrPathInvalid)
}

func TestValidatePathRejectsExcessiveSlope(t *testing.T) {
	agent := navmesh.DefaultAgentConfig()
	// 10m rise over 1m run is far steeper than 45 degrees, and the
	// vertical delta alone also exceeds max_climb, so either check
	// would reject it; this exercises the slope branch specifically
	// by keeping horizontal distance above the 0.01m threshold.
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 10, Z: 0}}}
	err := ValidatePath(path, agent)
	require.ErrorIs(t, err, spatialerr.ErrPathInvalid)
}

func TestTryFixPathIsIdempotentOnValidPath(t *testing.T) {
	agent := navmesh.DefaultAgentConfig()
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 0, Z: 0}}}
	fixed, ok := TryFixPath(path, agent)
	require.True(t, ok)
	require.Equal(t, path.Waypoints, fixed.Waypoints)
}

func TestTryFixPathSplitsExcessiveClimbIntoValidSubsteps(t *testing.T) {
	agent := navmesh.DefaultAgentConfig()
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}}}
	require.Error(t, ValidatePath(path, agent))

	fixed, ok := TryFixPath(path, agent)
	require.True(t, ok)
	require.Greater(t, len(fixed.Waypoints), 2)
	require.NoError(t, ValidatePath(fixed, agent))
}

func TestTryFixPathRejectsWhenStillInvalid(t *testing.T) {
	// max_climb of 0 would make climbSubsteps degrade to a single
	// substep that cannot possibly satisfy the original constraint;
	// simulate an unfixable path via a near-vertical, near-zero
	// horizontal segment that also fails the slope check after
	// subdivision (subdivision only reduces per-step Δy, not slope).
	agent := navmesh.AgentConfig{Height: 1.8, Radius: 0.4, MaxSlopeDeg: 5, MaxClimb: 0.05}
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 5, Z: 0}}}
	_, ok := TryFixPath(path, agent)
	require.False(t, ok)
}

func TestDetectBridgeArtifactsFlagsCliff(t *testing.T) {
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 0.2, Y: 3, Z: 0}}}
	flags := DetectBridgeArtifacts(path)
	require.Len(t, flags, 1)
	require.Equal(t, 0, flags[0].SegmentIndex)
}

func TestDetectBridgeArtifactsFlagsLongBridge(t *testing.T) {
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 30, Y: 0, Z: 0}}}
	flags := DetectBridgeArtifacts(path)
	require.Len(t, flags, 1)
}

func TestDetectBridgeArtifactsClearOnNormalPath(t *testing.T) {
	path := Path{Waypoints: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 5, Y: 0.1, Z: 0}, {X: 10, Y: 0.2, Z: 0}}}
	require.Empty(t, DetectBridgeArtifacts(path))
}
