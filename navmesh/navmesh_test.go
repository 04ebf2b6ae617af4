// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/spatialerr"
)

// flatGroundSoup returns a single large flat quad (two triangles)
// centered at the origin, large enough to produce several voxels and
// at least one polygon at default AgentConfig scale.
func flatGroundSoup(halfSize float64) TriangleSoup {
	positions := []geom.Vec3{
		{X: -halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: halfSize},
		{X: -halfSize, Y: 0, Z: halfSize},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return TriangleSoup{Positions: positions, Indices: indices}
}

func wallOnlySoup() TriangleSoup {
	positions := []geom.Vec3{
		{X: -1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 5, Z: 0},
		{X: -1, Y: 5, Z: 0},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return TriangleSoup{Positions: positions, Indices: indices}
}

func TestBuildNavMeshFlatGround(t *testing.T) {
	agent := DefaultAgentConfig()
	nm, err := BuildNavMesh(flatGroundSoup(10), agent, DefaultBuildOptions())
	require.NoError(t, err)
	require.NotEmpty(t, nm.Polygons)
	for _, p := range nm.Polygons {
		require.Equal(t, AreaWalkable, p.AreaID)
		require.NotZero(t, p.Flags&FlagWalkable)
	}
}

func TestBuildNavMeshEmptyOnVerticalWall(t *testing.T) {
	agent := DefaultAgentConfig()
	_, err := BuildNavMesh(wallOnlySoup(), agent, DefaultBuildOptions())
	require.ErrorIs(t, err, spatialerr.ErrEmptyNavMesh)
}

func TestBuildNavMeshEmptyOnNoTriangles(t *testing.T) {
	agent := DefaultAgentConfig()
	_, err := BuildNavMesh(TriangleSoup{}, agent, DefaultBuildOptions())
	require.ErrorIs(t, err, spatialerr.ErrEmptyNavMesh)
}

func TestBuildNavMeshRejectsInvalidAgentConfig(t *testing.T) {
	_, err := BuildNavMesh(flatGroundSoup(10), AgentConfig{}, DefaultBuildOptions())
	require.ErrorIs(t, err, spatialerr.ErrInvalidParameter)
}

func TestNearestPolygonOnSurface(t *testing.T) {
	agent := DefaultAgentConfig()
	nm, err := BuildNavMesh(flatGroundSoup(10), agent, DefaultBuildOptions())
	require.NoError(t, err)

	_, snapped, err := nm.NearestPolygon(geom.Vec3{X: 0, Y: 5, Z: 0}, geom.Vec3{X: 5, Y: 10, Z: 5})
	require.NoError(t, err)
	require.InDelta(t, 0, snapped.Y, 0.5)
}

func TestNearestPolygonFailsFarAway(t *testing.T) {
	agent := DefaultAgentConfig()
	nm, err := BuildNavMesh(flatGroundSoup(10), agent, DefaultBuildOptions())
	require.NoError(t, err)

	_, _, err = nm.NearestPolygon(geom.Vec3{X: 1000, Y: 0, Z: 1000}, geom.Vec3{X: 1, Y: 1, Z: 1})
	require.ErrorIs(t, err, spatialerr.ErrNotOnNavMesh)
}

func TestExportDiagnosticProducesFacesForEveryPolygon(t *testing.T) {
	agent := DefaultAgentConfig()
	nm, err := BuildNavMesh(flatGroundSoup(10), agent, DefaultBuildOptions())
	require.NoError(t, err)
	dump := nm.ExportDiagnostic()
	require.Contains(t, dump, "# spatialcore navmesh")
	require.Contains(t, dump, "f ")
}

func TestExportDiagnosticYAMLReportsPolygonCount(t *testing.T) {
	agent := DefaultAgentConfig()
	nm, err := BuildNavMesh(flatGroundSoup(10), agent, DefaultBuildOptions())
	require.NoError(t, err)
	out, err := nm.ExportDiagnosticYAML()
	require.NoError(t, err)
	require.Contains(t, out, "polygon_count:")
	require.Contains(t, out, fmt.Sprintf("polygon_count: %d", len(nm.Polygons)))
}
