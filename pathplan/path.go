// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/spatialerr"
)

// DefaultSnapExtents is the default tolerance used to snap an
// off-surface start/goal point onto the navmesh: (5, 10, 5), loose
// enough to tolerate off-surface start/goal queries that arise after
// physics settling.
var DefaultSnapExtents = geom.Vec3{X: 5, Y: 10, Z: 5}

// Path is an ordered polyline of waypoints beginning at the snapped
// start and ending at the snapped goal.
type Path struct {
	Waypoints []geom.Vec3
}

// Length returns the polyline's total Euclidean length.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p.Waypoints); i++ {
		total += p.Waypoints[i-1].Dist(p.Waypoints[i])
	}
	return total
}

// NearestWalkablePolygon snaps point to the nearest walkable polygon
// within extents, delegating directly to
// navmesh.NavMesh.NearestPolygon.
func NearestWalkablePolygon(nm *navmesh.NavMesh, point, extents geom.Vec3) (poly int, snapped geom.Vec3, err error) {
	return nm.NearestPolygon(point, extents)
}

// FindPath snaps start and goal onto the navmesh, runs A* over polygon
// adjacency, and string-pulls the minimum-length polyline through the
// resulting portal corridor. Returns spatialerr.ErrNotOnNavMesh if
// either endpoint fails to snap, or spatialerr.ErrNoPath if no
// corridor connects the two polygons.
func FindPath(nm *navmesh.NavMesh, start, goal geom.Vec3, extents geom.Vec3) (Path, error) {
	startPoly, snappedStart, err := nm.NearestPolygon(start, extents)
	if err != nil {
		return Path{}, err
	}
	goalPoly, snappedGoal, err := nm.NearestPolygon(goal, extents)
	if err != nil {
		return Path{}, err
	}

	chain := findPolygonPath(nm, startPoly, goalPoly)
	if chain == nil {
		return Path{}, spatialerr.NoPath("no polygon corridor between start and goal")
	}

	portals := buildPortals(nm, chain, snappedStart, snappedGoal)
	waypoints := stringPull(portals)
	if len(waypoints) == 0 {
		waypoints = []geom.Vec3{snappedStart, snappedGoal}
	}
	return Path{Waypoints: waypoints}, nil
}
