// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
)

// portal is one gateway of the polygon corridor: the left/right
// endpoints of the shared edge between consecutive polygons in the
// chain returned by findPolygonPath.
type portal struct {
	left, right geom.Vec3
}

// buildPortals turns a polygon index chain into the sequence of
// portals a string-pulling funnel walks through, with degenerate
// (point) portals at the start and goal.
func buildPortals(nm *navmesh.NavMesh, chain []int, start, goal geom.Vec3) []portal {
	portals := make([]portal, 0, len(chain)+1)
	portals = append(portals, portal{left: start, right: start})
	for i := 0; i < len(chain)-1; i++ {
		left, right, ok := sharedPortal(nm, chain[i], chain[i+1])
		if !ok {
			continue
		}
		portals = append(portals, portal{left: left, right: right})
	}
	portals = append(portals, portal{left: goal, right: goal})
	return portals
}

// triarea2 is twice the signed XZ area of triangle (a,b,c); positive
// when c is left of the directed line a->b.
func triarea2(a, b, c geom.Vec3) float64 {
	return (b.X-a.X)*(c.Z-a.Z) - (c.X-a.X)*(b.Z-a.Z)
}

// stringPull runs the classic funnel algorithm (Mononen's "Simple
// Stupid Funnel Algorithm", the same string-pulling approach Detour's
// findStraightPath uses) over a portal sequence to produce the
// minimum-length polyline constrained to the corridor, per spec
// §4.4.1's "final straight-path extraction pulls the string through
// portals".
func stringPull(portals []portal) []geom.Vec3 {
	if len(portals) == 0 {
		return nil
	}
	apex := portals[0].left
	left := portals[0].left
	right := portals[0].right
	apexIndex, leftIndex, rightIndex := 0, 0, 0

	path := []geom.Vec3{apex}

	i := 1
	for i < len(portals) {
		portalLeft := portals[i].left
		portalRight := portals[i].right

		// Update right vertex.
		if triarea2(apex, right, portalRight) <= 0 {
			if apex.Aeq(right) || triarea2(apex, left, portalRight) > 0 {
				right = portalRight
				rightIndex = i
			} else {
				path = append(path, left)
				apex = left
				apexIndex = leftIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex + 1
				continue
			}
		}

		// Update left vertex.
		if triarea2(apex, left, portalLeft) >= 0 {
			if apex.Aeq(left) || triarea2(apex, right, portalLeft) < 0 {
				left = portalLeft
				leftIndex = i
			} else {
				path = append(path, right)
				apex = right
				apexIndex = rightIndex
				left, right = apex, apex
				leftIndex, rightIndex = apexIndex, apexIndex
				i = apexIndex + 1
				continue
			}
		}

		i++
	}

	last := portals[len(portals)-1].left
	if len(path) == 0 || !path[len(path)-1].Aeq(last) {
		path = append(path, last)
	}
	return path
}
