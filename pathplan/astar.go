// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package pathplan implements polygon snapping, A* corridor search,
// straight-path string-pulling, segment validation and auto-fix (spec
// §4.4, component C5), grounded on the priority-queue shape of
// gazed-vu/ai/astar.go's Find: a container/heap frontier plus
// cameFrom/costSoFar maps, generalized here from an arbitrary point
// graph to navmesh polygon adjacency.
package pathplan

import (
	"container/heap"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
)

// polyQueueItem is one frontier entry: a polygon index and its
// estimated total cost (cost-so-far + heuristic), mirroring the
// teacher's priorityPoint.
type polyQueueItem struct {
	poly     int
	priority float64
}

type polyQueue []polyQueueItem

func (q polyQueue) Len() int            { return len(q) }
func (q polyQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q polyQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *polyQueue) Push(x interface{}) { *q = append(*q, x.(polyQueueItem)) }
func (q *polyQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// findPolygonPath runs A* over polygon adjacency from startPoly to
// goalPoly, using Euclidean distance between polygon centers as both
// edge cost and heuristic (admissible since it never overestimates the
// straight-line corridor distance). Returns the ordered polygon index
// chain, or nil if no corridor connects them.
func findPolygonPath(nm *navmesh.NavMesh, startPoly, goalPoly int) []int {
	if startPoly == goalPoly {
		return []int{startPoly}
	}
	cameFrom := map[int]int{startPoly: startPoly}
	costSoFar := map[int]float64{startPoly: 0}
	frontier := &polyQueue{{poly: startPoly, priority: 0}}
	heap.Init(frontier)

	goalCenter := nm.Polygons[goalPoly].Center()

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(polyQueueItem).poly
		if current == goalPoly {
			break
		}
		currentCenter := nm.Polygons[current].Center()
		for _, next := range nm.Polygons[current].Neighbors {
			if next < 0 {
				continue
			}
			nextCenter := nm.Polygons[next].Center()
			newCost := costSoFar[current] + currentCenter.Dist(nextCenter)
			if existing, ok := costSoFar[next]; !ok || newCost < existing {
				costSoFar[next] = newCost
				priority := newCost + nextCenter.Dist(goalCenter)
				heap.Push(frontier, polyQueueItem{poly: next, priority: priority})
				cameFrom[next] = current
			}
		}
	}

	if _, ok := cameFrom[goalPoly]; !ok {
		return nil
	}
	var chain []int
	cur := goalPoly
	for {
		chain = append([]int{cur}, chain...)
		if cur == startPoly {
			break
		}
		cur = cameFrom[cur]
	}
	return chain
}

// sharedPortal returns the two endpoints of the edge shared by
// polygons a and b, in (left, right) order consistent with a's CCW
// winding, used by the funnel algorithm in funnel.go.
func sharedPortal(nm *navmesh.NavMesh, a, b int) (left, right geom.Vec3, ok bool) {
	polyA := nm.Polygons[a]
	for e, n := range polyA.Neighbors {
		if n == b {
			v0 := polyA.Verts[e]
			v1 := polyA.Verts[(e+1)%len(polyA.Verts)]
			return v0, v1, true
		}
	}
	return geom.Vec3{}, geom.Vec3{}, false
}
