// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import (
	"math"

	"github.com/echolink/spatialcore/geom"
)

// contour is one region's simplified boundary loop, in world space.
type contour struct {
	region int
	verts  []geom.Vec3
}

// gridVertex is a grid-corner coordinate: (x,z) in voxel units.
type gridVertex struct{ x, z int }

// cellFloorY returns the heightfield Y for a walkable cell at (x,z),
// or false if the cell is not walkable.
func cellFloorY(chf *compactHeightfield, x, z int) (float64, bool) {
	cell := chf.at(x, z)
	if cell == nil || !cell.walkable {
		return 0, false
	}
	return chf.hf.bmin.Y + float64(cell.floor)*chf.hf.cellHeight, true
}

// cornerY picks a representative Y for a grid corner by averaging the
// floor heights of its walkable adjacent cells.
func cornerY(chf *compactHeightfield, x, z int) float64 {
	var sum float64
	var n int
	for _, d := range [4][2]int{{0, 0}, {-1, 0}, {0, -1}, {-1, -1}} {
		if y, ok := cellFloorY(chf, x+d[0], z+d[1]); ok {
			sum += y
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func (v gridVertex) worldXZ(chf *compactHeightfield) (float64, float64) {
	return chf.hf.bmin.X + float64(v.x)*chf.hf.cellSize, chf.hf.bmin.Z + float64(v.z)*chf.hf.cellSize
}

// buildContours traces the boundary of every region in chf into a
// dense grid-aligned loop, then simplifies it with Douglas-Peucker
// down to maxErr and re-splits any simplified edge exceeding
// maxEdgeLen.
func buildContours(chf *compactHeightfield, regionCount int, maxErr, maxEdgeLen float64) []contour {
	var contours []contour
	for region := 1; region <= regionCount; region++ {
		loops := traceRegionBoundary(chf, region)
		for _, loop := range loops {
			if len(loop) < 3 {
				continue
			}
			dense := make([]geom.Vec3, len(loop))
			for i, gv := range loop {
				wx, wz := gv.worldXZ(chf)
				dense[i] = geom.Vec3{X: wx, Y: cornerY(chf, gv.x, gv.z), Z: wz}
			}
			simplified := simplifyContour(dense, maxErr, maxEdgeLen)
			if len(simplified) >= 3 {
				contours = append(contours, contour{region: region, verts: simplified})
			}
		}
	}
	return contours
}

// traceRegionBoundary extracts every boundary loop of region as a
// sequence of grid-corner vertices, using a directed border-edge
// convention under which each edge's travel direction keeps the
// region's interior on a consistent side, so closed loops can be
// recovered by chaining edges on shared endpoints.
func traceRegionBoundary(chf *compactHeightfield, region int) [][]gridVertex {
	type edge struct{ from, to gridVertex }
	var edges []edge
	inRegion := func(x, z int) bool {
		c := chf.at(x, z)
		return c != nil && c.walkable && c.region == region
	}
	for z := 0; z < chf.depth; z++ {
		for x := 0; x < chf.width; x++ {
			if !inRegion(x, z) {
				continue
			}
			if !inRegion(x+1, z) {
				edges = append(edges, edge{gridVertex{x + 1, z + 1}, gridVertex{x + 1, z}})
			}
			if !inRegion(x, z+1) {
				edges = append(edges, edge{gridVertex{x, z + 1}, gridVertex{x + 1, z + 1}})
			}
			if !inRegion(x-1, z) {
				edges = append(edges, edge{gridVertex{x, z}, gridVertex{x, z + 1}})
			}
			if !inRegion(x, z-1) {
				edges = append(edges, edge{gridVertex{x + 1, z}, gridVertex{x, z}})
			}
		}
	}

	next := make(map[gridVertex]gridVertex, len(edges))
	for _, e := range edges {
		next[e.from] = e.to
	}
	visited := make(map[gridVertex]bool, len(edges))
	var loops [][]gridVertex
	for _, e := range edges {
		if visited[e.from] {
			continue
		}
		var loop []gridVertex
		v := e.from
		for !visited[v] {
			visited[v] = true
			loop = append(loop, v)
			nv, ok := next[v]
			if !ok {
				break
			}
			v = nv
		}
		if len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops
}

// simplifyContour runs Douglas-Peucker simplification (tolerance
// maxErr, measured against the XZ line between the retained anchors)
// and then re-inserts dense vertices into any simplified edge whose
// world-space XZ length exceeds maxEdgeLen.
func simplifyContour(dense []geom.Vec3, maxErr, maxEdgeLen float64) []geom.Vec3 {
	n := len(dense)
	if n < 3 {
		return dense
	}
	keep := make([]bool, n)
	keep[0] = true
	rdpClosed(dense, 0, n-1, maxErr, keep)
	keep[n-1] = true

	var kept []int
	for i, k := range keep {
		if k {
			kept = append(kept, i)
		}
	}

	var out []geom.Vec3
	for i := 0; i < len(kept); i++ {
		a := kept[i]
		b := kept[(i+1)%len(kept)]
		out = append(out, dense[a])
		segLen := dense[a].DistXZ(dense[b])
		if segLen <= maxEdgeLen {
			continue
		}
		// Re-insert dense vertices between a and b (wrapping) to bound
		// edge length, picking roughly evenly spaced indices.
		steps := int(math.Ceil(segLen / maxEdgeLen))
		idxSpan := b - a
		if idxSpan <= 0 {
			idxSpan += n
		}
		for s := 1; s < steps && s < idxSpan; s++ {
			idx := (a + s*idxSpan/steps) % n
			out = append(out, dense[idx])
		}
	}
	return out
}

// rdpClosed applies Douglas-Peucker between dense[lo] and dense[hi]
// (inclusive indices into an otherwise-closed loop), marking indices
// to keep. Distance is measured in the XZ plane, since navmesh
// contours are a height field over XZ.
func rdpClosed(dense []geom.Vec3, lo, hi int, maxErr float64, keep []bool) {
	if hi <= lo+1 {
		return
	}
	a, b := dense[lo], dense[hi]
	best := -1.0
	bestIdx := -1
	for i := lo + 1; i < hi; i++ {
		d := perpendicularDistanceXZ(dense[i], a, b)
		if d > best {
			best = d
			bestIdx = i
		}
	}
	if best <= maxErr || bestIdx < 0 {
		return
	}
	keep[bestIdx] = true
	rdpClosed(dense, lo, bestIdx, maxErr, keep)
	rdpClosed(dense, bestIdx, hi, maxErr, keep)
}

func perpendicularDistanceXZ(p, a, b geom.Vec3) float64 {
	abx, abz := b.X-a.X, b.Z-a.Z
	length := math.Hypot(abx, abz)
	if length < geom.Epsilon {
		return p.DistXZ(a)
	}
	cross := (p.X-a.X)*abz - (p.Z-a.Z)*abx
	return math.Abs(cross) / length
}
