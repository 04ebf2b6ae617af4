// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import (
	"math"

	"github.com/echolink/spatialcore/geom"
)

// span is one solid voxel run within a heightfield column, following
// the SMin/SMax run-length convention of the reference Recast
// heightfield.
type span struct {
	smin, smax int
	area       uint8
}

// heightfield is a solid voxel grid: one sorted, non-overlapping list
// of spans per (x,z) column.
type heightfield struct {
	width, depth int
	bmin, bmax   geom.Vec3
	cellSize     float64
	cellHeight   float64
	spans        [][]span // len == width*depth
}

func newHeightfield(bmin, bmax geom.Vec3, cellSize, cellHeight float64) *heightfield {
	width := int(math.Ceil((bmax.X-bmin.X)/cellSize)) + 1
	depth := int(math.Ceil((bmax.Z-bmin.Z)/cellSize)) + 1
	return &heightfield{
		width: width, depth: depth,
		bmin: bmin, bmax: bmax,
		cellSize: cellSize, cellHeight: cellHeight,
		spans: make([][]span, width*depth),
	}
}

func (hf *heightfield) columnIndex(x, z int) int { return z*hf.width + x }

// addSpan inserts a solid run [smin,smax) with area into the column at
// (x,z), merging with any overlapping or adjacent existing span the
// way RasterizeTriangles does when conservative rasterization produces
// touching voxel runs from adjacent triangles.
func (hf *heightfield) addSpan(x, z, smin, smax int, area uint8) {
	if x < 0 || x >= hf.width || z < 0 || z >= hf.depth || smin >= smax {
		return
	}
	idx := hf.columnIndex(x, z)
	col := hf.spans[idx]
	var merged []span
	s := span{smin: smin, smax: smax, area: area}
	inserted := false
	for _, existing := range col {
		if s.smax < existing.smin || s.smin > existing.smax {
			if !inserted && s.smax < existing.smin {
				merged = append(merged, s)
				inserted = true
			}
			merged = append(merged, existing)
			continue
		}
		if existing.smin < s.smin {
			s.smin = existing.smin
		}
		if existing.smax > s.smax {
			s.smax = existing.smax
		}
		if existing.area > s.area {
			s.area = existing.area
		}
	}
	if !inserted {
		merged = append(merged, s)
	}
	hf.spans[idx] = merged
}

// computeBounds returns the AABB of all positions in soup (walkable or
// not), expanded by (0,-cellHeight,0) below and
// (0, 2*height, 0) above.
func computeBounds(soup TriangleSoup, agent AgentConfig, cellHeight float64) geom.AABB {
	box := geom.AABB{Min: geom.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}, Max: geom.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}}
	for _, p := range soup.Positions {
		box = box.ExpandPoint(p)
	}
	box.Min.Y -= cellHeight
	box.Max.Y += 2 * agent.Height
	return box
}

// markWalkableTriangles returns a per-triangle area array, downgrading
// any triangle whose slope exceeds max_slope_deg to AreaNull,
// mirroring MarkWalkableTriangles in the reference builder.
func markWalkableTriangles(soup TriangleSoup, agent AgentConfig) []uint8 {
	n := soup.TriangleCount()
	out := make([]uint8, n)
	slopeLimit := math.Cos(geom.Rad(agent.MaxSlopeDeg))
	for i := 0; i < n; i++ {
		area := soup.areaID(i)
		if area == AreaNull {
			out[i] = AreaNull
			continue
		}
		tri := soup.triangle(i)
		if tri.IsDegenerate() {
			out[i] = AreaNull
			continue
		}
		normal := tri.Normal().Normalize()
		if normal.Y <= slopeLimit {
			out[i] = AreaNull
			continue
		}
		out[i] = AreaWalkable
	}
	return out
}

// occlusionFilter re-tags any walkable triangle whose XZ AABB overlaps
// an unwalkable triangle's XZ AABB and whose vertical span lies within
// that triangle's vertical span as unwalkable (preventing ghost floors under walls). O(T^2) with an
// AABB early-out; acceptable at the triangle counts this runtime
// targets, though a broadphase would be needed at much larger scale.
func occlusionFilter(soup TriangleSoup, areas []uint8) {
	n := soup.TriangleCount()
	boxes := make([]geom.AABB, n)
	for i := 0; i < n; i++ {
		boxes[i] = soup.triangle(i).AABB()
	}
	for i := 0; i < n; i++ {
		if areas[i] == AreaNull {
			continue
		}
		for j := 0; j < n; j++ {
			if i == j || areas[j] != AreaNull {
				continue
			}
			// j is an unwalkable (wall) triangle; occlude i if their XZ
			// footprints overlap and j's span covers i's.
			if boxes[i].Min.X > boxes[j].Max.X || boxes[i].Max.X < boxes[j].Min.X {
				continue
			}
			if boxes[i].Min.Z > boxes[j].Max.Z || boxes[i].Max.Z < boxes[j].Min.Z {
				continue
			}
			if boxes[i].Max.Y <= boxes[j].Max.Y && boxes[i].Min.Y >= boxes[j].Min.Y-geom.Epsilon {
				areas[i] = AreaNull
			}
		}
	}
}

// rasterizeTriangles converts the walkable triangle set into solid
// heightfield spans, covering every voxel column inside the triangle's
// XZ AABB whose cell center lies inside the triangle's XZ projection,
// with the triangle's whole Y range as the span (a deliberately
// simpler rasterizer than the reference's exact triangle/box clipping,
// acceptable because the compact heightfield stage below only needs a
// column's topmost floor height). A flat triangle still gets a span
// one voxel tall.
func rasterizeTriangles(soup TriangleSoup, areas []uint8, hf *heightfield) {
	for i := 0; i < soup.TriangleCount(); i++ {
		if areas[i] == AreaNull {
			continue
		}
		tri := soup.triangle(i)
		box := tri.AABB()
		x0 := int(math.Floor((box.Min.X - hf.bmin.X) / hf.cellSize))
		x1 := int(math.Floor((box.Max.X - hf.bmin.X) / hf.cellSize))
		z0 := int(math.Floor((box.Min.Z - hf.bmin.Z) / hf.cellSize))
		z1 := int(math.Floor((box.Max.Z - hf.bmin.Z) / hf.cellSize))
		ymin := int(math.Floor((box.Min.Y - hf.bmin.Y) / hf.cellHeight))
		ymax := int(math.Ceil((box.Max.Y - hf.bmin.Y) / hf.cellHeight))
		if ymax <= ymin {
			ymax = ymin + 1
		}
		for z := z0; z <= z1; z++ {
			for x := x0; x <= x1; x++ {
				cx := hf.bmin.X + (float64(x)+0.5)*hf.cellSize
				cz := hf.bmin.Z + (float64(z)+0.5)*hf.cellSize
				if !tri.ContainsXZ(geom.Vec3{X: cx, Z: cz}) {
					continue
				}
				hf.addSpan(x, z, ymin, ymax, areas[i])
			}
		}
	}
}

// filterLowHangingWalkableObstacles promotes a span's area to that of
// the span below it when the gap between them is within walkableClimb,
// matching the reference's rationale of absorbing small ledges caused
// by conservative rasterization.
func filterLowHangingWalkableObstacles(agent AgentConfig, hf *heightfield) {
	climb := agent.walkableClimbVoxels()
	for i := range hf.spans {
		col := hf.spans[i]
		for s := 1; s < len(col); s++ {
			if col[s].area == AreaNull && col[s-1].area != AreaNull && col[s].smin-col[s-1].smax <= climb {
				col[s].area = col[s-1].area
			}
		}
	}
}

// filterLedgeSpans removes the walkable flag from spans whose
// neighbouring column drops (or rises) by more than max_climb,
// preventing agents from standing at the lip of a ledge.
func filterLedgeSpans(agent AgentConfig, hf *heightfield) {
	climb := agent.walkableClimbVoxels()
	height := agent.walkableHeightVoxels()
	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for z := 0; z < hf.depth; z++ {
		for x := 0; x < hf.width; x++ {
			col := hf.spans[hf.columnIndex(x, z)]
			for s := range col {
				if col[s].area == AreaNull {
					continue
				}
				floor := col[s].smax
				minNeighborFloor := math.MaxInt32
				maxNeighborFloor := math.MinInt32
				for _, d := range dirs {
					nx, nz := x+d[0], z+d[1]
					if nx < 0 || nx >= hf.width || nz < 0 || nz >= hf.depth {
						minNeighborFloor = floor - climb - 1
						continue
					}
					nCol := hf.spans[hf.columnIndex(nx, nz)]
					best := math.MaxInt32
					for _, ns := range nCol {
						if ns.area == AreaNull {
							continue
						}
						gap := ns.smin - floor
						if gap > height {
							continue
						}
						diff := ns.smax - floor
						if diff < best {
							best = diff
						}
					}
					if best == math.MaxInt32 {
						minNeighborFloor = floor - climb - 1
						continue
					}
					if best < minNeighborFloor {
						minNeighborFloor = best
					}
					if best > maxNeighborFloor {
						maxNeighborFloor = best
					}
				}
				if minNeighborFloor < -climb || maxNeighborFloor-minNeighborFloor > climb {
					col[s].area = AreaNull
				}
			}
		}
	}
}

// filterWalkableLowHeightSpans removes the walkable flag from spans
// whose head-room (gap to the next span above) is less than
// agent_height.
func filterWalkableLowHeightSpans(agent AgentConfig, hf *heightfield) {
	height := agent.walkableHeightVoxels()
	for i := range hf.spans {
		col := hf.spans[i]
		for s := range col {
			if col[s].area == AreaNull {
				continue
			}
			headroom := math.MaxInt32
			if s+1 < len(col) {
				headroom = col[s+1].smin - col[s].smax
			}
			if headroom < height {
				col[s].area = AreaNull
			}
		}
	}
}
