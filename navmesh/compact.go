// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

// compactCell is one walkable column's topmost floor in the compact
// heightfield: simplified from the reference's multi-span compact
// cell down to a single floor per column, since this builder targets
// single-story outdoor/indoor terrain rather than stacked walkable
// layers (spec's Non-goals exclude multi-tile/streaming navmeshes;
// multi-layer single-tile floors are a further simplification).
type compactCell struct {
	walkable bool
	floor    int // voxel Y of the walkable surface
	area     uint8
	dist     int // distance (in voxels) to the nearest non-walkable cell or border
	region   int // 0 = unassigned
}

// compactHeightfield is the per-column simplification of a
// heightfield used by region partitioning, contour tracing and
// erosion.
type compactHeightfield struct {
	width, depth int
	hf           *heightfield
	cells        []compactCell
}

func (chf *compactHeightfield) index(x, z int) int { return z*chf.width + x }

func (chf *compactHeightfield) at(x, z int) *compactCell {
	if x < 0 || x >= chf.width || z < 0 || z >= chf.depth {
		return nil
	}
	return &chf.cells[chf.index(x, z)]
}

// buildCompactHeightfield collapses hf's per-column span list down to
// the topmost walkable span, mirroring BuildCompactHeightfield's role
// of producing a denser, neighbour-aware representation for the
// remaining pipeline stages.
func buildCompactHeightfield(hf *heightfield) *compactHeightfield {
	chf := &compactHeightfield{width: hf.width, depth: hf.depth, hf: hf, cells: make([]compactCell, hf.width*hf.depth)}
	for z := 0; z < hf.depth; z++ {
		for x := 0; x < hf.width; x++ {
			col := hf.spans[hf.columnIndex(x, z)]
			cell := chf.at(x, z)
			for i := len(col) - 1; i >= 0; i-- {
				if col[i].area != AreaNull {
					cell.walkable = true
					cell.floor = col[i].smax
					cell.area = col[i].area
					break
				}
			}
		}
	}
	return chf
}

var neighborOffsets4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// buildDistanceField computes, for every walkable cell, the 4-neighbour
// (Manhattan) BFS distance in voxels to the nearest non-walkable cell or the
// heightfield border, matching the reference's rcBuildDistanceField
// role of feeding both erosion and (there) watershed seeding.
func buildDistanceField(chf *compactHeightfield) {
	type coord struct{ x, z int }
	queue := make([]coord, 0, len(chf.cells))
	const unvisited = -1
	for i := range chf.cells {
		chf.cells[i].dist = unvisited
	}
	for z := 0; z < chf.depth; z++ {
		for x := 0; x < chf.width; x++ {
			cell := chf.at(x, z)
			if !cell.walkable {
				continue
			}
			isBorder := false
			for _, d := range neighborOffsets4 {
				n := chf.at(x+d[0], z+d[1])
				if n == nil || !n.walkable {
					isBorder = true
					break
				}
			}
			if isBorder {
				cell.dist = 0
				queue = append(queue, coord{x, z})
			}
		}
	}
	for head := 0; head < len(queue); head++ {
		c := queue[head]
		cur := chf.at(c.x, c.z)
		for _, d := range neighborOffsets4 {
			nx, nz := c.x+d[0], c.z+d[1]
			n := chf.at(nx, nz)
			if n == nil || !n.walkable || n.dist != unvisited {
				continue
			}
			n.dist = cur.dist + 1
			queue = append(queue, coord{nx, nz})
		}
	}
}

// erodeWalkableArea clears the walkable flag from any cell whose
// distance-to-border is less than radiusVoxels, matching
// ErodeWalkableArea's role of keeping agents' collision volume from
// protruding past the navmesh edge.
func erodeWalkableArea(radiusVoxels int, chf *compactHeightfield) {
	buildDistanceField(chf)
	for i := range chf.cells {
		if chf.cells[i].walkable && chf.cells[i].dist < radiusVoxels {
			chf.cells[i].walkable = false
		}
	}
}
