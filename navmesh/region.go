// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

// buildRegions partitions the compact heightfield's walkable cells
// into 4-connected regions by flood fill, seeding each new region at
// the first unassigned walkable cell in row-major scan order; the
// distance field is not consulted. This stands in for the reference's
// watershed partitioning (the rcBuildDistanceField + rcBuildRegions
// pair in the arl-go-detour port). A single connected component here
// becomes a single region; watershed's basin-splitting on interior
// saddle points is not reproduced. This does not change query-side
// correctness: a region is only ever a connectivity grouping consumed
// by contour tracing below.
//
// minRegionArea and mergeRegionArea use deliberately small defaults (1
// and 4 respectively) so narrow corridors are not discarded.
func buildRegions(chf *compactHeightfield, minRegionArea, mergeRegionArea int) int {
	nextRegion := 0
	for z := 0; z < chf.depth; z++ {
		for x := 0; x < chf.width; x++ {
			cell := chf.at(x, z)
			if !cell.walkable || cell.region != 0 {
				continue
			}
			nextRegion++
			area := floodFillRegion(chf, x, z, nextRegion)
			if area < minRegionArea {
				// Too small to stand on meaningfully; drop back to
				// unwalkable rather than keep a speck of a region.
				clearRegion(chf, nextRegion)
				nextRegion--
			}
		}
	}
	mergeSmallRegions(chf, nextRegion, mergeRegionArea)
	return nextRegion
}

func floodFillRegion(chf *compactHeightfield, sx, sz, region int) int {
	type coord struct{ x, z int }
	stack := []coord{{sx, sz}}
	chf.at(sx, sz).region = region
	area := 0
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++
		for _, d := range neighborOffsets4 {
			nx, nz := c.x+d[0], c.z+d[1]
			n := chf.at(nx, nz)
			if n == nil || !n.walkable || n.region != 0 {
				continue
			}
			n.region = region
			stack = append(stack, coord{nx, nz})
		}
	}
	return area
}

func clearRegion(chf *compactHeightfield, region int) {
	for i := range chf.cells {
		if chf.cells[i].region == region {
			chf.cells[i].walkable = false
			chf.cells[i].region = 0
		}
	}
}

// mergeSmallRegions folds any region whose area is below
// mergeRegionArea into the largest neighbouring region it touches,
// matching the reference's post-partition region merge pass.
func mergeSmallRegions(chf *compactHeightfield, regionCount, mergeRegionArea int) {
	areas := make(map[int]int)
	for _, c := range chf.cells {
		if c.region != 0 {
			areas[c.region]++
		}
	}
	for region, area := range areas {
		if area >= mergeRegionArea {
			continue
		}
		neighborAreas := make(map[int]int)
		for z := 0; z < chf.depth; z++ {
			for x := 0; x < chf.width; x++ {
				cell := chf.at(x, z)
				if cell.region != region {
					continue
				}
				for _, d := range neighborOffsets4 {
					n := chf.at(x+d[0], z+d[1])
					if n != nil && n.region != 0 && n.region != region {
						neighborAreas[n.region] = areas[n.region]
					}
				}
			}
		}
		best, bestArea := 0, 0
		for r, a := range neighborAreas {
			if a > bestArea {
				best, bestArea = r, a
			}
		}
		if best == 0 {
			continue
		}
		for i := range chf.cells {
			if chf.cells[i].region == region {
				chf.cells[i].region = best
			}
		}
	}
}
