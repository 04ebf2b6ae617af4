// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import "github.com/echolink/spatialcore/geom"

// Polygon is one convex (at build time) navmesh cell: up to
// verts_per_poly vertices over XZ, an area id, filter flags, and a
// per-edge neighbour index (-1 for a border edge).
type Polygon struct {
	Verts     []geom.Vec3
	AreaID    uint8
	Flags     uint8
	Neighbors []int // len == len(Verts); Neighbors[i] borders edge (Verts[i], Verts[i+1])
}

const maxVertsPerPoly = 6

// buildPolyMesh triangulates every contour and greedily merges
// edge-adjacent triangle pairs back into larger convex polygons (up to
// maxVertsPerPoly vertices), mirroring BuildPolyMesh's ear-clip +
// merge strategy in the reference builder, then computes cross-polygon
// adjacency for the planner's portal search.
func buildPolyMesh(contours []contour) []Polygon {
	var polys []Polygon
	for _, c := range contours {
		tris := earClipTriangulate(c.verts)
		for _, t := range tris {
			polys = append(polys, Polygon{
				Verts:  []geom.Vec3{c.verts[t[0]], c.verts[t[1]], c.verts[t[2]]},
				AreaID: AreaWalkable,
				Flags:  FlagWalkable,
			})
		}
	}
	polys = mergePolygons(polys)
	computeAdjacency(polys)
	return polys
}

// earClipTriangulate triangulates a simple polygon (convex or concave)
// given as a closed vertex loop, projecting to XZ for orientation
// tests since navmesh surfaces are height fields over XZ.
func earClipTriangulate(verts []geom.Vec3) [][3]int {
	n := len(verts)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if signedAreaXZ(verts, idx) < 0 {
		reverseInts(idx)
	}

	var tris [][3]int
	guard := 0
	for len(idx) > 3 && guard < n*n+8 {
		guard++
		earFound := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isConvexXZ(verts[prev], verts[cur], verts[next]) {
				continue
			}
			if triangleContainsAnyXZ(verts, prev, cur, next, idx) {
				continue
			}
			tris = append(tris, [3]int{prev, cur, next})
			idx = append(idx[:i], idx[i+1:]...)
			earFound = true
			break
		}
		if !earFound {
			break // degenerate input; keep whatever triangles were found
		}
	}
	if len(idx) == 3 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func signedAreaXZ(verts []geom.Vec3, idx []int) float64 {
	var sum float64
	for i := 0; i < len(idx); i++ {
		a := verts[idx[i]]
		b := verts[idx[(i+1)%len(idx)]]
		sum += a.X*b.Z - b.X*a.Z
	}
	return sum
}

func isConvexXZ(a, b, c geom.Vec3) bool {
	cross := (b.X-a.X)*(c.Z-a.Z) - (b.Z-a.Z)*(c.X-a.X)
	return cross > geom.Epsilon
}

func triangleContainsAnyXZ(verts []geom.Vec3, a, b, c int, idx []int) bool {
	tri := geom.Triangle{A: verts[a], B: verts[b], C: verts[c]}
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		if tri.ContainsXZ(verts[i]) {
			return true
		}
	}
	return false
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// mergePolygons greedily merges pairs of polygons sharing exactly one
// XZ edge when the union stays convex and within maxVertsPerPoly,
// reducing the triangle fan from earClipTriangulate back toward the
// larger quads/pentagons/hexagons a hand-authored navmesh would use.
func mergePolygons(polys []Polygon) []Polygon {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(polys); i++ {
			for j := i + 1; j < len(polys); j++ {
				merged, ok := tryMerge(polys[i], polys[j])
				if !ok {
					continue
				}
				polys[i] = merged
				polys = append(polys[:j], polys[j+1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
	return polys
}

// tryMerge attempts to merge two polygons across a single shared edge.
func tryMerge(a, b Polygon) (Polygon, bool) {
	ai, bi, ok := sharedEdge(a.Verts, b.Verts)
	if !ok {
		return Polygon{}, false
	}
	merged := spliceAtEdge(a.Verts, b.Verts, ai, bi)
	if len(merged) > maxVertsPerPoly || len(merged) < 3 {
		return Polygon{}, false
	}
	if !isConvexLoopXZ(merged) {
		return Polygon{}, false
	}
	return Polygon{Verts: merged, AreaID: a.AreaID, Flags: a.Flags}, true
}

// sharedEdge reports the edge index (start vertex) in each loop whose
// endpoints coincide (in opposite winding), i.e. a shared border edge.
func sharedEdge(a, b []geom.Vec3) (int, int, bool) {
	for i := range a {
		a0, a1 := a[i], a[(i+1)%len(a)]
		for j := range b {
			b0, b1 := b[j], b[(j+1)%len(b)]
			if a0.Aeq(b1) && a1.Aeq(b0) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// spliceAtEdge joins loop a (edge starting at ai removed) with loop b
// (edge starting at bi removed) into one combined loop.
func spliceAtEdge(a, b []geom.Vec3, ai, bi int) []geom.Vec3 {
	var out []geom.Vec3
	n := len(a)
	for k := 0; k < n; k++ {
		out = append(out, a[(ai+1+k)%n])
		if k == n-1 {
			break
		}
	}
	m := len(b)
	for k := 0; k < m-1; k++ {
		out = append(out, b[(bi+1+k)%m])
	}
	return dedupeLoop(out)
}

func dedupeLoop(loop []geom.Vec3) []geom.Vec3 {
	var out []geom.Vec3
	for i, v := range loop {
		next := loop[(i+1)%len(loop)]
		if v.Aeq(next) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func isConvexLoopXZ(loop []geom.Vec3) bool {
	n := len(loop)
	for i := 0; i < n; i++ {
		a := loop[(i-1+n)%n]
		b := loop[i]
		c := loop[(i+1)%n]
		if !isConvexXZ(a, b, c) {
			return false
		}
	}
	return true
}

// computeAdjacency fills Neighbors on every polygon by matching shared
// XZ edges across the whole polygon set.
func computeAdjacency(polys []Polygon) {
	for i := range polys {
		polys[i].Neighbors = make([]int, len(polys[i].Verts))
		for e := range polys[i].Neighbors {
			polys[i].Neighbors[e] = -1
		}
	}
	for i := range polys {
		for ei := range polys[i].Verts {
			a0 := polys[i].Verts[ei]
			a1 := polys[i].Verts[(ei+1)%len(polys[i].Verts)]
			for j := range polys {
				if i == j {
					continue
				}
				for ej := range polys[j].Verts {
					b0 := polys[j].Verts[ej]
					b1 := polys[j].Verts[(ej+1)%len(polys[j].Verts)]
					if a0.Aeq(b1) && a1.Aeq(b0) {
						polys[i].Neighbors[ei] = j
					}
				}
			}
		}
	}
}

// Center returns the polygon's XZ centroid (Y averaged), used as the
// A* heuristic/portal reference point.
func (p Polygon) Center() geom.Vec3 {
	var sum geom.Vec3
	for _, v := range p.Verts {
		sum = sum.Add(v)
	}
	return sum.Scale(1.0 / float64(len(p.Verts)))
}

// EdgeMidpoint returns the midpoint of the polygon's edge e (between
// Verts[e] and Verts[e+1]). A* costs use polygon centers, not this
// point.
func (p Polygon) EdgeMidpoint(e int) geom.Vec3 {
	a := p.Verts[e]
	b := p.Verts[(e+1)%len(p.Verts)]
	return a.Lerp(b, 0.5)
}
