// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import "math"

// Triangle is three points in space, used both as triangle-soup input
// to the navmesh builder and as the detail-mesh refinement unit.
type Triangle struct {
	A, B, C Vec3
}

// Normal returns the triangle's (not necessarily unit) face normal
// using the right-hand winding A->B->C.
func (t Triangle) Normal() Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A))
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 { return t.Normal().Len() * 0.5 }

// IsDegenerate reports whether the triangle has (near) zero area, i.e.
// its vertices are collinear or coincident. Degenerate triangles are
// silently filtered by the voxelizer per spec §6.1.
func (t Triangle) IsDegenerate() bool { return t.Area() < Epsilon }

// AABB returns the triangle's bounding box.
func (t Triangle) AABB() AABB {
	box := AABB{Min: t.A, Max: t.A}
	box = box.ExpandPoint(t.B)
	box = box.ExpandPoint(t.C)
	return box
}

// RayIntersect performs a Möller-Trumbore ray/triangle test. origin and
// dir describe the ray; dir need not be normalized. Returns whether the
// ray hits the triangle's front or back face within t in [0, maxT], and
// the hit distance along dir.
func (t Triangle) RayIntersect(origin, dir Vec3, maxT float64) (hit bool, dist float64) {
	edge1 := t.B.Sub(t.A)
	edge2 := t.C.Sub(t.A)
	pvec := dir.Cross(edge2)
	det := edge1.Dot(pvec)
	if math.Abs(det) < Epsilon {
		return false, 0
	}
	invDet := 1.0 / det
	tvec := origin.Sub(t.A)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return false, 0
	}
	qvec := tvec.Cross(edge1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return false, 0
	}
	d := edge2.Dot(qvec) * invDet
	if d < 0 || d > maxT {
		return false, 0
	}
	return true, d
}

// ContainsXZ reports whether point p, projected onto the XZ plane,
// falls inside the triangle's XZ projection. Used when recovering a
// surface Y for a given XZ query point (spec §3 detail_mesh).
func (t Triangle) ContainsXZ(p Vec3) bool {
	sign := func(p1, p2, p3 Vec3) float64 {
		return (p1.X-p3.X)*(p2.Z-p3.Z) - (p2.X-p3.X)*(p1.Z-p3.Z)
	}
	d1 := sign(p, t.A, t.B)
	d2 := sign(p, t.B, t.C)
	d3 := sign(p, t.C, t.A)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// HeightAtXZ barycentrically interpolates Y at point p's XZ position,
// assuming p.XZ lies within the triangle's XZ projection (see
// ContainsXZ). Used by the detail mesh to recover accurate surface Y.
func (t Triangle) HeightAtXZ(p Vec3) float64 {
	// Barycentric coordinates via the standard area-ratio method,
	// projected onto XZ since navmesh surfaces are height fields.
	v0 := t.B.Sub(t.A)
	v1 := t.C.Sub(t.A)
	v2 := p.Sub(t.A)
	d00 := v0.X*v0.X + v0.Z*v0.Z
	d01 := v0.X*v1.X + v0.Z*v1.Z
	d11 := v1.X*v1.X + v1.Z*v1.Z
	d20 := v2.X*v0.X + v2.Z*v0.Z
	d21 := v2.X*v1.X + v2.Z*v1.Z
	denom := d00*d11 - d01*d01
	if math.Abs(denom) < Epsilon {
		return (t.A.Y + t.B.Y + t.C.Y) / 3
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	u := 1 - v - w
	return u*t.A.Y + v*t.B.Y + w*t.C.Y
}
