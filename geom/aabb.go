// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

// AABB is an axis-aligned bounding box described by its smallest and
// largest corners, matching the teacher's Abox (Sx,Sy,Sz / Lx,Ly,Lz)
// layout, renamed to the more conventional Min/Max.
type AABB struct {
	Min, Max Vec3
}

// NewAABB returns the AABB with the given min/max corners, swapping
// any inverted component so Min is always componentwise <= Max.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min.Min(max), Max: min.Max(max)}
}

// Overlaps reports whether a and b intersect. Boxes that only touch
// along a shared point, edge or face are not considered overlapping,
// matching the teacher's Abox.Overlaps semantics.
func (a AABB) Overlaps(b AABB) bool {
	return a.Max.X > b.Min.X && a.Min.X < b.Max.X &&
		a.Max.Y > b.Min.Y && a.Min.Y < b.Max.Y &&
		a.Max.Z > b.Min.Z && a.Min.Z < b.Max.Z
}

// Contains reports whether point p lies within a, inclusive of the
// boundary.
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Expand returns a grown by margin in every direction. A negative
// margin shrinks the box.
func (a AABB) Expand(margin float64) AABB {
	m := Vec3{margin, margin, margin}
	return AABB{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// ExpandPoint returns the smallest AABB containing both a and p.
func (a AABB) ExpandPoint(p Vec3) AABB {
	return AABB{Min: a.Min.Min(p), Max: a.Max.Max(p)}
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vec3 { return a.Min.Add(a.Max).Scale(0.5) }

// HalfExtents returns the half-size of the box along each axis.
func (a AABB) HalfExtents() Vec3 { return a.Max.Sub(a.Min).Scale(0.5) }
