// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import "github.com/echolink/spatialcore/geom"

// DetailMesh is a polygon's refined interior triangulation, used to
// recover an accurate surface Y for an arbitrary XZ query point (spec
// §4.3 step 9, §3 "detail_mesh").
type DetailMesh struct {
	Verts []geom.Vec3
	Tris  [][3]int
}

// HeightAt returns the interpolated Y at (x,z), and whether (x,z) lies
// within the detail mesh's XZ footprint.
func (d DetailMesh) HeightAt(x, z float64) (float64, bool) {
	p := geom.Vec3{X: x, Z: z}
	for _, t := range d.Tris {
		tri := geom.Triangle{A: d.Verts[t[0]], B: d.Verts[t[1]], C: d.Verts[t[2]]}
		if tri.ContainsXZ(p) {
			return tri.HeightAtXZ(p), true
		}
	}
	return 0, false
}

// buildPolyMeshDetail samples each polygon's interior at
// agent.DetailSampleDist() and refines its boundary triangulation by
// inserting each sample as a new vertex splitting the triangle that
// contains it, matching the reference's detail-mesh role of recovering
// height resolution beyond the polygon mesh's corner vertices.
func buildPolyMeshDetail(polys []Polygon, agent AgentConfig) []DetailMesh {
	out := make([]DetailMesh, len(polys))
	spacing := agent.DetailSampleDist()
	for pi, poly := range polys {
		verts := append([]geom.Vec3(nil), poly.Verts...)
		tris := earClipTriangulate(verts)
		if len(tris) == 0 {
			out[pi] = DetailMesh{Verts: verts}
			continue
		}

		box := poly.Verts[0]
		minX, maxX, minZ, maxZ := box.X, box.X, box.Z, box.Z
		for _, v := range poly.Verts {
			if v.X < minX {
				minX = v.X
			}
			if v.X > maxX {
				maxX = v.X
			}
			if v.Z < minZ {
				minZ = v.Z
			}
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
		if spacing <= geom.Epsilon {
			out[pi] = DetailMesh{Verts: verts, Tris: tris}
			continue
		}

		for z := minZ + spacing; z < maxZ; z += spacing {
			for x := minX + spacing; x < maxX; x += spacing {
				sample := geom.Vec3{X: x, Z: z}
				containing := -1
				for ti, t := range tris {
					tri := geom.Triangle{A: verts[t[0]], B: verts[t[1]], C: verts[t[2]]}
					if tri.ContainsXZ(sample) {
						containing = ti
						sample.Y = tri.HeightAtXZ(sample)
						break
					}
				}
				if containing < 0 {
					continue
				}
				newIdx := len(verts)
				verts = append(verts, sample)
				t := tris[containing]
				tris[containing] = [3]int{newIdx, t[0], t[1]}
				tris = append(tris, [3]int{newIdx, t[1], t[2]}, [3]int{newIdx, t[2], t[0]})
			}
		}
		out[pi] = DetailMesh{Verts: verts, Tris: tris}
	}
	return out
}
