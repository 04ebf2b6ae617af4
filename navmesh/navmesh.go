// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package navmesh

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/spatialerr"
	"gopkg.in/yaml.v3"
)

// NavMesh is the immutable, queryable output of BuildNavMesh. It owns
// its polygon and detail mesh arrays outright; callers never mutate it
// after construction.
type NavMesh struct {
	Agent        AgentConfig
	BMin, BMax   geom.Vec3
	CellSize     float64
	CellHeight   float64
	Polygons     []Polygon
	DetailMeshes []DetailMesh
}

// BuildOptions controls the area-tagging path of the build pipeline.
type BuildOptions struct {
	// OcclusionFilter enables the O(T^2) re-tagging pass that prevents
	// ghost floors beneath walls. Defaults to true via DefaultBuildOptions.
	OcclusionFilter bool
	MinRegionArea   int
	MergeRegionArea int
}

// DefaultBuildOptions returns occlusion filtering on, min region size
// 1, merge size 4.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{OcclusionFilter: true, MinRegionArea: 1, MergeRegionArea: 4}
}

// BuildNavMesh runs the full voxelize/filter/compact/partition/contour
// /polygonize/detail pipeline over soup, returning
// spatialerr.ErrEmptyNavMesh if any stage yields zero output.
func BuildNavMesh(soup TriangleSoup, agent AgentConfig, opts BuildOptions) (*NavMesh, error) {
	nm, err := buildNavMesh(soup, agent, opts)
	if err != nil {
		slog.Warn("spatialcore/navmesh: BuildNavMesh failed", "error", err)
	}
	return nm, err
}

func buildNavMesh(soup TriangleSoup, agent AgentConfig, opts BuildOptions) (*NavMesh, error) {
	if err := agent.Validate(); err != nil {
		return nil, err
	}
	if soup.TriangleCount() == 0 {
		return nil, spatialerr.EmptyNavMesh("triangle soup")
	}

	cellSize, cellHeight := agent.CellSize(), agent.CellHeight()

	areas := markWalkableTriangles(soup, agent)
	if opts.OcclusionFilter {
		occlusionFilter(soup, areas)
	}
	anyWalkable := false
	for _, a := range areas {
		if a != AreaNull {
			anyWalkable = true
			break
		}
	}
	if !anyWalkable {
		return nil, spatialerr.EmptyNavMesh("triangle tagging")
	}

	bounds := computeBounds(soup, agent, cellHeight)
	hf := newHeightfield(bounds.Min, bounds.Max, cellSize, cellHeight)
	rasterizeTriangles(soup, areas, hf)

	hasSpans := false
	for _, col := range hf.spans {
		if len(col) > 0 {
			hasSpans = true
			break
		}
	}
	if !hasSpans {
		return nil, spatialerr.EmptyNavMesh("rasterization")
	}

	filterLowHangingWalkableObstacles(agent, hf)
	filterLedgeSpans(agent, hf)
	filterWalkableLowHeightSpans(agent, hf)

	chf := buildCompactHeightfield(hf)
	if err := erodeAndCheck(agent, chf); err != nil {
		return nil, err
	}

	regionCount := buildRegions(chf, opts.MinRegionArea, opts.MergeRegionArea)
	if regionCount == 0 {
		return nil, spatialerr.EmptyNavMesh("region partitioning")
	}

	contours := buildContours(chf, regionCount, agent.EdgeMaxErr(), agent.EdgeMaxLen())
	if len(contours) == 0 {
		return nil, spatialerr.EmptyNavMesh("contour tracing")
	}

	polys := buildPolyMesh(contours)
	if len(polys) == 0 {
		return nil, spatialerr.EmptyNavMesh("polygon mesh")
	}

	details := buildPolyMeshDetail(polys, agent)

	return &NavMesh{
		Agent: agent, BMin: bounds.Min, BMax: bounds.Max,
		CellSize: cellSize, CellHeight: cellHeight,
		Polygons: polys, DetailMeshes: details,
	}, nil
}

func erodeAndCheck(agent AgentConfig, chf *compactHeightfield) error {
	anyWalkableBefore := false
	for _, c := range chf.cells {
		if c.walkable {
			anyWalkableBefore = true
			break
		}
	}
	if !anyWalkableBefore {
		return spatialerr.EmptyNavMesh("filtering")
	}
	erodeWalkableArea(agent.walkableRadiusVoxels(), chf)
	for _, c := range chf.cells {
		if c.walkable {
			return nil
		}
	}
	return spatialerr.EmptyNavMesh("erosion")
}

// NearestPolygon returns the first walkable polygon whose XZ footprint
// contains point, with the snapped point's Y taken from that polygon's
// detail mesh (or its center's Y where the detail mesh has no sample).
// Otherwise it returns the walkable polygon whose center is nearest in
// XZ among those whose center lies within extents.X and extents.Z of
// point, snapped to that center's Y. XZ is never changed, and extents.Y
// is not consulted. Returns spatialerr.ErrNotOnNavMesh if no polygon
// qualifies.
func (nm *NavMesh) NearestPolygon(point geom.Vec3, extents geom.Vec3) (polyIndex int, snapped geom.Vec3, err error) {
	best := -1
	bestDist := math.Inf(1)
	var bestSnap geom.Vec3
	for i, poly := range nm.Polygons {
		if poly.Flags&FlagWalkable == 0 {
			continue
		}
		if poly.ContainsXZ(point) {
			y, ok := nm.DetailMeshes[i].HeightAt(point.X, point.Z)
			if !ok {
				y = poly.Center().Y
			}
			return i, geom.Vec3{X: point.X, Y: y, Z: point.Z}, nil
		}
		c := poly.Center()
		dx, dz := c.X-point.X, c.Z-point.Z
		if math.Abs(dx) > extents.X || math.Abs(dz) > extents.Z {
			continue
		}
		d := dx*dx + dz*dz
		if d < bestDist {
			bestDist = d
			best = i
			bestSnap = geom.Vec3{X: point.X, Y: c.Y, Z: point.Z}
		}
	}
	if best < 0 {
		return -1, geom.Vec3{}, spatialerr.NotOnNavMesh(point.X, point.Y, point.Z)
	}
	return best, bestSnap, nil
}

// ContainsXZ reports whether point's XZ projection lies within the
// polygon's XZ footprint.
func (p Polygon) ContainsXZ(point geom.Vec3) bool {
	n := len(p.Verts)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi, vj := p.Verts[i], p.Verts[j]
		if (vi.Z > point.Z) != (vj.Z > point.Z) &&
			point.X < (vj.X-vi.X)*(point.Z-vi.Z)/(vj.Z-vi.Z)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// HeightAt recovers the surface Y at (x,z) within polygon index pi
// using its detail mesh.
func (nm *NavMesh) HeightAt(pi int, x, z float64) (float64, bool) {
	if pi < 0 || pi >= len(nm.DetailMeshes) {
		return 0, false
	}
	return nm.DetailMeshes[pi].HeightAt(x, z)
}

// ExportDiagnostic writes a human-readable, non-normative dump of the
// polygon mesh's vertices and faces in a Wavefront-OBJ-like form, as a
// way to eyeball a build's output.
func (nm *NavMesh) ExportDiagnostic() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# spatialcore navmesh: %d polygons\n", len(nm.Polygons))
	vertOffset := make([]int, len(nm.Polygons))
	count := 1
	for i, poly := range nm.Polygons {
		vertOffset[i] = count
		for _, v := range poly.Verts {
			fmt.Fprintf(&b, "v %.4f %.4f %.4f\n", v.X, v.Y, v.Z)
		}
		count += len(poly.Verts)
	}
	for i, poly := range nm.Polygons {
		b.WriteString("f")
		for k := range poly.Verts {
			fmt.Fprintf(&b, " %d", vertOffset[i]+k)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// diagnosticSummary is the structured counterpart to ExportDiagnostic,
// for host tooling that wants machine-readable YAML instead of an
// OBJ-like text dump.
type diagnosticSummary struct {
	PolygonCount int       `yaml:"polygon_count"`
	BMin         geom.Vec3 `yaml:"bmin"`
	BMax         geom.Vec3 `yaml:"bmax"`
	CellSize     float64   `yaml:"cell_size"`
	CellHeight   float64   `yaml:"cell_height"`
}

// ExportDiagnosticYAML marshals a summary of the built navmesh
// (polygon count, bounds, voxel sizing) as YAML, for callers that want
// structured diagnostic output rather than the OBJ-like text form.
func (nm *NavMesh) ExportDiagnosticYAML() (string, error) {
	summary := diagnosticSummary{
		PolygonCount: len(nm.Polygons),
		BMin:         nm.BMin,
		BMax:         nm.BMax,
		CellSize:     nm.CellSize,
		CellHeight:   nm.CellHeight,
	}
	out, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("spatialcore/navmesh: marshal diagnostic yaml: %w", err)
	}
	return string(out), nil
}
