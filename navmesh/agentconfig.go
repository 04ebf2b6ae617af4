// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package navmesh builds a queryable polygon navigation mesh from a
// triangle soup, following the Recast-style voxelize -> filter ->
// compact -> partition -> contour -> polygonize -> detail pipeline
// shape described in the arl-go-detour reference port's
// SoloMesh.Build, reimplemented in pure Go with a bounded,
// single-layer heightfield suited to the agent counts this runtime
// targets.
package navmesh

import (
	"math"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/spatialerr"
)

// AgentConfig is the single source of truth for voxelization and
// traversal tolerances, shared by the builder, planner and motor
// controller.
type AgentConfig struct {
	Height      float64 `yaml:"height" mapstructure:"height"`
	Radius      float64 `yaml:"radius" mapstructure:"radius"`
	MaxSlopeDeg float64 `yaml:"max_slope_deg" mapstructure:"max_slope_deg"`
	MaxClimb    float64 `yaml:"max_climb" mapstructure:"max_climb"`
}

// DefaultAgentConfig returns a human-sized agent: 1.8m tall, 0.4m
// radius, 45 degree max slope, 0.4m max climb.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{Height: 1.8, Radius: 0.4, MaxSlopeDeg: 45, MaxClimb: 0.4}
}

// Validate rejects a structurally impossible config.
func (c AgentConfig) Validate() error {
	if c.Height <= 0 {
		return spatialerr.InvalidParameter("height", "must be positive")
	}
	if c.Radius <= 0 {
		return spatialerr.InvalidParameter("radius", "must be positive")
	}
	if c.MaxSlopeDeg <= 0 || c.MaxSlopeDeg >= 90 {
		return spatialerr.InvalidParameter("max_slope_deg", "must be in (0, 90)")
	}
	if c.MaxClimb <= 0 {
		return spatialerr.InvalidParameter("max_climb", "must be positive")
	}
	return nil
}

// CellSize is the derived XZ voxel size: radius/2.
func (c AgentConfig) CellSize() float64 { return c.Radius / 2 }

// CellHeight is the derived vertical voxel size: CellSize/2.
func (c AgentConfig) CellHeight() float64 { return c.CellSize() / 2 }

// EdgeMaxLen is the derived maximum contour edge length before a split:
// radius*8.
func (c AgentConfig) EdgeMaxLen() float64 { return c.Radius * 8 }

// EdgeMaxErr is the fixed contour simplification tolerance.
func (c AgentConfig) EdgeMaxErr() float64 { return 1.3 }

// DetailSampleDist is the derived detail-mesh sampling spacing:
// CellSize*6.
func (c AgentConfig) DetailSampleDist() float64 { return c.CellSize() * 6 }

// DetailSampleMaxErr is the derived detail-mesh height tolerance,
// equal to CellHeight.
func (c AgentConfig) DetailSampleMaxErr() float64 { return c.CellHeight() }

// walkableHeightVoxels is the minimum headroom, in voxels, an agent
// needs above a floor span.
func (c AgentConfig) walkableHeightVoxels() int {
	return int(math.Ceil(c.Height / c.CellHeight()))
}

// walkableClimbVoxels is the maximum step an agent may climb, in
// voxels.
func (c AgentConfig) walkableClimbVoxels() int {
	return int(math.Floor(c.MaxClimb / c.CellHeight()))
}

// walkableRadiusVoxels is the erosion radius applied to the compact
// heightfield, in voxels.
func (c AgentConfig) walkableRadiusVoxels() int {
	return int(math.Ceil(c.Radius / c.CellSize()))
}

// TriangleSoup is the builder's input: flat position/index arrays plus
// optional per-triangle area tags. A nil AreaIDs slice is treated as
// "all walkable" before slope tagging; whether the occlusion filter
// runs is governed by BuildOptions.OcclusionFilter either way.
type TriangleSoup struct {
	Positions []geom.Vec3
	Indices   []int // 3 per triangle
	AreaIDs   []uint8
}

// TriangleCount returns the number of triangles described by Indices.
func (s TriangleSoup) TriangleCount() int { return len(s.Indices) / 3 }

// triangle returns the i-th triangle's three world-space vertices.
func (s TriangleSoup) triangle(i int) geom.Triangle {
	return geom.Triangle{
		A: s.Positions[s.Indices[i*3+0]],
		B: s.Positions[s.Indices[i*3+1]],
		C: s.Positions[s.Indices[i*3+2]],
	}
}

// areaID returns the i-th triangle's area tag, defaulting to walkable
// (63) when the caller supplied no tags.
func (s TriangleSoup) areaID(i int) uint8 {
	if s.AreaIDs == nil {
		return AreaWalkable
	}
	return s.AreaIDs[i]
}

// AreaWalkable and AreaNull mirror the area-id convention from spec
// §3: 63 marks walkable, 0 marks unwalkable.
const (
	AreaNull     uint8 = 0
	AreaWalkable uint8 = 63
)

// FlagWalkable is set (bit 0x01) on a polygon whose area id is
// AreaWalkable.
const FlagWalkable uint8 = 0x01
