// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import (
	"math"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
)

// TryFixPath splits every segment that fails ValidatePath into
// ceil(|Δy| / max_climb) equal linear sub-steps, then re-validates the
// result. It never re-queries the navmesh: a fixed segment is a
// straight linear interpolation between its original
// endpoints, since the corridor the planner already produced is
// assumed to lie on the surface. Returns false if the fixed path is
// still invalid, in which case the fix is rejected and callers should
// keep treating the original path as ErrPathInvalid. Idempotent: a
// path that is already valid is returned unchanged.
func TryFixPath(path Path, agent navmesh.AgentConfig) (Path, bool) {
	if err := ValidatePath(path, agent); err == nil {
		return path, true
	}

	fixed := Path{Waypoints: []geom.Vec3{}}
	for i := 0; i+1 < len(path.Waypoints); i++ {
		a, b := path.Waypoints[i], path.Waypoints[i+1]
		fixed.Waypoints = append(fixed.Waypoints, a)
		if err := validateSegment(a, b, agent); err == nil {
			continue
		}
		steps := climbSubsteps(a, b, agent.MaxClimb)
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			fixed.Waypoints = append(fixed.Waypoints, a.Lerp(b, t))
		}
	}
	if len(path.Waypoints) > 0 {
		fixed.Waypoints = append(fixed.Waypoints, path.Waypoints[len(path.Waypoints)-1])
	}

	if err := ValidatePath(fixed, agent); err != nil {
		return Path{}, false
	}
	return fixed, true
}

// climbSubsteps returns the number of equal linear sub-steps needed to
// keep each sub-step's vertical delta within maxClimb.
func climbSubsteps(a, b geom.Vec3, maxClimb float64) int {
	if maxClimb <= geom.Epsilon {
		return 1
	}
	dy := math.Abs(b.Y - a.Y)
	steps := int(math.Ceil(dy / maxClimb))
	if steps < 1 {
		steps = 1
	}
	return steps
}
