// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import (
	"math"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/spatialerr"
)

// ValidatePath checks every consecutive waypoint pair against the
// agent's max-climb and max-slope limits. Returns the first offending
// segment as a *spatialerr.PathInvalidError, or nil if the whole path
// clears both checks.
func ValidatePath(path Path, agent navmesh.AgentConfig) error {
	for i := 0; i+1 < len(path.Waypoints); i++ {
		if err := validateSegment(path.Waypoints[i], path.Waypoints[i+1], agent); err != nil {
			return spatialerr.PathInvalid(i, err.Error())
		}
	}
	return nil
}

// segmentError is a plain reason string; ValidatePath wraps it with
// the segment index into a *spatialerr.PathInvalidError.
type segmentError string

func (e segmentError) Error() string { return string(e) }

func validateSegment(a, b geom.Vec3, agent navmesh.AgentConfig) error {
	dy := math.Abs(b.Y - a.Y)
	if dy > agent.MaxClimb {
		return segmentError("vertical step exceeds max_climb")
	}
	horizontal := a.DistXZ(b)
	if horizontal > 0.01 {
		angle := math.Atan2(dy, horizontal) * 180 / math.Pi
		if angle > agent.MaxSlopeDeg {
			return segmentError("slope exceeds max_slope_deg")
		}
	}
	return nil
}
