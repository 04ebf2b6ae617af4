// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"log/slog"
	"math"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
)

// horizontalMotorVelocity computes the proportionally-smoothed
// horizontal velocity a grounded agent should command this step (spec
// §4.5.3): desired = normalize(targetXZ - currentXZ) * effectiveSpeed,
// blended toward the current velocity by motorStrength.
func horizontalMotorVelocity(currentVel, currentPos, targetPos geom.Vec3, effectiveSpeed, motorStrength float64) geom.Vec3 {
	toTarget := targetPos.XZ().Sub(currentPos.XZ())
	desired := toTarget.Normalize().Scale(effectiveSpeed)
	curXZ := geom.Vec3{X: currentVel.X, Z: currentVel.Z}
	blended := curXZ.Lerp(desired, motorStrength)
	return geom.Vec3{X: blended.X, Y: currentVel.Y, Z: blended.Z}
}

// verticalCorrection implements spec §4.5.3's proportional height
// controller: sample the navmesh surface under the agent's current XZ,
// add half the agent's height plus its radius to get the target
// capsule-center Y, and produce a clamped correction velocity. idle
// selects IdleVerticalDamping over VerticalDamping for the
// near-target damping band, matching the distinction spec §6.3 draws
// between the two constants.
func verticalCorrection(nm *navmesh.NavMesh, agent navmesh.AgentConfig, pos geom.Vec3, cfg MotorCharacterConfig, idle bool, toleranceOverride float64) (correction float64, ok bool) {
	extents := geom.Vec3{X: verticalGroundingExtents[0], Y: verticalGroundingExtents[1], Z: verticalGroundingExtents[2]}
	_, snapped, err := nm.NearestPolygon(pos, extents)
	if err != nil {
		slog.Debug("motion: vertical correction sample missed navmesh", "pos", pos)
		return 0, false
	}
	targetY := snapped.Y + agent.Height/2 + agent.Radius
	yErr := targetY - pos.Y
	correction = yErr * cfg.HeightCorrectionStrength
	if correction > cfg.MaxVerticalCorrection {
		correction = cfg.MaxVerticalCorrection
	} else if correction < -cfg.MaxVerticalCorrection {
		correction = -cfg.MaxVerticalCorrection
	}
	tolerance := cfg.HeightErrorTolerance
	if toleranceOverride > 0 {
		tolerance = toleranceOverride
	}
	if math.Abs(yErr) < tolerance {
		damping := cfg.VerticalDamping
		if idle {
			damping = cfg.IdleVerticalDamping
		}
		correction *= damping
	}
	return correction, true
}

// onSlope reports whether the segment from pos to the next waypoint is
// steep enough that grounding queries should run less often and with
// wider tolerance (spec §4.5.3).
func onSlope(pos, nextWaypoint geom.Vec3) bool {
	dy := math.Abs(nextWaypoint.Y - pos.Y)
	horizontal := pos.DistXZ(nextWaypoint)
	return dy > slopeDeltaYThreshold && horizontal > waypointSkipEpsilon
}
