// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/physics"
)

// neighborThreat describes one nearby agent's predicted approach
// relative to self (spec §4.5.4).
type neighborThreat struct {
	other      physics.EntityId
	otherPos   geom.Vec3
	timeToClose float64
	missDist   float64
	critical   bool
}

// predictClosestApproach estimates the time (clamped to
// [0, avoidanceLookahead]) at which self and other come closest,
// projecting both along their current XZ velocities, and the miss
// distance at that time. Horizontal-only, matching the rest of the
// orchestrator's distance metric (spec §4.5.2).
func predictClosestApproach(selfPos, selfVel, otherPos, otherVel geom.Vec3) (t, missDist float64) {
	relPos := otherPos.XZ().Sub(selfPos.XZ())
	relVel := otherVel.XZ().Sub(selfVel.XZ())
	denom := relVel.LenSq()
	if denom < geom.Epsilon {
		return 0, relPos.Len()
	}
	t = -relPos.Dot(relVel) / denom
	if t < 0 {
		t = 0
	}
	if t > avoidanceLookahead {
		t = avoidanceLookahead
	}
	missPos := relPos.Add(relVel.Scale(t))
	return t, missPos.Len()
}

// findThreats scans up to MaxAvoidanceNeighbors agents within
// LocalAvoidanceRadius of self and classifies each as critical or not
// (spec §4.5.4: "A critical collision is one whose predicted miss
// distance is below the sum of radii within a lookahead <= 1.5s").
func (o *Orchestrator) findThreats(self physics.EntityId, selfPos, selfVel geom.Vec3, selfRadius float64) []neighborThreat {
	if !o.pfCfg.EnableLocalAvoidance {
		return nil
	}
	neighbors := o.physics.EntitiesInRadius(selfPos, o.pfCfg.LocalAvoidanceRadius)
	var threats []neighborThreat
	for _, n := range neighbors {
		if n == self {
			continue
		}
		if len(threats) >= o.pfCfg.MaxAvoidanceNeighbors {
			break
		}
		otherPos, err := o.physics.GetPose(n)
		if err != nil {
			continue
		}
		otherVel, err := o.physics.GetVelocity(n)
		if err != nil {
			continue
		}
		otherRadius := selfRadius
		if ms, ok := o.states[n]; ok {
			otherRadius = ms.agentRadius
		}
		t, missDist := predictClosestApproach(selfPos, selfVel, otherPos.Position, otherVel)
		critical := t <= avoidanceLookahead && missDist < (selfRadius+otherRadius)
		threats = append(threats, neighborThreat{other: n, otherPos: otherPos.Position, timeToClose: t, missDist: missDist, critical: critical})
	}
	return threats
}

// resolveAvoidance applies spec §4.5.4's asymmetric rule: of any
// critical pair, the lower EntityId yields by inserting a detour
// waypoint; the higher EntityId keeps its path and slows to
// yieldSpeedFactor. Non-critical neighbors only contribute separation
// steering, and only when no critical threat was found this tick
// (critical handling disables steering to avoid double counting).
func (o *Orchestrator) resolveAvoidance(ms *movementState, pos geom.Vec3, threats []neighborThreat) (steer geom.Vec3) {
	ms.isAvoidingCollision = false
	ms.speedFactor = 1.0

	var critical *neighborThreat
	for i := range threats {
		if threats[i].critical {
			critical = &threats[i]
			break
		}
	}

	if critical != nil {
		ms.isAvoidingCollision = true
		if ms.entityID < critical.other {
			o.insertDetour(ms, pos, critical.otherPos)
		} else {
			ms.speedFactor = yieldSpeedFactor
		}
		return geom.Vec3{}
	}

	for _, t := range threats {
		away := pos.XZ().Sub(t.otherPos.XZ())
		dist := away.Len()
		if dist >= o.pfCfg.SeparationRadius || dist < geom.Epsilon {
			continue
		}
		weight := (o.pfCfg.SeparationRadius - dist) / o.pfCfg.SeparationRadius
		steer = steer.Add(away.Normalize().Scale(weight * o.pfCfg.AvoidanceStrength))
	}
	return steer
}

// insertDetour inserts a synthetic waypoint detourOffset meters
// perpendicular to the threatening neighbor's position, ahead of the
// yielding agent's current target (spec §4.5.4). Its Y is clamped to
// the current segment's target Y rather than sampled fresh, preventing
// a "vertical launch" from a mis-predicted ground height.
func (o *Orchestrator) insertDetour(ms *movementState, selfPos, otherPos geom.Vec3) {
	if ms.hasDetourWaypoint {
		return // one outstanding detour at a time
	}
	target, ok := ms.currentTarget()
	if !ok {
		return
	}
	toOther := otherPos.XZ().Sub(selfPos.XZ())
	perp := toOther.RightXZ().Normalize()
	if perp.LenSq() < geom.Epsilon {
		perp = selfPos.XZ().Sub(otherPos.XZ()).Normalize()
	}
	detour := otherPos.XZ().Add(perp.Scale(detourOffset))
	detour.Y = target.Y

	idx := ms.currentWaypointIndex
	wps := make([]geom.Vec3, 0, len(ms.waypoints)+1)
	wps = append(wps, ms.waypoints[:idx]...)
	wps = append(wps, detour)
	wps = append(wps, ms.waypoints[idx:]...)
	ms.waypoints = wps
	ms.hasDetourWaypoint = true
	ms.detourWaypointIndex = idx
}
