// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/pathplan"
	"github.com/echolink/spatialcore/physics"
	"github.com/echolink/spatialcore/spatialerr"
)

// blockageKind classifies why a probed waypoint is unreachable (spec
// §4.5.5).
type blockageKind uint8

const (
	blockageNone blockageKind = iota
	blockageTemporary
	blockagePermanent
)

// probeObstructionFactor scales the agent's radius to give the radius
// swept around each remaining waypoint to detect an obstructing body (spec §4.5.5's "probing each remaining
// waypoint for walkability").
const probeObstructionFactor = 1.5

// probePath checks every remaining waypoint of ms for an obstruction,
// returning the first blockage found. A waypoint that no longer snaps
// onto the navmesh (should not happen post-build, since the navmesh is
// immutable, but guards against a caller-supplied stale path) is
// always Permanent. Of the bodies near a waypoint, a TemporaryObstacle
// makes it Temporary and an Obstacle or StaticObject makes it
// Permanent; bodies of other types, and bodies with an active
// movement, are not treated as blockers.
func (o *Orchestrator) probePath(ms *movementState) blockageKind {
	for _, wp := range ms.remainingWaypoints() {
		if _, _, err := o.nav.NearestPolygon(wp, pathplan.DefaultSnapExtents); err != nil {
			return blockagePermanent
		}
		blockerRadius := ms.agentRadius * probeObstructionFactor
		blockers := o.physics.EntitiesInRadius(wp, blockerRadius)
		for _, b := range blockers {
			if b == ms.entityID {
				continue
			}
			if _, isAgent := o.states[b]; isAgent {
				continue // other moving agents are handled by avoidance, not blockage
			}
			et, err := o.physics.EntityType(b)
			if err != nil {
				continue
			}
			if et == physics.TemporaryObstacle {
				return blockageTemporary
			}
			if et == physics.Obstacle || et == physics.StaticObject {
				return blockagePermanent
			}
		}
	}
	return blockageNone
}

// revalidate implements spec §4.5.5: every PathValidationInterval,
// probe the remaining path. A Temporary blockage first relies on local
// avoidance (already running every Update); only once it is still
// blocked at the *next* validation tick does revalidate escalate to a
// replan. A Permanent blockage replans immediately, subject to
// ReplanCooldown.
func (o *Orchestrator) revalidate(ms *movementState) {
	kind := o.probePath(ms)
	if kind == blockageNone {
		ms.previouslyBlocked = false
		return
	}
	o.emitBlocked(ms.entityID)

	if kind == blockageTemporary && o.pfCfg.TryLocalAvoidanceFirst && !ms.previouslyBlocked {
		ms.previouslyBlocked = true
		return
	}
	ms.previouslyBlocked = false

	if !o.pfCfg.EnableAutomaticReplanning {
		o.StopMovement(ms.entityID)
		return
	}
	if o.simTime-ms.lastReplanTime < o.pfCfg.ReplanCooldown {
		return
	}
	o.attemptReplan(ms)
}

// attemptReplan re-runs find_path/validate_path/try_fix_path from the
// agent's current position to its original target (spec §4.5.5). On
// success the movement state's waypoints are replaced and
// OnPathReplanned fires; on failure the agent is stopped and the
// caller is responsible, matching spec §7's replan-failure policy.
func (o *Orchestrator) attemptReplan(ms *movementState) {
	ms.lastReplanTime = o.simTime
	pose, err := o.physics.GetPose(ms.entityID)
	if err != nil {
		o.StopMovement(ms.entityID)
		return
	}
	path, err := o.planPath(pose.Position, ms.targetPosition)
	if err != nil {
		o.StopMovement(ms.entityID)
		return
	}
	ms.waypoints = path.Waypoints
	ms.currentWaypointIndex = 0
	ms.hasDetourWaypoint = false
	ms.isAvoidingCollision = false
	o.emitReplanned(ms.entityID)
}

// planPath runs the full snap/find/validate/auto-fix/sanity pipeline
// (spec §4.4 + §4.4.4) shared by RequestMovement and attemptReplan.
func (o *Orchestrator) planPath(start, goal geom.Vec3) (pathplan.Path, error) {
	extents := geom.Vec3{
		X: o.pfCfg.PathfindingSearchExtentsHorizontal,
		Y: o.pfCfg.PathfindingSearchExtentsVertical,
		Z: o.pfCfg.PathfindingSearchExtentsHorizontal,
	}
	path, err := pathplan.FindPath(o.nav, start, goal, extents)
	if err != nil {
		return pathplan.Path{}, err
	}
	if err := pathplan.ValidatePath(path, o.agent); err != nil {
		fixed, fixedOK := pathplan.TryFixPath(path, o.agent)
		if !fixedOK {
			return pathplan.Path{}, err
		}
		path = fixed
	}
	if artifacts := pathplan.DetectBridgeArtifacts(path); len(artifacts) > 0 {
		return pathplan.Path{}, spatialerr.NoPath("path crosses a likely navmesh-bridge artefact")
	}
	return path, nil
}
