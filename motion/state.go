// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/pathplan"
	"github.com/echolink/spatialcore/physics"
)

// CharacterState is the per-entity ground contact state maintained by
// the motor controller (spec §3), orthogonal to whether the entity has
// an active MovementState.
type CharacterState uint8

const (
	Grounded CharacterState = iota
	Airborne
	Recovering
)

func (s CharacterState) String() string {
	switch s {
	case Grounded:
		return "grounded"
	case Airborne:
		return "airborne"
	case Recovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// characterTracker is the per-entity bookkeeping behind CharacterState
// transitions (spec §4.5.1): the latest grounded flag from physics events,
// and a stability timer gating Airborne -> Recovering -> Grounded.
type characterTracker struct {
	state       CharacterState
	grounded    bool    // latest physics.GroundContactEvent.IsGrounded
	stableFor   float64 // accumulated time |vy| < recoveryVelocityEpsilon while Recovering
	knockedBack bool    // set by Knockback; pauses pathfinding until Grounded returns
}

// agentLifecycle is the movement half of spec §4.5.1's composite state
// machine: {Idle, MovingGrounded, MovingAirborne, Recovering,
// Completed}. It only exists for entities with an active
// movementState; Idle agents have none registered at all.
type agentLifecycle uint8

const (
	lifecycleMovingGrounded agentLifecycle = iota
	lifecycleMovingAirborne
	lifecycleRecovering
	lifecycleCompleted
)

// movementState is one agent's in-flight movement (spec §3). Owned
// exclusively by Orchestrator, keyed by EntityId.
type movementState struct {
	entityID       physics.EntityId
	targetPosition geom.Vec3
	maxSpeed       float64
	agentHeight    float64
	agentRadius    float64

	waypoints            []geom.Vec3
	currentWaypointIndex int

	lifecycle agentLifecycle

	lastValidationTime float64
	lastReplanTime     float64
	startTime          float64
	totalDistance      float64

	isCompleted          bool
	destinationEventSent bool
	isAvoidingCollision  bool
	hasDetourWaypoint    bool
	detourWaypointIndex  int

	edgeCheckCounter      int
	slopeGroundingCounter int

	speedFactor float64 // 1.0 normally; yieldSpeedFactor while yielding (spec §4.5.4)

	previouslyBlocked bool // set by revalidate when a Temporary blockage gave local avoidance one interval to resolve itself

	haveLastPos bool
	lastPos     geom.Vec3
}

// totalDistanceTick accumulates horizontal distance traveled since the
// previous call, feeding movementState.totalDistance (spec §3).
func (m *movementState) totalDistanceTick(pos geom.Vec3) {
	if m.haveLastPos {
		m.totalDistance += m.lastPos.DistXZ(pos)
	}
	m.lastPos = pos
	m.haveLastPos = true
}

// path returns the movement state's waypoints as a pathplan.Path, for
// reuse by the validator/fixer without an allocation-heavy conversion
// at every call site.
func (m *movementState) path() pathplan.Path {
	return pathplan.Path{Waypoints: m.waypoints}
}

// remainingWaypoints returns the waypoints from the current index
// onward, used by revalidation (spec §4.5.5) which only re-checks the
// part of the path the agent has not already walked.
func (m *movementState) remainingWaypoints() []geom.Vec3 {
	if m.currentWaypointIndex >= len(m.waypoints) {
		return nil
	}
	return m.waypoints[m.currentWaypointIndex:]
}

func (m *movementState) currentTarget() (geom.Vec3, bool) {
	if m.currentWaypointIndex >= len(m.waypoints) {
		return geom.Vec3{}, false
	}
	return m.waypoints[m.currentWaypointIndex], true
}

func (m *movementState) isLastWaypoint() bool {
	return m.currentWaypointIndex == len(m.waypoints)-1
}
