// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"log/slog"
	"sort"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/physics"
	"github.com/echolink/spatialcore/spatialerr"
)

// PhysicsAPI is the narrow slice of physics.World the orchestrator
// depends on (spec §9: "each component exposes a narrow interface to
// the others and there are no back-pointers"). *physics.World
// satisfies it directly; tests substitute a fake.
type PhysicsAPI interface {
	GetPose(id physics.EntityId) (geom.RigidPose, error)
	SetPose(id physics.EntityId, pose geom.RigidPose) error
	GetVelocity(id physics.EntityId) (geom.Vec3, error)
	SetVelocity(id physics.EntityId, v geom.Vec3) error
	ApplyLinearImpulse(id physics.EntityId, impulse geom.Vec3) error
	SetPushable(id physics.EntityId, pushable bool) error
	EntitiesInRadius(center geom.Vec3, radius float64, filter ...physics.TypeFilter) []physics.EntityId
	EntityType(id physics.EntityId) (physics.EntityType, error)
	AddListener(l physics.CollisionListener)
}

// Orchestrator is the motion system facade (spec §4.5, component C6).
// It exclusively owns MovementState and the per-entity CharacterState
// tracker, and drives PhysicsAPI/navmesh/pathplan through narrow
// interfaces rather than holding a back-pointer into a larger engine.
type Orchestrator struct {
	physics  PhysicsAPI
	nav      *navmesh.NavMesh
	agent    navmesh.AgentConfig
	pfCfg    PathfindingConfig
	motorCfg MotorCharacterConfig

	states     map[physics.EntityId]*movementState
	characters map[physics.EntityId]*characterTracker
	pushTimers map[physics.EntityId]float64
	listeners  []EventListener

	simTime float64
}

// NewOrchestrator constructs an Orchestrator bound to a physics world,
// a built NavMesh, and the shared AgentConfig. It registers itself as
// the world's collision listener so it can maintain CharacterState
// from ground-contact notifications without re-polling contacts.
func NewOrchestrator(phys PhysicsAPI, nav *navmesh.NavMesh, agent navmesh.AgentConfig, pfCfg PathfindingConfig, motorCfg MotorCharacterConfig) *Orchestrator {
	o := &Orchestrator{
		physics:    phys,
		nav:        nav,
		agent:      agent,
		pfCfg:      pfCfg,
		motorCfg:   motorCfg,
		states:     make(map[physics.EntityId]*movementState),
		characters: make(map[physics.EntityId]*characterTracker),
		pushTimers: make(map[physics.EntityId]float64),
	}
	phys.AddListener(o)
	return o
}

// AddListener registers an EventListener to receive synchronous
// movement events during Update (spec §4.5.6).
func (o *Orchestrator) AddListener(l EventListener) { o.listeners = append(o.listeners, l) }

// MovementRequest is the input to RequestMovement. AgentHeight and
// AgentRadius default to the orchestrator's shared AgentConfig when
// left zero.
type MovementRequest struct {
	EntityID    physics.EntityId
	Target      geom.Vec3
	MaxSpeed    float64
	AgentHeight float64
	AgentRadius float64
}

// RequestMovement plans a path from the entity's current position to
// req.Target and, on success, begins driving it (spec §4.5.1). Returns
// spatialerr.ErrNotOnNavMesh, spatialerr.ErrNoPath or
// spatialerr.ErrPathInvalid on planning failure; no MovementState is
// created and no event fires in that case.
func (o *Orchestrator) RequestMovement(req MovementRequest) error {
	if !req.Target.IsFinite() || req.MaxSpeed <= 0 {
		return spatialerr.InvalidParameter("request", "target must be finite and max_speed must be positive")
	}
	pose, err := o.physics.GetPose(req.EntityID)
	if err != nil {
		return err
	}
	path, err := o.planPath(pose.Position, req.Target)
	if err != nil {
		return err
	}

	height, radius := req.AgentHeight, req.AgentRadius
	if height <= 0 {
		height = o.agent.Height
	}
	if radius <= 0 {
		radius = o.agent.Radius
	}

	ms := &movementState{
		entityID:             req.EntityID,
		targetPosition:       path.Waypoints[len(path.Waypoints)-1],
		maxSpeed:             req.MaxSpeed,
		agentHeight:          height,
		agentRadius:          radius,
		waypoints:            path.Waypoints,
		currentWaypointIndex: 0,
		lifecycle:            lifecycleMovingGrounded,
		startTime:            o.simTime,
		speedFactor:          1.0,
	}
	o.states[req.EntityID] = ms
	o.emitStarted(req.EntityID, path.Waypoints[0], ms.targetPosition)
	return nil
}

// StopMovement cancels id's in-flight movement (spec §4.5.1): zeroes
// horizontal velocity while preserving vertical velocity, and removes
// its MovementState. Idempotent: a second call for the same id, or a
// call for an id with no active movement, is a no-op.
func (o *Orchestrator) StopMovement(id physics.EntityId) {
	if _, ok := o.states[id]; !ok {
		return
	}
	if vel, err := o.physics.GetVelocity(id); err == nil {
		_ = o.physics.SetVelocity(id, geom.Vec3{Y: vel.Y})
	}
	delete(o.states, id)
}

// Jump applies a +Y impulse and forces Airborne; it only succeeds from
// Grounded (spec §4.5.1).
func (o *Orchestrator) Jump(id physics.EntityId, force float64) error {
	if o.GetCharacterState(id) != Grounded {
		return spatialerr.InvalidParameter("character_state", "jump requires Grounded")
	}
	if err := o.physics.ApplyLinearImpulse(id, geom.Vec3{Y: force}); err != nil {
		return err
	}
	o.trackerFor(id).state = Airborne
	return nil
}

// Knockback applies an impulse along normalized dir and forces
// Airborne regardless of current state, pausing pathfinding until
// Grounded returns (spec §4.5.1).
func (o *Orchestrator) Knockback(id physics.EntityId, dir geom.Vec3, force float64) error {
	d := dir.Normalize()
	if d.AeqZ() {
		return spatialerr.InvalidParameter("dir", "must be non-zero")
	}
	if err := o.physics.ApplyLinearImpulse(id, d.Scale(force)); err != nil {
		return err
	}
	t := o.trackerFor(id)
	t.state = Airborne
	t.knockedBack = true
	t.stableFor = 0
	return nil
}

// Push applies an impulse along normalized dir without forcing
// Airborne, and optionally flips is_pushable for duration seconds of
// simulated time (spec §4.5.1, §9's open question resolved in favor of
// an internal timer: see DESIGN.md). duration <= 0 leaves the pushable
// flag for the caller to revert manually.
func (o *Orchestrator) Push(id physics.EntityId, dir geom.Vec3, force float64, makePushable bool, duration float64) error {
	d := dir.Normalize()
	if d.AeqZ() {
		return spatialerr.InvalidParameter("dir", "must be non-zero")
	}
	if err := o.physics.ApplyLinearImpulse(id, d.Scale(force)); err != nil {
		return err
	}
	if makePushable {
		if err := o.physics.SetPushable(id, true); err != nil {
			return err
		}
		if duration > 0 {
			o.pushTimers[id] = duration
		}
	}
	return nil
}

// GetWaypoints returns the current waypoint list for id's active
// movement, or spatialerr.ErrEntityNotFound if id has none.
func (o *Orchestrator) GetWaypoints(id physics.EntityId) ([]geom.Vec3, error) {
	ms, ok := o.states[id]
	if !ok {
		return nil, spatialerr.EntityNotFound(uint32(id))
	}
	return ms.waypoints, nil
}

// GetCurrentWaypointIndex returns id's current waypoint index, or
// spatialerr.ErrEntityNotFound if id has no active movement.
func (o *Orchestrator) GetCurrentWaypointIndex(id physics.EntityId) (int, error) {
	ms, ok := o.states[id]
	if !ok {
		return 0, spatialerr.EntityNotFound(uint32(id))
	}
	return ms.currentWaypointIndex, nil
}

// Update advances every active movement one dt (spec §4.5.1). Agents
// are processed in ascending EntityId order so the asymmetric
// avoidance rule (lower id yields) and event emission are
// deterministic across runs, matching spec §8's determinism property.
func (o *Orchestrator) Update(dt float64) {
	o.simTime += dt
	o.agePushTimers(dt)

	ids := make([]physics.EntityId, 0, len(o.states))
	for id := range o.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		o.updateAgent(id, dt)
	}

	// Agents without an active movement still need their Recovering
	// stability timer aged so a knocked-back idle agent returns to
	// Grounded.
	for id := range o.characters {
		if _, moving := o.states[id]; moving {
			continue
		}
		vel, err := o.physics.GetVelocity(id)
		if err != nil {
			continue
		}
		o.advanceCharacterState(id, vel.Y, dt)
	}
}

func (o *Orchestrator) agePushTimers(dt float64) {
	for id, remaining := range o.pushTimers {
		remaining -= dt
		if remaining <= 0 {
			delete(o.pushTimers, id)
			if err := o.physics.SetPushable(id, false); err != nil {
				slog.Debug("motion: failed to revert pushable flag", "entity", id, "err", err)
			}
			continue
		}
		o.pushTimers[id] = remaining
	}
}

func (o *Orchestrator) updateAgent(id physics.EntityId, dt float64) {
	ms := o.states[id]
	pose, err := o.physics.GetPose(id)
	if err != nil {
		delete(o.states, id) // body was unregistered out from under this movement
		return
	}
	vel, err := o.physics.GetVelocity(id)
	if err != nil {
		vel = geom.Vec3{}
	}

	o.advanceCharacterState(id, vel.Y, dt)
	switch o.GetCharacterState(id) {
	case Airborne:
		ms.lifecycle = lifecycleMovingAirborne
	case Recovering:
		ms.lifecycle = lifecycleRecovering
		o.applyRecoveryImpulse(id, pose.Position, vel)
	case Grounded:
		if ms.isCompleted {
			ms.lifecycle = lifecycleCompleted
			o.holdHeight(id, pose.Position, vel)
			return
		}
		ms.lifecycle = lifecycleMovingGrounded
		o.updateGroundedAgent(ms, pose.Position, vel, dt)
	}
}

// applyRecoveryImpulse implements spec §4.5.1's Recovering behavior: a
// proportional upward correction is only applied once the agent has
// settled more than recoverySettleThreshold below its navmesh-sampled
// target Y, avoiding a recovery-teleport oscillation loop.
func (o *Orchestrator) applyRecoveryImpulse(id physics.EntityId, pos, vel geom.Vec3) {
	extents := geom.Vec3{X: verticalGroundingExtents[0], Y: verticalGroundingExtents[1], Z: verticalGroundingExtents[2]}
	_, snapped, err := o.nav.NearestPolygon(pos, extents)
	if err != nil {
		return
	}
	targetY := snapped.Y + o.agent.Height/2 + o.agent.Radius
	if pos.Y >= targetY-recoverySettleThreshold {
		return
	}
	corr, ok := verticalCorrection(o.nav, o.agent, pos, o.motorCfg, true, 0)
	if !ok {
		return
	}
	_ = o.physics.SetVelocity(id, geom.Vec3{X: vel.X, Y: corr, Z: vel.Z})
}

// holdHeight keeps a completed (or otherwise idle) movement's Y
// correction alive without driving horizontal motion (spec §3: "the
// state lingers in is_completed=true to keep Y-corrections alive").
func (o *Orchestrator) holdHeight(id physics.EntityId, pos, vel geom.Vec3) {
	corr, ok := verticalCorrection(o.nav, o.agent, pos, o.motorCfg, true, 0)
	if !ok {
		return
	}
	_ = o.physics.SetVelocity(id, geom.Vec3{X: vel.X, Y: corr, Z: vel.Z})
}

func (o *Orchestrator) updateGroundedAgent(ms *movementState, pos, vel geom.Vec3, dt float64) {
	ms.totalDistanceTick(pos)
	o.advanceWaypoint(ms, pos)
	if ms.isCompleted {
		o.holdHeight(ms.entityID, pos, vel)
		return
	}

	if o.simTime-ms.lastValidationTime >= o.pfCfg.PathValidationInterval {
		ms.lastValidationTime = o.simTime
		o.revalidate(ms)
		if _, stillActive := o.states[ms.entityID]; !stillActive {
			return // revalidate's replan failure stopped this agent
		}
	}

	target, ok := ms.currentTarget()
	if !ok {
		return
	}

	threats := o.findThreats(ms.entityID, pos, vel, ms.agentRadius)
	steer := o.resolveAvoidance(ms, pos, threats)

	effectiveSpeed := ms.maxSpeed * ms.speedFactor
	horiz := horizontalMotorVelocity(vel, pos, target, effectiveSpeed, o.motorCfg.MotorStrength)

	tolerance := 0.0
	slope := onSlope(pos, target)
	doVerticalCheck := true
	if slope {
		ms.slopeGroundingCounter++
		doVerticalCheck = ms.slopeGroundingCounter%slopeGroundingInterval == 0
		tolerance = slopeGroundingTolerance
	} else {
		ms.slopeGroundingCounter = 0
	}

	newVel := geom.Vec3{X: horiz.X + steer.X, Y: vel.Y, Z: horiz.Z + steer.Z}
	if doVerticalCheck {
		if corr, ok := verticalCorrection(o.nav, o.agent, pos, o.motorCfg, false, tolerance); ok {
			newVel.Y = corr
		}
	}
	_ = o.physics.SetVelocity(ms.entityID, newVel)
}

// advanceWaypoint implements spec §4.5.2: the distance metric is
// horizontal only; reaching the last waypoint completes the movement
// (firing OnDestinationReached at most once), reaching any other
// waypoint advances the index past any waypoints within
// waypointSkipEpsilon of the agent's current position.
func (o *Orchestrator) advanceWaypoint(ms *movementState, pos geom.Vec3) {
	target, ok := ms.currentTarget()
	if !ok {
		return
	}
	threshold := o.pfCfg.WaypointReachedThreshold
	if ms.isLastWaypoint() {
		threshold = o.pfCfg.DestinationReachedThreshold
	}
	if pos.DistXZ(target) > threshold {
		return
	}
	if ms.isLastWaypoint() {
		ms.isCompleted = true
		ms.lifecycle = lifecycleCompleted
		if !ms.destinationEventSent {
			ms.destinationEventSent = true
			o.emitDestinationReached(ms.entityID, target)
		}
		return
	}

	idx := ms.currentWaypointIndex + 1
	for idx < len(ms.waypoints)-1 && pos.DistXZ(ms.waypoints[idx]) <= waypointSkipEpsilon {
		idx++
	}
	if ms.hasDetourWaypoint && idx > ms.detourWaypointIndex {
		ms.hasDetourWaypoint = false
	}
	ms.currentWaypointIndex = idx

	denom := len(ms.waypoints) - 1
	if denom < 1 {
		denom = 1
	}
	o.emitProgress(ms.entityID, float64(idx)/float64(denom))
}
