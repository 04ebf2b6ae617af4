// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/echolink/spatialcore/geom"

// CollisionEvent describes a new or ongoing contact between two
// bodies, de-duplicated per pair within a configurable cooldown
// window.
type CollisionEvent struct {
	EntityA, EntityB EntityId
	Point            geom.Vec3
	Normal           geom.Vec3
	Penetration      float64
}

// GroundContactEvent notifies that EntityId's vertical contact state
// against ground-like static geometry changed, consumed by the motion
// orchestrator's grounded/airborne state transitions.
type GroundContactEvent struct {
	Entity     EntityId
	IsGrounded bool
}

// CollisionListener receives synchronous notifications from World.Step.
// Handlers run on the calling goroutine, inside Step; they must not
// block.
type CollisionListener interface {
	OnCollision(CollisionEvent)
	OnGroundContactChanged(GroundContactEvent)
}

// eventTracker de-duplicates CollisionEvent emission per unordered
// entity pair within Config.ContactCooldown seconds, and tracks each
// entity's most recent grounded/airborne state to detect transitions.
type eventTracker struct {
	cooldown     float64
	sinceEmitted map[pairKey]float64
	grounded     map[EntityId]bool
}

func newEventTracker(cooldown float64) *eventTracker {
	return &eventTracker{
		cooldown:     cooldown,
		sinceEmitted: make(map[pairKey]float64),
		grounded:     make(map[EntityId]bool),
	}
}

// advance ages every tracked pair's cooldown timer by dt; call once per
// Step before emission checks.
func (t *eventTracker) advance(dt float64) {
	for k, v := range t.sinceEmitted {
		t.sinceEmitted[k] = v + dt
	}
}

// shouldEmit reports whether a collision between a and b may be
// emitted now, resetting the cooldown timer if so.
func (t *eventTracker) shouldEmit(a, b EntityId) bool {
	key := makePairKey(a, b)
	last, seen := t.sinceEmitted[key]
	if seen && last < t.cooldown {
		return false
	}
	t.sinceEmitted[key] = 0
	return true
}

// setGrounded updates entity's grounded state and reports whether it
// changed since the last call.
func (t *eventTracker) setGrounded(entity EntityId, isGrounded bool) (changed bool) {
	prev, seen := t.grounded[entity]
	t.grounded[entity] = isGrounded
	return !seen || prev != isGrounded
}
