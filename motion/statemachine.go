// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"math"

	"github.com/echolink/spatialcore/physics"
)

// OnCollision implements physics.CollisionListener. The motion
// orchestrator does not act on raw collision events directly (that is
// a host concern, e.g. damage); it only consumes ground-contact
// transitions. The method exists so Orchestrator can register itself
// as the World's single listener without the caller wiring a second
// one.
func (o *Orchestrator) OnCollision(physics.CollisionEvent) {}

// OnGroundContactChanged implements physics.CollisionListener,
// maintaining each agent's CharacterState from the world's
// entry/exit notifications instead of re-polling contacts every
// Update.
func (o *Orchestrator) OnGroundContactChanged(e physics.GroundContactEvent) {
	t := o.trackerFor(e.Entity)
	t.grounded = e.IsGrounded
	if e.IsGrounded {
		if t.state == Airborne {
			t.state = Recovering
			t.stableFor = 0
		}
		// Recovering -> Grounded is gated by the stability timer in
		// advanceCharacterState, not by the contact event alone.
	} else {
		t.state = Airborne
		t.stableFor = 0
	}
}

func (o *Orchestrator) trackerFor(id physics.EntityId) *characterTracker {
	t, ok := o.characters[id]
	if !ok {
		t = &characterTracker{state: Grounded, grounded: true}
		o.characters[id] = t
	}
	return t
}

// advanceCharacterState ages the Recovering stability timer and
// releases an agent back to Grounded once vertical velocity has
// stayed below recoveryVelocityEpsilon for stabilityWindow seconds. On
// that release, an agent with an active movement re-plans from its
// current XZ rather than resuming the path it had before it was
// displaced.
func (o *Orchestrator) advanceCharacterState(id physics.EntityId, vy, dt float64) {
	t := o.trackerFor(id)
	if t.state != Recovering {
		return
	}
	if math.Abs(vy) < recoveryVelocityEpsilon {
		t.stableFor += dt
	} else {
		t.stableFor = 0
	}
	if t.stableFor >= stabilityWindow {
		t.state = Grounded
		t.knockedBack = false
		if ms, ok := o.states[id]; ok && !ms.isCompleted {
			o.attemptReplan(ms)
		}
	}
}

// GetCharacterState returns the current CharacterState for id,
// defaulting to Grounded for an entity the orchestrator has never
// observed a ground-contact transition for.
func (o *Orchestrator) GetCharacterState(id physics.EntityId) CharacterState {
	if t, ok := o.characters[id]; ok {
		return t.state
	}
	return Grounded
}
