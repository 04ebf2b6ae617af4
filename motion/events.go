// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/physics"
)

// EventListener receives the orchestrator's synchronous movement
// events (spec §4.5.6). All methods are called on the thread that
// invoked Update, never concurrently.
type EventListener interface {
	OnMovementStarted(id physics.EntityId, start, goal geom.Vec3)
	OnMovementProgress(id physics.EntityId, fraction float64)
	OnPathBlocked(id physics.EntityId)
	OnPathReplanned(id physics.EntityId)
	OnDestinationReached(id physics.EntityId, final geom.Vec3)
}

// NopEventListener implements EventListener with no-op methods, so
// callers that only care about a subset of events can embed it and
// override the rest.
type NopEventListener struct{}

func (NopEventListener) OnMovementStarted(physics.EntityId, geom.Vec3, geom.Vec3) {}
func (NopEventListener) OnMovementProgress(physics.EntityId, float64)             {}
func (NopEventListener) OnPathBlocked(physics.EntityId)                          {}
func (NopEventListener) OnPathReplanned(physics.EntityId)                        {}
func (NopEventListener) OnDestinationReached(physics.EntityId, geom.Vec3)        {}

func (o *Orchestrator) emitStarted(id physics.EntityId, start, goal geom.Vec3) {
	for _, l := range o.listeners {
		l.OnMovementStarted(id, start, goal)
	}
}

func (o *Orchestrator) emitProgress(id physics.EntityId, fraction float64) {
	for _, l := range o.listeners {
		l.OnMovementProgress(id, fraction)
	}
}

func (o *Orchestrator) emitBlocked(id physics.EntityId) {
	for _, l := range o.listeners {
		l.OnPathBlocked(id)
	}
}

func (o *Orchestrator) emitReplanned(id physics.EntityId) {
	for _, l := range o.listeners {
		l.OnPathReplanned(id)
	}
}

func (o *Orchestrator) emitDestinationReached(id physics.EntityId, final geom.Vec3) {
	for _, l := range o.listeners {
		l.OnDestinationReached(id, final)
	}
}
