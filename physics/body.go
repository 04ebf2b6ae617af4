// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/echolink/spatialcore/geom"

// EntityId is a stable identifier for a body, unique across both the
// static and dynamic registry partitions for the lifetime of the body.
type EntityId uint32

// EntityType classifies what kind of thing a body represents. An
// agent is any of {Player, NPC, Enemy}.
type EntityType uint8

const (
	Player EntityType = iota
	NPC
	StaticObject
	Obstacle
	Projectile
	Enemy
	TemporaryObstacle
)

// IsAgent reports whether t is one of {Player, NPC, Enemy}.
func (t EntityType) IsAgent() bool { return t == Player || t == NPC || t == Enemy }

// Mobility is a body's lifetime-fixed movement class: a body is
// either Static or Dynamic for its lifetime.
type Mobility uint8

const (
	Static Mobility = iota
	Dynamic
)

// BodyHandle is a generational index into a body registry partition.
// The handle stays stable across unrelated register/unregister calls
// but is invalidated when the slot it names is reused by a later body.
type BodyHandle struct {
	index int
	gen   uint32
	part  partition
}

type partition uint8

const (
	partStatic partition = iota
	partDynamic
)

// Valid reports whether h was ever issued (as opposed to the zero
// value).
func (h BodyHandle) Valid() bool { return h.gen != 0 }

// Body is a single rigid body tracked by a physics World. Callers
// should use World's accessor methods rather than mutating a Body
// returned by value, since the World owns the authoritative copy.
type Body struct {
	EntityId    EntityId
	EntityType  EntityType
	Mobility    Mobility
	Shape       ShapeHandle
	Pose        geom.RigidPose
	Velocity    geom.Vec3 // linear velocity, meters/second
	AngularVel  geom.Vec3 // angular velocity, radians/second (optional, defaults zero)
	InverseMass float64   // 0 for Static
	InverseIT   geom.Vec3 // inverse inertia tensor, diagonal
	IsPushable  bool
	DisableGravity bool
	asleep      bool
	sleepTimer  float64 // seconds spent below the sleep velocity threshold

	// Per-body material coefficients are deliberately absent from this
	// struct: the contact material policy classifies the *pair*, not
	// the individual body, as authoritative for friction/spring/margin.
}

// bodySlot is the registry's internal storage unit, wrapping a Body
// with the generation counter that backs BodyHandle validity checks.
type bodySlot struct {
	body Body
	gen  uint32
	live bool
}

// registry holds the dense static/dynamic partitions described in spec
// §3 ("Static bodies live in a distinct registry partition from
// dynamic ones") plus the EntityId -> handle index needed by the
// EntityId-keyed public API.
type registry struct {
	statics  []bodySlot
	dynamics []bodySlot
	byEntity map[EntityId]BodyHandle
	nextGen  uint32
}

func newRegistry() *registry {
	return &registry{byEntity: make(map[EntityId]BodyHandle)}
}

func (r *registry) slotsFor(part partition) []bodySlot {
	if part == partStatic {
		return r.statics
	}
	return r.dynamics
}

func (r *registry) setSlot(part partition, idx int, slot bodySlot) {
	if part == partStatic {
		r.statics[idx] = slot
	} else {
		r.dynamics[idx] = slot
	}
}

// register inserts body into the appropriate partition and returns its
// handle. The caller is responsible for EntityId uniqueness checks.
func (r *registry) register(part partition, body Body) BodyHandle {
	r.nextGen++
	gen := r.nextGen
	slot := bodySlot{body: body, gen: gen, live: true}
	var idx int
	if part == partStatic {
		idx = len(r.statics)
		r.statics = append(r.statics, slot)
	} else {
		idx = len(r.dynamics)
		r.dynamics = append(r.dynamics, slot)
	}
	handle := BodyHandle{index: idx, gen: gen, part: part}
	r.byEntity[body.EntityId] = handle
	return handle
}

// lookup returns the slot and whether h is still live.
func (r *registry) lookup(h BodyHandle) (*bodySlot, bool) {
	slots := r.statics
	if h.part == partDynamic {
		slots = r.dynamics
	}
	if h.index < 0 || h.index >= len(slots) {
		return nil, false
	}
	slot := &slots[h.index]
	if !slot.live || slot.gen != h.gen {
		return nil, false
	}
	return slot, true
}

// unregister marks the slot dead. Idempotent: unregistering an already
// dead or unknown handle is a no-op.
func (r *registry) unregister(id EntityId) {
	handle, ok := r.byEntity[id]
	if !ok {
		return
	}
	slots := r.statics
	if handle.part == partDynamic {
		slots = r.dynamics
	}
	if handle.index >= 0 && handle.index < len(slots) && slots[handle.index].live {
		slots[handle.index] = bodySlot{}
	}
	delete(r.byEntity, id)
}

// handleFor resolves an EntityId to its current BodyHandle.
func (r *registry) handleFor(id EntityId) (BodyHandle, bool) {
	h, ok := r.byEntity[id]
	return h, ok
}

// forEachDynamic calls fn for every live dynamic body slot, allowing
// in-place mutation of the body.
func (r *registry) forEachDynamic(fn func(idx int, b *Body)) {
	for i := range r.dynamics {
		if r.dynamics[i].live {
			fn(i, &r.dynamics[i].body)
		}
	}
}

// forEachLive calls fn for every live body across both partitions.
func (r *registry) forEachLive(fn func(b *Body)) {
	for i := range r.statics {
		if r.statics[i].live {
			fn(&r.statics[i].body)
		}
	}
	for i := range r.dynamics {
		if r.dynamics[i].live {
			fn(&r.dynamics[i].body)
		}
	}
}
