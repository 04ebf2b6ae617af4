// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package physics implements the server-authoritative rigid-body world
// and its contact material policy. The step pipeline below follows the
// predict/broadphase/narrowphase/solve/integrate/clear-forces shape of
// the teacher's mover.Step in gazed-vu/move/move.go, with the narrow
// phase and solver replaced end to end to match this runtime's
// Box/Capsule/Sphere shape set and soft-constraint contact model.
package physics

import (
	"log/slog"
	"math"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/spatialerr"
)

// World owns every rigid body, interned shape, and the contact
// material policy used to classify contact pairs. A World is not safe
// for concurrent use; callers serialize access on a single owning
// thread, the same way the rest of the spatial core does.
type World struct {
	cfg       Config
	shapes    *ShapeStore
	bodies    *registry
	policy    ContactMaterialPolicy
	events    *eventTracker
	listeners []CollisionListener
}

// NewWorld constructs a World. A nil policy defaults to
// DefaultContactMaterialPolicy{}.
func NewWorld(cfg Config, policy ContactMaterialPolicy) *World {
	if policy == nil {
		policy = DefaultContactMaterialPolicy{}
	}
	return &World{
		cfg:    cfg,
		shapes: NewShapeStore(),
		bodies: newRegistry(),
		policy: policy,
		events: newEventTracker(cfg.ContactCooldown),
	}
}

// Shapes exposes the world's shape store so callers can intern shapes
// before registering bodies that reference them.
func (w *World) Shapes() *ShapeStore { return w.shapes }

// AddListener registers a CollisionListener to receive synchronous
// event dispatch during Step.
func (w *World) AddListener(l CollisionListener) { w.listeners = append(w.listeners, l) }

// RegisterBody adds body to the world. It returns spatialerr.
// ErrDuplicateEntityId if body.EntityId is already registered, or
// spatialerr.ErrInvalidParameter if the shape handle is unknown or
// mass/inertia are inconsistent with body.Mobility.
func (w *World) RegisterBody(body Body) (BodyHandle, error) {
	if _, exists := w.bodies.handleFor(body.EntityId); exists {
		return BodyHandle{}, spatialerr.DuplicateEntityId(uint32(body.EntityId))
	}
	if _, ok := w.shapes.Lookup(body.Shape); !ok {
		return BodyHandle{}, spatialerr.InvalidParameter("shape", "unknown shape handle")
	}
	if !body.Pose.Position.IsFinite() {
		slog.Warn("spatialcore/physics: rejected RegisterBody", "entity", body.EntityId, "reason", "non-finite position")
		return BodyHandle{}, spatialerr.InvalidParameter("pose", "position contains NaN or Inf")
	}
	part := partDynamic
	if body.Mobility == Static {
		part = partStatic
		body.InverseMass = 0
		body.InverseIT = geom.Vec3{}
	} else if body.InverseMass <= 0 || math.IsNaN(body.InverseMass) || math.IsInf(body.InverseMass, 1) {
		// callers compute InverseMass from density/shape themselves; this
		// catches a structurally invalid non-positive, NaN, or infinite
		// value. InverseMass == 0 on a Dynamic body means an infinite-mass
		// request, rejected at the boundary the same way NaN is.
		slog.Warn("spatialcore/physics: rejected RegisterBody", "entity", body.EntityId, "reason", "non-finite or non-positive inverse mass")
		return BodyHandle{}, spatialerr.InvalidParameter("inverse_mass", "must be finite and positive for a Dynamic body")
	}
	return w.bodies.register(part, body), nil
}

// UnregisterBody removes the body with id, if present. Idempotent.
func (w *World) UnregisterBody(id EntityId) { w.bodies.unregister(id) }

// GetPose returns the current pose of the body with id.
func (w *World) GetPose(id EntityId) (geom.RigidPose, error) {
	slot, err := w.slotFor(id)
	if err != nil {
		return geom.RigidPose{}, err
	}
	return slot.body.Pose, nil
}

// SetPose overwrites the pose of the body with id, bypassing the
// solver. Used for teleports and initial placement.
func (w *World) SetPose(id EntityId, pose geom.RigidPose) error {
	if !pose.Position.IsFinite() {
		return spatialerr.InvalidParameter("pose", "position contains NaN or Inf")
	}
	slot, err := w.slotFor(id)
	if err != nil {
		return err
	}
	slot.body.Pose = pose
	return nil
}

// GetVelocity returns the current linear velocity of the body with id.
func (w *World) GetVelocity(id EntityId) (geom.Vec3, error) {
	slot, err := w.slotFor(id)
	if err != nil {
		return geom.Vec3{}, err
	}
	return slot.body.Velocity, nil
}

// SetVelocity overwrites the linear velocity of the body with id. On a
// Dynamic body this also wakes it, so a sleeping body resumes
// integrating gravity/contacts on the next Step.
func (w *World) SetVelocity(id EntityId, v geom.Vec3) error {
	if !v.IsFinite() {
		return spatialerr.InvalidParameter("velocity", "contains NaN or Inf")
	}
	slot, err := w.slotFor(id)
	if err != nil {
		return err
	}
	slot.body.Velocity = v
	if slot.body.Mobility == Dynamic {
		slot.body.asleep = false
		slot.body.sleepTimer = 0
	}
	return nil
}

// ApplyLinearImpulse adds impulse/mass to the body's velocity. A no-op
// on static bodies (infinite mass).
func (w *World) ApplyLinearImpulse(id EntityId, impulse geom.Vec3) error {
	if !impulse.IsFinite() {
		return spatialerr.InvalidParameter("impulse", "contains NaN or Inf")
	}
	slot, err := w.slotFor(id)
	if err != nil {
		return err
	}
	slot.body.Velocity = slot.body.Velocity.Add(impulse.Scale(slot.body.InverseMass))
	if slot.body.Mobility == Dynamic && slot.body.InverseMass > 0 {
		slot.body.asleep = false
		slot.body.sleepTimer = 0
	}
	return nil
}

// EntityType returns the entity type of the body with id, used by
// higher layers (e.g. the motion orchestrator's blockage
// classification) that need to distinguish a permanent Obstacle from
// a TemporaryObstacle without re-deriving it from pose data.
func (w *World) EntityType(id EntityId) (EntityType, error) {
	slot, err := w.slotFor(id)
	if err != nil {
		return 0, err
	}
	return slot.body.EntityType, nil
}

// SetPushable toggles whether a dynamic agent body participates in the
// pushable contact-material branch.
func (w *World) SetPushable(id EntityId, pushable bool) error {
	slot, err := w.slotFor(id)
	if err != nil {
		return err
	}
	slot.body.IsPushable = pushable
	return nil
}

func (w *World) slotFor(id EntityId) (*bodySlot, error) {
	handle, ok := w.bodies.handleFor(id)
	if !ok {
		return nil, spatialerr.EntityNotFound(uint32(id))
	}
	slot, ok := w.bodies.lookup(handle)
	if !ok {
		return nil, spatialerr.EntityNotFound(uint32(id))
	}
	return slot, nil
}

// Step advances the simulation by dt seconds: integrate forces,
// broadphase, narrowphase, solve contacts, integrate poses, dispatch
// events. dt should normally equal Config.Timestep; the caller is
// responsible for fixed-timestep accumulation.
func (w *World) Step(dt float64) {
	w.events.advance(dt)

	// predict: apply gravity to dynamic, non-asleep bodies.
	w.bodies.forEachDynamic(func(_ int, b *Body) {
		if b.asleep || b.DisableGravity {
			return
		}
		b.Velocity = b.Velocity.Add(w.cfg.Gravity.Scale(dt))
	})

	// broadphase: gather world AABBs across both partitions.
	var entries []broadEntry
	collect := func(part partition, slots []bodySlot) {
		for i := range slots {
			if !slots[i].live {
				continue
			}
			b := &slots[i].body
			shape, ok := w.shapes.Lookup(b.Shape)
			if !ok {
				continue
			}
			margin := 0.05
			entries = append(entries, broadEntry{
				handle: BodyHandle{index: i, gen: slots[i].gen, part: part},
				box:    shape.WorldAABB(b.Pose, margin),
			})
		}
	}
	collect(partStatic, w.bodies.statics)
	collect(partDynamic, w.bodies.dynamics)

	pairIdx := broadphasePairs(entries)

	var constraints []*contactConstraint
	var groundedNow = make(map[EntityId]bool)

	getBody := func(h BodyHandle) *Body {
		slot, ok := w.bodies.lookup(h)
		if !ok {
			return nil
		}
		return &slot.body
	}

	for _, pr := range pairIdx {
		ia, ib := pr[0], pr[1]
		handleA, handleB := entries[ia].handle, entries[ib].handle
		bodyA, bodyB := getBody(handleA), getBody(handleB)
		if bodyA == nil || bodyB == nil {
			continue
		}
		if bodyA.Mobility == Static && bodyB.Mobility == Static {
			continue
		}
		// Wake a sleeping body when an awake dynamic body touches it, so
		// the impulse resolveContacts is about to apply below actually
		// reaches its pose this step instead of being discarded by the
		// asleep-guarded integrate/sleep-accumulation loops further down
		// (an asleep body contacted only by Static neighbours, e.g. its
		// own resting ground contact, is left asleep).
		if bodyA.asleep && bodyB.Mobility == Dynamic && !bodyB.asleep {
			bodyA.asleep, bodyA.sleepTimer = false, 0
		}
		if bodyB.asleep && bodyA.Mobility == Dynamic && !bodyA.asleep {
			bodyB.asleep, bodyB.sleepTimer = false, 0
		}
		shapeA, okA := w.shapes.Lookup(bodyA.Shape)
		shapeB, okB := w.shapes.Lookup(bodyB.Shape)
		if !okA || !okB {
			continue
		}
		material := w.policy.Classify(*bodyA, *bodyB, shapeA, shapeB)
		contact, ok := generateContact(bodyA.Pose, shapeA, bodyB.Pose, shapeB, material.SpeculativeMargin)
		if !ok {
			continue
		}
		constraints = append(constraints, &contactConstraint{
			handleA:  handleA,
			handleB:  handleB,
			contact:  contact,
			material: material,
		})

		if w.events.shouldEmit(bodyA.EntityId, bodyB.EntityId) {
			w.dispatchCollision(CollisionEvent{
				EntityA:     bodyA.EntityId,
				EntityB:     bodyB.EntityId,
				Point:       contact.Point,
				Normal:      contact.Normal,
				Penetration: contact.Penetration,
			})
		}

		groundAgent := func(agent, other Body, otherShape Shape, normalSign float64) {
			if agent.EntityType.IsAgent() && other.Mobility == Static && otherShape.GroundLike() && contact.Penetration > -material.SpeculativeMargin {
				if contact.Normal.Y*normalSign > 0.5 {
					groundedNow[agent.EntityId] = true
				}
			}
		}
		groundAgent(*bodyA, *bodyB, shapeB, -1)
		groundAgent(*bodyB, *bodyA, shapeA, 1)
	}

	resolveContacts(constraints, getBody, dt, w.cfg.SolverIters)

	// integrate: apply corrected velocities to poses.
	w.bodies.forEachDynamic(func(_ int, b *Body) {
		if b.asleep {
			return
		}
		b.Pose = b.Pose.Integrate(b.Velocity, b.AngularVel, dt)
	})

	// sleep accumulation: a Dynamic body below the configured linear
	// speed threshold for SleepSeconds stops integrating until
	// SetVelocity/ApplyLinearImpulse wakes it.
	if w.cfg.SleepEnabled {
		threshold := w.cfg.SleepLinearVelocity * w.cfg.SleepLinearVelocity
		w.bodies.forEachDynamic(func(_ int, b *Body) {
			if b.asleep {
				return
			}
			if b.Velocity.LenSq() <= threshold {
				b.sleepTimer += dt
				if b.sleepTimer >= w.cfg.SleepSeconds {
					b.asleep = true
				}
			} else {
				b.sleepTimer = 0
			}
		})
	}

	// ground-contact transition notifications.
	w.bodies.forEachLive(func(b *Body) {
		if !b.EntityType.IsAgent() {
			return
		}
		isGrounded := groundedNow[b.EntityId]
		if w.events.setGrounded(b.EntityId, isGrounded) {
			w.dispatchGround(GroundContactEvent{Entity: b.EntityId, IsGrounded: isGrounded})
		}
	})

	// clear forces: nothing persists beyond gravity (applied fresh next
	// step), matching the teacher's clearForces pass in move.go.
}

func (w *World) dispatchCollision(e CollisionEvent) {
	for _, l := range w.listeners {
		l.OnCollision(e)
	}
}

func (w *World) dispatchGround(e GroundContactEvent) {
	for _, l := range w.listeners {
		l.OnGroundContactChanged(e)
	}
}

// TypeFilter restricts a spatial query to a single EntityType when
// present; the zero value (no filter set) matches every type (spec
// §4.1: "type_filter?").
type TypeFilter struct {
	Type EntityType
	set  bool
}

// FilterType builds a TypeFilter that matches only t.
func FilterType(t EntityType) TypeFilter { return TypeFilter{Type: t, set: true} }

func (f TypeFilter) matches(t EntityType) bool { return !f.set || f.Type == t }

// EntitiesInRadius returns every EntityId whose body origin lies
// within radius of center, optionally narrowed to a single EntityType.
func (w *World) EntitiesInRadius(center geom.Vec3, radius float64, filter ...TypeFilter) []EntityId {
	var tf TypeFilter
	if len(filter) > 0 {
		tf = filter[0]
	}
	var out []EntityId
	r2 := radius * radius
	w.bodies.forEachLive(func(b *Body) {
		if tf.matches(b.EntityType) && b.Pose.Position.Sub(center).LenSq() <= r2 {
			out = append(out, b.EntityId)
		}
	})
	return out
}

// HasEntitiesInRadius is a short-circuiting variant of EntitiesInRadius
// for hot paths that only need a boolean, optionally narrowed by type.
func (w *World) HasEntitiesInRadius(center geom.Vec3, radius float64, filter ...TypeFilter) bool {
	var tf TypeFilter
	if len(filter) > 0 {
		tf = filter[0]
	}
	r2 := radius * radius
	found := false
	w.bodies.forEachLive(func(b *Body) {
		if found {
			return
		}
		if tf.matches(b.EntityType) && b.Pose.Position.Sub(center).LenSq() <= r2 {
			found = true
		}
	})
	return found
}

// ClosestEntities returns up to n EntityIds closest to center, ordered
// nearest first. maxRadius, if > 0, excludes bodies further than that
// distance. A simple selection over all live bodies; this runtime
// targets small-to-moderate agent counts where that is sufficient (see
// physics/broadphase.go for the same O(n^2) tradeoff applied to
// contact detection).
func (w *World) ClosestEntities(center geom.Vec3, n int, maxRadius float64) []EntityId {
	type scored struct {
		id   EntityId
		dist float64
	}
	maxR2 := maxRadius * maxRadius
	var all []scored
	w.bodies.forEachLive(func(b *Body) {
		d2 := b.Pose.Position.Sub(center).LenSq()
		if maxRadius > 0 && d2 > maxR2 {
			return
		}
		all = append(all, scored{id: b.EntityId, dist: d2})
	})
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].dist < all[j-1].dist; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if n > len(all) {
		n = len(all)
	}
	if n < 0 {
		n = 0
	}
	out := make([]EntityId, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].id
	}
	return out
}
