// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package spatialcore is the top-level facade wiring the physics
// world, navmesh, path planner and motion orchestrator together.
// Cyclic dependencies between those components are broken by
// injecting each one into the next from here, matching the shape of
// gazed-vu/eng.go composing the engine's subsystems behind one
// constructor. Nothing below reimplements component behavior; it only
// owns construction order and delegates.
package spatialcore

import (
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/motion"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/pathplan"
	"github.com/echolink/spatialcore/physics"
	"github.com/echolink/spatialcore/spatialcfg"
)

// World is the facade over a physics.World, navmesh.NavMesh and
// motion.Orchestrator built from one shared spatialcfg.Config and
// navmesh.AgentConfig. It is the type callers construct; they never
// reach into the component packages directly except to build a
// navmesh.TriangleSoup for level geometry.
type World struct {
	Physics *physics.World
	NavMesh *navmesh.NavMesh
	Motion  *motion.Orchestrator

	cfg spatialcfg.Config
}

// New builds a World from a level's walkable triangle soup and a
// resolved configuration. It constructs the physics world with
// DefaultContactMaterialPolicy unless the caller needs a different
// one (use NewWithPolicy for that), builds the navmesh from soup, and
// wires the motion orchestrator as the physics world's single
// collision listener.
func New(soup navmesh.TriangleSoup, cfg spatialcfg.Config) (*World, error) {
	return NewWithPolicy(soup, cfg, nil)
}

// NewWithPolicy is New with an explicit physics.ContactMaterialPolicy;
// a nil policy falls back to physics.DefaultContactMaterialPolicy, the
// same default physics.NewWorld itself applies.
func NewWithPolicy(soup navmesh.TriangleSoup, cfg spatialcfg.Config, policy physics.ContactMaterialPolicy) (*World, error) {
	nm, err := navmesh.BuildNavMesh(soup, cfg.Agent, navmesh.DefaultBuildOptions())
	if err != nil {
		return nil, err
	}

	phys := physics.NewWorld(cfg.Physics, policy)
	orch := motion.NewOrchestrator(phys, nm, cfg.Agent, cfg.Pathfinder, cfg.Motor)

	return &World{Physics: phys, NavMesh: nm, Motion: orch, cfg: cfg}, nil
}

// Step advances the physics simulation and the motion orchestrator by
// one fixed tick, in that order: the orchestrator's Update commands
// velocities from the *previous* tick's poses, then Step integrates
// those velocities and dispatches the contact events the orchestrator
// reads on the *next* call, matching the ordering
// motion/orchestrator.go documents between Update and world.Step.
func (w *World) Step(dt float64) {
	w.Motion.Update(dt)
	w.Physics.Step(dt)
}

// RegisterAgent registers a new dynamic, capsule-shaped agent body at
// pose using the shared AgentConfig's height/radius (every agent is a
// capsule sized from the same AgentConfig), returning its
// physics.BodyHandle.
func (w *World) RegisterAgent(id physics.EntityId, entityType physics.EntityType, pose geom.RigidPose, mass float64) (physics.BodyHandle, error) {
	shape := physics.NewCapsuleShape(w.cfg.Agent.Radius, w.cfg.Agent.Height)
	handle := w.Physics.Shapes().Intern(shape)

	var invMass float64
	var invIT geom.Vec3
	if mass > 0 {
		invMass = 1 / mass
		invIT = shape.InverseInertiaTensor(mass)
	}

	return w.Physics.RegisterBody(physics.Body{
		EntityId:    id,
		EntityType:  entityType,
		Mobility:    physics.Dynamic,
		Shape:       handle,
		Pose:        pose,
		InverseMass: invMass,
		InverseIT:   invIT,
	})
}

// RegisterStaticObstacle registers a static box obstacle, the common
// case for level geometry outside the walkable soup itself (doors,
// crates, permanent blockers the navmesh builder was never told
// about).
func (w *World) RegisterStaticObstacle(id physics.EntityId, pose geom.RigidPose, halfExtents geom.Vec3) (physics.BodyHandle, error) {
	shape := physics.NewBoxShape(halfExtents)
	handle := w.Physics.Shapes().Intern(shape)
	return w.Physics.RegisterBody(physics.Body{
		EntityId:   id,
		EntityType: physics.Obstacle,
		Mobility:   physics.Static,
		Shape:      handle,
		Pose:       pose,
	})
}

// RequestMovement is a thin passthrough to Motion.RequestMovement,
// filling AgentHeight/AgentRadius from the shared AgentConfig when the
// caller leaves them zero.
func (w *World) RequestMovement(id physics.EntityId, target geom.Vec3, maxSpeed float64) error {
	return w.Motion.RequestMovement(motion.MovementRequest{
		EntityID: id,
		Target:   target,
		MaxSpeed: maxSpeed,
	})
}

// FindPath runs the standalone planner against this World's navmesh,
// independent of any in-flight MovementState — useful
// for speculative "can I get there" queries a caller doesn't want to
// commit an agent to.
func (w *World) FindPath(start, goal geom.Vec3) (pathplan.Path, error) {
	extents := geom.Vec3{
		X: w.cfg.Pathfinder.PathfindingSearchExtentsHorizontal,
		Y: w.cfg.Pathfinder.PathfindingSearchExtentsVertical,
		Z: w.cfg.Pathfinder.PathfindingSearchExtentsHorizontal,
	}
	return pathplan.FindPath(w.NavMesh, start, goal, extents)
}
