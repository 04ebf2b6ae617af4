// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package motion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/physics"
)

// fakePhysics is a minimal PhysicsAPI backed by plain maps, letting
// these tests drive the orchestrator without a real physics.World.
// The test loop integrates position from the orchestrator's last
// commanded velocity itself, mirroring the ordering spec §5 describes
// between orchestrator.Update and world.Step.
type fakePhysics struct {
	poses      map[physics.EntityId]geom.RigidPose
	vels       map[physics.EntityId]geom.Vec3
	pushable   map[physics.EntityId]bool
	entityType map[physics.EntityId]physics.EntityType
	listener   physics.CollisionListener
}

func newFakePhysics() *fakePhysics {
	return &fakePhysics{
		poses:      make(map[physics.EntityId]geom.RigidPose),
		vels:       make(map[physics.EntityId]geom.Vec3),
		pushable:   make(map[physics.EntityId]bool),
		entityType: make(map[physics.EntityId]physics.EntityType),
	}
}

func (f *fakePhysics) GetPose(id physics.EntityId) (geom.RigidPose, error) {
	p, ok := f.poses[id]
	if !ok {
		return geom.RigidPose{}, errNoSuchEntity
	}
	return p, nil
}
func (f *fakePhysics) SetPose(id physics.EntityId, pose geom.RigidPose) error {
	f.poses[id] = pose
	return nil
}
func (f *fakePhysics) GetVelocity(id physics.EntityId) (geom.Vec3, error) {
	return f.vels[id], nil
}
func (f *fakePhysics) SetVelocity(id physics.EntityId, v geom.Vec3) error {
	f.vels[id] = v
	return nil
}
func (f *fakePhysics) ApplyLinearImpulse(id physics.EntityId, impulse geom.Vec3) error {
	f.vels[id] = f.vels[id].Add(impulse)
	return nil
}
func (f *fakePhysics) SetPushable(id physics.EntityId, pushable bool) error {
	f.pushable[id] = pushable
	return nil
}
func (f *fakePhysics) EntitiesInRadius(center geom.Vec3, radius float64, filter ...physics.TypeFilter) []physics.EntityId {
	var out []physics.EntityId
	for id, p := range f.poses {
		if p.Position.Sub(center).Len() <= radius {
			out = append(out, id)
		}
	}
	return out
}
func (f *fakePhysics) EntityType(id physics.EntityId) (physics.EntityType, error) {
	return f.entityType[id], nil
}
func (f *fakePhysics) AddListener(l physics.CollisionListener) { f.listener = l }

// step integrates every tracked entity's position from its last
// commanded velocity, emulating one physics.World.Step.
func (f *fakePhysics) step(dt float64) {
	for id, v := range f.vels {
		p := f.poses[id]
		p.Position = p.Position.Add(v.Scale(dt))
		f.poses[id] = p
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const errNoSuchEntity = fakeErr("no such entity")

// eventRecorder implements EventListener, recording every call for
// assertion.
type eventRecorder struct {
	started     int
	progress    []float64
	blocked     int
	replanned   int
	destReached int
}

func (r *eventRecorder) OnMovementStarted(physics.EntityId, geom.Vec3, geom.Vec3) { r.started++ }
func (r *eventRecorder) OnMovementProgress(_ physics.EntityId, f float64)         { r.progress = append(r.progress, f) }
func (r *eventRecorder) OnPathBlocked(physics.EntityId)                          { r.blocked++ }
func (r *eventRecorder) OnPathReplanned(physics.EntityId)                        { r.replanned++ }
func (r *eventRecorder) OnDestinationReached(physics.EntityId, geom.Vec3)        { r.destReached++ }

func flatGroundSoup(halfSize float64) navmesh.TriangleSoup {
	positions := []geom.Vec3{
		{X: -halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: halfSize},
		{X: -halfSize, Y: 0, Z: halfSize},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return navmesh.TriangleSoup{Positions: positions, Indices: indices}
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakePhysics, *eventRecorder) {
	t.Helper()
	agent := navmesh.DefaultAgentConfig()
	nm, err := navmesh.BuildNavMesh(flatGroundSoup(20), agent, navmesh.DefaultBuildOptions())
	require.NoError(t, err)

	phys := newFakePhysics()
	o := NewOrchestrator(phys, nm, agent, DefaultPathfindingConfig(), DefaultMotorCharacterConfig())
	rec := &eventRecorder{}
	o.AddListener(rec)
	return o, phys, rec
}

func TestRequestMovementReachesDestination(t *testing.T) {
	o, phys, rec := newTestOrchestrator(t)
	const id physics.EntityId = 1
	phys.poses[id] = geom.RigidPose{Position: geom.Vec3{X: -5, Y: navmesh.DefaultAgentConfig().Height/2 + navmesh.DefaultAgentConfig().Radius, Z: 0}}
	phys.entityType[id] = physics.Player

	err := o.RequestMovement(MovementRequest{EntityID: id, Target: geom.Vec3{X: 5, Y: 0, Z: 0}, MaxSpeed: 3})
	require.NoError(t, err)
	require.Equal(t, 1, rec.started)

	const dt = 0.02
	for i := 0; i < 2000 && rec.destReached == 0; i++ {
		o.Update(dt)
		phys.step(dt)
	}
	require.Equal(t, 1, rec.destReached, "destination should be reached within the simulated budget")

	// Running further updates must not fire OnDestinationReached again.
	for i := 0; i < 50; i++ {
		o.Update(dt)
		phys.step(dt)
	}
	require.Equal(t, 1, rec.destReached)
}

func TestStopMovementIsIdempotent(t *testing.T) {
	o, phys, _ := newTestOrchestrator(t)
	const id physics.EntityId = 1
	phys.poses[id] = geom.RigidPose{Position: geom.Vec3{X: 0, Y: 1, Z: 0}}
	phys.vels[id] = geom.Vec3{X: 2, Y: 3, Z: 2}

	require.NoError(t, o.RequestMovement(MovementRequest{EntityID: id, Target: geom.Vec3{X: 5, Y: 0, Z: 0}, MaxSpeed: 3}))
	o.StopMovement(id)
	require.Equal(t, 0.0, phys.vels[id].X)
	require.Equal(t, 3.0, phys.vels[id].Y, "vertical velocity must survive a stop")

	_, err := o.GetWaypoints(id)
	require.Error(t, err)

	// second call is a no-op, not an error, and doesn't re-zero velocity
	phys.vels[id] = geom.Vec3{X: 9, Y: 9, Z: 9}
	o.StopMovement(id)
	require.Equal(t, 9.0, phys.vels[id].X)
}

func TestJumpRequiresGrounded(t *testing.T) {
	o, phys, _ := newTestOrchestrator(t)
	const id physics.EntityId = 1
	phys.poses[id] = geom.RigidPose{Position: geom.Vec3{X: 0, Y: 1, Z: 0}}

	require.NoError(t, o.Jump(id, 5))
	require.Equal(t, Airborne, o.GetCharacterState(id))
	require.Error(t, o.Jump(id, 5))
}

func TestKnockbackForcesAirborneThenRecoversToGrounded(t *testing.T) {
	o, phys, rec := newTestOrchestrator(t)
	const id physics.EntityId = 1
	agentCfg := navmesh.DefaultAgentConfig()
	groundedY := agentCfg.Height/2 + agentCfg.Radius
	phys.poses[id] = geom.RigidPose{Position: geom.Vec3{X: 0, Y: groundedY, Z: 0}}
	phys.entityType[id] = physics.Player

	require.NoError(t, o.Knockback(id, geom.Vec3{X: 1}, 15))
	require.Equal(t, Airborne, o.GetCharacterState(id))

	phys.listener.OnGroundContactChanged(physics.GroundContactEvent{Entity: id, IsGrounded: true})
	require.Equal(t, Recovering, o.GetCharacterState(id))

	// The agent is already settled at the navmesh-derived grounded
	// height, so Recovering's upward-impulse branch stays dormant and
	// only the stability timer gates the return to Grounded.
	phys.vels[id] = geom.Vec3{}
	const dt = 0.02
	for i := 0; i < 60; i++ {
		o.Update(dt)
		phys.step(dt)
	}
	require.Equal(t, Grounded, o.GetCharacterState(id))
	require.Equal(t, 0, rec.blocked, "knockback without a requested movement must not report a blocked path")
}

func TestPushAppliesTimedPushable(t *testing.T) {
	o, phys, _ := newTestOrchestrator(t)
	const id physics.EntityId = 1
	phys.poses[id] = geom.RigidPose{Position: geom.Vec3{X: 0, Y: 1, Z: 0}}

	require.NoError(t, o.Push(id, geom.Vec3{X: 1}, 10, true, 1.0))
	require.True(t, phys.pushable[id])

	o.Update(0.6)
	require.True(t, phys.pushable[id])
	o.Update(0.6)
	require.False(t, phys.pushable[id])
}

func TestResolveAvoidanceYieldsByLowerEntityId(t *testing.T) {
	o, phys, _ := newTestOrchestrator(t)
	const lower physics.EntityId = 1
	const higher physics.EntityId = 2
	phys.poses[lower] = geom.RigidPose{Position: geom.Vec3{X: -1, Y: 1, Z: 0}}
	phys.poses[higher] = geom.RigidPose{Position: geom.Vec3{X: 1, Y: 1, Z: 0}}
	phys.vels[lower] = geom.Vec3{X: 1}
	phys.vels[higher] = geom.Vec3{X: -1}

	msLower := &movementState{entityID: lower, agentRadius: 0.4, waypoints: []geom.Vec3{{X: -1}, {X: 10}}, currentWaypointIndex: 1, speedFactor: 1}
	msHigher := &movementState{entityID: higher, agentRadius: 0.4, waypoints: []geom.Vec3{{X: 1}, {X: -10}}, currentWaypointIndex: 1, speedFactor: 1}
	o.states[lower] = msLower
	o.states[higher] = msHigher

	threatsForLower := o.findThreats(lower, phys.poses[lower].Position, phys.vels[lower], msLower.agentRadius)
	o.resolveAvoidance(msLower, phys.poses[lower].Position, threatsForLower)
	threatsForHigher := o.findThreats(higher, phys.poses[higher].Position, phys.vels[higher], msHigher.agentRadius)
	o.resolveAvoidance(msHigher, phys.poses[higher].Position, threatsForHigher)

	require.True(t, msLower.hasDetourWaypoint, "the lower EntityId must insert a detour waypoint")
	require.Len(t, msHigher.waypoints, 2, "the higher EntityId keeps its waypoints unchanged")
	require.Equal(t, yieldSpeedFactor, msHigher.speedFactor, "the higher EntityId only slows down")
}
