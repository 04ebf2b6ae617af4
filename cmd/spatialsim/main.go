// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Command spatialsim is a small harness exercising the spatialcore
// facade end to end: build a flat-ground navmesh, spawn one agent,
// request a movement, and step the simulation until it arrives or a
// budget of ticks runs out. It exists to showcase the facade the way
// gazed-vu/eg/eg.go showcases engine subsystems, not as a game server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/echolink/spatialcore"
	"github.com/echolink/spatialcore/geom"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/physics"
	"github.com/echolink/spatialcore/spatialcfg"
)

// listener logs the motion orchestrator's synchronous events through
// slog's default logger (stderr), the ambient-stack choice spec §1/SPEC_FULL.md §1
// documents for the rest of the module, and flags when the demo
// agent's single movement request has completed.
type listener struct {
	done *bool
}

func (listener) OnMovementStarted(id physics.EntityId, start, goal geom.Vec3) {
	slog.Info("movement started", "entity", id, "start", start, "goal", goal)
}
func (listener) OnMovementProgress(id physics.EntityId, fraction float64) {
	slog.Debug("movement progress", "entity", id, "fraction", fraction)
}
func (listener) OnPathBlocked(id physics.EntityId) {
	slog.Warn("path blocked", "entity", id)
}
func (listener) OnPathReplanned(id physics.EntityId) {
	slog.Info("path replanned", "entity", id)
}
func (l listener) OnDestinationReached(id physics.EntityId, final geom.Vec3) {
	slog.Info("destination reached", "entity", id, "final", final)
	*l.done = true
}

func flatGround(halfSize float64) navmesh.TriangleSoup {
	positions := []geom.Vec3{
		{X: -halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: -halfSize},
		{X: halfSize, Y: 0, Z: halfSize},
		{X: -halfSize, Y: 0, Z: halfSize},
	}
	indices := []int{0, 1, 2, 0, 2, 3}
	return navmesh.TriangleSoup{Positions: positions, Indices: indices}
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file (defaults applied when omitted)")
	ticks := flag.Int("ticks", 2000, "maximum simulation ticks to run")
	flag.Parse()

	cfg := spatialcfg.Defaults()
	if *configPath != "" {
		loaded, err := spatialcfg.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "spatialsim:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	world, err := spatialcore.New(flatGround(25), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "spatialsim: building world:", err)
		os.Exit(1)
	}
	reached := false
	world.Motion.AddListener(listener{done: &reached})

	const agentID physics.EntityId = 1
	groundedY := cfg.Agent.Height/2 + cfg.Agent.Radius
	start := geom.RigidPose{Position: geom.Vec3{X: -10, Y: groundedY, Z: 0}}
	if _, err := world.RegisterAgent(agentID, physics.Player, start, 80); err != nil {
		fmt.Fprintln(os.Stderr, "spatialsim: registering agent:", err)
		os.Exit(1)
	}

	if err := world.RequestMovement(agentID, geom.Vec3{X: 10, Y: 0, Z: 0}, 3.5); err != nil {
		fmt.Fprintln(os.Stderr, "spatialsim: requesting movement:", err)
		os.Exit(1)
	}

	const dt = 0.008
	for i := 0; i < *ticks && !reached; i++ {
		world.Step(dt)
	}
	if !reached {
		fmt.Fprintln(os.Stderr, "spatialsim: agent did not reach its destination within the tick budget")
		os.Exit(1)
	}
}
