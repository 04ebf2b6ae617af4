// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/echolink/spatialcore/geom"

// Config is the physics world's tunables. Zero-value Config is
// invalid; use DefaultConfig().
type Config struct {
	Gravity         geom.Vec3 `yaml:"gravity" mapstructure:"gravity"`
	Timestep        float64   `yaml:"timestep" mapstructure:"timestep"`
	SolverIters     int       `yaml:"solver_iterations" mapstructure:"solver_iterations"`
	ContactCooldown float64   `yaml:"contact_event_cooldown" mapstructure:"contact_event_cooldown"`

	// SleepEnabled, SleepLinearVelocity and SleepSeconds govern when a
	// Dynamic body stops receiving gravity/integration until woken. A
	// body whose linear speed stays below SleepLinearVelocity for
	// SleepSeconds of simulated time goes to sleep; SetVelocity on a
	// Dynamic body always wakes it.
	SleepEnabled        bool    `yaml:"sleep_enabled" mapstructure:"sleep_enabled"`
	SleepLinearVelocity float64 `yaml:"sleep_linear_velocity" mapstructure:"sleep_linear_velocity"`
	SleepSeconds        float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
}

// DefaultConfig returns gravity (0,-9.81,0), timestep 0.008s (125Hz),
// one solver iteration per contact pair per step (the XPBD
// soft-constraint formulation converges in a single pass given the
// stiff spring parameters the contact material policy selects), and a
// 0.5s collision-event de-duplication cooldown.
func DefaultConfig() Config {
	return Config{
		Gravity:         geom.Vec3{X: 0, Y: -9.81, Z: 0},
		Timestep:        0.008,
		SolverIters:     1,
		ContactCooldown: 0.5,

		SleepEnabled:        true,
		SleepLinearVelocity: 0.05,
		SleepSeconds:        2.0,
	}
}
