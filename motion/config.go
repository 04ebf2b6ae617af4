// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package motion implements the motion orchestrator and motor
// character controller (spec §4.5, component C6): a per-agent
// movement state machine, waypoint following, local-avoidance
// detour insertion, periodic revalidation/replanning, and
// synchronous event dispatch. It is the only package that owns
// MovementState (spec §3).
package motion

// PathfindingConfig is the orchestrator's tunables (spec §6.3).
// Zero-value PathfindingConfig is invalid; use DefaultPathfindingConfig.
type PathfindingConfig struct {
	PathValidationInterval             float64 `yaml:"path_validation_interval" mapstructure:"path_validation_interval"`
	EnableLocalAvoidance               bool    `yaml:"enable_local_avoidance" mapstructure:"enable_local_avoidance"`
	LocalAvoidanceRadius               float64 `yaml:"local_avoidance_radius" mapstructure:"local_avoidance_radius"`
	MaxAvoidanceNeighbors              int     `yaml:"max_avoidance_neighbors" mapstructure:"max_avoidance_neighbors"`
	AvoidanceStrength                  float64 `yaml:"avoidance_strength" mapstructure:"avoidance_strength"`
	SeparationRadius                   float64 `yaml:"separation_radius" mapstructure:"separation_radius"`
	TryLocalAvoidanceFirst             bool    `yaml:"try_local_avoidance_first" mapstructure:"try_local_avoidance_first"`
	EnableAutomaticReplanning          bool    `yaml:"enable_automatic_replanning" mapstructure:"enable_automatic_replanning"`
	ReplanCooldown                     float64 `yaml:"replan_cooldown" mapstructure:"replan_cooldown"`
	WaypointReachedThreshold           float64 `yaml:"waypoint_reached_threshold" mapstructure:"waypoint_reached_threshold"`
	DestinationReachedThreshold        float64 `yaml:"destination_reached_threshold" mapstructure:"destination_reached_threshold"`
	PathfindingSearchExtentsHorizontal float64 `yaml:"pathfinding_search_extents_horizontal" mapstructure:"pathfinding_search_extents_horizontal"`
	PathfindingSearchExtentsVertical   float64 `yaml:"pathfinding_search_extents_vertical" mapstructure:"pathfinding_search_extents_vertical"`
}

// DefaultPathfindingConfig returns spec §6.3's defaults.
func DefaultPathfindingConfig() PathfindingConfig {
	return PathfindingConfig{
		PathValidationInterval:             0.5,
		EnableLocalAvoidance:               true,
		LocalAvoidanceRadius:               5,
		MaxAvoidanceNeighbors:              5,
		AvoidanceStrength:                  2.0,
		SeparationRadius:                   2,
		TryLocalAvoidanceFirst:             true,
		EnableAutomaticReplanning:          true,
		ReplanCooldown:                     1,
		WaypointReachedThreshold:           0.5,
		DestinationReachedThreshold:        0.3,
		PathfindingSearchExtentsHorizontal: 5,
		PathfindingSearchExtentsVertical:   10,
	}
}

// MotorCharacterConfig tunes the proportional motor controller (spec
// §4.5.3 / §6.3).
type MotorCharacterConfig struct {
	MotorStrength            float64 `yaml:"motor_strength" mapstructure:"motor_strength"`
	HeightCorrectionStrength float64 `yaml:"height_correction_strength" mapstructure:"height_correction_strength"`
	MaxVerticalCorrection    float64 `yaml:"max_vertical_correction" mapstructure:"max_vertical_correction"`
	HeightErrorTolerance     float64 `yaml:"height_error_tolerance" mapstructure:"height_error_tolerance"`
	VerticalDamping          float64 `yaml:"vertical_damping" mapstructure:"vertical_damping"`
	IdleVerticalDamping      float64 `yaml:"idle_vertical_damping" mapstructure:"idle_vertical_damping"`
}

// DefaultMotorCharacterConfig returns spec §6.3's defaults.
func DefaultMotorCharacterConfig() MotorCharacterConfig {
	return MotorCharacterConfig{
		MotorStrength:            0.15,
		HeightCorrectionStrength: 6.5,
		MaxVerticalCorrection:    3.5,
		HeightErrorTolerance:     0.25,
		VerticalDamping:          0.75,
		IdleVerticalDamping:      0.4,
	}
}

// stabilityWindow is how long vertical velocity must stay below
// recoveryVelocityEpsilon before Recovering yields to Grounded (spec
// §3: "gated by a stability window before accepting new path
// commands").
const stabilityWindow = 0.25

// recoveryVelocityEpsilon is the |vy| threshold below which the
// stability timer accumulates (spec §4.5.1).
const recoveryVelocityEpsilon = 0.1

// recoverySettleThreshold is how far below target-Y an agent must
// settle before Recovering applies an upward impulse (spec §4.5.1:
// "only if the agent has settled below target-Y by more than 0.1m").
const recoverySettleThreshold = 0.1

// waypointSkipEpsilon: waypoints whose XZ distance from the agent's
// current position is at most this are skipped during advancement
// (spec §4.5.2).
const waypointSkipEpsilon = 0.1

// slopeGroundingInterval and slopeGroundingTolerance widen grounding
// queries on steep segments (spec §4.5.3).
const slopeGroundingInterval = 5
const slopeGroundingTolerance = 0.15
const slopeDeltaYThreshold = 0.5

// detourOffset is the perpendicular distance of an inserted detour
// waypoint (spec §4.5.4).
const detourOffset = 3.0

// avoidanceLookahead is the maximum time-to-closest-approach considered
// "critical" (spec §4.5.4).
const avoidanceLookahead = 1.5

// yieldSpeedFactor is the speed multiplier applied to the
// higher-EntityId agent while a critical threat persists (spec
// §4.5.4).
const yieldSpeedFactor = 0.75

// verticalGroundingExtents is the small XZ/Y tolerance used when
// sampling the navmesh for the motor's height controller (spec
// §4.5.3).
var verticalGroundingExtents = [3]float64{1, 2, 1}
