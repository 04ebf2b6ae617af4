// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package spatialcfg loads the tunables shared by physics, navmesh and
// motion from a YAML file via github.com/spf13/viper, following the
// FromYaml pattern in niceyeti-tabular's
// tabular/reinforcement/learning.go: a fresh viper.New() per load
// (never the package-level singleton, so independent configs don't
// stomp each other's state), ReadInConfig, then Unmarshal onto a typed
// struct. Every field has an in-code default, so a caller that never
// touches this package at all still gets a working Defaults().
package spatialcfg

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/echolink/spatialcore/motion"
	"github.com/echolink/spatialcore/navmesh"
	"github.com/echolink/spatialcore/physics"
)

// Config bundles every component's tunables: PhysicsConfig,
// AgentConfig, PathfindingConfig, MotorCharacterConfig.
type Config struct {
	Physics    physics.Config              `yaml:"physics" mapstructure:"physics"`
	Agent      navmesh.AgentConfig         `yaml:"agent" mapstructure:"agent"`
	Pathfinder motion.PathfindingConfig    `yaml:"pathfinding" mapstructure:"pathfinding"`
	Motor      motion.MotorCharacterConfig `yaml:"motor" mapstructure:"motor"`
}

// Defaults returns a Config built entirely from each component's own
// DefaultXxx() constructor, with no file involved.
func Defaults() Config {
	return Config{
		Physics:    physics.DefaultConfig(),
		Agent:      navmesh.DefaultAgentConfig(),
		Pathfinder: motion.DefaultPathfindingConfig(),
		Motor:      motion.DefaultMotorCharacterConfig(),
	}
}

// Load reads a YAML file at path and unmarshals it onto a copy of
// Defaults(), so a config that only overrides a handful of fields
// still comes out whole. A missing or malformed file is returned as an
// error wrapped with github.com/pkg/errors rather than silently
// falling back, so callers can distinguish "I meant to load a file and
// it failed" from "I meant to use Defaults()".
func Load(path string) (Config, error) {
	cfg := Defaults()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	if err := vp.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "spatialcfg: reading %s", path)
	}
	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "spatialcfg: unmarshaling %s", path)
	}

	if err := cfg.Agent.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "spatialcfg: agent section")
	}
	return cfg, nil
}
