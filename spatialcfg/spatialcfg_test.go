// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package spatialcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/echolink/spatialcore/motion"
)

func TestDefaultsMatchComponentDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, 1.8, cfg.Agent.Height)
	require.Equal(t, 0.4, cfg.Agent.Radius)
	require.Equal(t, 0.008, cfg.Physics.Timestep)
	require.True(t, cfg.Pathfinder.EnableLocalAvoidance)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spatial.yaml")
	yaml := []byte("agent:\n  radius: 0.55\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0.55, cfg.Agent.Radius)
	require.Equal(t, 1.8, cfg.Agent.Height, "unset fields must keep their default")
	require.Equal(t, motion.DefaultMotorCharacterConfig().MotorStrength, cfg.Motor.MotorStrength)
}

func TestLoadRejectsInvalidAgentSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	yaml := []byte("agent:\n  radius: -1\n")
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
