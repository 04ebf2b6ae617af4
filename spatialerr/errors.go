// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package spatialerr defines the error kinds shared at the API
// boundaries of the physics, navmesh, pathplan and motion packages.
// Every exported constructor wraps a sentinel with
// github.com/pkg/errors so callers can both errors.Is against the
// sentinel and read a contextual message.
package spatialerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Use errors.Is(err, spatialerr.ErrNoPath) etc.
// to classify an error returned from the core.
var (
	// ErrInvalidParameter signals a caller-supplied value that is
	// structurally invalid: NaN, negative mass, zero agent height, and
	// so on. Always a caller fault, detected at the API boundary.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDuplicateEntityId signals register_body was called with an
	// EntityId already present in the registry.
	ErrDuplicateEntityId = errors.New("duplicate entity id")

	// ErrEntityNotFound signals a lookup of an EntityId with no body.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrNotOnNavMesh signals a snap-to-navmesh query found no walkable
	// polygon within the requested extents.
	ErrNotOnNavMesh = errors.New("point not on navmesh")

	// ErrNoPath signals the planner found no polygon corridor between
	// start and goal.
	ErrNoPath = errors.New("no path")

	// ErrPathInvalid signals the path validator rejected a path and
	// auto-fix either was not attempted or also failed. See
	// PathInvalidError for the offending segment and reason.
	ErrPathInvalid = errors.New("path invalid")

	// ErrEmptyNavMesh signals the builder produced zero walkable
	// polygons from the given triangle soup and AgentConfig.
	ErrEmptyNavMesh = errors.New("empty navmesh")
)

// InvalidParameter wraps ErrInvalidParameter with a field name and
// human-readable reason.
func InvalidParameter(field, reason string) error {
	return errors.Wrapf(ErrInvalidParameter, "%s: %s", field, reason)
}

// DuplicateEntityId wraps ErrDuplicateEntityId with the offending id.
func DuplicateEntityId(id uint32) error {
	return errors.Wrapf(ErrDuplicateEntityId, "entity %d", id)
}

// EntityNotFound wraps ErrEntityNotFound with the missing id.
func EntityNotFound(id uint32) error {
	return errors.Wrapf(ErrEntityNotFound, "entity %d", id)
}

// NotOnNavMesh wraps ErrNotOnNavMesh with the query point.
func NotOnNavMesh(x, y, z float64) error {
	return errors.Wrapf(ErrNotOnNavMesh, "point (%.3f, %.3f, %.3f)", x, y, z)
}

// NoPath wraps ErrNoPath with the start/goal description.
func NoPath(reason string) error {
	return errors.Wrap(ErrNoPath, reason)
}

// PathInvalidError carries the segment index and reason a path
// validator rejected a path. It satisfies the error interface and
// unwraps to ErrPathInvalid.
type PathInvalidError struct {
	SegmentIndex int
	Reason       string
}

func (e *PathInvalidError) Error() string {
	return fmt.Sprintf("path invalid at segment %d: %s", e.SegmentIndex, e.Reason)
}

// Unwrap allows errors.Is(err, ErrPathInvalid) to succeed.
func (e *PathInvalidError) Unwrap() error { return ErrPathInvalid }

// PathInvalid constructs a *PathInvalidError.
func PathInvalid(segmentIndex int, reason string) error {
	return &PathInvalidError{SegmentIndex: segmentIndex, Reason: reason}
}

// EmptyNavMesh wraps ErrEmptyNavMesh with a stage description.
func EmptyNavMesh(stage string) error {
	return errors.Wrapf(ErrEmptyNavMesh, "build produced zero output at stage %q", stage)
}
