// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAABBOverlaps(t *testing.T) {
	a := NewAABB(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewAABB(Vec3{0.5, 0.5, 0.5}, Vec3{2, 2, 2})
	c := NewAABB(Vec3{1, 1, 1}, Vec3{2, 2, 2}) // touching only, not overlapping
	require.True(t, a.Overlaps(b))
	require.False(t, a.Overlaps(c))
}

func TestAABBContainsAndExpand(t *testing.T) {
	a := NewAABB(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	require.True(t, a.Contains(Vec3{0.5, 0.5, 0.5}))
	require.False(t, a.Contains(Vec3{2, 0, 0}))

	grown := a.Expand(1)
	require.True(t, grown.Min.Aeq(Vec3{-1, -1, -1}))
	require.True(t, grown.Max.Aeq(Vec3{2, 2, 2}))
}

func TestAABBUnion(t *testing.T) {
	a := NewAABB(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewAABB(Vec3{-1, -1, -1}, Vec3{0.5, 0.5, 0.5})
	u := a.Union(b)
	require.True(t, u.Min.Aeq(Vec3{-1, -1, -1}))
	require.True(t, u.Max.Aeq(Vec3{1, 1, 1}))
}
