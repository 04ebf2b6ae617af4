// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func flatTriangle() Triangle {
	return Triangle{A: Vec3{0, 0, 0}, B: Vec3{4, 0, 0}, C: Vec3{0, 0, 4}}
}

func TestTriangleDegenerate(t *testing.T) {
	require.False(t, flatTriangle().IsDegenerate())
	collinear := Triangle{A: Vec3{0, 0, 0}, B: Vec3{1, 0, 0}, C: Vec3{2, 0, 0}}
	require.True(t, collinear.IsDegenerate())
}

func TestTriangleRayIntersect(t *testing.T) {
	tri := flatTriangle()
	hit, dist := tri.RayIntersect(Vec3{1, 5, 1}, Vec3{0, -1, 0}, 100)
	require.True(t, hit)
	require.InDelta(t, 5.0, dist, Epsilon)

	miss, _ := tri.RayIntersect(Vec3{100, 5, 100}, Vec3{0, -1, 0}, 100)
	require.False(t, miss)
}

func TestTriangleContainsAndHeight(t *testing.T) {
	tri := Triangle{A: Vec3{0, 0, 0}, B: Vec3{4, 2, 0}, C: Vec3{0, 2, 4}}
	p := Vec3{1, 0, 1}
	require.True(t, tri.ContainsXZ(p))
	h := tri.HeightAtXZ(p)
	require.Greater(t, h, 0.0)
	require.Less(t, h, 2.0)
}
