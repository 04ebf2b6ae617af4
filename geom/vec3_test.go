// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVec3AddSub(t *testing.T) {
	v := Vec3{1, 2, 3}
	a := Vec3{4, -1, 2}
	require.True(t, v.Add(a).Eq(Vec3{5, 1, 5}))
	require.True(t, v.Add(a).Sub(a).Aeq(v))
}

func TestVec3DotCross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	require.InDelta(t, 0, x.Dot(y), Epsilon)
	require.True(t, x.Cross(y).Aeq(Vec3{0, 0, 1}))
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	require.InDelta(t, 1.0, n.Len(), Epsilon)
	require.True(t, Vec3{}.Normalize().Eq(Vec3{}))
}

func TestVec3DistXZ(t *testing.T) {
	a := Vec3{0, 100, 0}
	b := Vec3{3, -50, 4}
	require.InDelta(t, 5.0, a.DistXZ(b), Epsilon)
}

func TestVec3IsFinite(t *testing.T) {
	require.True(t, Vec3{1, 2, 3}.IsFinite())
	require.False(t, Vec3{math.NaN(), 0, 0}.IsFinite())
}

func TestVec3RightXZ(t *testing.T) {
	forward := Vec3{0, 0, 1}
	right := forward.RightXZ()
	require.True(t, right.Aeq(Vec3{1, 0, 0}))
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, 10, 10}
	require.True(t, a.Lerp(b, 0.5).Aeq(Vec3{5, 5, 5}))
}
