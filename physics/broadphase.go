// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/echolink/spatialcore/geom"

// broadEntry is one candidate body fed to the broadphase sweep: its
// world AABB (already grown by the shape's speculative margin) plus
// enough identity to build a stable pair key.
type broadEntry struct {
	handle BodyHandle
	box    geom.AABB
}

// pairKey uniquely identifies an unordered pair of entities, matching
// the teacher's pairId scheme in move.go (low index packed into the
// high bits, high index into the low bits, so (a,b) and (b,a) collide).
type pairKey uint64

func makePairKey(a, b EntityId) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey(uint64(a))<<32 | pairKey(uint32(b))
}

// broadphasePairs runs an O(n^2) AABB overlap sweep over entries and
// returns the index pairs whose boxes overlap. The teacher's move.go
// uses the same all-pairs sweep (grounded there in a small-N game
// context); this is within scope for the agent counts this runtime
// targets.
func broadphasePairs(entries []broadEntry) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].box.Overlaps(entries[j].box) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}
