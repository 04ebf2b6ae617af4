// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package pathplan

import "math"

// BridgeArtifact describes a waypoint pair flagged by
// DetectBridgeArtifacts as a likely navmesh-bridge artefact (spec
// §4.4.4): a cliff, a gap across a void, or a polygon bridge spanning
// empty space. Orchestrators should treat a flagged path's destination
// as unreachable rather than drive an agent across it.
type BridgeArtifact struct {
	SegmentIndex int
	Reason       string
}

// DetectBridgeArtifacts scans consecutive waypoint pairs for three
// caller-side sanity conditions:
//   - Δy > 2m over horizontal < 1m (cliff)
//   - Δy/horizontal > 0.5 for Δy > 3m (gap across void)
//   - horizontal > 25m (polygon bridge across empty space)
//
// These are deliberately looser than ValidatePath's max-climb/max-slope
// check: they catch corridors that are locally within limits but span
// an implausibly large void, which a navmesh builder can still produce
// across thin unwalkable gaps bridged by detail-mesh interpolation.
func DetectBridgeArtifacts(path Path) []BridgeArtifact {
	var flags []BridgeArtifact
	for i := 0; i+1 < len(path.Waypoints); i++ {
		a, b := path.Waypoints[i], path.Waypoints[i+1]
		dy := math.Abs(b.Y - a.Y)
		horizontal := a.DistXZ(b)

		switch {
		case dy > 2 && horizontal < 1:
			flags = append(flags, BridgeArtifact{SegmentIndex: i, Reason: "cliff: vertical step over negligible horizontal distance"})
		case dy > 3 && horizontal > 0 && dy/horizontal > 0.5:
			flags = append(flags, BridgeArtifact{SegmentIndex: i, Reason: "gap across void: steep rise/fall over short span"})
		case horizontal > 25:
			flags = append(flags, BridgeArtifact{SegmentIndex: i, Reason: "polygon bridge across empty space: implausible horizontal span"})
		}
	}
	return flags
}
