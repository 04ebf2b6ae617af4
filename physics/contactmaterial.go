// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "math"

// PairMaterialProperties is the result of classifying a contact pair:
// a spring formulation (frequency_hz, damping_ratio) for the implicit
// constraint, a scalar friction coefficient, a maximum recovery
// velocity cap, and a speculative contact margin.
type PairMaterialProperties struct {
	FrictionCoefficient float64
	MaxRecoveryVelocity float64 // math.Inf(1) means unlimited
	SpringFrequencyHz   float64
	SpringDampingRatio  float64
	SpeculativeMargin   float64
}

// ContactMaterialPolicy classifies a contact pair between bodies a and
// b and returns the material properties the solver should use. It is
// injected into the World at construction time as a function-table
// field rather than a dynamic-dispatch callback, so a host can
// substitute its own policy without the World depending on an open
// type hierarchy.
type ContactMaterialPolicy interface {
	Classify(a, b Body, shapeA, shapeB Shape) PairMaterialProperties
}

// DefaultContactMaterialPolicy implements the closed classification
// table below.
type DefaultContactMaterialPolicy struct{}

// Classify implements ContactMaterialPolicy using this closed table:
//
//	Agent<->Agent, neither pushable:     friction 0.0, recovery 0,       spring (240, 1.0), margin 0.05
//	Agent<->Agent, at least one pushable: friction 0.1, recovery inf,    spring (30,  1.0), margin 0.15
//	Agent<->Static ground-like:          friction 0.10, recovery inf,    spring (180, 1.0), margin 0.30
//	Other:                               friction 0.10, recovery inf,    spring (30,  1.0), margin 0.15
func (DefaultContactMaterialPolicy) Classify(a, b Body, shapeA, shapeB Shape) PairMaterialProperties {
	aIsAgent := a.EntityType.IsAgent()
	bIsAgent := b.EntityType.IsAgent()

	if aIsAgent && bIsAgent {
		if a.IsPushable || b.IsPushable {
			return PairMaterialProperties{
				FrictionCoefficient: 0.1,
				MaxRecoveryVelocity: math.Inf(1),
				SpringFrequencyHz:   30,
				SpringDampingRatio:  1.0,
				SpeculativeMargin:   0.15,
			}
		}
		return PairMaterialProperties{
			FrictionCoefficient: 0.0,
			MaxRecoveryVelocity: 0,
			SpringFrequencyHz:   240,
			SpringDampingRatio:  1.0,
			SpeculativeMargin:   0.05,
		}
	}

	groundLike := func(agent, other Body, otherShape Shape) bool {
		return agent.EntityType.IsAgent() && other.Mobility == Static && otherShape.GroundLike()
	}
	if groundLike(a, b, shapeB) || groundLike(b, a, shapeA) {
		return PairMaterialProperties{
			FrictionCoefficient: 0.10,
			MaxRecoveryVelocity: math.Inf(1),
			SpringFrequencyHz:   180,
			SpringDampingRatio:  1.0,
			SpeculativeMargin:   0.30,
		}
	}

	return PairMaterialProperties{
		FrictionCoefficient: 0.10,
		MaxRecoveryVelocity: math.Inf(1),
		SpringFrequencyHz:   30,
		SpringDampingRatio:  1.0,
		SpeculativeMargin:   0.15,
	}
}
