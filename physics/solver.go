// Copyright © 2024 Echolink Contributors.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/echolink/spatialcore/geom"
)

// softParams holds the derived bias-rate / mass-scale / impulse-scale
// triple for a (frequency_hz, damping_ratio) spring. This is the
// velocity-level soft-constraint formulation; it plays the same role
// as the teacher's til_compliance = compliance/(h*h) tilde in
// pbd_base_constraints.go, reparameterized so every contact's
// stiffness is expressed directly in (Hz, damping ratio) terms rather
// than a raw compliance.
type softParams struct {
	biasRate     float64
	massScale    float64
	impulseScale float64
}

func deriveSoftParams(hz, dampingRatio, h float64) softParams {
	if hz <= 0 {
		// Infinitely stiff: full correction, no softening.
		return softParams{biasRate: 1.0 / h, massScale: 1, impulseScale: 0}
	}
	omega := 2 * math.Pi * hz
	a1 := 2*dampingRatio + h*omega
	a2 := h * omega * a1
	a3 := 1.0 / (1.0 + a2)
	return softParams{
		biasRate:     omega / a1,
		massScale:    a2 * a3,
		impulseScale: a3,
	}
}

// contactConstraint is one narrow-phase contact bound to its two
// bodies' registry locations and the material the ContactMaterialPolicy
// assigned it.
type contactConstraint struct {
	handleA, handleB BodyHandle
	contact          Contact
	material         PairMaterialProperties
	normalLambda     float64
	tangentLambda    float64
}

// resolveContacts runs iters sequential-impulse passes over
// constraints, mutating the velocities of the bodies referenced by
// getBody. getBody must return a stable pointer into the registry for
// the duration of the solve.
func resolveContacts(constraints []*contactConstraint, getBody func(BodyHandle) *Body, h float64, iters int) {
	if iters < 1 {
		iters = 1
	}
	for iter := 0; iter < iters; iter++ {
		for _, c := range constraints {
			bodyA := getBody(c.handleA)
			bodyB := getBody(c.handleB)
			if bodyA == nil || bodyB == nil {
				continue
			}
			invMassSum := bodyA.InverseMass + bodyB.InverseMass
			if invMassSum <= 0 {
				continue
			}
			n := c.contact.Normal
			soft := deriveSoftParams(c.material.SpringFrequencyHz, c.material.SpringDampingRatio, h)

			relVel := bodyB.Velocity.Sub(bodyA.Velocity)
			vn := relVel.Dot(n)

			bias := 0.0
			if c.contact.Penetration > 0 {
				bias = c.contact.Penetration * soft.biasRate
				if bias > c.material.MaxRecoveryVelocity {
					bias = c.material.MaxRecoveryVelocity
				}
			}

			lambda := -(vn + bias) * soft.massScale / invMassSum
			lambda -= c.normalLambda * soft.impulseScale
			newLambda := math.Max(c.normalLambda+lambda, 0)
			appliedLambda := newLambda - c.normalLambda
			c.normalLambda = newLambda

			impulse := n.Scale(appliedLambda)
			bodyA.Velocity = bodyA.Velocity.Sub(impulse.Scale(bodyA.InverseMass))
			bodyB.Velocity = bodyB.Velocity.Add(impulse.Scale(bodyB.InverseMass))

			if c.material.FrictionCoefficient <= 0 {
				continue
			}
			relVel = bodyB.Velocity.Sub(bodyA.Velocity)
			tangentVel := relVel.Sub(n.Scale(relVel.Dot(n)))
			tangentSpeed := tangentVel.Len()
			if tangentSpeed < geom.Epsilon {
				continue
			}
			tangent := tangentVel.Scale(1 / tangentSpeed)
			vt := relVel.Dot(tangent)
			frictionLambda := -vt / invMassSum
			maxFriction := c.material.FrictionCoefficient * c.normalLambda
			newTangentLambda := geom.Clamp(c.tangentLambda+frictionLambda, -maxFriction, maxFriction)
			appliedFriction := newTangentLambda - c.tangentLambda
			c.tangentLambda = newTangentLambda

			fImpulse := tangent.Scale(appliedFriction)
			bodyA.Velocity = bodyA.Velocity.Sub(fImpulse.Scale(bodyA.InverseMass))
			bodyB.Velocity = bodyB.Velocity.Add(fImpulse.Scale(bodyB.InverseMass))
		}
	}
}
