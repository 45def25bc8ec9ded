package controller

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/physics"
)

// Ground probe defaults.
const (
	DefaultProbeMargin      = 0.1
	DefaultMaxVerticalSpeed = 0.5
)

var down = r3.Vec{Y: -1}

// Grounded casts a ray straight down from the body's center, excluding the
// body itself, up to height/2 + margin. The body is grounded when the ray
// hits and its vertical speed is below maxVerticalSpeed.
func Grounded(body physics.Body, caster physics.RayCaster, height, margin, maxVerticalSpeed float64) bool {
	if math.Abs(body.LinearVelocity().Y) >= maxVerticalSpeed {
		return false
	}
	_, hit := caster.CastRay(body.Translation(), down, height/2+margin, body)
	return hit
}

// JumpImpulse returns the upward impulse that lifts a body of the given
// mass to apex height h under gravity magnitude g.
func JumpImpulse(g, h, mass float64) float64 {
	if g <= 0 || h <= 0 {
		return 0
	}
	return mass * math.Sqrt(2*g*h)
}
