// Package movement implements the horizontal motion models used by the
// character controller.
package movement

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Default inertial blend rates, per second.
const (
	DefaultAcceleration = 10.0
	DefaultDeceleration = 10.0
)

// inputThreshold is the squared direction length below which the
// direction counts as no input.
const inputThreshold = 0.01

// Model computes the next velocity from the current velocity and the
// desired direction. Only X and Z are computed; Y is copied from current.
type Model interface {
	Apply(current, direction r3.Vec, speed, dt float64) r3.Vec
}

// Direct sets the horizontal velocity to direction*speed immediately.
type Direct struct{}

// Apply implements Model.
func (Direct) Apply(current, direction r3.Vec, speed, dt float64) r3.Vec {
	return r3.Vec{X: direction.X * speed, Y: current.Y, Z: direction.Z * speed}
}

// Inertial blends the horizontal velocity toward direction*speed.
type Inertial struct {
	Acceleration float64 // rate while input is held
	Deceleration float64 // rate with no input
}

// NewInertial returns an Inertial model with the default rates.
func NewInertial() Inertial {
	return Inertial{Acceleration: DefaultAcceleration, Deceleration: DefaultDeceleration}
}

// Apply implements Model.
func (m Inertial) Apply(current, direction r3.Vec, speed, dt float64) r3.Vec {
	rate := m.Deceleration
	if direction.X*direction.X+direction.Z*direction.Z >= inputThreshold {
		rate = m.Acceleration
	}
	t := math.Min(1, math.Max(0, rate*dt))

	return r3.Vec{
		X: current.X + (direction.X*speed-current.X)*t,
		Y: current.Y,
		Z: current.Z + (direction.Z*speed-current.Z)*t,
	}
}
