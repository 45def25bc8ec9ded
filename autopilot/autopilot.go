// Package autopilot scripts controller input for headless runs.
package autopilot

import (
	"math"

	"github.com/officeshinyujun/libet/input"
)

// Cycle is the length in seconds of the scripted route.
const Cycle = 8.0

// Pilot drives an input state: a repeating route of walk, strafe,
// back-pedal and jump, with a slow turn of the view.
type Pilot struct {
	crouch input.Key
	held   map[input.Key]bool
}

// New creates a Pilot that crouches with the given key, which must be the
// crouch key the input state was built with.
func New(crouch input.Key) *Pilot {
	return &Pilot{crouch: crouch, held: make(map[input.Key]bool)}
}

// Looker turns the view by a mouse delta.
type Looker interface {
	Look(dx, dy float64)
}

// Drive sets the keys held during tick and sends only the transitions.
func (a *Pilot) Drive(tick uint64, dt float64, in *input.State, view Looker) {
	t := math.Mod(float64(tick)*dt, Cycle)

	want := map[input.Key]bool{}
	switch {
	case t < 3:
		want[input.KeyW] = true
	case t < 4:
		want[input.KeyW] = true
		want[input.KeyD] = true
	case t < 6:
		want[input.KeyS] = true
	default:
		want[input.KeyA] = true
	}
	// Jump for a single tick every two seconds.
	if math.Mod(t, 2) < dt {
		want[input.KeySpace] = true
	}
	// Crouch during the back-pedal.
	if t >= 4.5 && t < 5.5 {
		want[a.crouch] = true
	}

	for k := range a.held {
		if !want[k] {
			in.HandleKey(k, false)
			delete(a.held, k)
		}
	}
	for k := range want {
		if !a.held[k] {
			in.HandleKey(k, true)
			a.held[k] = true
		}
	}

	view.Look(0.5, 0)
}
