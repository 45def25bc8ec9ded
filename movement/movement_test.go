package movement

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// TestDirectExact verifies Direct returns direction*speed and keeps vertical velocity.
func TestDirectExact(t *testing.T) {
	got := Direct{}.Apply(r3.Vec{X: 3, Y: -2, Z: 9}, r3.Vec{X: 0.6, Z: -0.8}, 5, 1.0/60)
	want := r3.Vec{X: 3, Y: -2, Z: -4}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

// TestInertialConvergesMonotonically verifies the inertial model approaches
// the target without overshoot.
func TestInertialConvergesMonotonically(t *testing.T) {
	m := NewInertial()
	dt := 1.0 / 60
	dir := r3.Vec{X: 1}
	target := 5.0

	v := r3.Vec{Y: 1.5}
	prevGap := target
	for i := 0; i < 300; i++ {
		v = m.Apply(v, dir, target, dt)
		gap := target - v.X
		if gap < 0 {
			t.Fatalf("tick %d: overshoot, vx=%v", i, v.X)
		}
		if gap > prevGap {
			t.Fatalf("tick %d: gap grew from %v to %v", i, prevGap, gap)
		}
		prevGap = gap
		if v.Y != 1.5 {
			t.Fatalf("tick %d: vertical velocity changed to %v", i, v.Y)
		}
	}
	if !scalar.EqualWithinAbs(v.X, target, 1e-6) {
		t.Errorf("Expected convergence to %v, got %v", target, v.X)
	}
}

// TestInertialRates verifies acceleration and deceleration are picked by input length.
func TestInertialRates(t *testing.T) {
	m := Inertial{Acceleration: 6, Deceleration: 3}
	dt := 0.1

	got := m.Apply(r3.Vec{}, r3.Vec{Z: -1}, 10, dt)
	if !scalar.EqualWithinAbs(got.Z, -6, 1e-12) {
		t.Errorf("Expected accel step to -6, got %v", got.Z)
	}

	// Direction below the input threshold counts as released.
	got = m.Apply(r3.Vec{X: 10}, r3.Vec{X: 0.05}, 10, dt)
	want := 10 + (0.5-10)*0.3
	if !scalar.EqualWithinAbs(got.X, want, 1e-12) {
		t.Errorf("Expected decel step to %v, got %v", want, got.X)
	}
}

// TestInertialClampsLargeSteps verifies rate*dt above one lands on the target.
func TestInertialClampsLargeSteps(t *testing.T) {
	got := NewInertial().Apply(r3.Vec{X: -3}, r3.Vec{X: 1}, 5, 1)
	if got.X != 5 {
		t.Errorf("Expected clamp to 5, got %v", got.X)
	}
	if math.IsNaN(got.Z) || got.Z != 0 {
		t.Errorf("Expected vz 0, got %v", got.Z)
	}
}
