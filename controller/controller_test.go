package controller

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/components"
	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/input"
	"github.com/officeshinyujun/libet/movement"
	"github.com/officeshinyujun/libet/physics"
)

const dt = 1.0 / 60

type fixedFacing r3.Vec

func (f fixedFacing) Forward() r3.Vec { return r3.Vec(f) }

type harness struct {
	world    *physics.World
	body     *physics.RigidBody
	registry *actor.Registry
	input    *input.State
}

// newHarness builds a ground slab whose top is y=0 and a 1x2x1 character
// standing on it.
func newHarness(t *testing.T) *harness {
	t.Helper()
	w := physics.NewWorld(r3.Vec{Y: -9.81})
	w.AddBody(physics.BodyDesc{
		Name:        "ground",
		Type:        components.BodyFixed,
		Position:    r3.Vec{Y: -0.5},
		HalfExtents: r3.Vec{X: 50, Y: 0.5, Z: 50},
	})
	body := w.AddBody(physics.BodyDesc{
		Name:        "player",
		Type:        components.BodyDynamic,
		Position:    r3.Vec{Y: 1},
		HalfExtents: r3.Vec{X: 0.5, Y: 1, Z: 0.5},
		Mass:        1,
	})
	reg := actor.NewRegistry()
	reg.Register("player", body, actor.Properties{Scale: r3.Vec{X: 1, Y: 2, Z: 1}, Speed: 5, JumpHeight: 2})
	return &harness{world: w, body: body, registry: reg, input: input.NewState(nil)}
}

func (h *harness) controller(facing r3.Vec, opts Options) *Controller {
	return New(h.registry, h.world, fixedFacing(facing), h.input, "player", opts)
}

// TestJumpImpulse verifies the takeoff impulse for a 1m apex.
func TestJumpImpulse(t *testing.T) {
	if got := JumpImpulse(9.81, 1, 2); !scalar.EqualWithinAbs(got, 8.859, 1e-3) {
		t.Errorf("Expected impulse 8.859, got %v", got)
	}
	if got := JumpImpulse(9.81, 0, 2); got != 0 {
		t.Errorf("Expected zero impulse for zero height, got %v", got)
	}
}

// TestGrounded verifies the probe against a flat surface at y=0.
func TestGrounded(t *testing.T) {
	tests := []struct {
		name string
		y    float64
		vy   float64
		want bool
	}{
		{"standing", 1, 0, true},
		{"within margin", 1.05, 0, true},
		{"hovering", 1.2, 0, false},
		{"moving up", 1, 0.6, false},
		{"slow drift", 1, -0.4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.body.SetTranslation(r3.Vec{Y: tt.y})
			h.body.SetLinearVelocity(r3.Vec{Y: tt.vy})

			got := Grounded(h.body, h.world, 2, DefaultProbeMargin, DefaultMaxVerticalSpeed)
			if got != tt.want {
				t.Errorf("Expected grounded=%v, got %v", tt.want, got)
			}
		})
	}
}

// TestWalkForward verifies direct motion covers speed*N*dt along the camera's
// horizontal forward.
func TestWalkForward(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{X: 1, Y: -0.3, Z: 1}, DefaultOptions())
	h.input.HandleKey(input.KeyW, true)

	const n = 90
	start := h.body.Translation()
	for i := 0; i < n; i++ {
		c.Tick(dt)
		h.world.Step(dt)
	}
	end := h.body.Translation()

	dir := r3.Unit(r3.Vec{X: 1, Z: 1})
	moved := r3.Vec{X: end.X - start.X, Z: end.Z - start.Z}
	want := r3.Scale(5*n*dt, dir)
	if !scalar.EqualWithinAbs(moved.X, want.X, 1e-9) || !scalar.EqualWithinAbs(moved.Z, want.Z, 1e-9) {
		t.Errorf("Expected horizontal displacement %v, got %v", want, moved)
	}
	if !scalar.EqualWithinAbs(end.Y, 1, 1e-3) {
		t.Errorf("Expected body to stay on the ground, got y=%v", end.Y)
	}
}

// TestStrafeAndNoInput verifies the right axis and that opposing keys cancel.
func TestStrafeAndNoInput(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())

	h.input.HandleKey(input.KeyD, true)
	r := c.Tick(dt)
	if r.Direction != (r3.Vec{X: 1}) {
		t.Errorf("Expected +X for right, got %v", r.Direction)
	}

	h.input.HandleKey(input.KeyA, true)
	r = c.Tick(dt)
	if r.Direction != (r3.Vec{}) || r.Velocity.X != 0 || r.Velocity.Z != 0 {
		t.Errorf("Expected no movement with opposing keys, got %+v", r)
	}

	h.input.HandleKey(input.KeyA, false)
	h.input.HandleKey(input.KeyW, true)
	r = c.Tick(dt)
	if !scalar.EqualWithinAbs(r3.Norm(r.Direction), 1, 1e-12) {
		t.Errorf("Expected diagonal direction to be normalized, got %v", r.Direction)
	}
}

// TestJumpOnlyWhenGrounded verifies a held jump applies one impulse and no
// second impulse while airborne.
func TestJumpOnlyWhenGrounded(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())
	h.input.HandleKey(input.KeySpace, true)

	r := c.Tick(dt)
	if !r.Probed || !r.Grounded {
		t.Fatalf("Expected grounded jump, got %+v", r)
	}
	wantVY := math.Sqrt(2 * 9.81 * 2)
	if vy := h.body.LinearVelocity().Y; !scalar.EqualWithinAbs(vy, wantVY, 1e-9) {
		t.Errorf("Expected takeoff vy %v, got %v", wantVY, vy)
	}

	h.world.Step(dt)
	r = c.Tick(dt)
	if r.Grounded || r.Impulse != 0 {
		t.Errorf("Expected no jump while airborne, got %+v", r)
	}
}

// TestThirdPersonYaw verifies third-person turns the body to the view and
// first-person leaves it alone.
func TestThirdPersonYaw(t *testing.T) {
	h := newHarness(t)
	opts := DefaultOptions()
	opts.View = config.ViewThirdPerson
	c := h.controller(r3.Vec{X: 1, Y: 0.5}, opts)

	c.Tick(dt)
	f := physics.Forward(h.body.Rotation())
	if !scalar.EqualWithinAbs(f.X, 1, 1e-9) || !scalar.EqualWithinAbs(f.Z, 0, 1e-9) {
		t.Errorf("Expected body facing +X, got %v", f)
	}

	h.body.SetRotation(physics.Identity)
	c.SetView(config.ViewFirstPerson)
	c.Tick(dt)
	if h.body.Rotation() != physics.Identity {
		t.Errorf("Expected first-person to keep rotation, got %v", h.body.Rotation())
	}
}

// TestInertialModel verifies the controller feeds the configured model.
func TestInertialModel(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())
	c.SetModel(movement.NewInertial())
	h.input.HandleKey(input.KeyW, true)

	r := c.Tick(dt)
	if !scalar.EqualWithinAbs(r.Velocity.Z, -5*10*dt, 1e-12) {
		t.Errorf("Expected vz %v, got %v", -5*10*dt, r.Velocity.Z)
	}
}

// TestMissingActor verifies ticks are a silent no-op without a record.
func TestMissingActor(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())
	h.registry.Unregister("player")
	h.input.HandleKey(input.KeyW, true)

	if r := c.Tick(dt); r.Active {
		t.Errorf("Expected inactive report, got %+v", r)
	}
	if h.body.LinearVelocity() != (r3.Vec{}) {
		t.Error("Expected body untouched")
	}
}

// TestBindAction verifies actions run on the next Tick with the live record,
// are dropped while the actor is unregistered and stop after Close.
func TestBindAction(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())

	var got []string
	c.Bind(input.OnButton(input.ButtonLeft), func(rec actor.Record) {
		got = append(got, rec.ID)
	})

	h.input.HandleMouse(input.ButtonLeft, true)
	h.input.HandleMouse(input.ButtonLeft, false)
	if len(got) != 0 {
		t.Fatalf("Expected action deferred until Tick, got %v", got)
	}
	c.Tick(dt)
	if len(got) != 1 || got[0] != "player" {
		t.Errorf("Expected one action for player, got %v", got)
	}

	h.registry.Unregister("player")
	h.input.HandleMouse(input.ButtonLeft, true)
	h.input.HandleMouse(input.ButtonLeft, false)
	c.Tick(dt)
	h.registry.Register("player", h.body, actor.Properties{Scale: r3.Vec{X: 1, Y: 2, Z: 1}})
	c.Tick(dt)
	if len(got) != 1 {
		t.Errorf("Expected action dropped while unregistered, got %v", got)
	}

	h.input.HandleMouse(input.ButtonLeft, true)
	h.input.HandleMouse(input.ButtonLeft, false)
	c.Close()
	c.Tick(dt)
	if len(got) != 1 {
		t.Errorf("Expected no actions after Close, got %v", got)
	}
}

// TestActionMutatesOnlyInTick verifies a bound impulse leaves the body alone
// until the controller ticks.
func TestActionMutatesOnlyInTick(t *testing.T) {
	h := newHarness(t)
	c := h.controller(r3.Vec{Z: -1}, DefaultOptions())
	c.Bind(input.OnButton(input.ButtonLeft), func(rec actor.Record) {
		rec.Body.ApplyImpulse(r3.Vec{Y: 3})
	})

	h.input.HandleMouse(input.ButtonLeft, true)
	if v := h.body.LinearVelocity(); v != (r3.Vec{}) {
		t.Fatalf("Expected velocity unchanged before Tick, got %v", v)
	}

	r := c.Tick(dt)
	if v := h.body.LinearVelocity(); !scalar.EqualWithinAbs(v.Y, 3, 1e-12) {
		t.Errorf("Expected vy 3 after Tick, got %v", v.Y)
	}
	if r.Velocity.Y != 3 {
		t.Errorf("Expected reported vy 3, got %v", r.Velocity.Y)
	}
}

// TestNewPanicsOnNil verifies missing collaborators are rejected.
func TestNewPanicsOnNil(t *testing.T) {
	h := newHarness(t)
	facing := fixedFacing(r3.Vec{Z: -1})

	tests := []struct {
		name string
		fn   func()
	}{
		{"registry", func() { New(nil, h.world, facing, h.input, "player", DefaultOptions()) }},
		{"caster", func() { New(h.registry, nil, facing, h.input, "player", DefaultOptions()) }},
		{"facing", func() { New(h.registry, h.world, nil, h.input, "player", DefaultOptions()) }},
		{"input", func() { New(h.registry, h.world, facing, nil, "player", DefaultOptions()) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("Expected panic")
				}
			}()
			tt.fn()
		})
	}
}

// TestModelFromConfig verifies model selection and rate fallbacks.
func TestModelFromConfig(t *testing.T) {
	if _, ok := ModelFromConfig(config.ControllerConfig{}).(movement.Direct); !ok {
		t.Error("Expected Direct when inertia is off")
	}
	m, ok := ModelFromConfig(config.ControllerConfig{Inertia: true, Acceleration: 4}).(movement.Inertial)
	if !ok {
		t.Fatal("Expected Inertial when inertia is on")
	}
	if m.Acceleration != 4 || m.Deceleration != movement.DefaultDeceleration {
		t.Errorf("Expected rates (4, %v), got %+v", movement.DefaultDeceleration, m)
	}
}
