// Package controller drives a registered actor's body from input at the
// fixed simulation rate.
package controller

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/input"
	"github.com/officeshinyujun/libet/movement"
	"github.com/officeshinyujun/libet/physics"
)

// Registry resolves actor ids.
type Registry interface {
	Lookup(id string) (actor.Record, bool)
}

// Facing supplies the current view direction. Only its horizontal part
// steers movement.
type Facing interface {
	Forward() r3.Vec
}

// Input supplies held controls and action bindings.
type Input interface {
	Level() input.Level
	Bind(b input.Binding) (unbind func())
}

// Options configures a Controller.
type Options struct {
	View             string
	Model            movement.Model
	Gravity          float64 // gravity magnitude used for jump impulses
	ProbeMargin      float64
	MaxVerticalSpeed float64
}

// DefaultOptions returns first-person, direct-motion options for standard gravity.
func DefaultOptions() Options {
	return Options{
		View:             config.ViewFirstPerson,
		Model:            movement.Direct{},
		Gravity:          9.81,
		ProbeMargin:      DefaultProbeMargin,
		MaxVerticalSpeed: DefaultMaxVerticalSpeed,
	}
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		View:             cfg.Controller.View,
		Model:            ModelFromConfig(cfg.Controller),
		Gravity:          cfg.Derived.GravityMagnitude,
		ProbeMargin:      cfg.Probe.Margin,
		MaxVerticalSpeed: cfg.Probe.MaxVerticalSpeed,
	}
}

// ModelFromConfig picks the motion model selected by the controller config.
// Non-positive inertial rates fall back to the defaults.
func ModelFromConfig(c config.ControllerConfig) movement.Model {
	if !c.Inertia {
		return movement.Direct{}
	}
	m := movement.Inertial{Acceleration: c.Acceleration, Deceleration: c.Deceleration}
	if m.Acceleration <= 0 {
		m.Acceleration = movement.DefaultAcceleration
	}
	if m.Deceleration <= 0 {
		m.Deceleration = movement.DefaultDeceleration
	}
	return m
}

// Report summarizes one Tick.
type Report struct {
	Active    bool // actor was registered
	Direction r3.Vec
	Velocity  r3.Vec // velocity written to the body
	Probed    bool   // jump was held, so the ground probe ran
	Grounded  bool
	Impulse   float64
}

// Controller moves one actor.
type Controller struct {
	registry Registry
	caster   physics.RayCaster
	facing   Facing
	input    Input
	id       string

	mu      sync.Mutex
	opts    Options
	unbinds []func()
	pending []func(actor.Record) // actions fired since the last Tick
}

// New creates a controller for id. Panics if any collaborator is nil.
func New(registry Registry, caster physics.RayCaster, facing Facing, in Input, id string, opts Options) *Controller {
	switch {
	case registry == nil:
		panic("controller: nil registry")
	case caster == nil:
		panic("controller: nil ray caster")
	case facing == nil:
		panic("controller: nil facing")
	case in == nil:
		panic("controller: nil input")
	}
	if opts.Model == nil {
		opts.Model = movement.Direct{}
	}

	slog.Info("controller bound", "id", id, "view", opts.View)
	return &Controller{registry: registry, caster: caster, facing: facing, input: in, id: id, opts: opts}
}

// ID returns the actor id this controller drives.
func (c *Controller) ID() string { return c.id }

// SetView switches view mode between ticks.
func (c *Controller) SetView(view string) {
	c.mu.Lock()
	c.opts.View = view
	c.mu.Unlock()
}

// SetModel switches the motion model between ticks.
func (c *Controller) SetModel(m movement.Model) {
	if m == nil {
		return
	}
	c.mu.Lock()
	c.opts.Model = m
	c.mu.Unlock()
}

// Bind queues fn on each press of t. Queued actions run at the start of
// the next Tick with the actor's record at that time, so they mutate the
// body only from the simulation schedule. Actions queued while the actor
// is not registered are dropped.
func (c *Controller) Bind(t input.Trigger, fn func(actor.Record)) (unbind func()) {
	unbind = c.input.Bind(input.Binding{Trigger: t, Func: func() {
		c.mu.Lock()
		c.pending = append(c.pending, fn)
		c.mu.Unlock()
	}})
	c.mu.Lock()
	c.unbinds = append(c.unbinds, unbind)
	c.mu.Unlock()
	return unbind
}

// Close removes every action bound through this controller.
func (c *Controller) Close() {
	c.mu.Lock()
	unbinds := c.unbinds
	c.unbinds = nil
	c.pending = nil
	c.mu.Unlock()
	for _, u := range unbinds {
		u()
	}
}

// Tick runs one fixed-rate update of dt seconds.
func (c *Controller) Tick(dt float64) Report {
	rec, ok := c.registry.Lookup(c.id)

	c.mu.Lock()
	opts := c.opts
	actions := c.pending
	c.pending = nil
	c.mu.Unlock()

	if !ok {
		return Report{}
	}
	for _, fn := range actions {
		fn(rec)
	}

	forward, right := basis(c.facing.Forward())
	if opts.View == config.ViewThirdPerson {
		rec.Body.SetRotation(physics.YawRotation(forward))
	}

	level := c.input.Level()
	dir := r3.Add(
		r3.Scale(axis(level.Forward, level.Backward), forward),
		r3.Scale(axis(level.Right, level.Left), right),
	)
	if r3.Norm2(dir) > 0 {
		dir = r3.Unit(dir)
	}

	vel := opts.Model.Apply(rec.Body.LinearVelocity(), dir, rec.Props.Speed, dt)
	rec.Body.SetLinearVelocity(vel)

	report := Report{Active: true, Direction: dir, Velocity: vel}
	if !level.Jump {
		return report
	}

	report.Probed = true
	report.Grounded = Grounded(rec.Body, c.caster, rec.Props.Height(), opts.ProbeMargin, opts.MaxVerticalSpeed)
	if report.Grounded {
		report.Impulse = JumpImpulse(opts.Gravity, rec.Props.JumpHeight, rec.Body.Mass())
		rec.Body.ApplyImpulse(r3.Vec{Y: report.Impulse})
		slog.Debug("jump", "id", c.id, "impulse", report.Impulse)
	}
	return report
}

// basis projects the view direction onto the ground plane and returns it
// with its right-hand perpendicular. A vertical view falls back to -Z.
func basis(look r3.Vec) (forward, right r3.Vec) {
	forward = r3.Vec{X: look.X, Z: look.Z}
	if r3.Norm2(forward) == 0 {
		forward = r3.Vec{Z: -1}
	}
	forward = r3.Unit(forward)
	return forward, r3.Cross(forward, physics.Up)
}

func axis(pos, neg bool) float64 {
	var v float64
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}
