package physics

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/components"
)

// RigidBody is a handle to a body stored in a World. Methods on a removed
// body read zero values and ignore writes.
type RigidBody struct {
	world  *World
	entity ecs.Entity
}

var _ Body = (*RigidBody)(nil)

// Name returns the body's tag name.
func (b *RigidBody) Name() string {
	var name string
	b.read(func(_ *components.Transform, _ *components.Velocity, _ *components.Body, _ *components.Collider, tag *components.Tag) {
		name = tag.Name
	})
	return name
}

// Type returns the body's simulation type.
func (b *RigidBody) Type() components.BodyType {
	var t components.BodyType
	b.read(func(_ *components.Transform, _ *components.Velocity, body *components.Body, _ *components.Collider, _ *components.Tag) {
		t = body.Type
	})
	return t
}

// HalfExtents returns the collider half extents.
func (b *RigidBody) HalfExtents() r3.Vec {
	var h r3.Vec
	b.read(func(_ *components.Transform, _ *components.Velocity, _ *components.Body, col *components.Collider, _ *components.Tag) {
		h = col.HalfExtents
	})
	return h
}

// Translation returns the body's center.
func (b *RigidBody) Translation() r3.Vec {
	var p r3.Vec
	b.read(func(tr *components.Transform, _ *components.Velocity, _ *components.Body, _ *components.Collider, _ *components.Tag) {
		p = tr.Position
	})
	return p
}

// SetTranslation teleports the body.
func (b *RigidBody) SetTranslation(p r3.Vec) {
	b.write(func(tr *components.Transform, _ *components.Velocity, _ *components.Body) {
		tr.Position = p
	})
}

// Rotation returns the body's orientation.
func (b *RigidBody) Rotation() r3.Rotation {
	q := Identity
	b.read(func(tr *components.Transform, _ *components.Velocity, _ *components.Body, _ *components.Collider, _ *components.Tag) {
		q = tr.Rotation
	})
	return q
}

// SetRotation replaces the body's orientation.
func (b *RigidBody) SetRotation(q r3.Rotation) {
	q = normalizeRotation(q)
	b.write(func(tr *components.Transform, _ *components.Velocity, _ *components.Body) {
		tr.Rotation = q
	})
}

// LinearVelocity returns the body's linear velocity.
func (b *RigidBody) LinearVelocity() r3.Vec {
	var v r3.Vec
	b.read(func(_ *components.Transform, vel *components.Velocity, _ *components.Body, _ *components.Collider, _ *components.Tag) {
		v = vel.Linear
	})
	return v
}

// SetLinearVelocity replaces the body's linear velocity. Fixed and
// kinematicPosition bodies ignore it.
func (b *RigidBody) SetLinearVelocity(v r3.Vec) {
	b.write(func(_ *components.Transform, vel *components.Velocity, body *components.Body) {
		if body.Type == components.BodyDynamic || body.Type == components.BodyKinematicVelocity {
			vel.Linear = v
		}
	})
}

// ApplyImpulse changes velocity by impulse / mass. Only dynamic bodies respond.
func (b *RigidBody) ApplyImpulse(impulse r3.Vec) {
	b.write(func(_ *components.Transform, vel *components.Velocity, body *components.Body) {
		if inv := body.InverseMass(); inv > 0 {
			vel.Linear = r3.Add(vel.Linear, r3.Scale(inv, impulse))
		}
	})
}

// Mass returns the body's mass.
func (b *RigidBody) Mass() float64 {
	var m float64
	b.read(func(_ *components.Transform, _ *components.Velocity, body *components.Body, _ *components.Collider, _ *components.Tag) {
		m = body.Mass
	})
	return m
}

// Alive reports whether the body is still part of its world. A nil handle
// is never alive.
func (b *RigidBody) Alive() bool {
	if b == nil || b.world == nil {
		return false
	}
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	return b.world.world.Alive(b.entity)
}

func (b *RigidBody) read(fn func(*components.Transform, *components.Velocity, *components.Body, *components.Collider, *components.Tag)) {
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	if !b.world.world.Alive(b.entity) {
		return
	}
	fn(b.world.bodies.Get(b.entity))
}

func (b *RigidBody) write(fn func(*components.Transform, *components.Velocity, *components.Body)) {
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	if !b.world.world.Alive(b.entity) {
		return
	}
	tr, vel, body, _, _ := b.world.bodies.Get(b.entity)
	fn(tr, vel, body)
}
