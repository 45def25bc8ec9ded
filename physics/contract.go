// Package physics provides the rigid-body contract the controller relies on
// and a reference fixed-step world that implements it on top of an ECS.
package physics

import "gonum.org/v1/gonum/spatial/r3"

// Up is the world up axis.
var Up = r3.Vec{Y: 1}

// Body is a live handle to a simulated rigid body.
// Handles stay valid while the body is in its world; once removed,
// reads return zero values and writes are ignored.
type Body interface {
	Translation() r3.Vec
	SetTranslation(p r3.Vec)
	Rotation() r3.Rotation
	SetRotation(q r3.Rotation)
	LinearVelocity() r3.Vec
	SetLinearVelocity(v r3.Vec)
	// ApplyImpulse changes linear velocity by impulse/mass.
	ApplyImpulse(impulse r3.Vec)
	Mass() float64
}

// Hit describes the first collider struck by a ray.
type Hit struct {
	Body     Body
	Point    r3.Vec
	Normal   r3.Vec
	Distance float64
}

// RayCaster answers ray queries against the world.
// Rays starting inside a collider hit it at distance zero, so callers
// probing from a body's own center must pass that body as exclude.
type RayCaster interface {
	CastRay(origin, dir r3.Vec, maxDist float64, exclude Body) (Hit, bool)
}
