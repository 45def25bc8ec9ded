package components

import "gonum.org/v1/gonum/spatial/r3"

// Body holds the simulation properties of a rigid body.
type Body struct {
	Type BodyType
	Mass float64
}

// InverseMass returns 1/Mass for dynamic bodies and 0 for everything else,
// so impulses never move fixed or kinematic bodies.
func (b Body) InverseMass() float64 {
	if b.Type != BodyDynamic || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// Collider is an axis-aligned box centered on Transform.Position.
// Rotation does not affect the collision shape.
type Collider struct {
	HalfExtents r3.Vec
}

// Bounds returns the collider box for a body centered at center.
func (c Collider) Bounds(center r3.Vec) r3.Box {
	return r3.Box{
		Min: r3.Sub(center, c.HalfExtents),
		Max: r3.Add(center, c.HalfExtents),
	}
}
