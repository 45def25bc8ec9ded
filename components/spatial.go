package components

import "gonum.org/v1/gonum/spatial/r3"

// Transform represents a body's world pose.
// Position is the collider center.
type Transform struct {
	Position r3.Vec
	Rotation r3.Rotation
}

// Velocity represents a body's linear velocity in world units per second.
type Velocity struct {
	Linear r3.Vec
}
