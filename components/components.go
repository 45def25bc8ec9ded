// Package components defines ECS components for the physics world.
package components

import "fmt"

// BodyType determines how the physics step treats a body.
type BodyType uint8

const (
	BodyDynamic           BodyType = iota // Gravity, velocity integration and contact response
	BodyFixed                             // Never moves; collides with dynamic bodies
	BodyKinematicPosition                 // Moved only by SetTranslation
	BodyKinematicVelocity                 // Integrates velocity, ignores gravity and contacts
)

// bodyTypeNames matches the BodyType constants and the scene file spelling.
var bodyTypeNames = []string{"dynamic", "fixed", "kinematicPosition", "kinematicVelocity"}

// String returns the scene file name of a BodyType.
func (t BodyType) String() string {
	if int(t) < len(bodyTypeNames) {
		return bodyTypeNames[t]
	}
	return "unknown"
}

// ParseBodyType converts a scene file name to a BodyType.
// An empty name selects BodyDynamic.
func ParseBodyType(name string) (BodyType, error) {
	if name == "" {
		return BodyDynamic, nil
	}
	for i, n := range bodyTypeNames {
		if n == name {
			return BodyType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown body type %q", name)
}

// Tag carries the scene name and tags of the actor that owns a body.
type Tag struct {
	Name string
	Tags []string
}
