// Package scene decodes declarative actor descriptions and mounts them into
// a physics world and actor registry.
package scene

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

var (
	// ErrUnknownKind is returned for an actor whose kind is not recognized.
	ErrUnknownKind = errors.New("unknown actor kind")
	// ErrDuplicateActor is returned when two actors share a name or two
	// characters share a controller id.
	ErrDuplicateActor = errors.New("duplicate actor")
)

// Kind names accepted in scene files.
const (
	KindCharacter  = "character"
	KindPawn       = "pawn"
	KindStaticMesh = "static_mesh"
	KindMap        = "map"
)

// PhysicsNone marks a visual-only actor.
const PhysicsNone = "none"

// Base holds the fields every actor kind shares.
type Base struct {
	Kind     string     `yaml:"kind"`
	Name     string     `yaml:"name"`
	Tags     []string   `yaml:"tags"`
	Scale    [3]float64 `yaml:"scale"`
	Rotation [3]float64 `yaml:"rotation"` // radians, XYZ order
	Position [3]float64 `yaml:"position"`
	Color    string     `yaml:"color"` // #rrggbb, optional
}

// Common returns the shared fields.
func (b Base) Common() Base { return b }

// Character is a controlled dynamic actor registered under ControllerID.
type Character struct {
	Base         `yaml:",inline"`
	ControllerID string  `yaml:"controller_id"`
	Speed        float64 `yaml:"speed"`
	JumpHeight   float64 `yaml:"jump_height"`
	Mass         float64 `yaml:"mass"`
}

// Pawn is a generic physics actor. Velocity is the initial linear
// velocity; only dynamic and kinematicVelocity bodies keep it.
type Pawn struct {
	Base     `yaml:",inline"`
	Physics  string     `yaml:"physics"` // dynamic | fixed | kinematicPosition | kinematicVelocity
	Mass     float64    `yaml:"mass"`
	Velocity [3]float64 `yaml:"velocity"`
	Collider string     `yaml:"collider"` // only cuboid is supported
}

// StaticMesh is a box that is fixed unless stated otherwise.
type StaticMesh struct {
	Base     `yaml:",inline"`
	Physics  string `yaml:"physics"` // fixed | dynamic | none
	Collider string `yaml:"collider"`
}

// Map is terrain: a fixed box, or visual only when physics is unset.
type Map struct {
	Base     `yaml:",inline"`
	Physics  string `yaml:"physics"` // fixed | none (default)
	UserView string `yaml:"user_view"`
}

// Actor is one of Character, Pawn, StaticMesh or Map.
type Actor interface {
	Common() Base
}

// Scene is a decoded scene file.
type Scene struct {
	Actors []Actor
}

type file struct {
	Actors []yaml.Node `yaml:"actors"`
}

// Load reads a scene file from disk.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scene: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Demo returns the built-in scene.
func Demo() *Scene {
	s, err := Decode(bytes.NewReader(demoYAML))
	if err != nil {
		panic(fmt.Sprintf("scene: embedded demo is broken: %v", err))
	}
	return s
}

// Decode parses a scene. Unknown fields, unknown kinds and duplicate names
// are errors.
func Decode(r io.Reader) (*Scene, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing scene: %w", err)
	}

	s := &Scene{Actors: make([]Actor, 0, len(f.Actors))}
	names := make(map[string]bool)
	controllers := make(map[string]bool)

	for i := range f.Actors {
		a, err := decodeActor(&f.Actors[i])
		if err != nil {
			return nil, fmt.Errorf("actor %d: %w", i, err)
		}

		name := a.Common().Name
		if name != "" {
			if names[name] {
				return nil, fmt.Errorf("actor %d: %w: name %q", i, ErrDuplicateActor, name)
			}
			names[name] = true
		}
		if c, ok := a.(*Character); ok {
			if controllers[c.ControllerID] {
				return nil, fmt.Errorf("actor %d: %w: controller_id %q", i, ErrDuplicateActor, c.ControllerID)
			}
			controllers[c.ControllerID] = true
		}

		s.Actors = append(s.Actors, a)
	}
	return s, nil
}

func decodeActor(node *yaml.Node) (Actor, error) {
	var head struct {
		Kind string `yaml:"kind"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, fmt.Errorf("reading kind: %w", err)
	}

	var a Actor
	switch head.Kind {
	case KindCharacter:
		a = &Character{}
	case KindPawn:
		a = &Pawn{}
	case KindStaticMesh:
		a = &StaticMesh{}
	case KindMap:
		a = &Map{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, head.Kind)
	}

	// yaml.Node.Decode ignores KnownFields, so round-trip through a strict decoder.
	raw, err := yaml.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("re-encoding %s: %w", head.Kind, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(a); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", head.Kind, err)
	}

	if c, ok := a.(*Character); ok && c.ControllerID == "" {
		if c.Name == "" {
			return nil, errors.New("character needs a controller_id or name")
		}
		c.ControllerID = c.Name
	}
	return a, nil
}
