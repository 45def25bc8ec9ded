package scene

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/components"
	"github.com/officeshinyujun/libet/physics"
)

// Decor is a visual-only actor with no body.
type Decor struct {
	Name     string
	Position r3.Vec
	Scale    r3.Vec
	Color    string
}

// Mounted tracks what Mount created so Unmount can undo it.
type Mounted struct {
	world    *physics.World
	registry *actor.Registry

	all    []*physics.RigidBody
	bodies map[string]*physics.RigidBody
	colors map[string]string
	ids    []string
	decor  []Decor
}

// Mount creates bodies for every physical actor and registers characters
// under their controller id. Nothing is left behind on error.
func Mount(w *physics.World, reg *actor.Registry, s *Scene) (*Mounted, error) {
	m := &Mounted{
		world:    w,
		registry: reg,
		bodies:   make(map[string]*physics.RigidBody),
		colors:   make(map[string]string),
	}

	type pending struct {
		id    string
		body  *physics.RigidBody
		props actor.Properties
	}
	var characters []pending

	for i, a := range s.Actors {
		base := a.Common()
		typ, none, mass, err := bodySettings(a)
		if err != nil {
			for _, b := range m.all {
				w.RemoveBody(b)
			}
			return nil, fmt.Errorf("actor %d (%s): %w", i, base.Name, err)
		}

		scale := vec(base.Scale)
		if scale == (r3.Vec{}) {
			scale = r3.Vec{X: 1, Y: 1, Z: 1}
		}
		if none {
			m.decor = append(m.decor, Decor{Name: base.Name, Position: vec(base.Position), Scale: scale, Color: base.Color})
			continue
		}

		body := w.AddBody(physics.BodyDesc{
			Name:        base.Name,
			Tags:        base.Tags,
			Type:        typ,
			Position:    vec(base.Position),
			Rotation:    physics.RotationFromEuler(base.Rotation[0], base.Rotation[1], base.Rotation[2]),
			HalfExtents: r3.Scale(0.5, scale),
			Mass:        mass,
		})
		m.all = append(m.all, body)
		if p, ok := a.(*Pawn); ok && p.Velocity != ([3]float64{}) {
			body.SetLinearVelocity(vec(p.Velocity))
		}
		if base.Name != "" {
			m.bodies[base.Name] = body
			m.colors[base.Name] = base.Color
		}

		if c, ok := a.(*Character); ok {
			props := actor.Properties{Scale: scale, Speed: c.Speed, JumpHeight: c.JumpHeight}.WithDefaults()
			characters = append(characters, pending{id: c.ControllerID, body: body, props: props})
		}
	}

	for _, c := range characters {
		reg.Register(c.id, c.body, c.props)
		m.ids = append(m.ids, c.id)
		slog.Info("actor mounted", "id", c.id, "speed", c.props.Speed, "jump_height", c.props.JumpHeight)
	}
	slog.Info("scene mounted", "bodies", len(m.all), "decor", len(m.decor), "characters", len(m.ids))
	return m, nil
}

// Unmount unregisters characters and removes every body Mount created.
// Calling it twice is a no-op.
func (m *Mounted) Unmount() {
	for _, id := range m.ids {
		m.registry.Unregister(id)
		slog.Info("actor unmounted", "id", id)
	}
	for _, b := range m.all {
		m.world.RemoveBody(b)
	}
	m.ids = nil
	m.all = nil
	m.bodies = make(map[string]*physics.RigidBody)
}

// Body returns the body created for the named actor.
func (m *Mounted) Body(name string) (*physics.RigidBody, bool) {
	b, ok := m.bodies[name]
	return b, ok
}

// Color returns the color declared for the named actor.
func (m *Mounted) Color(name string) string {
	return m.colors[name]
}

// Decor returns the visual-only actors.
func (m *Mounted) Decor() []Decor {
	return m.decor
}

// ControllerIDs returns the ids registered by Mount.
func (m *Mounted) ControllerIDs() []string {
	return append([]string(nil), m.ids...)
}

// bodySettings resolves the body type and mass for an actor. none reports
// a visual-only actor.
func bodySettings(a Actor) (typ components.BodyType, none bool, mass float64, err error) {
	switch a := a.(type) {
	case *Character:
		return components.BodyDynamic, false, defaultMass(a.Mass), nil
	case *Pawn:
		if a.Collider != "" && a.Collider != "cuboid" {
			return 0, false, 0, fmt.Errorf("unsupported collider %q", a.Collider)
		}
		typ, err := components.ParseBodyType(a.Physics)
		return typ, false, defaultMass(a.Mass), err
	case *StaticMesh:
		if a.Collider != "" && a.Collider != "cuboid" {
			return 0, false, 0, fmt.Errorf("unsupported collider %q", a.Collider)
		}
		switch a.Physics {
		case "", "fixed":
			return components.BodyFixed, false, 0, nil
		case "dynamic":
			return components.BodyDynamic, false, 1, nil
		case PhysicsNone:
			return 0, true, 0, nil
		}
		return 0, false, 0, fmt.Errorf("static mesh physics %q is not fixed, dynamic or none", a.Physics)
	case *Map:
		switch a.Physics {
		case "fixed":
			return components.BodyFixed, false, 0, nil
		case "", PhysicsNone:
			return 0, true, 0, nil
		}
		return 0, false, 0, fmt.Errorf("map physics %q is not fixed or none", a.Physics)
	}
	return 0, false, 0, fmt.Errorf("%w: %T", ErrUnknownKind, a)
}

func defaultMass(m float64) float64 {
	if m <= 0 {
		return 1
	}
	return m
}

func vec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
