package scene

import (
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/components"
	"github.com/officeshinyujun/libet/physics"
)

func decode(t *testing.T, src string) (*Scene, error) {
	t.Helper()
	return Decode(strings.NewReader(src))
}

// TestDemoScene verifies the embedded scene decodes into typed actors.
func TestDemoScene(t *testing.T) {
	s := Demo()
	if len(s.Actors) != 7 {
		t.Fatalf("Expected 7 actors, got %d", len(s.Actors))
	}
	hero, ok := s.Actors[1].(*Character)
	if !ok {
		t.Fatalf("Expected second actor to be a character, got %T", s.Actors[1])
	}
	if hero.ControllerID != "player" || hero.Speed != 5 || hero.JumpHeight != 2 {
		t.Errorf("Unexpected hero: %+v", hero)
	}
	if hero.Scale != [3]float64{1, 2, 1} {
		t.Errorf("Expected hero scale [1 2 1], got %v", hero.Scale)
	}
}

// TestDecodeErrors verifies strict decoding.
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown kind", "actors:\n  - kind: vehicle\n    name: car\n", ErrUnknownKind},
		{"duplicate name", "actors:\n  - kind: pawn\n    name: a\n  - kind: map\n    name: a\n", ErrDuplicateActor},
		{"duplicate controller", "actors:\n  - kind: character\n    name: a\n    controller_id: p\n  - kind: character\n    name: b\n    controller_id: p\n", ErrDuplicateActor},
		{"field from another kind", "actors:\n  - kind: pawn\n    name: a\n    speed: 3\n", nil},
		{"unknown top-level field", "gravity: [0, -1, 0]\n", nil},
		{"nameless character", "actors:\n  - kind: character\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.src)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestDecodeEmpty verifies an empty document is an empty scene.
func TestDecodeEmpty(t *testing.T) {
	s, err := decode(t, "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(s.Actors) != 0 {
		t.Errorf("Expected no actors, got %d", len(s.Actors))
	}
}

// TestMountUnmount verifies mounting registers characters and creates bodies,
// and unmounting undoes both.
func TestMountUnmount(t *testing.T) {
	w := physics.NewWorld(r3.Vec{Y: -9.81})
	reg := actor.NewRegistry()

	m, err := Mount(w, reg, Demo())
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	if w.Len() != 6 {
		t.Errorf("Expected 6 bodies, got %d", w.Len())
	}
	if len(m.Decor()) != 1 || m.Decor()[0].Name != "marker" {
		t.Errorf("Expected marker decor, got %+v", m.Decor())
	}

	rec, ok := reg.Lookup("player")
	if !ok {
		t.Fatal("Expected player registered")
	}
	if rec.Props.Scale != (r3.Vec{X: 1, Y: 2, Z: 1}) || rec.Props.Speed != 5 || rec.Props.JumpHeight != 2 {
		t.Errorf("Unexpected props %+v", rec.Props)
	}
	if ids := m.ControllerIDs(); len(ids) != 1 || ids[0] != "player" {
		t.Errorf("Expected controller ids [player], got %v", ids)
	}
	hero, _ := m.Body("hero")
	if rec.Body != physics.Body(hero) {
		t.Error("Expected registry to hold the hero body")
	}
	if hero.HalfExtents() != (r3.Vec{X: 0.5, Y: 1, Z: 0.5}) {
		t.Errorf("Expected half extents from scale, got %v", hero.HalfExtents())
	}
	if ledge, _ := m.Body("ledge"); ledge.Type() != components.BodyFixed {
		t.Errorf("Expected fixed ledge, got %v", ledge.Type())
	}
	if m.Color("crate") != "#b07a3c" {
		t.Errorf("Expected crate color, got %q", m.Color("crate"))
	}

	m.Unmount()
	m.Unmount()
	if reg.Len() != 0 || w.Len() != 0 {
		t.Errorf("Expected empty registry and world, got %d records and %d bodies", reg.Len(), w.Len())
	}
	if hero.Alive() {
		t.Error("Expected hero body removed")
	}
}

// TestMountDefaults verifies default speed, jump height, mass and map physics.
func TestMountDefaults(t *testing.T) {
	s, err := decode(t, `actors:
  - kind: character
    name: npc
  - kind: map
    name: backdrop
    scale: [10, 1, 10]
  - kind: pawn
    name: ball
`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	w := physics.NewWorld(r3.Vec{Y: -9.81})
	reg := actor.NewRegistry()
	m, err := Mount(w, reg, s)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	rec, ok := reg.Lookup("npc")
	if !ok {
		t.Fatal("Expected character registered under its name")
	}
	if rec.Props.Speed != actor.DefaultSpeed || rec.Props.JumpHeight != actor.DefaultJumpHeight {
		t.Errorf("Expected default speed and jump, got %+v", rec.Props)
	}
	if rec.Props.Scale != (r3.Vec{X: 1, Y: 1, Z: 1}) {
		t.Errorf("Expected unit scale, got %v", rec.Props.Scale)
	}
	if rec.Body.Mass() != 1 {
		t.Errorf("Expected mass 1, got %v", rec.Body.Mass())
	}
	if ball, _ := m.Body("ball"); ball.Type() != components.BodyDynamic || ball.Mass() != 1 {
		t.Errorf("Expected dynamic ball with mass 1")
	}
	if w.Len() != 2 || len(m.Decor()) != 1 {
		t.Errorf("Expected map without physics to be decor, got %d bodies and %d decor", w.Len(), len(m.Decor()))
	}
}

// TestMountRollback verifies a failed mount leaves no bodies or records.
func TestMountRollback(t *testing.T) {
	s, err := decode(t, `actors:
  - kind: character
    name: hero
  - kind: pawn
    name: bad
    physics: floating
`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	w := physics.NewWorld(r3.Vec{Y: -9.81})
	reg := actor.NewRegistry()
	if _, err := Mount(w, reg, s); err == nil {
		t.Fatal("Expected error for unknown physics type")
	}
	if w.Len() != 0 || reg.Len() != 0 {
		t.Errorf("Expected rollback, got %d bodies and %d records", w.Len(), reg.Len())
	}
}

// TestMountPawnVelocity verifies a kinematicVelocity pawn starts moving with
// its scene velocity and a fixed pawn ignores it.
func TestMountPawnVelocity(t *testing.T) {
	s, err := decode(t, `actors:
  - kind: pawn
    name: lift
    physics: kinematicVelocity
    velocity: [0, 0.5, 0]
  - kind: pawn
    name: slab
    physics: fixed
    velocity: [1, 0, 0]
`)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	w := physics.NewWorld(r3.Vec{Y: -9.81})
	m, err := Mount(w, actor.NewRegistry(), s)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	lift, _ := m.Body("lift")
	if v := lift.LinearVelocity(); v != (r3.Vec{Y: 0.5}) {
		t.Errorf("Expected lift velocity (0, 0.5, 0), got %v", v)
	}
	w.Step(1)
	if y := lift.Translation().Y; y != 0.5 {
		t.Errorf("Expected lift at y=0.5 after 1s, got %v", y)
	}

	slab, _ := m.Body("slab")
	if v := slab.LinearVelocity(); v != (r3.Vec{}) {
		t.Errorf("Expected fixed slab to ignore velocity, got %v", v)
	}
}
