package systems

import (
	"strings"
	"testing"
)

type recorder struct {
	log []string
}

func (r *recorder) task(id string, phase Phase) Task {
	return Task{ID: id, Phase: phase, Run: func(float64) { r.log = append(r.log, id) }}
}

// TestFrameOrdering verifies due simulation steps all run before render tasks.
func TestFrameOrdering(t *testing.T) {
	rec := &recorder{}
	s := NewSchedule(0.25, 10)
	s.Register(rec.task("camera", PhaseRender))
	s.Register(rec.task("controller", PhaseSimulation))
	s.Register(rec.task("physics", PhaseSimulation))

	n := s.Frame(0.625)
	if n != 2 {
		t.Fatalf("Expected 2 steps, got %d", n)
	}
	got := strings.Join(rec.log, ",")
	want := "controller,physics,controller,physics,camera"
	if got != want {
		t.Errorf("Expected order %s, got %s", want, got)
	}

	// The leftover 0.125 carries into the next frame.
	rec.log = nil
	if n := s.Frame(0.125); n != 1 {
		t.Errorf("Expected carried time to produce 1 step, got %d", n)
	}
}

// TestFrameSubstepCap verifies excess time is dropped at the cap.
func TestFrameSubstepCap(t *testing.T) {
	steps := 0
	s := NewSchedule(0.01, 3)
	s.Register(Task{ID: "sim", Phase: PhaseSimulation, Run: func(dt float64) {
		if dt != 0.01 {
			t.Errorf("Expected fixed dt 0.01, got %v", dt)
		}
		steps++
	}})

	if n := s.Frame(1); n != 3 {
		t.Errorf("Expected 3 capped steps, got %d", n)
	}
	if s.Dropped() < 0.96 || s.Dropped() > 0.98 {
		t.Errorf("Expected about 0.97s dropped, got %v", s.Dropped())
	}
	if n := s.Frame(0); n != 0 {
		t.Errorf("Expected no backlog after the cap, got %d steps", n)
	}
	if steps != 3 || s.Steps() != 3 {
		t.Errorf("Expected 3 steps total, got %d (%d)", steps, s.Steps())
	}
}

// TestRenderGetsFrameDelta verifies render tasks see the raw frame delta.
func TestRenderGetsFrameDelta(t *testing.T) {
	var got float64
	s := NewSchedule(1.0/60, 5)
	s.Register(Task{ID: "draw", Phase: PhaseRender, Run: func(dt float64) { got = dt }})

	s.Frame(0.007)
	if got != 0.007 {
		t.Errorf("Expected render dt 0.007, got %v", got)
	}
}

type fakeTimer struct {
	events []string
}

func (f *fakeTimer) StartTick()          { f.events = append(f.events, "tick") }
func (f *fakeTimer) StartPhase(p string) { f.events = append(f.events, p) }
func (f *fakeTimer) EndTick()            { f.events = append(f.events, "end") }

// TestStepTimer verifies phase boundaries are reported per simulation task.
func TestStepTimer(t *testing.T) {
	rec := &recorder{}
	timer := &fakeTimer{}
	s := NewSchedule(0.01, 1)
	s.SetTimer(timer)
	s.Register(rec.task("controller", PhaseSimulation))
	s.Register(rec.task("physics", PhaseSimulation))
	s.Register(rec.task("camera", PhaseRender))

	s.Step()

	got := strings.Join(timer.events, ",")
	if got != "tick,controller,physics,end" {
		t.Errorf("Unexpected timer events %s", got)
	}
}

// TestRegistryLookup verifies task metadata lookups.
func TestRegistryLookup(t *testing.T) {
	s := NewSchedule(0.01, 1)
	s.Register(Task{ID: "physics", Name: "Physics", Phase: PhaseSimulation, Run: func(float64) {}})
	s.Register(Task{ID: "camera", Phase: PhaseRender, Run: func(float64) {}})

	if s.GetName("physics") != "Physics" || s.GetName("camera") != "camera" || s.GetName("x") != "x" {
		t.Error("Unexpected display names")
	}
	if len(s.ByPhase(PhaseRender)) != 1 {
		t.Errorf("Expected 1 render task, got %d", len(s.ByPhase(PhaseRender)))
	}
	if got := s.PhaseIDs(PhaseSimulation); len(got) != 1 || got[0] != "physics" {
		t.Errorf("Unexpected simulation ids %v", got)
	}
	if strings.Join(s.IDs(), ",") != "physics,camera" {
		t.Errorf("Unexpected ids %v", s.IDs())
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for duplicate id")
		}
	}()
	s.Register(Task{ID: "physics", Run: func(float64) {}})
}
