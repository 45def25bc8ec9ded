// Package systems schedules the fixed-rate simulation and variable-rate
// render tasks of a frame.
package systems

import (
	"fmt"
	"log/slog"
)

// Phase selects which loop a task runs in.
type Phase uint8

const (
	// PhaseSimulation tasks run zero or more times per frame with the fixed dt.
	PhaseSimulation Phase = iota
	// PhaseRender tasks run once per frame with the raw frame delta.
	PhaseRender
)

func (p Phase) String() string {
	switch p {
	case PhaseSimulation:
		return "simulation"
	case PhaseRender:
		return "render"
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Task is a named unit of per-frame work.
type Task struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string
	Phase       Phase
	Run         func(dt float64)
}

// Timer receives tick and phase boundaries for simulation steps.
// telemetry.PerfCollector implements it.
type Timer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// Schedule runs registered tasks. Within a phase, tasks run in
// registration order. Every simulation step due in a frame finishes
// before any render task runs.
type Schedule struct {
	fixedDT     float64
	maxSubsteps int
	accumulator float64
	steps       uint64
	dropped     float64

	tasks []Task
	byID  map[string]Task
	timer Timer
}

// NewSchedule creates a schedule stepping the simulation every fixedDT
// seconds, at most maxSubsteps times per frame.
func NewSchedule(fixedDT float64, maxSubsteps int) *Schedule {
	if fixedDT <= 0 {
		panic("systems: fixedDT must be positive")
	}
	if maxSubsteps < 1 {
		maxSubsteps = 1
	}
	return &Schedule{
		fixedDT:     fixedDT,
		maxSubsteps: maxSubsteps,
		byID:        make(map[string]Task),
	}
}

// SetTimer installs a timer for simulation steps. nil disables timing.
func (s *Schedule) SetTimer(t Timer) {
	s.timer = t
}

// Register adds a task. IDs must be unique and Run must be set.
func (s *Schedule) Register(t Task) {
	if t.Run == nil {
		panic("systems: task " + t.ID + " has no Run func")
	}
	if _, dup := s.byID[t.ID]; dup {
		panic("systems: duplicate task " + t.ID)
	}
	s.tasks = append(s.tasks, t)
	s.byID[t.ID] = t
}

// Get returns task info by ID.
func (s *Schedule) Get(id string) (Task, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// GetName returns the display name for a task ID.
// Falls back to the ID itself if not found.
func (s *Schedule) GetName(id string) string {
	if t, ok := s.byID[id]; ok && t.Name != "" {
		return t.Name
	}
	return id
}

// All returns all registered tasks.
func (s *Schedule) All() []Task {
	return s.tasks
}

// ByPhase returns the tasks of one phase in execution order.
func (s *Schedule) ByPhase(p Phase) []Task {
	var result []Task
	for _, t := range s.tasks {
		if t.Phase == p {
			result = append(result, t)
		}
	}
	return result
}

// PhaseIDs returns the IDs of one phase's tasks in execution order.
func (s *Schedule) PhaseIDs(p Phase) []string {
	tasks := s.ByPhase(p)
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}

// IDs returns all task IDs in registration order.
func (s *Schedule) IDs() []string {
	ids := make([]string, len(s.tasks))
	for i, t := range s.tasks {
		ids[i] = t.ID
	}
	return ids
}

// FixedDT returns the simulation step length.
func (s *Schedule) FixedDT() float64 { return s.fixedDT }

// Steps returns the number of simulation steps run so far.
func (s *Schedule) Steps() uint64 { return s.steps }

// Dropped returns the total simulation time discarded by the substep cap.
func (s *Schedule) Dropped() float64 { return s.dropped }

// Frame advances one frame of frameDT seconds: the due simulation steps,
// then the render tasks. It returns the number of simulation steps run.
func (s *Schedule) Frame(frameDT float64) int {
	if frameDT > 0 {
		s.accumulator += frameDT
	}

	n := int(s.accumulator / s.fixedDT)
	if n > s.maxSubsteps {
		excess := s.accumulator - float64(s.maxSubsteps)*s.fixedDT
		slog.Debug("substep cap reached", "due", n, "max", s.maxSubsteps, "dropped_s", excess)
		s.dropped += excess
		s.accumulator = float64(s.maxSubsteps) * s.fixedDT
		n = s.maxSubsteps
	}

	for i := 0; i < n; i++ {
		s.Step()
		s.accumulator -= s.fixedDT
	}
	if s.accumulator < 0 {
		s.accumulator = 0
	}

	for _, t := range s.tasks {
		if t.Phase == PhaseRender {
			t.Run(frameDT)
		}
	}
	return n
}

// Step runs every simulation task once with the fixed dt, ignoring the
// accumulator. Headless runs call it directly.
func (s *Schedule) Step() {
	if s.timer != nil {
		s.timer.StartTick()
	}
	for _, t := range s.tasks {
		if t.Phase != PhaseSimulation {
			continue
		}
		if s.timer != nil {
			s.timer.StartPhase(t.ID)
		}
		t.Run(s.fixedDT)
	}
	if s.timer != nil {
		s.timer.EndTick()
	}
	s.steps++
}
