package telemetry

import (
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"
)

// manualClock advances only when told to.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int, ids ...string) (*PerfCollector, *manualClock) {
	clock := &manualClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(window, ids)
	pc.now = clock.now
	return pc, clock
}

// runTick times one step whose phases take the given durations, in order.
func runTick(pc *PerfCollector, clock *manualClock, ids []string, durs ...time.Duration) {
	pc.StartTick()
	for i, d := range durs {
		pc.StartPhase(ids[i])
		clock.advance(d)
	}
	pc.EndTick()
}

// TestPerfCollectorPhases verifies per-phase averages, maxima and shares.
func TestPerfCollectorPhases(t *testing.T) {
	ids := []string{PhaseController, PhasePhysicsStep}
	pc, clock := newTestCollector(10, ids...)

	runTick(pc, clock, ids, 100*time.Microsecond, 300*time.Microsecond)
	runTick(pc, clock, ids, 100*time.Microsecond, 500*time.Microsecond)

	s := pc.Stats()
	if s.Ticks != 2 {
		t.Fatalf("Expected 2 ticks, got %d", s.Ticks)
	}
	if s.AvgTick != 500*time.Microsecond || s.MinTick != 400*time.Microsecond || s.MaxTick != 600*time.Microsecond {
		t.Errorf("Expected avg/min/max 500/400/600us, got %v/%v/%v", s.AvgTick, s.MinTick, s.MaxTick)
	}
	if s.TicksPerSecond() != 2000 {
		t.Errorf("Expected 2000 ticks/s, got %v", s.TicksPerSecond())
	}

	physics, ok := s.Phase(PhasePhysicsStep)
	if !ok {
		t.Fatal("Expected physics_step phase")
	}
	if physics.Avg != 400*time.Microsecond || physics.Max != 500*time.Microsecond || !scalar.EqualWithinAbs(physics.Pct, 80, 1e-9) {
		t.Errorf("Unexpected physics timing %+v", physics)
	}
	if s.Phases[0].ID != PhaseController || !scalar.EqualWithinAbs(s.Phases[0].Pct, 20, 1e-9) {
		t.Errorf("Expected controller first at 20%%, got %+v", s.Phases[0])
	}
}

// TestPerfCollectorUnknownPhase verifies untracked task IDs count only
// toward the tick total.
func TestPerfCollectorUnknownPhase(t *testing.T) {
	pc, clock := newTestCollector(4, PhaseController)

	pc.StartTick()
	pc.StartPhase(PhaseController)
	clock.advance(50 * time.Microsecond)
	pc.StartPhase("debug_draw")
	clock.advance(150 * time.Microsecond)
	pc.EndTick()

	s := pc.Stats()
	if len(s.Phases) != 1 || s.Phases[0].Avg != 50*time.Microsecond {
		t.Errorf("Expected only controller tracked at 50us, got %+v", s.Phases)
	}
	if s.AvgTick != 200*time.Microsecond {
		t.Errorf("Expected tick total 200us, got %v", s.AvgTick)
	}
}

// TestPerfCollectorRollingWindow verifies old ticks fall out of the window.
func TestPerfCollectorRollingWindow(t *testing.T) {
	ids := []string{PhaseController}
	pc, clock := newTestCollector(3, ids...)

	for i := 0; i < 3; i++ {
		runTick(pc, clock, ids, time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		runTick(pc, clock, ids, 100*time.Microsecond)
	}

	s := pc.Stats()
	if s.Ticks != 3 || s.MaxTick != 100*time.Microsecond {
		t.Errorf("Expected only the last 3 fast ticks, got ticks=%d max=%v", s.Ticks, s.MaxTick)
	}
}

// TestPerfCollectorEmpty verifies an empty window still lists every phase.
func TestPerfCollectorEmpty(t *testing.T) {
	pc, _ := newTestCollector(0, PhaseController, PhaseTelemetry)

	s := pc.Stats()
	if s.AvgTick != 0 || s.MinTick != 0 || s.TicksPerSecond() != 0 {
		t.Errorf("Expected zero timings, got %+v", s)
	}
	if len(s.Phases) != 2 || s.Phases[1].ID != PhaseTelemetry {
		t.Errorf("Expected both phases listed, got %+v", s.Phases)
	}
	if len(pc.totals) != 60 {
		t.Errorf("Expected fallback window 60, got %d", len(pc.totals))
	}
}

// TestPerfCollectorFrameTiming verifies FPS comes from the gap between frames.
func TestPerfCollectorFrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	pc.RecordFrame()
	if pc.Stats().FPS != 0 {
		t.Error("Expected no FPS after the first frame")
	}
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()

	s := pc.Stats()
	if s.FrameDuration != 20*time.Millisecond || s.FPS != 50 {
		t.Errorf("Expected 20ms frames at 50 FPS, got %v at %v", s.FrameDuration, s.FPS)
	}
}

// TestPerfStatsRows verifies the tick row leads the phase rows.
func TestPerfStatsRows(t *testing.T) {
	s := PerfStats{
		AvgTick: 250 * time.Microsecond,
		MaxTick: 400 * time.Microsecond,
		Phases: []PhaseTiming{
			{ID: PhaseController, Avg: 50 * time.Microsecond, Pct: 20},
			{ID: PhasePhysicsStep, Avg: 200 * time.Microsecond, Max: 300 * time.Microsecond, Pct: 80},
		},
	}

	rows := s.Rows(600)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Phase != PerfTickRow || rows[0].AvgUS != 250 || rows[0].MaxUS != 400 || rows[0].Pct != 100 {
		t.Errorf("Unexpected tick row %+v", rows[0])
	}
	var phases []string
	for _, r := range rows[1:] {
		if r.WindowEnd != 600 {
			t.Errorf("Expected window_end 600, got %d", r.WindowEnd)
		}
		phases = append(phases, r.Phase)
	}
	if got := strings.Join(phases, ","); got != "controller,physics_step" {
		t.Errorf("Expected phase rows in order, got %s", got)
	}
	if rows[2].AvgUS != 200 || rows[2].MaxUS != 300 {
		t.Errorf("Unexpected physics row %+v", rows[2])
	}
}
