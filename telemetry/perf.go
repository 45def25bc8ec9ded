package telemetry

import (
	"log/slog"
	"math"
	"time"
)

// Phase IDs of the simulation tasks. The schedule reports phase boundaries
// by task ID, so these double as perf column keys.
const (
	PhaseController  = "controller"
	PhasePhysicsStep = "physics_step"
	PhaseTelemetry   = "telemetry"
)

// PerfCollector times simulation steps per scheduled task over a ring of
// the most recent ticks. It implements systems.Timer; phases are the
// simulation task IDs in schedule order, fixed at construction.
type PerfCollector struct {
	ids   []string
	index map[string]int
	now   func() time.Time

	// Ring of finished ticks: total duration and one duration per phase.
	totals []time.Duration
	split  [][]time.Duration
	next   int
	filled int

	cur        []time.Duration
	tickStart  time.Time
	phaseStart time.Time
	running    int // index into ids, -1 when no tracked phase is open

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over window ticks for the
// given phase IDs. A window below 1 falls back to 60.
func NewPerfCollector(window int, phaseIDs []string) *PerfCollector {
	if window < 1 {
		window = 60
	}
	p := &PerfCollector{
		ids:     append([]string(nil), phaseIDs...),
		index:   make(map[string]int, len(phaseIDs)),
		now:     time.Now,
		totals:  make([]time.Duration, window),
		split:   make([][]time.Duration, window),
		cur:     make([]time.Duration, len(phaseIDs)),
		running: -1,
	}
	for i, id := range p.ids {
		p.index[id] = i
	}
	for i := range p.split {
		p.split[i] = make([]time.Duration, len(phaseIDs))
	}
	return p
}

// PhaseIDs returns the tracked phases in report order.
func (p *PerfCollector) PhaseIDs() []string {
	return append([]string(nil), p.ids...)
}

// StartTick begins timing a simulation step.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	clear(p.cur)
	p.running = -1
}

// StartPhase closes the open phase and starts timing phase. Time spent in
// an ID that was not given at construction counts toward the tick total
// only.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	if i, ok := p.index[phase]; ok {
		p.running = i
	}
}

// EndTick closes the open phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)

	p.totals[p.next] = now.Sub(p.tickStart)
	copy(p.split[p.next], p.cur)
	p.next = (p.next + 1) % len(p.totals)
	if p.filled < len(p.totals) {
		p.filled++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.running >= 0 {
		p.cur[p.running] += now.Sub(p.phaseStart)
		p.running = -1
	}
}

// RecordFrame marks a rendered frame; the gap to the previous call is the
// frame duration.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PhaseTiming is the windowed cost of one simulation task.
type PhaseTiming struct {
	ID  string
	Avg time.Duration
	Max time.Duration
	Pct float64 // share of the average tick, 0-100
}

// PerfStats summarizes the collector window.
type PerfStats struct {
	Ticks   int // ticks in the window
	AvgTick time.Duration
	MinTick time.Duration
	MaxTick time.Duration
	Phases  []PhaseTiming

	FrameDuration time.Duration
	FPS           float64
}

// TicksPerSecond is the step throughput the average tick cost allows.
func (s PerfStats) TicksPerSecond() float64 {
	if s.AvgTick <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.AvgTick)
}

// Phase returns the timing of one phase.
func (s PerfStats) Phase(id string) (PhaseTiming, bool) {
	for _, ph := range s.Phases {
		if ph.ID == id {
			return ph, true
		}
	}
	return PhaseTiming{}, false
}

// Stats aggregates the ticks currently in the window. Phases are always
// listed, with zero timings before the first tick.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Ticks:         p.filled,
		Phases:        make([]PhaseTiming, len(p.ids)),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	for i, id := range p.ids {
		s.Phases[i].ID = id
	}
	if p.filled == 0 {
		return s
	}

	var sum time.Duration
	s.MinTick = time.Duration(math.MaxInt64)
	for i := 0; i < p.filled; i++ {
		d := p.totals[i]
		sum += d
		s.MinTick = min(s.MinTick, d)
		s.MaxTick = max(s.MaxTick, d)
		for j, pd := range p.split[i] {
			s.Phases[j].Avg += pd
			s.Phases[j].Max = max(s.Phases[j].Max, pd)
		}
	}

	n := time.Duration(p.filled)
	s.AvgTick = sum / n
	for j := range s.Phases {
		s.Phases[j].Avg /= n
		if s.AvgTick > 0 {
			s.Phases[j].Pct = float64(s.Phases[j].Avg) / float64(s.AvgTick) * 100
		}
	}
	return s
}

// LogStats logs the window at info level, one pct attribute per phase.
func (s PerfStats) LogStats() {
	attrs := []any{
		"ticks", s.Ticks,
		"avg_tick_us", s.AvgTick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, ph := range s.Phases {
		attrs = append(attrs, ph.ID+"_pct", math.Round(ph.Pct*10)/10)
	}
	slog.Info("perf", attrs...)
}

// PerfTickRow labels the whole-step row in perf.csv.
const PerfTickRow = "tick"

// PerfRow is one perf.csv line: the whole step or one phase of a window.
type PerfRow struct {
	WindowEnd int64   `csv:"window_end"`
	Phase     string  `csv:"phase"`
	AvgUS     int64   `csv:"avg_us"`
	MaxUS     int64   `csv:"max_us"`
	Pct       float64 `csv:"pct"`
	FPS       float64 `csv:"fps"`
}

// Rows flattens the stats into a tick row followed by one row per phase.
func (s PerfStats) Rows(windowEnd int64) []PerfRow {
	rows := make([]PerfRow, 0, len(s.Phases)+1)
	rows = append(rows, PerfRow{
		WindowEnd: windowEnd,
		Phase:     PerfTickRow,
		AvgUS:     s.AvgTick.Microseconds(),
		MaxUS:     s.MaxTick.Microseconds(),
		Pct:       100,
		FPS:       s.FPS,
	})
	for _, ph := range s.Phases {
		rows = append(rows, PerfRow{
			WindowEnd: windowEnd,
			Phase:     ph.ID,
			AvgUS:     ph.Avg.Microseconds(),
			MaxUS:     ph.Max.Microseconds(),
			Pct:       ph.Pct,
			FPS:       s.FPS,
		})
	}
	return rows
}
