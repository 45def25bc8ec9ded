// Package telemetry records per-tick controller state, windowed stats,
// bookmarks, snapshots and timing, and writes them as CSV and JSON.
package telemetry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/controller"
)

// TickRecord is one row of ticks.csv.
type TickRecord struct {
	Tick     int64   `csv:"tick"`
	Time     float64 `csv:"time"`
	Active   bool    `csv:"active"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	VZ       float64 `csv:"vz"`
	DirX     float64 `csv:"dir_x"`
	DirZ     float64 `csv:"dir_z"`
	Probed   bool    `csv:"probed"`
	Grounded bool    `csv:"grounded"`
	Impulse  float64 `csv:"impulse"`
}

// NewTickRecord flattens a controller report and the body state after the
// physics step.
func NewTickRecord(tick int64, dt float64, r controller.Report, pos, vel r3.Vec) TickRecord {
	return TickRecord{
		Tick:     tick,
		Time:     float64(tick) * dt,
		Active:   r.Active,
		X:        pos.X,
		Y:        pos.Y,
		Z:        pos.Z,
		VX:       vel.X,
		VY:       vel.Y,
		VZ:       vel.Z,
		DirX:     r.Direction.X,
		DirZ:     r.Direction.Z,
		Probed:   r.Probed,
		Grounded: r.Grounded,
		Impulse:  r.Impulse,
	}
}

// Collector accumulates tick records within windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64
	speeds          []float64
	inputTicks      int
	probes          int
	jumps           int
	minY, maxY      float64
	distance        float64
	last            TickRecord
	hasLast         bool
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	c := &Collector{windowDurationTicks: ticksPerWindow, dt: dt}
	c.reset(0)
	return c
}

// Record adds one tick. Inactive ticks only advance the clock.
func (c *Collector) Record(rec TickRecord) {
	if !rec.Active {
		c.hasLast = false
		return
	}

	c.speeds = append(c.speeds, math.Hypot(rec.VX, rec.VZ))
	if rec.DirX != 0 || rec.DirZ != 0 {
		c.inputTicks++
	}
	if rec.Probed {
		c.probes++
	}
	if rec.Grounded {
		c.jumps++
	}
	c.minY = math.Min(c.minY, rec.Y)
	c.maxY = math.Max(c.maxY, rec.Y)
	if c.hasLast {
		c.distance += math.Hypot(rec.X-c.last.X, rec.Z-c.last.Z)
	}
	c.last, c.hasLast = rec, true
}

// ShouldFlush reports whether the window ending at currentTick is complete.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64) WindowStats {
	mean, p10, p50, p90 := ComputeDistribution(c.speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		ActiveTicks:     len(c.speeds),
		InputTicks:      c.inputTicks,
		JumpProbes:      c.probes,
		Jumps:           c.jumps,
		SpeedMean:       mean,
		SpeedP10:        p10,
		SpeedP50:        p50,
		SpeedP90:        p90,
		Distance:        c.distance,
	}
	if c.probes > 0 {
		stats.GroundedRatio = float64(c.jumps) / float64(c.probes)
	}
	if len(c.speeds) > 0 {
		stats.MinHeight, stats.MaxHeight = c.minY, c.maxY
	}

	c.reset(currentTick)
	return stats
}

func (c *Collector) reset(tick int64) {
	c.windowStartTick = tick
	c.speeds = c.speeds[:0]
	c.inputTicks = 0
	c.probes = 0
	c.jumps = 0
	c.minY = math.Inf(1)
	c.maxY = math.Inf(-1)
	c.distance = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
