package game

import (
	"log/slog"

	"github.com/officeshinyujun/libet/systems"
	"github.com/officeshinyujun/libet/telemetry"
)

// registerTasks installs the per-tick and per-frame work in execution
// order. Simulation task IDs double as perf phase names.
func (g *Game) registerTasks() {
	g.schedule.Register(systems.Task{
		ID:          telemetry.PhaseController,
		Name:        "Controller",
		Description: "Input to body velocity, ground probe and jump",
		Phase:       systems.PhaseSimulation,
		Run: func(dt float64) {
			g.report = g.ctrl.Tick(dt)
		},
	})
	g.schedule.Register(systems.Task{
		ID:          telemetry.PhasePhysicsStep,
		Name:        "Physics",
		Description: "Gravity, integration and contact resolution",
		Phase:       systems.PhaseSimulation,
		Run:         g.world.Step,
	})
	g.schedule.Register(systems.Task{
		ID:          telemetry.PhaseTelemetry,
		Name:        "Telemetry",
		Description: "Per-tick records and windowed stats",
		Phase:       systems.PhaseSimulation,
		Run: func(dt float64) {
			// Steps is incremented after the simulation tasks finish.
			g.recordTick(int64(g.schedule.Steps())+1, dt)
		},
	})
	g.schedule.Register(systems.Task{
		ID:          "camera",
		Name:        "Camera",
		Description: "Eye smoothing and follow",
		Phase:       systems.PhaseRender,
		Run: func(dt float64) {
			g.pose, g.posed = g.rig.Update(dt)
		},
	})
}

// recordTick feeds the collector and tick log, flushing a stats window
// when one is complete.
func (g *Game) recordTick(tick int64, dt float64) {
	var rec telemetry.TickRecord
	if r, ok := g.registry.Lookup(g.ctrl.ID()); ok {
		rec = telemetry.NewTickRecord(tick, dt, g.report, r.Body.Translation(), r.Body.LinearVelocity())
	} else {
		rec = telemetry.TickRecord{Tick: tick, Time: float64(tick) * dt}
	}

	g.collector.Record(rec)
	if err := g.outputManager.WriteTick(rec); err != nil {
		slog.Error("failed to write tick", "error", err)
	}

	if g.collector.ShouldFlush(tick) {
		g.flushTelemetry(tick)
	}
}

// flushTelemetry closes the current stats window and writes it out.
func (g *Game) flushTelemetry(tick int64) {
	stats := g.collector.Flush(tick)
	if stats.WindowEndTick <= stats.WindowStartTick {
		return
	}
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes the current world state tagged with bm.
func (g *Game) saveSnapshot(bm *telemetry.Bookmark) {
	grav := g.world.Gravity()
	snapshot := &telemetry.Snapshot{
		Version:      telemetry.SnapshotVersion,
		Tick:         bm.Tick,
		Gravity:      [3]float64{grav.X, grav.Y, grav.Z},
		Paused:       g.world.Paused(),
		ControllerID: g.ctrl.ID(),
		View:         g.rig.View(),
		Bodies:       telemetry.CaptureBodies(g.world),
		Bookmark:     bm,
	}
	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
}

// UpdateHeadless advances one simulation tick with scripted input.
func (g *Game) UpdateHeadless() {
	g.pilot.Drive(g.schedule.Steps(), g.schedule.FixedDT(), g.input, g.rig)
	g.schedule.Step()
}

// Update polls input and advances one rendered frame.
func (g *Game) Update(frameDT float64) {
	g.handleInput()
	g.schedule.Frame(frameDT)
	g.perfCollector.RecordFrame()
}
