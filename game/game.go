// Package game wires the physics world, actor registry, controller and
// camera rig into a raylib frame loop, or into a headless fixed-step loop.
package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/actor"
	"github.com/officeshinyujun/libet/autopilot"
	"github.com/officeshinyujun/libet/camera"
	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/controller"
	"github.com/officeshinyujun/libet/input"
	"github.com/officeshinyujun/libet/physics"
	"github.com/officeshinyujun/libet/scene"
	"github.com/officeshinyujun/libet/systems"
	"github.com/officeshinyujun/libet/telemetry"
	"github.com/officeshinyujun/libet/ui"
)

var _ controller.Facing = (*camera.Rig)(nil)

// Options holds runtime options for game initialization.
type Options struct {
	ScenePath      string  // Overrides config scene.path when set
	OutputDir      string  // Directory for CSV logs and config snapshot (empty = disabled)
	SnapshotDir    string  // Directory for world snapshots saved on bookmarks (empty = disabled)
	StatsWindowSec float64 // Overrides config telemetry.stats_window when > 0
	LogStats       bool    // Log window and perf stats via slog
	Headless       bool    // Run without graphics
}

// Game holds the complete runtime state.
type Game struct {
	cfg *config.Config

	world    *physics.World
	registry *actor.Registry
	input    *input.State
	keys     input.KeyMap
	rig      *camera.Rig
	ctrl     *controller.Controller
	mounted  *scene.Mounted
	schedule *systems.Schedule

	// Spawn point of the controlled actor, used by respawn
	spawn       r3.Vec
	inertia     bool
	sensitivity float64

	// Last simulation and camera results
	report controller.Report
	pose   camera.Pose
	posed  bool

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	snapshotDir   string
	logStats      bool

	// Headless input driver
	pilot *autopilot.Pilot

	// UI
	hud           *ui.HUD
	perfPanel     *ui.PerfPanel
	controlsPanel *ui.ControlsPanel
	overlays      ui.Overlays
	cursorLocked  bool

	headless bool
}

// NewGame builds the world from config.Cfg() and opts.
func NewGame(opts Options) (*Game, error) {
	cfg := config.Cfg()

	crouchKey, err := input.ParseKey(cfg.Controller.CrouchKey)
	if err != nil {
		return nil, fmt.Errorf("controller.crouch_key: %w", err)
	}

	scenePath := cfg.Scene.Path
	if opts.ScenePath != "" {
		scenePath = opts.ScenePath
	}
	scn := scene.Demo()
	if scenePath != "" {
		if scn, err = scene.Load(scenePath); err != nil {
			return nil, err
		}
	}

	g := &Game{
		cfg:         cfg,
		world:       physics.NewWorld(r3.Vec{X: cfg.Physics.Gravity[0], Y: cfg.Physics.Gravity[1], Z: cfg.Physics.Gravity[2]}),
		registry:    actor.NewRegistry(),
		keys:        input.DefaultKeyMap(crouchKey),
		inertia:     cfg.Controller.Inertia,
		sensitivity: cfg.Controller.MouseSensitivity,
		snapshotDir: opts.SnapshotDir,
		logStats:    opts.LogStats,
		headless:    opts.Headless,
	}
	g.world.SetPaused(cfg.Physics.Paused)
	g.input = input.NewState(g.keys)

	if g.mounted, err = scene.Mount(g.world, g.registry, scn); err != nil {
		return nil, err
	}

	id := cfg.Controller.ID
	rec, ok := g.registry.Lookup(id)
	if !ok {
		slog.Warn("controlled actor not in scene", "id", id, "controllers", g.mounted.ControllerIDs())
	} else {
		g.spawn = rec.Body.Translation()
	}

	g.rig = camera.New(g.registry, g.input, id, camera.OptionsFromConfig(cfg))
	g.ctrl = controller.New(g.registry, g.world, g.rig, g.input, id, controller.OptionsFromConfig(cfg))
	g.bindActions()

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Physics.FixedDT)
	g.bookmarks = telemetry.NewBookmarkDetector(10)

	if g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir, cfg.Telemetry.RecordTicks); err != nil {
		g.teardown()
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	g.schedule = systems.NewSchedule(cfg.Physics.FixedDT, cfg.Physics.MaxSubsteps)
	g.registerTasks()
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow, g.schedule.PhaseIDs(systems.PhaseSimulation))
	g.schedule.SetTimer(g.perfCollector)

	if opts.Headless {
		g.pilot = autopilot.New(crouchKey)
	} else {
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-270, 110)
		g.controlsPanel = ui.NewControlsPanel(10, 110, 220)
		g.overlays = ui.DefaultOverlays()
	}

	slog.Info("game initialized",
		"scene", scenePath,
		"controller", id,
		"view", cfg.Controller.View,
		"fixed_dt", cfg.Physics.FixedDT,
		"headless", opts.Headless,
		"output_dir", g.outputManager.Dir(),
	)
	return g, nil
}

// bindActions attaches the controlled actor's action bindings.
func (g *Game) bindActions() {
	g.ctrl.Bind(input.OnKey(input.KeyR), func(rec actor.Record) {
		g.respawn(rec)
	})
	g.ctrl.Bind(input.OnButton(input.ButtonLeft), func(rec actor.Record) {
		g.shove(rec)
	})
}

// respawn moves the actor back to where the scene placed it.
func (g *Game) respawn(rec actor.Record) {
	rec.Body.SetTranslation(g.spawn)
	rec.Body.SetLinearVelocity(r3.Vec{})
	g.rig.Reset()
	slog.Info("actor respawned", "id", g.ctrl.ID())
}

// shoveReach and shoveImpulse tune the push applied by the primary action.
const (
	shoveReach   = 3.0
	shoveImpulse = 6.0
)

// shove pushes the first body in front of the actor's eye along the view
// direction. Bodies that are not dynamic ignore the impulse.
func (g *Game) shove(rec actor.Record) {
	eye := r3.Add(rec.Body.Translation(), r3.Scale(g.rig.EyeOffset(), physics.Up))
	look := g.rig.Forward()
	hit, ok := g.world.CastRay(eye, look, shoveReach+rec.Props.Scale.Z/2, rec.Body)
	if !ok {
		return
	}
	hit.Body.ApplyImpulse(r3.Scale(shoveImpulse, look))
	slog.Debug("shove", "distance", hit.Distance)
}

// SetView switches both the controller and camera between view modes.
func (g *Game) SetView(view string) {
	g.ctrl.SetView(view)
	g.rig.SetView(view)
	slog.Info("view changed", "view", view)
}

// ToggleInertia switches the controller between direct and inertial motion.
func (g *Game) ToggleInertia() {
	g.inertia = !g.inertia
	c := g.cfg.Controller
	c.Inertia = g.inertia
	g.ctrl.SetModel(controller.ModelFromConfig(c))
	slog.Info("motion model changed", "inertia", g.inertia)
}

// TogglePause stops or resumes the physics step.
func (g *Game) TogglePause() {
	g.world.SetPaused(!g.world.Paused())
}

// Tick returns the number of simulation steps run.
func (g *Game) Tick() uint64 {
	return g.schedule.Steps()
}

// Unload releases resources and flushes output files.
func (g *Game) Unload() {
	if g.collector != nil && g.schedule.Steps() > 0 {
		g.flushTelemetry(int64(g.schedule.Steps()))
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
	if !g.headless && g.cursorLocked {
		g.setCursorLocked(false)
	}
	g.teardown()
}

func (g *Game) teardown() {
	if g.ctrl != nil {
		g.ctrl.Close()
	}
	g.input.Close()
	g.mounted.Unmount()
}
