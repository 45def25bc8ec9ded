package game

import (
	"image/color"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/physics"
	"github.com/officeshinyujun/libet/ui"
)

var (
	backgroundColor = rl.Color{R: 24, G: 28, B: 34, A: 255}
	defaultColor    = rl.Color{R: 180, G: 180, B: 180, A: 255}
	wireColor       = rl.Color{R: 20, G: 20, B: 20, A: 255}
)

// controlsLegend is shown at the bottom of the screen.
const controlsLegend = "WASD/Arrows: Move | Space: Jump | C/Ctrl: Crouch | Tab: Mouse look | Click: Shove | R: Respawn | V: View | I: Inertia | P: Pause | H: Panel | F1-F6: Overlays"

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	if g.posed {
		rl.BeginMode3D(g.camera3D())
		g.drawWorld()
		g.drawOverlays()
		rl.EndMode3D()
	}

	g.drawUI()

	rl.EndDrawing()
}

// camera3D converts the rig pose to a raylib camera.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   toRL(g.pose.Position),
		Target:     toRL(g.pose.Target),
		Up:         toRL(physics.Up),
		Fovy:       float32(g.cfg.Camera.FOV),
		Projection: rl.CameraPerspective,
	}
}

// drawWorld draws every body and decor cube.
func (g *Game) drawWorld() {
	self := g.controlledName()
	firstPerson := g.rig.View() == config.ViewFirstPerson

	g.world.Each(func(s physics.BodyState) {
		// The eye sits inside the controlled body in first person.
		if firstPerson && s.Name == self {
			return
		}
		size := toRL(r3.Scale(2, s.HalfExtents))
		rl.DrawCubeV(toRL(s.Position), size, parseColor(g.mounted.Color(s.Name)))
		rl.DrawCubeWiresV(toRL(s.Position), size, wireColor)
	})

	for _, d := range g.mounted.Decor() {
		rl.DrawCubeV(toRL(d.Position), toRL(d.Scale), parseColor(d.Color))
	}
}

// controlledName returns the scene name of the controlled actor's body.
func (g *Game) controlledName() string {
	rec, ok := g.registry.Lookup(g.ctrl.ID())
	if !ok {
		return ""
	}
	if rb, ok := rec.Body.(*physics.RigidBody); ok {
		return rb.Name()
	}
	return ""
}

// drawUI draws the HUD and panels and applies panel changes.
func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:     "libet",
		Tick:      g.schedule.Steps(),
		FPS:       rl.GetFPS(),
		View:      g.rig.View(),
		Inertia:   g.inertia,
		Paused:    g.world.Paused(),
		Crouched:  g.input.Level().Crouch,
		Grounded:  g.report.Grounded,
		EyeOffset: g.rig.EyeOffset(),
		Bodies:    g.world.Len(),
	}
	if rec, ok := g.registry.Lookup(g.ctrl.ID()); ok {
		data.Position = rec.Body.Translation()
		data.Velocity = rec.Body.LinearVelocity()
		data.MaxSpeed = rec.Props.Speed
	}
	g.hud.Draw(data)
	g.hud.DrawControls(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), controlsLegend)

	if !g.cursorLocked && g.schedule.Steps() == 0 && !g.world.Paused() {
		rl.DrawText("Press Tab to capture the mouse", 10, int32(rl.GetScreenHeight())-45, 14, rl.Gray)
	}

	if g.overlays.Has(ui.OverlayPerf) {
		g.perfPanel.SetPosition(int32(rl.GetScreenWidth())-270, 110)
		g.perfPanel.Draw(ui.PerfPanelData{
			Stats:    g.perfCollector.Stats(),
			Schedule: g.schedule,
		})
	}

	change := g.controlsPanel.Draw(ui.ControlsState{
		ThirdPerson: g.rig.View() == config.ViewThirdPerson,
		Inertia:     g.inertia,
		Paused:      g.world.Paused(),
		Sensitivity: float32(g.sensitivity),
	}, g.overlays)
	g.applyControls(change)
}

// applyControls applies changes requested from the controls panel.
func (g *Game) applyControls(c ui.ControlsChange) {
	if !c.Any() {
		return
	}
	if c.ToggleView {
		g.toggleView()
	}
	if c.ToggleInertia {
		g.ToggleInertia()
	}
	if c.TogglePause {
		g.TogglePause()
	}
	if c.Reset {
		if rec, ok := g.registry.Lookup(g.ctrl.ID()); ok {
			g.respawn(rec)
		}
	}
	if c.SensitivityEdited {
		g.sensitivity = float64(c.Sensitivity)
		g.rig.SetSensitivity(g.sensitivity)
	}
}

func toRL(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// parseColor reads "#rrggbb" or "#rrggbbaa". Anything else draws in the
// default color.
func parseColor(s string) color.RGBA {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 6:
		s += "ff"
	case 8:
	default:
		return defaultColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return defaultColor
	}
	return rl.GetColor(uint(v))
}
