package ui

import (
	"fmt"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/systems"
	"github.com/officeshinyujun/libet/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      uint64
	FPS       int32
	View      string
	Inertia   bool
	Paused    bool
	Crouched  bool
	Grounded  bool
	Position  r3.Vec
	Velocity  r3.Vec
	EyeOffset float64
	MaxSpeed  float64 // actor speed property, scales the speed bar
	Bodies    int
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	model := "direct"
	if data.Inertia {
		model = "inertial"
	}
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Bodies: %d | View: %s | Motion: %s", data.Tick, data.FPS, data.Bodies, data.View, model),
		10, 35, 16, rl.LightGray,
	)

	p, v := data.Position, data.Velocity
	rl.DrawText(
		fmt.Sprintf("Pos: (%.2f, %.2f, %.2f) | Vel: (%.2f, %.2f, %.2f) | Eye: %.2f", p.X, p.Y, p.Z, v.X, v.Y, v.Z, data.EyeOffset),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.Crouched {
		status += " | crouched"
	}
	if data.Grounded {
		status += " | grounded"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	if data.MaxSpeed > 0 {
		speed := math.Hypot(v.X, v.Z)
		h.renderer.DrawBar(10, 95, "Speed", float32(speed), float32(data.MaxSpeed), 260)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Stats    telemetry.PerfStats
	Schedule *systems.Schedule // resolves display names, optional
}

// PerfPanel renders the per-task performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders one row per simulation task, in schedule order, colored by
// its share of the average tick.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y
	stats := data.Stats

	p.renderer.DrawPanel(x-6, y-6, 260, int32(len(stats.Phases))*14+48)

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgTick.Round(time.Microsecond), stats.MaxTick.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range stats.Phases {
		color := rl.LightGray
		switch {
		case ph.Pct > 50:
			color = rl.Red
		case ph.Pct > 25:
			color = rl.Orange
		}

		name := ph.ID
		if data.Schedule != nil {
			name = data.Schedule.GetName(ph.ID)
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %6s %5.1f%%", name, ph.Avg.Round(time.Microsecond), ph.Pct),
			x, y, 12, color,
		)
		y += 14
	}
}
