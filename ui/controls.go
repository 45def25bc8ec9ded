package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the controls panel edits.
type ControlsState struct {
	ThirdPerson bool
	Inertia     bool
	Paused      bool
	Sensitivity float32
}

// ControlsChange reports which settings were changed by the user this frame.
type ControlsChange struct {
	ToggleView        bool
	ToggleInertia     bool
	TogglePause       bool
	Reset             bool
	SensitivityEdited bool
	Sensitivity       float32
}

// Any reports whether anything changed.
func (c ControlsChange) Any() bool {
	return c.ToggleView || c.ToggleInertia || c.TogglePause || c.Reset || c.SensitivityEdited
}

// Sensitivity slider bounds in radians per pixel.
const (
	MinSensitivity float32 = 0.0005
	MaxSensitivity float32 = 0.01
)

// ControlsPanel renders the left-side controls panel with runtime toggles
// and overlay status.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the changes requested this frame.
// The caller applies them; the panel holds no simulation state.
func (c *ControlsPanel) Draw(state ControlsState, overlays Overlays) ControlsChange {
	var change ControlsChange
	if !c.visible {
		return change
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight
	inner := c.width - padding*2
	buttonHeight := int32(22)

	totalItems := int(overlayCount) + len(Categories)
	panelHeight := 4*(buttonHeight+4) + 2*lineHeight + int32(totalItems)*lineHeight + padding*4 + lineHeight
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := c.x + padding
	y := c.y + padding

	rl.DrawText("Controls", x, y, 16, rl.White)
	y += lineHeight + 4

	button := func(label string) bool {
		pressed := gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: float32(buttonHeight)}, label)
		y += buttonHeight + 4
		return pressed
	}

	view := "First person"
	if state.ThirdPerson {
		view = "Third person"
	}
	change.ToggleView = button("View: " + view + " [V]")

	model := "Direct"
	if state.Inertia {
		model = "Inertial"
	}
	change.ToggleInertia = button("Motion: " + model + " [I]")

	pause := "Pause [P]"
	if state.Paused {
		pause = "Resume [P]"
	}
	change.TogglePause = button(pause)
	change.Reset = button("Respawn [R]")

	y = r.DrawLabelValue(x, y, "Mouse", fmt.Sprintf("%.4f rad/px", state.Sensitivity))
	sens := gui.SliderBar(
		rl.Rectangle{X: float32(x + 30), Y: float32(y), Width: float32(inner - 60), Height: 12},
		"lo", "hi", state.Sensitivity, MinSensitivity, MaxSensitivity,
	)
	if sens != state.Sensitivity {
		change.SensitivityEdited = true
		change.Sensitivity = sens
	}
	y += lineHeight + padding

	for _, category := range Categories {
		y = r.DrawSectionHeader(x, y, category.String())
		for _, o := range OverlaysIn(category) {
			c.drawToggle(x, y, o, overlays.Has(o), inner)
			y += lineHeight
		}
		y += 4
	}

	return change
}

// drawToggle draws a single overlay status line.
func (c *ControlsPanel) drawToggle(x, y int32, o Overlay, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(o.Info().Name, x+14, y, r.Theme.FontSize, nameColor)

	keyText := "[" + o.KeyLabel() + "]"
	keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
	rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
}
