package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/officeshinyujun/libet/config"
	"github.com/officeshinyujun/libet/input"
)

// actionKeys are forwarded to the input state alongside the movement keys.
var actionKeys = []input.Key{input.KeyR}

// mouseButtons are forwarded to the input state.
var mouseButtons = []input.Button{input.ButtonLeft, input.ButtonRight, input.ButtonMiddle}

// handleInput forwards raylib key and mouse transitions to the input state
// and handles window-level shortcuts.
func (g *Game) handleInput() {
	for k := range g.keys {
		g.forwardKey(k)
	}
	for _, k := range actionKeys {
		if _, mapped := g.keys[k]; !mapped {
			g.forwardKey(k)
		}
	}
	for _, b := range mouseButtons {
		// Clicks only act while the cursor is captured; otherwise they belong to the UI.
		if !g.cursorLocked {
			if rl.IsMouseButtonReleased(rl.MouseButton(b)) {
				g.input.HandleMouse(b, false)
			}
			continue
		}
		if rl.IsMouseButtonPressed(rl.MouseButton(b)) {
			g.input.HandleMouse(b, true)
		}
		if rl.IsMouseButtonReleased(rl.MouseButton(b)) {
			g.input.HandleMouse(b, false)
		}
	}

	if g.cursorLocked {
		d := rl.GetMouseDelta()
		g.rig.Look(float64(d.X), float64(d.Y))
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.setCursorLocked(!g.cursorLocked)
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.toggleView()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		g.ToggleInertia()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.controlsPanel.Toggle()
	}

	for key := int32(rl.KeyF1); key <= rl.KeyF12; key++ {
		if rl.IsKeyPressed(key) {
			g.overlays.HandleKey(key)
		}
	}
}

func (g *Game) forwardKey(k input.Key) {
	if rl.IsKeyPressed(int32(k)) {
		g.input.HandleKey(k, true)
	}
	if rl.IsKeyReleased(int32(k)) {
		g.input.HandleKey(k, false)
	}
}

func (g *Game) setCursorLocked(locked bool) {
	g.cursorLocked = locked
	if locked {
		rl.DisableCursor()
	} else {
		rl.EnableCursor()
	}
}

func (g *Game) toggleView() {
	if g.rig.View() == config.ViewThirdPerson {
		g.SetView(config.ViewFirstPerson)
	} else {
		g.SetView(config.ViewThirdPerson)
	}
}
