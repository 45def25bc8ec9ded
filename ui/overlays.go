package ui

import (
	"strconv"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Overlay is a toggleable debug layer.
type Overlay uint8

const (
	OverlayGrid Overlay = iota
	OverlayColliders
	OverlayProbe
	OverlayVelocity
	OverlayFacing
	OverlayPerf
	overlayCount
)

// Category groups overlays in the controls panel.
type Category uint8

const (
	CategoryWorld Category = iota
	CategoryActor
	CategoryDebug
)

// Categories lists the categories in panel order.
var Categories = []Category{CategoryWorld, CategoryActor, CategoryDebug}

func (c Category) String() string {
	switch c {
	case CategoryWorld:
		return "World"
	case CategoryActor:
		return "Actor"
	case CategoryDebug:
		return "Debug"
	}
	return "Other"
}

// OverlayInfo describes an overlay. Key is the function key that toggles it.
type OverlayInfo struct {
	Name        string
	Description string
	Key         int32
	Category    Category
}

var overlayInfo = [overlayCount]OverlayInfo{
	OverlayGrid:      {"Grid", "Ground reference grid", rl.KeyF1, CategoryWorld},
	OverlayColliders: {"Colliders", "Wireframe collider boxes", rl.KeyF2, CategoryWorld},
	OverlayProbe:     {"Ground Probe", "Downward probe ray of the controlled actor", rl.KeyF3, CategoryActor},
	OverlayVelocity:  {"Velocity", "Linear velocity of the controlled actor", rl.KeyF4, CategoryActor},
	OverlayFacing:    {"Facing", "Camera forward and right on the ground plane", rl.KeyF5, CategoryActor},
	OverlayPerf:      {"Performance", "Per-task simulation timing", rl.KeyF6, CategoryDebug},
}

// Info returns the overlay's description.
func (o Overlay) Info() OverlayInfo {
	if o >= overlayCount {
		return OverlayInfo{}
	}
	return overlayInfo[o]
}

// KeyLabel returns the toggle key as shown in the panel, e.g. "F3".
func (o Overlay) KeyLabel() string {
	return "F" + strconv.Itoa(int(o.Info().Key-rl.KeyF1)+1)
}

// OverlaysIn returns the overlays of one category in key order.
func OverlaysIn(c Category) []Overlay {
	var out []Overlay
	for o := Overlay(0); o < overlayCount; o++ {
		if overlayInfo[o].Category == c {
			out = append(out, o)
		}
	}
	return out
}

// Overlays is the set of enabled overlays.
type Overlays uint16

// DefaultOverlays enables only the grid.
func DefaultOverlays() Overlays {
	return Overlays(1) << OverlayGrid
}

// Has reports whether o is enabled.
func (s Overlays) Has(o Overlay) bool {
	return s&(1<<o) != 0
}

// Toggle flips o and returns its new state.
func (s *Overlays) Toggle(o Overlay) bool {
	*s ^= 1 << o
	return s.Has(o)
}

// HandleKey toggles the overlay bound to key, if any.
func (s *Overlays) HandleKey(key int32) (Overlay, bool) {
	for o := Overlay(0); o < overlayCount; o++ {
		if overlayInfo[o].Key == key {
			s.Toggle(o)
			return o, true
		}
	}
	return 0, false
}
