package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/officeshinyujun/libet/physics"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the world state at one tick for offline inspection.
type Snapshot struct {
	Version int `json:"version"`

	Tick    int64      `json:"tick"`
	Gravity [3]float64 `json:"gravity"`
	Paused  bool       `json:"paused"`

	// Controlled actor
	ControllerID string `json:"controller_id"`
	View         string `json:"view"`

	Bodies []BodySnapshot `json:"bodies"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BodySnapshot holds one body's state.
type BodySnapshot struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Position    [3]float64 `json:"position"`
	Rotation    [4]float64 `json:"rotation"` // w, x, y, z
	Velocity    [3]float64 `json:"velocity"`
	HalfExtents [3]float64 `json:"half_extents"`
}

// NewBodySnapshot converts a body state to its JSON form.
func NewBodySnapshot(s physics.BodyState) BodySnapshot {
	q := s.Rotation
	return BodySnapshot{
		Name:        s.Name,
		Type:        s.Type.String(),
		Position:    [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
		Rotation:    [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Velocity:    [3]float64{s.Velocity.X, s.Velocity.Y, s.Velocity.Z},
		HalfExtents: [3]float64{s.HalfExtents.X, s.HalfExtents.Y, s.HalfExtents.Z},
	}
}

// CaptureBodies snapshots every body in w.
func CaptureBodies(w *physics.World) []BodySnapshot {
	var bodies []BodySnapshot
	w.Each(func(s physics.BodyState) {
		bodies = append(bodies, NewBodySnapshot(s))
	})
	return bodies
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}
