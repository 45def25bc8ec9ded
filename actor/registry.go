// Package actor maps logical actor ids to live physics handles.
package actor

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/physics"
)

// Properties are the per-actor values a controller reads each tick.
type Properties struct {
	Scale      r3.Vec
	Speed      float64
	JumpHeight float64
}

// Height returns the actor's vertical extent.
func (p Properties) Height() float64 {
	return p.Scale.Y
}

// Record is one registered actor.
type Record struct {
	ID    string
	Body  physics.Body
	Props Properties
}

// Registry is a concurrency-safe id -> Record table. The registry does not
// own body lifecycles; it only remembers handles.
type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]Record)}
}

// liveness is implemented by bodies that can report removal.
type liveness interface {
	Alive() bool
}

// Register inserts or replaces the record for id. Panics if body is nil,
// including a typed nil handle, or already removed from its world.
func (r *Registry) Register(id string, body physics.Body, props Properties) {
	if body == nil {
		panic("actor: Register called with nil body for " + id)
	}
	if l, ok := body.(liveness); ok && !l.Alive() {
		panic("actor: Register called with a nil or removed body for " + id)
	}
	r.mu.Lock()
	r.records[id] = Record{ID: id, Body: body, Props: props}
	r.mu.Unlock()
}

// Unregister removes id if present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.records, id)
	r.mu.Unlock()
}

// Lookup returns the record for id.
func (r *Registry) Lookup(id string) (Record, bool) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	return rec, ok
}

// Len returns the number of registered actors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// IDs returns a sorted snapshot of registered ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Default movement values for actors that leave them unset.
const (
	DefaultSpeed      = 5.0
	DefaultJumpHeight = 5.0
)

// WithDefaults fills zero Speed and JumpHeight with the package defaults.
func (p Properties) WithDefaults() Properties {
	if p.Speed == 0 {
		p.Speed = DefaultSpeed
	}
	if p.JumpHeight == 0 {
		p.JumpHeight = DefaultJumpHeight
	}
	return p
}
