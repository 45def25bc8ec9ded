package physics

import (
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/officeshinyujun/libet/components"
)

// contactSlop is the penetration left unresolved so resting bodies keep
// touching the surface they stand on.
const contactSlop = 1e-6

// BodyDesc describes a body to add to the world.
type BodyDesc struct {
	Name        string
	Tags        []string
	Type        components.BodyType
	Position    r3.Vec
	Rotation    r3.Rotation
	HalfExtents r3.Vec
	Mass        float64
}

// BodyState is a read-only copy of a body used by renderers and telemetry.
type BodyState struct {
	Name        string
	Type        components.BodyType
	Position    r3.Vec
	Rotation    r3.Rotation
	Velocity    r3.Vec
	HalfExtents r3.Vec
}

// World is a fixed-step rigid-body world. Bodies are ECS entities with
// Transform, Velocity, Body, Collider and Tag components.
type World struct {
	mu sync.RWMutex

	world  *ecs.World
	bodies *ecs.Map5[
		components.Transform,
		components.Velocity,
		components.Body,
		components.Collider,
		components.Tag,
	]
	filter *ecs.Filter5[
		components.Transform,
		components.Velocity,
		components.Body,
		components.Collider,
		components.Tag,
	]

	gravity r3.Vec
	paused  bool
	steps   uint64
	count   int

	// Broadphase over non-dynamic bodies, rebuilt every Step
	grid       *spatialGrid
	candidates []int
}

// NewWorld creates an empty world with the given gravity vector.
func NewWorld(gravity r3.Vec) *World {
	world := ecs.NewWorld()
	return &World{
		world: world,
		bodies: ecs.NewMap5[
			components.Transform,
			components.Velocity,
			components.Body,
			components.Collider,
			components.Tag,
		](world),
		filter: ecs.NewFilter5[
			components.Transform,
			components.Velocity,
			components.Body,
			components.Collider,
			components.Tag,
		](world),
		gravity: gravity,
		grid:    newSpatialGrid(DefaultCellSize),
	}
}

// Gravity returns the world gravity vector.
func (w *World) Gravity() r3.Vec {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.gravity
}

// SetPaused stops or resumes Step.
func (w *World) SetPaused(paused bool) {
	w.mu.Lock()
	w.paused = paused
	w.mu.Unlock()
}

// Paused reports whether Step is currently a no-op.
func (w *World) Paused() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.paused
}

// Steps returns the number of completed simulation steps.
func (w *World) Steps() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.steps
}

// Len returns the number of bodies in the world.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}

// AddBody creates a body and returns its handle.
func (w *World) AddBody(desc BodyDesc) *RigidBody {
	tr := components.Transform{Position: desc.Position, Rotation: normalizeRotation(desc.Rotation)}
	vel := components.Velocity{}
	body := components.Body{Type: desc.Type, Mass: desc.Mass}
	col := components.Collider{HalfExtents: desc.HalfExtents}
	tag := components.Tag{Name: desc.Name, Tags: desc.Tags}

	w.mu.Lock()
	entity := w.bodies.NewEntity(&tr, &vel, &body, &col, &tag)
	w.count++
	w.mu.Unlock()

	return &RigidBody{world: w, entity: entity}
}

// RemoveBody deletes a body. Removing an already removed body is a no-op.
func (w *World) RemoveBody(b *RigidBody) {
	if b == nil || b.world != w {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.world.Alive(b.entity) {
		return
	}
	w.world.RemoveEntity(b.entity)
	w.count--
}

// Each calls fn with a snapshot of every body.
func (w *World) Each(fn func(BodyState)) {
	w.mu.RLock()
	states := make([]BodyState, 0, w.count)
	query := w.filter.Query()
	for query.Next() {
		tr, vel, body, col, tag := query.Get()
		states = append(states, BodyState{
			Name:        tag.Name,
			Type:        body.Type,
			Position:    tr.Position,
			Rotation:    tr.Rotation,
			Velocity:    vel.Linear,
			HalfExtents: col.HalfExtents,
		})
	}
	w.mu.RUnlock()

	for _, s := range states {
		fn(s)
	}
}

// stepBody is a body gathered for one Step call. Component pointers stay
// valid because Step makes no structural changes.
type stepBody struct {
	tr   *components.Transform
	vel  *components.Velocity
	body *components.Body
	col  *components.Collider
}

// Step advances the world by dt seconds: gravity, velocity integration,
// then contact resolution of dynamic bodies against everything else.
// Candidate solids come from an XZ cell grid.
func (w *World) Step(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paused || dt <= 0 {
		return
	}

	var dynamic, solid []stepBody

	query := w.filter.Query()
	for query.Next() {
		tr, vel, body, col, _ := query.Get()
		sb := stepBody{tr: tr, vel: vel, body: body, col: col}

		switch body.Type {
		case components.BodyDynamic:
			vel.Linear = r3.Add(vel.Linear, r3.Scale(dt, w.gravity))
			tr.Position = r3.Add(tr.Position, r3.Scale(dt, vel.Linear))
			dynamic = append(dynamic, sb)
		case components.BodyKinematicVelocity:
			tr.Position = r3.Add(tr.Position, r3.Scale(dt, vel.Linear))
			solid = append(solid, sb)
		default:
			solid = append(solid, sb)
		}
	}

	w.grid.clear()
	for i, s := range solid {
		w.grid.insert(i, s.col.Bounds(s.tr.Position))
	}
	for _, d := range dynamic {
		// Widen the query by the body's own size so solids it is pushed
		// toward while resolving earlier contacts are still considered.
		reach := r3.Scale(2, d.col.HalfExtents)
		box := d.col.Bounds(d.tr.Position)
		box = r3.Box{Min: r3.Sub(box.Min, reach), Max: r3.Add(box.Max, reach)}

		w.candidates = w.grid.query(w.candidates[:0], box, len(solid))
		for _, i := range w.candidates {
			resolveContact(d, solid[i], 1)
		}
	}

	// Dynamic pairs share the correction.
	for i := 0; i < len(dynamic); i++ {
		for j := i + 1; j < len(dynamic); j++ {
			a, b := dynamic[i], dynamic[j]
			normal, depth, ok := penetration(a, b)
			if !ok {
				continue
			}
			a.tr.Position = r3.Add(a.tr.Position, r3.Scale(depth/2, normal))
			b.tr.Position = r3.Sub(b.tr.Position, r3.Scale(depth/2, normal))
			stopInto(a.vel, normal)
			stopInto(b.vel, r3.Scale(-1, normal))
		}
	}

	w.steps++
}

// resolveContact pushes d out of s along the axis of least penetration and
// removes the velocity component driving d into s.
func resolveContact(d, s stepBody, share float64) {
	normal, depth, ok := penetration(d, s)
	if !ok {
		return
	}
	d.tr.Position = r3.Add(d.tr.Position, r3.Scale(depth*share, normal))
	stopInto(d.vel, normal)
}

// stopInto zeroes the part of v that points against normal.
func stopInto(v *components.Velocity, normal r3.Vec) {
	if into := r3.Dot(v.Linear, normal); into < 0 {
		v.Linear = r3.Sub(v.Linear, r3.Scale(into, normal))
	}
}

// penetration returns the separating normal (pointing from b to a) and depth
// for two overlapping boxes.
func penetration(a, b stepBody) (r3.Vec, float64, bool) {
	pa, pb := a.tr.Position, b.tr.Position
	ha, hb := a.col.HalfExtents, b.col.HalfExtents

	dx := pa.X - pb.X
	dy := pa.Y - pb.Y
	dz := pa.Z - pb.Z
	ox := ha.X + hb.X - math.Abs(dx)
	oy := ha.Y + hb.Y - math.Abs(dy)
	oz := ha.Z + hb.Z - math.Abs(dz)
	if ox <= contactSlop || oy <= contactSlop || oz <= contactSlop {
		return r3.Vec{}, 0, false
	}

	switch {
	case oy <= ox && oy <= oz:
		return r3.Vec{Y: sign(dy)}, oy - contactSlop, true
	case ox <= oz:
		return r3.Vec{X: sign(dx)}, ox - contactSlop, true
	default:
		return r3.Vec{Z: sign(dz)}, oz - contactSlop, true
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
