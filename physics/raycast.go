package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ RayCaster = (*World)(nil)

// CastRay returns the closest collider hit by the ray within maxDist.
// The direction does not need to be normalized. The exclude body, if it
// belongs to this world, is never reported.
func (w *World) CastRay(origin, dir r3.Vec, maxDist float64, exclude Body) (Hit, bool) {
	length := r3.Norm(dir)
	if length == 0 || maxDist < 0 {
		return Hit{}, false
	}
	dir = r3.Scale(1/length, dir)

	var skip ecs.Entity
	skipping := false
	if rb, ok := exclude.(*RigidBody); ok && rb != nil && rb.world == w {
		skip, skipping = rb.entity, true
	}

	w.mu.RLock()
	best := Hit{Distance: math.Inf(1)}
	var bestEntity ecs.Entity
	found := false

	query := w.filter.Query()
	for query.Next() {
		entity := query.Entity()
		if skipping && entity == skip {
			continue
		}
		tr, _, _, col, _ := query.Get()
		dist, normal, ok := rayBox(origin, dir, col.Bounds(tr.Position))
		if !ok || dist > maxDist || dist >= best.Distance {
			continue
		}
		best = Hit{
			Point:    r3.Add(origin, r3.Scale(dist, dir)),
			Normal:   normal,
			Distance: dist,
		}
		bestEntity = entity
		found = true
	}
	w.mu.RUnlock()

	if !found {
		return Hit{}, false
	}
	best.Body = &RigidBody{world: w, entity: bestEntity}
	return best, true
}

// rayBox intersects a ray with an axis-aligned box using the slab method.
// A ray starting inside the box hits at distance 0 with a zero normal.
func rayBox(origin, dir r3.Vec, box r3.Box) (float64, r3.Vec, bool) {
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	tNear, tFar := math.Inf(-1), math.Inf(1)
	axis, side := -1, 0.0

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, r3.Vec{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tNear {
			tNear, axis, side = t1, i, s
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar || tFar < 0 {
			return 0, r3.Vec{}, false
		}
	}

	if tNear <= 0 {
		return 0, r3.Vec{}, true
	}

	var n [3]float64
	n[axis] = side
	return tNear, r3.Vec{X: n[0], Y: n[1], Z: n[2]}, true
}
