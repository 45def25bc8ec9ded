package physics

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultCellSize is the broadphase cell edge on the XZ plane.
const DefaultCellSize = 4.0

// maxCellsPerBody caps how many cells one body is inserted into. Larger
// bodies, such as a ground plane, go on the oversize list and are returned
// by every query.
const maxCellsPerBody = 1024

type cellKey struct {
	x, z int64
}

// spatialGrid is an unbounded cell hash over the XZ plane used to find
// contact candidates. Entries are caller-defined indices.
type spatialGrid struct {
	cellSize float64
	cells    map[cellKey][]int
	oversize []int

	// Query deduplication: seen[i] == epoch marks i as already returned.
	seen  []uint32
	epoch uint32
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

// clear removes all entries, keeping cell storage for reuse.
func (g *spatialGrid) clear() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
	g.oversize = g.oversize[:0]
}

// insert adds index i to every cell overlapped by box.
func (g *spatialGrid) insert(i int, box r3.Box) {
	x0, z0, x1, z1 := g.span(box)
	if tooManyCells(x0, z0, x1, z1) {
		g.oversize = append(g.oversize, i)
		return
	}
	for x := x0; x <= x1; x++ {
		for z := z0; z <= z1; z++ {
			k := cellKey{x, z}
			g.cells[k] = append(g.cells[k], i)
		}
	}
}

// query appends the indices whose cells overlap box to dst, each once and
// in ascending order. n is one more than the largest inserted index.
func (g *spatialGrid) query(dst []int, box r3.Box, n int) []int {
	if len(g.seen) < n {
		g.seen = make([]uint32, n)
		g.epoch = 0
	}
	g.epoch++
	if g.epoch == 0 {
		clear(g.seen)
		g.epoch = 1
	}

	start := len(dst)
	add := func(i int) {
		if g.seen[i] != g.epoch {
			g.seen[i] = g.epoch
			dst = append(dst, i)
		}
	}

	for _, i := range g.oversize {
		add(i)
	}
	x0, z0, x1, z1 := g.span(box)
	if tooManyCells(x0, z0, x1, z1) {
		// Query larger than the cap: fall back to every entry.
		for _, v := range g.cells {
			for _, i := range v {
				add(i)
			}
		}
	} else {
		for x := x0; x <= x1; x++ {
			for z := z0; z <= z1; z++ {
				for _, i := range g.cells[cellKey{x, z}] {
					add(i)
				}
			}
		}
	}

	slices.Sort(dst[start:])
	return dst
}

// span returns the inclusive cell range covered by box.
func (g *spatialGrid) span(box r3.Box) (x0, z0, x1, z1 int64) {
	return g.cell(box.Min.X), g.cell(box.Min.Z), g.cell(box.Max.X), g.cell(box.Max.Z)
}

func tooManyCells(x0, z0, x1, z1 int64) bool {
	w, d := x1-x0+1, z1-z0+1
	return w > maxCellsPerBody || d > maxCellsPerBody || w*d > maxCellsPerBody
}

func (g *spatialGrid) cell(v float64) int64 {
	c := math.Floor(v / g.cellSize)
	// Clamp so infinite or huge extents cannot overflow the conversion.
	return int64(math.Max(-1<<40, math.Min(1<<40, c)))
}
