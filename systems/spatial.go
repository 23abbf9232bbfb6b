package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Light is a stationary source. Placed lights were put down by the user and
// survive viewport resizes; the rest belong to the scattered field.
type Light struct {
	Position r2.Vec
	Placed   bool
}

// LightIndex buckets lights into square cells over the viewport so radius
// queries only look at nearby cells. Lights outside the viewport are kept in
// the nearest edge cell, which keeps queries exact after the viewport shrinks.
type LightIndex struct {
	cellSize   float64
	cols, rows int
	minX, minY float64
	cells      [][]Light // flat grid of light lists
	count      int

	positions []r2.Vec // flat snapshot, rebuilt lazily after edits
	dirty     bool
}

// NewLightIndex creates an empty index covering the viewport.
func NewLightIndex(vp Viewport, cellSize float64) *LightIndex {
	ix := &LightIndex{cellSize: cellSize}
	ix.layout(vp)
	return ix
}

func (ix *LightIndex) layout(vp Viewport) {
	hw, hh := vp.HalfExtents()
	ix.cols = int(vp.Width/ix.cellSize) + 1
	ix.rows = int(vp.Height/ix.cellSize) + 1
	ix.minX, ix.minY = -hw, -hh

	ix.cells = make([][]Light, ix.cols*ix.rows)
	for i := range ix.cells {
		ix.cells[i] = make([]Light, 0, 4)
	}
	ix.count = 0
	ix.dirty = true
}

// Len returns the number of lights.
func (ix *LightIndex) Len() int {
	return ix.count
}

// Insert adds a light.
func (ix *LightIndex) Insert(l Light) {
	col, row := ix.cellCoord(l.Position)
	idx := row*ix.cols + col
	ix.cells[idx] = append(ix.cells[idx], l)
	ix.count++
	ix.dirty = true
}

// InsertAll adds every light in ls.
func (ix *LightIndex) InsertAll(ls []Light) {
	for _, l := range ls {
		ix.Insert(l)
	}
}

// QueryRadiusInto appends every light within radius of c (inclusive) to dst.
// Reuse dst across calls to avoid allocations.
func (ix *LightIndex) QueryRadiusInto(dst []Light, c r2.Vec, radius float64) []Light {
	radiusSq := radius * radius
	ix.visit(c, radius, func(idx int) {
		for _, l := range ix.cells[idx] {
			if r2.Norm2(r2.Sub(l.Position, c)) <= radiusSq {
				dst = append(dst, l)
			}
		}
	})
	return dst
}

// QueryRadius returns every light within radius of c.
func (ix *LightIndex) QueryRadius(c r2.Vec, radius float64) []Light {
	return ix.QueryRadiusInto(nil, c, radius)
}

// RemoveWithin deletes every light within radius of c (inclusive) and
// returns how many were removed.
func (ix *LightIndex) RemoveWithin(c r2.Vec, radius float64) int {
	radiusSq := radius * radius
	removed := 0
	ix.visit(c, radius, func(idx int) {
		kept := ix.cells[idx][:0]
		for _, l := range ix.cells[idx] {
			if r2.Norm2(r2.Sub(l.Position, c)) <= radiusSq {
				removed++
				continue
			}
			kept = append(kept, l)
		}
		ix.cells[idx] = kept
	})
	if removed > 0 {
		ix.count -= removed
		ix.dirty = true
	}
	return removed
}

// Rebuild re-grids the index for a new viewport, keeping only the lights
// for which keep returns true. A nil keep drops everything.
func (ix *LightIndex) Rebuild(vp Viewport, keep func(Light) bool) {
	var kept []Light
	if keep != nil {
		for _, cell := range ix.cells {
			for _, l := range cell {
				if keep(l) {
					kept = append(kept, l)
				}
			}
		}
	}
	ix.layout(vp)
	ix.InsertAll(kept)
}

// ReplaceScattered re-grids the index for vp, keeps every placed light and
// swaps the scattered population for scattered.
func (ix *LightIndex) ReplaceScattered(vp Viewport, scattered []Light) {
	ix.Rebuild(vp, func(l Light) bool { return l.Placed })
	for _, l := range scattered {
		l.Placed = false
		ix.Insert(l)
	}
}

// Positions returns the positions of all lights in cell order. The slice is
// shared until the next edit; callers must not modify it.
func (ix *LightIndex) Positions() []r2.Vec {
	if ix.dirty {
		ix.positions = ix.positions[:0]
		for _, cell := range ix.cells {
			for _, l := range cell {
				ix.positions = append(ix.positions, l.Position)
			}
		}
		ix.dirty = false
	}
	return ix.positions
}

// Lights returns a copy of all lights in cell order.
func (ix *LightIndex) Lights() []Light {
	out := make([]Light, 0, ix.count)
	for _, cell := range ix.cells {
		out = append(out, cell...)
	}
	return out
}

// PlacedCount returns the number of user-placed lights.
func (ix *LightIndex) PlacedCount() int {
	n := 0
	for _, cell := range ix.cells {
		for _, l := range cell {
			if l.Placed {
				n++
			}
		}
	}
	return n
}

// visit calls fn for every cell index that can hold a light within radius of c.
func (ix *LightIndex) visit(c r2.Vec, radius float64, fn func(idx int)) {
	colLo, rowLo := ix.cellCoord(r2.Vec{X: c.X - radius, Y: c.Y - radius})
	colHi, rowHi := ix.cellCoord(r2.Vec{X: c.X + radius, Y: c.Y + radius})
	for row := rowLo; row <= rowHi; row++ {
		for col := colLo; col <= colHi; col++ {
			fn(row*ix.cols + col)
		}
	}
}

// cellCoord returns the clamped cell of a world position.
func (ix *LightIndex) cellCoord(p r2.Vec) (col, row int) {
	col = clampIndex(math.Floor((p.X-ix.minX)/ix.cellSize), ix.cols)
	row = clampIndex(math.Floor((p.Y-ix.minY)/ix.cellSize), ix.rows)
	return col, row
}

func clampIndex(f float64, n int) int {
	// Compare as floats first so huge or NaN values never overflow int.
	if !(f >= 0) {
		return 0
	}
	if f >= float64(n-1) {
		return n - 1
	}
	return int(f)
}
