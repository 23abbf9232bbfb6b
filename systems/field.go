package systems

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/parallel"
)

// Partition selects the axis the tile grid is split along for parallel sampling.
type Partition uint8

const (
	PartitionColumn Partition = iota // one work item per grid column
	PartitionRow                     // one work item per grid row
	PartitionCell                    // one work item per cell
)

// ParsePartition maps a config name to a Partition.
func ParsePartition(s string) (Partition, error) {
	switch s {
	case "column", "":
		return PartitionColumn, nil
	case "row":
		return PartitionRow, nil
	case "cell":
		return PartitionCell, nil
	}
	return 0, fmt.Errorf("unknown field partition %q (want column, row or cell)", s)
}

func (p Partition) String() string {
	switch p {
	case PartitionRow:
		return "row"
	case PartitionCell:
		return "cell"
	default:
		return "column"
	}
}

// FieldParams holds the tile grid and colour constants.
type FieldParams struct {
	TileSize    float64
	Gain        float64 // multiplies every intensity in the colour sum
	CenterBias  float64 // x offset of a cell centre inside its tile
	MinDistance float64
	Partition   Partition
}

// TileGrid enumerates the cell centres covering a viewport. Columns run over
// i = 0..floor(w/tile) and rows over j = -1..floor(h/tile); the extra row
// below the viewport is deliberate overscan. Cells are stored column-major.
type TileGrid struct {
	Cols, Rows int
	TileSize   float64
	bias       float64
	viewport   Viewport
}

// NewTileGrid builds the grid for a viewport.
func NewTileGrid(vp Viewport, tileSize, bias float64) (TileGrid, error) {
	if err := vp.Validate(); err != nil {
		return TileGrid{}, err
	}
	if !(tileSize > 0) || math.IsInf(tileSize, 0) {
		return TileGrid{}, fmt.Errorf("%w: got %v", ErrInvalidTileSize, tileSize)
	}
	return TileGrid{
		Cols:     int(math.Floor(vp.Width/tileSize)) + 1,
		Rows:     int(math.Floor(vp.Height/tileSize)) + 2,
		TileSize: tileSize,
		bias:     bias,
		viewport: vp,
	}, nil
}

// Len returns the number of cells.
func (g TileGrid) Len() int {
	return g.Cols * g.Rows
}

// Index returns the storage index of a cell.
func (g TileGrid) Index(col, row int) int {
	return col*g.Rows + row
}

// Center returns the world-space centre of a cell. row is the storage row,
// so row 0 is grid row j = -1.
func (g TileGrid) Center(col, row int) r2.Vec {
	hw, hh := g.viewport.HalfExtents()
	j := row - 1
	return r2.Vec{
		X: float64(col)*g.TileSize + g.bias - hw,
		Y: float64(j)*g.TileSize + g.TileSize - hh,
	}
}

// Tile is one sampled grid cell. Color is linear and unclamped; the
// renderer decides how to map it to the display.
type Tile struct {
	Center r2.Vec
	Color  colorful.Color
}

// FieldInput is the read-only scene the sampler reads during one frame.
// None of it may change until Sample returns.
type FieldInput struct {
	Lights      []r2.Vec
	Agents      []r2.Vec
	Mouse       r2.Vec
	Intensities Intensities
}

// SampleCell computes the colour at one point: red sums the lights, blue sums
// the vehicles and then the mouse light, green is always zero.
func SampleCell(c r2.Vec, in FieldInput, p FieldParams) colorful.Color {
	lightFactor := in.Intensities.Light * p.Gain
	carFactor := in.Intensities.Car * p.Gain
	mouseFactor := in.Intensities.Mouse * p.Gain

	var red float64
	for _, l := range in.Lights {
		mag, _ := inverseSquare(r2.Sub(c, l), lightFactor, p.MinDistance)
		red += mag
	}

	var blue float64
	for _, a := range in.Agents {
		mag, _ := inverseSquare(r2.Sub(c, a), carFactor, p.MinDistance)
		blue += mag
	}
	mag, _ := inverseSquare(r2.Sub(c, in.Mouse), mouseFactor, p.MinDistance)
	blue += mag

	return colorful.Color{R: red, G: 0, B: blue}
}

// FieldSampler colours every cell of a tile grid, spreading the work over a
// parallel.Runner.
type FieldSampler struct {
	grid   TileGrid
	params FieldParams
	runner parallel.Runner
}

// NewFieldSampler creates a sampler for the viewport. A nil runner samples serially.
func NewFieldSampler(vp Viewport, p FieldParams, runner parallel.Runner) (*FieldSampler, error) {
	grid, err := NewTileGrid(vp, p.TileSize, p.CenterBias)
	if err != nil {
		return nil, fmt.Errorf("field sampler: %w", err)
	}
	if runner == nil {
		runner = parallel.Serial{}
	}
	return &FieldSampler{grid: grid, params: p, runner: runner}, nil
}

// Resize rebuilds the grid for a new viewport.
func (s *FieldSampler) Resize(vp Viewport) error {
	grid, err := NewTileGrid(vp, s.params.TileSize, s.params.CenterBias)
	if err != nil {
		return fmt.Errorf("field sampler: %w", err)
	}
	s.grid = grid
	return nil
}

// Grid returns the current tile grid.
func (s *FieldSampler) Grid() TileGrid {
	return s.grid
}

// Params returns the sampler parameters.
func (s *FieldSampler) Params() FieldParams {
	return s.params
}

// Sample fills dst (reallocated if too small) with one Tile per grid cell in
// storage order and returns it. Partitions write disjoint indices and every
// cell runs the same SampleCell call, so the result is bit-identical whatever
// the partition and runner.
func (s *FieldSampler) Sample(dst []Tile, in FieldInput) []Tile {
	g := s.grid
	n := g.Len()
	if cap(dst) < n {
		dst = make([]Tile, n)
	}
	dst = dst[:n]

	cell := func(col, row int) {
		c := g.Center(col, row)
		dst[g.Index(col, row)] = Tile{Center: c, Color: SampleCell(c, in, s.params)}
	}

	switch s.params.Partition {
	case PartitionRow:
		s.runner.Run(g.Rows, func(lo, hi int) {
			for row := lo; row < hi; row++ {
				for col := 0; col < g.Cols; col++ {
					cell(col, row)
				}
			}
		})
	case PartitionCell:
		s.runner.Run(n, func(lo, hi int) {
			for idx := lo; idx < hi; idx++ {
				cell(idx/g.Rows, idx%g.Rows)
			}
		})
	default:
		s.runner.Run(g.Cols, func(lo, hi int) {
			for col := lo; col < hi; col++ {
				for row := 0; row < g.Rows; row++ {
					cell(col, row)
				}
			}
		})
	}
	return dst
}
