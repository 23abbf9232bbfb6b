// Package systems provides the simulation core: the inverse-square force law,
// vehicle dynamics, the tile field sampler and the light index. Nothing here
// touches the window or the ECS world, so every function can be driven from tests.
package systems

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Precondition errors. Callers match them with errors.Is.
var (
	ErrInvalidViewport   = errors.New("viewport must have positive finite width and height")
	ErrInvalidTileSize   = errors.New("tile size must be positive and finite")
	ErrNegativeIntensity = errors.New("intensity must be non-negative")
	ErrNegativeDT        = errors.New("time step must be non-negative and finite")
)

// Viewport is the visible world extent. The origin is at its centre.
type Viewport struct {
	Width, Height float64
}

// Validate reports whether the viewport can hold a tile grid.
func (v Viewport) Validate() error {
	if !(v.Width > 0) || !(v.Height > 0) || math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return fmt.Errorf("%w: got %vx%v", ErrInvalidViewport, v.Width, v.Height)
	}
	return nil
}

// HalfExtents returns half the width and half the height.
func (v Viewport) HalfExtents() (hw, hh float64) {
	return v.Width / 2, v.Height / 2
}

// Area returns width * height.
func (v Viewport) Area() float64 {
	return v.Width * v.Height
}

// Contains reports whether p lies inside the closed viewport rectangle.
func (v Viewport) Contains(p r2.Vec) bool {
	hw, hh := v.HalfExtents()
	return math.Abs(p.X) <= hw && math.Abs(p.Y) <= hh
}

// Clamp moves p onto the nearest point of the viewport rectangle.
func (v Viewport) Clamp(p r2.Vec) r2.Vec {
	hw, hh := v.HalfExtents()
	return r2.Vec{
		X: math.Max(-hw, math.Min(hw, p.X)),
		Y: math.Max(-hh, math.Min(hh, p.Y)),
	}
}
