// Package camera maps between world coordinates, origin at the window centre
// with y up, and raylib screen coordinates, origin top-left with y down.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera holds the current screen size. The world is never panned or zoomed:
// one world unit is one pixel and the world origin is the screen centre.
type Camera struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32
}

// New creates a camera for a screen of the given size.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{ViewportW: viewportW, ViewportH: viewportH}
}

// WorldToScreen converts a world position to screen pixels.
func (c *Camera) WorldToScreen(p r2.Vec) (sx, sy float32) {
	sx = c.ViewportW/2 + float32(p.X)
	sy = c.ViewportH/2 - float32(p.Y)
	return sx, sy
}

// ScreenToWorld converts screen pixels to a world position.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	return r2.Vec{
		X: float64(sx - c.ViewportW/2),
		Y: float64(c.ViewportH/2 - sy),
	}
}

// Heading converts a world-space angle in radians (counter-clockwise, y up)
// to a raylib rotation in degrees (clockwise, y down).
func (c *Camera) Heading(rad float64) float32 {
	return float32(-rad * 180 / math.Pi)
}

// IsVisible returns true if a circle at p with the given radius could be on
// screen.
func (c *Camera) IsVisible(p r2.Vec, radius float32) bool {
	sx, sy := c.WorldToScreen(p)
	return sx >= -radius && sx <= c.ViewportW+radius &&
		sy >= -radius && sy <= c.ViewportH+radius
}

// Sync adopts a reported screen size and returns true if it changed.
// Non-positive sizes, as seen while a window is minimised, are ignored.
func (c *Camera) Sync(screenW, screenH int) bool {
	if screenW <= 0 || screenH <= 0 {
		return false
	}
	w, h := float32(screenW), float32(screenH)
	if w == c.ViewportW && h == c.ViewportH {
		return false
	}
	c.Resize(w, h)
	return true
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}
