// Package renderer draws the scene with raylib. It only reads game.Frame
// values and never changes simulation state.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/vehicles/camera"
	"github.com/pthm-cable/vehicles/systems"
)

// TileColor maps a sampled field colour to a display colour. Channels above
// one saturate.
func TileColor(c colorful.Color) rl.Color {
	r, g, b := c.Clamped().RGB255()
	return rl.Color{R: r, G: g, B: b, A: 255}
}

// FieldRenderer draws the sampled tile grid.
type FieldRenderer struct{}

// NewFieldRenderer creates a new field renderer.
func NewFieldRenderer() *FieldRenderer {
	return &FieldRenderer{}
}

// Draw fills one tileSize square per tile, centred on the tile centre.
func (r *FieldRenderer) Draw(cam *camera.Camera, tiles []systems.Tile, tileSize float64) {
	size := float32(tileSize)
	half := size / 2
	for i := range tiles {
		t := &tiles[i]
		if !cam.IsVisible(t.Center, size) {
			continue
		}
		sx, sy := cam.WorldToScreen(t.Center)
		rl.DrawRectangleRec(
			rl.Rectangle{X: sx - half, Y: sy - half, Width: size, Height: size},
			TileColor(t.Color),
		)
	}
}
