package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/camera"
	"github.com/pthm-cable/vehicles/systems"
)

// LightRenderer draws the static lights and the mouse light.
type LightRenderer struct {
	LightRadius   float32
	LightColor    rl.Color
	PlacedRing    rl.Color
	MouseRadius   float32
	MouseColor    rl.Color
	ShowPlacement bool // outline user-placed lights
}

// NewLightRenderer creates a renderer with red lights and a blue mouse light.
func NewLightRenderer() *LightRenderer {
	return &LightRenderer{
		LightRadius: 5,
		LightColor:  rl.Red,
		PlacedRing:  rl.Color{R: 255, G: 200, B: 200, A: 255},
		MouseRadius: 10,
		MouseColor:  rl.Blue,
	}
}

// Draw renders every light.
func (r *LightRenderer) Draw(cam *camera.Camera, lights []systems.Light) {
	for i := range lights {
		l := &lights[i]
		if !cam.IsVisible(l.Position, r.LightRadius) {
			continue
		}
		sx, sy := cam.WorldToScreen(l.Position)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r.LightRadius, r.LightColor)
		if r.ShowPlacement && l.Placed {
			rl.DrawCircleLines(int32(sx), int32(sy), r.LightRadius+2, r.PlacedRing)
		}
	}
}

// DrawMouse renders the mouse light.
func (r *LightRenderer) DrawMouse(cam *camera.Camera, p r2.Vec) {
	sx, sy := cam.WorldToScreen(p)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r.MouseRadius, r.MouseColor)
}
