package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/vehicles/camera"
	"github.com/pthm-cable/vehicles/systems"
)

// Vehicle sprite size in pixels.
const (
	VehicleLength = 20
	VehicleWidth  = 10
)

// VehicleRenderer draws vehicles as rectangles turned to their heading.
type VehicleRenderer struct {
	Color         rl.Color
	VelocityColor rl.Color
	VelocityScale float32 // pixels per unit/s for the velocity overlay
}

// NewVehicleRenderer creates a renderer for white vehicles.
func NewVehicleRenderer() *VehicleRenderer {
	return &VehicleRenderer{
		Color:         rl.White,
		VelocityColor: rl.Color{R: 100, G: 200, B: 100, A: 255},
		VelocityScale: 0.25,
	}
}

// Draw renders every vehicle.
func (r *VehicleRenderer) Draw(cam *camera.Camera, agents []systems.Agent) {
	origin := rl.Vector2{X: VehicleLength / 2, Y: VehicleWidth / 2}
	for i := range agents {
		a := &agents[i]
		sx, sy := cam.WorldToScreen(a.Position)
		rl.DrawRectanglePro(
			rl.Rectangle{X: sx, Y: sy, Width: VehicleLength, Height: VehicleWidth},
			origin,
			cam.Heading(a.Heading()),
			r.Color,
		)
	}
}

// DrawVelocities draws each vehicle's velocity as a line from its centre.
func (r *VehicleRenderer) DrawVelocities(cam *camera.Camera, agents []systems.Agent) {
	for i := range agents {
		a := &agents[i]
		sx, sy := cam.WorldToScreen(a.Position)
		rl.DrawLineV(
			rl.Vector2{X: sx, Y: sy},
			rl.Vector2{
				X: sx + float32(a.Velocity.X)*r.VelocityScale,
				Y: sy - float32(a.Velocity.Y)*r.VelocityScale,
			},
			r.VelocityColor,
		)
	}
}
