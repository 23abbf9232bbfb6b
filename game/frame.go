package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/systems"
)

// Frame is everything a renderer needs to draw one frame, in world
// coordinates. Agents and Tiles are reused by the game; copy them to keep them
// past the next call.
type Frame struct {
	Viewport    systems.Viewport
	TileSize    float64
	Tiles       []systems.Tile
	Agents      []systems.Agent
	Lights      []systems.Light
	MouseLight  r2.Vec
	Mode        BuildMode
	Intensities systems.Intensities
}

// Frame returns a read-only view of the scene.
func (g *Game) Frame() Frame {
	g.frame = g.appendAgents(g.frame[:0])
	return Frame{
		Viewport:    g.viewport,
		TileSize:    g.sampler.Params().TileSize,
		Tiles:       g.tiles,
		Agents:      g.frame,
		Lights:      g.lights.Lights(),
		MouseLight:  g.mouseLight,
		Mode:        g.mode,
		Intensities: g.intensities,
	}
}
