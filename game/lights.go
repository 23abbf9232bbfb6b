package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

// scatterLights replaces the scattered light field for the current viewport.
// Placed lights are kept.
func (g *Game) scatterLights() {
	n := systems.LightCount(g.viewport, g.cfg.Lights.AreaPerLight)
	g.lights.ReplaceScattered(g.viewport, g.scatterer.Scatter(g.rng, g.viewport, n))
}

// Lights returns a copy of every light.
func (g *Game) Lights() []systems.Light {
	return g.lights.Lights()
}

// LightCount returns the number of lights.
func (g *Game) LightCount() int {
	return g.lights.Len()
}

// PlacedLightCount returns the number of user-placed lights.
func (g *Game) PlacedLightCount() int {
	return g.lights.PlacedCount()
}

// PlaceLightNear adds a user-placed light at a uniformly random offset of at
// most lights.place_jitter from p on each axis, clamped to the viewport.
func (g *Game) PlaceLightNear(p r2.Vec) systems.Light {
	j := g.cfg.Lights.PlaceJitter
	pos := r2.Vec{
		X: p.X + (g.rng.Float64()*2-1)*j,
		Y: p.Y + (g.rng.Float64()*2-1)*j,
	}
	l := systems.Light{Position: g.clampToViewport(pos), Placed: true}
	g.lights.Insert(l)
	g.collector.Record(telemetry.NewLightPlacedEvent(g.tick))
	return l
}

// RemoveLightsNear removes every light, placed or scattered, within
// lights.remove_radius of p and returns how many went.
func (g *Game) RemoveLightsNear(p r2.Vec) int {
	n := g.lights.RemoveWithin(p, g.cfg.Lights.RemoveRadius)
	if n > 0 {
		g.collector.Record(telemetry.NewLightsRemovedEvent(g.tick, n))
	}
	return n
}

// Resize adopts a new viewport. The scattered field is regenerated at the
// configured density, placed lights are kept where they are, and the tile
// grid is rebuilt. Vehicles outside the new bounds go on the next Step.
// A degenerate size is rejected and changes nothing.
func (g *Game) Resize(width, height float64) error {
	vp := systems.Viewport{Width: width, Height: height}
	if vp == g.viewport {
		return nil
	}
	if err := vp.Validate(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if err := g.sampler.Resize(vp); err != nil {
		return fmt.Errorf("resize: %w", err)
	}

	g.viewport = vp
	g.scatterLights()
	g.sampleField()
	g.collector.Record(telemetry.NewResizeEvent(g.tick))

	slog.Info("viewport resized",
		"width", width,
		"height", height,
		"lights", g.lights.Len(),
		"placed", g.lights.PlacedCount(),
	)
	return nil
}
