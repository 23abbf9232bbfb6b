package game

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

func checkDT(dt float64) error {
	if !(dt >= 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("step: %w: %v", systems.ErrNegativeDT, dt)
	}
	return nil
}

// Update runs one frame: apply the host input, then step the simulation.
// The step runs even when Apply rejects part of the input; that error is
// returned afterwards.
func (g *Game) Update(in Input, dt float64) error {
	if err := checkDT(dt); err != nil {
		return err
	}

	g.perf.StartTick()
	defer g.perf.EndTick()

	g.perf.StartPhase(telemetry.PhaseInput)
	err := g.Apply(in)
	g.step(dt)
	return err
}

// Step advances the simulation by dt seconds without any input.
func (g *Game) Step(dt float64) error {
	if err := checkDT(dt); err != nil {
		return err
	}

	g.perf.StartTick()
	g.step(dt)
	g.perf.EndTick()
	return nil
}

// step moves every vehicle against one snapshot of the scene, drops those
// that left the viewport, and resamples the field.
func (g *Game) step(dt float64) {
	g.perf.StartPhase(telemetry.PhaseDynamics)

	g.entities = g.entities[:0]
	g.snapshot = g.snapshot[:0]
	query := g.vehicleFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		g.entities = append(g.entities, query.Entity())
		g.snapshot = append(g.snapshot, systems.Agent{Position: pos.Vec(), Velocity: vel.Vec()})
	}

	src := systems.Sources{Mouse: g.mouseLight, Lights: g.lights.Positions()}
	g.next = systems.IntegrateWith(g.runner, g.next, g.snapshot, src, g.intensities, g.dynamics, dt)

	g.tick++
	g.simTime += dt

	g.perf.StartPhase(telemetry.PhaseCleanup)
	g.culled = g.culled[:0]
	for i, e := range g.entities {
		a := g.next[i]
		g.posMap.Get(e).Set(a.Position)
		g.velMap.Get(e).Set(a.Velocity)
		if !g.viewport.Contains(a.Position) {
			g.culled = append(g.culled, e)
		}
	}
	for _, e := range g.culled {
		id := g.vehicleMap.Get(e).ID
		lifetime, _ := g.lifetimes.Remove(id, g.simTime)
		g.collector.Record(telemetry.NewCullEvent(g.tick, id, lifetime))
		g.world.RemoveEntity(e)
	}
	g.agentCount -= len(g.culled)

	g.perf.StartPhase(telemetry.PhaseField)
	g.sampleField()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.collector.ObserveAgents(g.agentCount)
	g.flushTelemetry()
}

// sampleField recolours the tile grid from the current scene.
func (g *Game) sampleField() {
	g.agentPos = g.agentPos[:0]
	query := g.vehicleFilter.Query()
	for query.Next() {
		pos, _, _ := query.Get()
		g.agentPos = append(g.agentPos, pos.Vec())
	}

	g.tiles = g.sampler.Sample(g.tiles, systems.FieldInput{
		Lights:      g.lights.Positions(),
		Agents:      g.agentPos,
		Mouse:       g.mouseLight,
		Intensities: g.intensities,
	})
}

// Tiles returns the field from the last sample. The slice is reused by the
// next step.
func (g *Game) Tiles() []systems.Tile {
	return g.tiles
}

// speeds returns every vehicle's speed.
func (g *Game) speeds() []float64 {
	out := make([]float64, 0, g.agentCount)
	query := g.vehicleFilter.Query()
	for query.Next() {
		_, vel, _ := query.Get()
		out = append(out, r2.Norm(vel.Vec()))
	}
	return out
}
