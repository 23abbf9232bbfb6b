package game

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/components"
	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

// SpawnAgent adds one vehicle at the origin with zero velocity.
func (g *Game) SpawnAgent() {
	id := g.nextID
	g.nextID++

	pos := components.Position{}
	vel := components.Velocity{}
	veh := components.Vehicle{ID: id, BirthTick: g.tick}
	g.vehicleMapper.NewEntity(&pos, &vel, &veh)
	g.agentCount++

	g.lifetimes.Register(id, g.simTime)
	g.collector.Record(telemetry.NewSpawnEvent(g.tick, id))
}

// ResetAgents removes every vehicle and spawns a single fresh one.
func (g *Game) ResetAgents() {
	removed := g.agentCount
	g.removeAll()
	g.lifetimes.Clear()
	g.collector.Record(telemetry.NewResetEvent(g.tick))
	g.SpawnAgent()

	slog.Info("vehicles reset", "tick", g.tick, "removed", removed)
}

// AgentCount returns the number of vehicles.
func (g *Game) AgentCount() int {
	return g.agentCount
}

// Agents returns a copy of every vehicle's state.
func (g *Game) Agents() []systems.Agent {
	return g.appendAgents(make([]systems.Agent, 0, g.agentCount))
}

// appendAgents appends every vehicle's state to dst.
func (g *Game) appendAgents(dst []systems.Agent) []systems.Agent {
	query := g.vehicleFilter.Query()
	for query.Next() {
		pos, vel, _ := query.Get()
		dst = append(dst, systems.Agent{Position: pos.Vec(), Velocity: vel.Vec()})
	}
	return dst
}

// removeAll deletes every vehicle entity.
func (g *Game) removeAll() {
	// Collect first; the world is locked while a query is open.
	var toRemove []ecs.Entity
	query := g.vehicleFilter.Query()
	for query.Next() {
		toRemove = append(toRemove, query.Entity())
	}
	for _, e := range toRemove {
		g.world.RemoveEntity(e)
	}
	g.agentCount = 0
}

// clampToViewport keeps a placement inside the visible area.
func (g *Game) clampToViewport(p r2.Vec) r2.Vec {
	return g.viewport.Clamp(p)
}
