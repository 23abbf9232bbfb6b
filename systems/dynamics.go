package systems

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/parallel"
)

// Agent is a vehicle: a point pushed around by every source in the scene.
type Agent struct {
	Position r2.Vec
	Velocity r2.Vec
}

// Heading returns the direction of travel in radians, for sprite orientation.
func (a Agent) Heading() float64 {
	return math.Atan2(a.Velocity.Y, a.Velocity.X)
}

// Sources are the static inputs vehicles react to during one step.
type Sources struct {
	Mouse  r2.Vec
	Lights []r2.Vec
}

// Intensities are the three user-tunable source strengths.
type Intensities struct {
	Mouse float64
	Light float64
	Car   float64
}

// Validate rejects negative or NaN intensities.
func (in Intensities) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"mouse", in.Mouse}, {"light", in.Light}, {"car", in.Car}} {
		if !(f.v >= 0) {
			return fmt.Errorf("%w: %s = %v", ErrNegativeIntensity, f.name, f.v)
		}
	}
	return nil
}

// DynamicsParams holds the vehicle motion constants.
type DynamicsParams struct {
	Force    ForceParams
	MaxSpeed float64 // units per second
}

// IntegrateInto advances every agent of the snapshot by dt and appends the
// results to dst[:0], in the same order. Each agent reads only the snapshot,
// so the outcome does not depend on iteration order. An agent skips itself by
// index, never by position, so coincident vehicles still push each other
// (or, when exactly coincident, contribute nothing).
func IntegrateInto(dst, agents []Agent, src Sources, in Intensities, p DynamicsParams, dt float64) []Agent {
	dst = dst[:0]
	for i := range agents {
		dst = append(dst, stepAgent(i, agents, src, in, p, dt))
	}
	return dst
}

// Integrate is IntegrateInto with a freshly allocated result.
func Integrate(agents []Agent, src Sources, in Intensities, p DynamicsParams, dt float64) []Agent {
	return IntegrateInto(make([]Agent, 0, len(agents)), agents, src, in, p, dt)
}

// IntegrateWith is IntegrateInto with the agents split across r. Every agent
// runs the same computation against the same snapshot, so the result equals
// IntegrateInto's for any runner.
func IntegrateWith(r parallel.Runner, dst, agents []Agent, src Sources, in Intensities, p DynamicsParams, dt float64) []Agent {
	if cap(dst) < len(agents) {
		dst = make([]Agent, len(agents))
	}
	dst = dst[:len(agents)]
	r.Run(len(agents), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = stepAgent(i, agents, src, in, p, dt)
		}
	})
	return dst
}

func stepAgent(i int, agents []Agent, src Sources, in Intensities, p DynamicsParams, dt float64) Agent {
	pos := agents[i].Position

	var vel r2.Vec
	vel = r2.Add(vel, Repulsion(pos, src.Mouse, in.Mouse, p.Force))
	for _, light := range src.Lights {
		vel = r2.Add(vel, Repulsion(pos, light, in.Light, p.Force))
	}
	for j := range agents {
		if j == i {
			continue
		}
		vel = r2.Add(vel, Repulsion(pos, agents[j].Position, in.Car, p.Force))
	}

	vel = ClampLength(vel, p.MaxSpeed)
	return Agent{
		Position: r2.Add(pos, r2.Scale(dt, vel)),
		Velocity: vel,
	}
}

// Cull removes, in place, every agent outside the viewport and returns the
// shortened slice along with the number removed.
func Cull(agents []Agent, vp Viewport) ([]Agent, int) {
	kept := agents[:0]
	for _, a := range agents {
		if vp.Contains(a.Position) {
			kept = append(kept, a)
		}
	}
	return kept, len(agents) - len(kept)
}

// Advance runs one full dynamics step: integrate, then drop the agents that
// left the viewport. The input slice is not modified.
func Advance(agents []Agent, src Sources, in Intensities, p DynamicsParams, vp Viewport, dt float64) ([]Agent, error) {
	if !(dt >= 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("advance: %w: %v", ErrNegativeDT, dt)
	}
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	if err := vp.Validate(); err != nil {
		return nil, fmt.Errorf("advance: %w", err)
	}
	next, _ := Cull(Integrate(agents, src, in, p, dt), vp)
	return next, nil
}
