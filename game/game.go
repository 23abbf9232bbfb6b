// Package game holds the explicit simulation state: the vehicles (an ark ECS
// world), the lights, the mouse light and the intensities, plus the per-frame
// Apply/Step entry points the hosts drive. It never touches the window.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/components"
	"github.com/pthm-cable/vehicles/config"
	"github.com/pthm-cable/vehicles/parallel"
	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

// Options configures a Game beyond what the config file covers.
type Options struct {
	Seed      int64  // RNG seed, 0 = time-based
	OutputDir string // CSV output directory, "" = disabled
	LogStats  bool   // log window stats to slog

	// StatsCallback, if set, receives every flushed window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world         *ecs.World
	vehicleMapper *ecs.Map3[components.Position, components.Velocity, components.Vehicle]
	vehicleFilter *ecs.Filter3[components.Position, components.Velocity, components.Vehicle]
	posMap        *ecs.Map1[components.Position]
	velMap        *ecs.Map1[components.Velocity]
	vehicleMap    *ecs.Map1[components.Vehicle]

	lights    *systems.LightIndex
	scatterer *systems.Scatterer
	sampler   *systems.FieldSampler
	runner    parallel.Runner

	viewport    systems.Viewport
	mouseLight  r2.Vec
	intensities systems.Intensities
	dynamics    systems.DynamicsParams
	mode        BuildMode

	// Per-step buffers, reused across frames
	entities []ecs.Entity
	snapshot []systems.Agent
	next     []systems.Agent
	culled   []ecs.Entity
	agentPos []r2.Vec
	tiles    []systems.Tile
	frame    []systems.Agent

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	lifetimes     *telemetry.LifetimeTracker
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// State
	tick       int64
	simTime    float64 // sum of every dt stepped
	nextID     uint32
	agentCount int
}

// New creates a game from a loaded config: it scatters the light field,
// spawns one vehicle at the origin and puts the mouse light at (w/2, h/2).
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		return nil, errors.New("game: nil config")
	}
	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	noiseSeed := cfg.Lights.NoiseSeed
	if noiseSeed == 0 {
		noiseSeed = seed
	}

	runner, err := parallel.New(cfg.Field.Scheduler, cfg.Field.Workers, cfg.Field.ParallelThreshold)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	vp := cfg.Derived.Viewport
	sampler, err := systems.NewFieldSampler(vp, cfg.Derived.Field, runner)
	if err != nil {
		stopRunner(runner)
		return nil, fmt.Errorf("game: %w", err)
	}
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		stopRunner(runner)
		return nil, fmt.Errorf("game: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		stopRunner(runner)
		output.Close()
		return nil, fmt.Errorf("game: %w", err)
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,

		world:         world,
		vehicleMapper: ecs.NewMap3[components.Position, components.Velocity, components.Vehicle](world),
		vehicleFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Vehicle](world),
		posMap:        ecs.NewMap1[components.Position](world),
		velMap:        ecs.NewMap1[components.Velocity](world),
		vehicleMap:    ecs.NewMap1[components.Vehicle](world),

		lights:    systems.NewLightIndex(vp, cfg.Lights.IndexCellSize),
		scatterer: systems.NewScatterer(cfg.Derived.Scatter, cfg.Lights.NoiseScale, noiseSeed),
		sampler:   sampler,
		runner:    runner,

		viewport:    vp,
		mouseLight:  r2.Vec{X: vp.Width / 2, Y: vp.Height / 2},
		intensities: cfg.Derived.Intensities,
		dynamics:    cfg.Derived.Dynamics,

		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		lifetimes:     telemetry.NewLifetimeTracker(),
		bookmarks:     telemetry.NewBookmarkDetector(10),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	g.scatterLights()
	g.SpawnAgent()
	g.sampleField()

	slog.Info("game started",
		"seed", seed,
		"width", vp.Width,
		"height", vp.Height,
		"lights", g.lights.Len(),
		"scheduler", cfg.Field.Scheduler,
		"partition", cfg.Field.Partition,
		"scatter", g.scatterer.Mode().String(),
	)
	return g, nil
}

func stopRunner(r parallel.Runner) {
	if s, ok := r.(parallel.Stopper); ok {
		s.Stop()
	}
}

// Close stops the worker pool and closes telemetry output.
func (g *Game) Close() error {
	stopRunner(g.runner)
	return g.output.Close()
}

// Config returns the config the game was built from.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Seed returns the RNG seed in use.
func (g *Game) Seed() int64 {
	return g.seed
}

// Tick returns the number of completed steps.
func (g *Game) Tick() int64 {
	return g.tick
}

// SimTime returns the simulated seconds stepped so far.
func (g *Game) SimTime() float64 {
	return g.simTime
}

// Viewport returns the current viewport.
func (g *Game) Viewport() systems.Viewport {
	return g.viewport
}

// Mode returns the current build mode.
func (g *Game) Mode() BuildMode {
	return g.mode
}

// SetMode changes the build mode.
func (g *Game) SetMode(m BuildMode) {
	g.mode = m
}

// MouseLight returns the mouse light position.
func (g *Game) MouseLight() r2.Vec {
	return g.mouseLight
}

// Intensities returns the current source intensities.
func (g *Game) Intensities() systems.Intensities {
	return g.intensities
}

// SetIntensities replaces the source intensities. Negative or NaN values are
// rejected and leave the current ones in place.
func (g *Game) SetIntensities(in systems.Intensities) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("set intensities: %w", err)
	}
	g.intensities = in
	return nil
}

// Perf returns the phase timing collector.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perf
}
