package main

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/config"
	"github.com/pthm-cable/vehicles/parallel"
	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

// Result is one scheduler/partition measurement, one CSV row.
type Result struct {
	Scheduler string  `csv:"scheduler"`
	Partition string  `csv:"partition"`
	Workers   int     `csv:"workers"`
	Agents    int     `csv:"agents"`
	Lights    int     `csv:"lights"`
	Tiles     int     `csv:"tiles"`
	Frames    int     `csv:"frames"`
	MeanUS    float64 `csv:"mean_us"`
	P50US     float64 `csv:"p50_us"`
	P90US     float64 `csv:"p90_us"`
	Speedup   float64 `csv:"speedup"` // serial/column mean over this mean
	Identical bool    `csv:"identical"`
}

// scene builds a random field input at the configured light density with
// the given number of vehicles.
func scene(rng *rand.Rand, cfg *config.Config, agents int) systems.FieldInput {
	vp := cfg.Derived.Viewport
	scatterer := systems.NewScatterer(cfg.Derived.Scatter, cfg.Lights.NoiseScale, rng.Int63())
	lights := scatterer.Scatter(rng, vp, systems.LightCount(vp, cfg.Lights.AreaPerLight))

	in := systems.FieldInput{
		Lights:      make([]r2.Vec, len(lights)),
		Agents:      make([]r2.Vec, agents),
		Mouse:       r2.Vec{X: vp.Width / 2, Y: vp.Height / 2},
		Intensities: cfg.Derived.Intensities,
	}
	for i, l := range lights {
		in.Lights[i] = l.Position
	}
	for i := range in.Agents {
		in.Agents[i] = r2.Vec{
			X: (rng.Float64() - 0.5) * vp.Width,
			Y: (rng.Float64() - 0.5) * vp.Height,
		}
	}
	return in
}

// runCase times frames Sample calls with one scheduler and partition and
// returns the last frame for comparison.
func runCase(cfg *config.Config, scheduler string, partition systems.Partition, in systems.FieldInput, frames int) (Result, []systems.Tile, error) {
	runner, err := parallel.New(scheduler, cfg.Field.Workers, cfg.Field.ParallelThreshold)
	if err != nil {
		return Result{}, nil, err
	}
	if s, ok := runner.(parallel.Stopper); ok {
		defer s.Stop()
	}

	params := cfg.Derived.Field
	params.Partition = partition
	sampler, err := systems.NewFieldSampler(cfg.Derived.Viewport, params, runner)
	if err != nil {
		return Result{}, nil, fmt.Errorf("%s/%s: %w", scheduler, partition, err)
	}

	// One warm-up frame starts pool workers and sizes the buffer.
	tiles := sampler.Sample(nil, in)

	durations := make([]float64, frames)
	for i := range durations {
		start := time.Now()
		tiles = sampler.Sample(tiles, in)
		durations[i] = float64(time.Since(start).Microseconds())
	}
	mean, p50, p90 := telemetry.Summarize(durations)

	workers := cfg.Field.Workers
	switch r := runner.(type) {
	case *parallel.Pool:
		workers = r.Workers()
	case parallel.Serial:
		workers = 1
	}

	return Result{
		Scheduler: scheduler,
		Partition: partition.String(),
		Workers:   workers,
		Agents:    len(in.Agents),
		Lights:    len(in.Lights),
		Tiles:     len(tiles),
		Frames:    frames,
		MeanUS:    mean,
		P50US:     p50,
		P90US:     p90,
	}, tiles, nil
}

// identical reports whether two samples match exactly.
func identical(a, b []systems.Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
