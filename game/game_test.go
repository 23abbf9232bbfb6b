package game

import (
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/components"
	"github.com/pthm-cable/vehicles/config"
	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/telemetry"
)

const frameDT = 1.0 / 60.0

func newTestGame(t *testing.T, mutate func(*config.Config), opts Options) *Game {
	t.Helper()
	cfg := config.Default()
	cfg.Field.Scheduler = "serial"
	if mutate != nil {
		mutate(cfg)
	}
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// spawnAt adds a vehicle at p, bypassing the origin-only SpawnAgent.
func spawnAt(g *Game, p r2.Vec) {
	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	veh := components.Vehicle{ID: g.nextID, BirthTick: g.tick}
	g.nextID++
	g.vehicleMapper.NewEntity(&pos, &vel, &veh)
	g.agentCount++
	g.lifetimes.Register(veh.ID, g.simTime)
}

func TestNew_InitialState(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	agents := g.Agents()
	if len(agents) != 1 || g.AgentCount() != 1 {
		t.Fatalf("got %d agents (count %d), want 1", len(agents), g.AgentCount())
	}
	if agents[0] != (systems.Agent{}) {
		t.Errorf("first vehicle = %+v, want at rest at the origin", agents[0])
	}

	if got := g.LightCount(); got != 120 {
		t.Errorf("LightCount = %d, want 120 for 800x600", got)
	}
	vp := g.Viewport()
	for _, l := range g.Lights() {
		if !vp.Contains(l.Position) {
			t.Errorf("light %v outside %v", l.Position, vp)
		}
		if l.Placed {
			t.Errorf("scattered light %v marked placed", l.Position)
		}
	}

	if got, want := g.MouseLight(), (r2.Vec{X: 400, Y: 300}); got != want {
		t.Errorf("MouseLight = %v, want %v", got, want)
	}
	if got, want := g.Intensities(), (systems.Intensities{Mouse: 1000, Light: 30, Car: 10}); got != want {
		t.Errorf("Intensities = %+v, want %+v", got, want)
	}
	if got := len(g.Tiles()); got != 51*39 {
		t.Errorf("got %d tiles, want %d", got, 51*39)
	}
	if g.Mode() != BuildInactive {
		t.Errorf("Mode = %v, want Inactive", g.Mode())
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Field.TileSize = 0
	if _, err := New(cfg, Options{Seed: 1}); !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("New with zero tile size: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("New(nil) succeeded")
	}
}

func TestResize_RescattersAndKeepsPlaced(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	placed := g.PlaceLightNear(r2.Vec{X: 10, Y: 10})

	if err := g.Resize(400, 300); err != nil {
		t.Fatalf("Resize: %v", err)
	}

	vp := g.Viewport()
	if vp != (systems.Viewport{Width: 400, Height: 300}) {
		t.Fatalf("Viewport = %v after resize", vp)
	}
	if got := g.LightCount(); got != 30+1 {
		t.Errorf("LightCount = %d, want 30 scattered + 1 placed", got)
	}
	if got := g.PlacedLightCount(); got != 1 {
		t.Errorf("PlacedLightCount = %d, want 1", got)
	}
	foundPlaced := false
	for _, l := range g.Lights() {
		if !vp.Contains(l.Position) {
			t.Errorf("light %v outside the new viewport", l.Position)
		}
		if l.Placed && l.Position == placed.Position {
			foundPlaced = true
		}
	}
	if !foundPlaced {
		t.Errorf("placed light at %v lost on resize", placed.Position)
	}
	// cols = 400/16 + 1, rows = 300/16 + 2
	if got := len(g.Tiles()); got != 26*20 {
		t.Errorf("got %d tiles, want %d", got, 26*20)
	}
}

func TestResize_RejectsDegenerate(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	before := g.LightCount()

	for _, size := range [][2]float64{{0, 300}, {400, -1}, {math.NaN(), 300}, {math.Inf(1), 300}} {
		if err := g.Resize(size[0], size[1]); !errors.Is(err, systems.ErrInvalidViewport) {
			t.Errorf("Resize(%v, %v): err = %v, want ErrInvalidViewport", size[0], size[1], err)
		}
	}
	if g.Viewport() != (systems.Viewport{Width: 800, Height: 600}) {
		t.Errorf("viewport changed to %v", g.Viewport())
	}
	if g.LightCount() != before {
		t.Errorf("LightCount = %d, want %d", g.LightCount(), before)
	}
}

func TestSetPointer(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	start := g.MouseLight()

	g.SetPointer(Pointer{Pos: r2.Vec{}, Present: false})
	if g.MouseLight() != start {
		t.Errorf("absent pointer moved the mouse light to %v", g.MouseLight())
	}

	g.SetPointer(Pointer{Pos: r2.Vec{}, Present: true})
	if g.MouseLight() != (r2.Vec{}) {
		t.Errorf("present pointer at origin left the mouse light at %v", g.MouseLight())
	}
}

func TestApply_SpawnAndReset(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	tests := []struct {
		name string
		in   Input
		want int
	}{
		{"spawn", Input{Spawn: true}, 2},
		{"spawn again", Input{Spawn: true}, 3},
		{"spawn wins over reset", Input{Spawn: true, Reset: true}, 4},
		{"idle", Input{}, 4},
		{"reset", Input{Reset: true}, 1},
		{"reset twice", Input{Reset: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.Apply(tt.in); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if got := g.AgentCount(); got != tt.want {
				t.Errorf("AgentCount = %d, want %d", got, tt.want)
			}
			if got := len(g.Agents()); got != tt.want {
				t.Errorf("len(Agents) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApply_Build(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	p := r2.Vec{X: -50, Y: 40}
	before := g.LightCount()

	// Button held without a pointer does nothing.
	if err := g.Apply(Input{Mode: BuildPlace, Build: true}); err != nil {
		t.Fatal(err)
	}
	if g.LightCount() != before {
		t.Fatalf("placed a light without a pointer")
	}

	if err := g.Apply(Input{Mode: BuildPlace, Build: true, Pointer: Pointer{Pos: p, Present: true}}); err != nil {
		t.Fatal(err)
	}
	if g.LightCount() != before+1 || g.PlacedLightCount() != 1 {
		t.Fatalf("LightCount = %d (placed %d), want %d (1)", g.LightCount(), g.PlacedLightCount(), before+1)
	}
	for _, l := range g.Lights() {
		if l.Placed && (math.Abs(l.Position.X-p.X) > 10 || math.Abs(l.Position.Y-p.Y) > 10) {
			t.Errorf("placed light %v more than 10 from %v", l.Position, p)
		}
	}
	if g.Mode() != BuildPlace {
		t.Errorf("Mode = %v, want Place", g.Mode())
	}

	// Inactive mode ignores the button.
	n := g.LightCount()
	if err := g.Apply(Input{Mode: BuildInactive, Build: true, Pointer: Pointer{Pos: p, Present: true}}); err != nil {
		t.Fatal(err)
	}
	if g.LightCount() != n {
		t.Errorf("inactive mode changed the light count")
	}

	if err := g.Apply(Input{Mode: BuildRemove, Build: true, Pointer: Pointer{Pos: p, Present: true}}); err != nil {
		t.Fatal(err)
	}
	for _, l := range g.Lights() {
		if r2.Norm2(r2.Sub(l.Position, p)) <= 50*50 {
			t.Errorf("light %v within 50 of %v survived removal", l.Position, p)
		}
	}
	if g.PlacedLightCount() != 0 {
		t.Errorf("placed light survived removal")
	}
}

func TestRemoveLightsNear_Count(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	p := r2.Vec{X: 100, Y: -100}

	want := 0
	for _, l := range g.Lights() {
		if r2.Norm2(r2.Sub(l.Position, p)) <= 50*50 {
			want++
		}
	}
	before := g.LightCount()
	if got := g.RemoveLightsNear(p); got != want {
		t.Errorf("RemoveLightsNear = %d, want %d", got, want)
	}
	if g.LightCount() != before-want {
		t.Errorf("LightCount = %d, want %d", g.LightCount(), before-want)
	}
	if got := g.RemoveLightsNear(p); got != 0 {
		t.Errorf("second RemoveLightsNear = %d, want 0", got)
	}
}

func TestPlaceLightNear_Clamps(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	tests := []struct {
		name string
		p    r2.Vec
		want r2.Vec
	}{
		{"top right", r2.Vec{X: 1000, Y: 1000}, r2.Vec{X: 400, Y: 300}},
		{"bottom left", r2.Vec{X: -1000, Y: -1000}, r2.Vec{X: -400, Y: -300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.PlaceLightNear(tt.p); got.Position != tt.want || !got.Placed {
				t.Errorf("PlaceLightNear(%v) = %+v, want placed at %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSetIntensities_RejectsInvalid(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	start := g.Intensities()

	for _, in := range []systems.Intensities{
		{Mouse: -1, Light: 30, Car: 10},
		{Mouse: 1000, Light: math.NaN(), Car: 10},
		{Mouse: 1000, Light: 30, Car: -0.5},
	} {
		if err := g.SetIntensities(in); !errors.Is(err, systems.ErrNegativeIntensity) {
			t.Errorf("SetIntensities(%+v): err = %v, want ErrNegativeIntensity", in, err)
		}
	}
	if g.Intensities() != start {
		t.Errorf("Intensities = %+v after rejected updates, want %+v", g.Intensities(), start)
	}

	next := systems.Intensities{Mouse: 0, Light: 100, Car: 0}
	if err := g.SetIntensities(next); err != nil {
		t.Fatalf("SetIntensities: %v", err)
	}
	if g.Intensities() != next {
		t.Errorf("Intensities = %+v, want %+v", g.Intensities(), next)
	}
}

func TestStep_RejectsBadDT(t *testing.T) {
	g := newTestGame(t, nil, Options{})

	for _, dt := range []float64{-frameDT, math.NaN(), math.Inf(1)} {
		if err := g.Step(dt); !errors.Is(err, systems.ErrNegativeDT) {
			t.Errorf("Step(%v): err = %v, want ErrNegativeDT", dt, err)
		}
		if err := g.Update(Input{Spawn: true}, dt); !errors.Is(err, systems.ErrNegativeDT) {
			t.Errorf("Update(%v): err = %v, want ErrNegativeDT", dt, err)
		}
	}
	if g.Tick() != 0 || g.AgentCount() != 1 {
		t.Errorf("tick %d, %d agents after rejected steps; want 0, 1", g.Tick(), g.AgentCount())
	}
}

func TestStep_CullsOutsideViewport(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	spawnAt(g, r2.Vec{X: 1000, Y: 0})
	if g.AgentCount() != 2 {
		t.Fatalf("AgentCount = %d, want 2", g.AgentCount())
	}

	if err := g.Step(frameDT); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if g.AgentCount() != 1 {
		t.Fatalf("AgentCount = %d after step, want 1", g.AgentCount())
	}
	for _, a := range g.Agents() {
		if !g.Viewport().Contains(a.Position) {
			t.Errorf("vehicle at %v survived outside the viewport", a.Position)
		}
	}
	if g.Tick() != 1 {
		t.Errorf("Tick = %d, want 1", g.Tick())
	}
}

func TestStep_SpeedCapped(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	g.SetPointer(Pointer{Pos: r2.Vec{X: 0.5}, Present: true})

	if err := g.Step(frameDT); err != nil {
		t.Fatalf("Step: %v", err)
	}
	maxSpeed := g.Config().Dynamics.MaxSpeed
	for _, a := range g.Agents() {
		if s := r2.Norm(a.Velocity); s > maxSpeed+1e-9 {
			t.Errorf("speed %v above cap %v", s, maxSpeed)
		}
	}
}

// TestStep_SameAcrossSchedulers runs one scene under every scheduler and
// partition and expects bit-identical vehicles and tiles.
func TestStep_SameAcrossSchedulers(t *testing.T) {
	type variant struct{ scheduler, partition string }
	variants := []variant{
		{"serial", "column"},
		{"pool", "column"},
		{"pool", "row"},
		{"group", "cell"},
	}

	run := func(t *testing.T, v variant) *Game {
		g := newTestGame(t, func(c *config.Config) {
			c.Field.Scheduler = v.scheduler
			c.Field.Partition = v.partition
			c.Field.Workers = 4
			c.Field.ParallelThreshold = 1
		}, Options{Seed: 99})

		rng := rand.New(rand.NewSource(5))
		for range 40 {
			spawnAt(g, r2.Vec{X: (rng.Float64() - 0.5) * 700, Y: (rng.Float64() - 0.5) * 500})
		}
		g.SetPointer(Pointer{Pos: r2.Vec{X: 30, Y: -20}, Present: true})
		for range 20 {
			if err := g.Step(frameDT); err != nil {
				t.Fatalf("Step: %v", err)
			}
		}
		return g
	}

	base := run(t, variants[0])
	wantAgents := base.Agents()
	wantTiles := append([]systems.Tile(nil), base.Tiles()...)

	for _, v := range variants[1:] {
		t.Run(v.scheduler+"/"+v.partition, func(t *testing.T) {
			g := run(t, v)
			agents := g.Agents()
			if len(agents) != len(wantAgents) {
				t.Fatalf("got %d agents, want %d", len(agents), len(wantAgents))
			}
			for i := range agents {
				if agents[i] != wantAgents[i] {
					t.Errorf("agent %d = %+v, want %+v", i, agents[i], wantAgents[i])
				}
			}
			tiles := g.Tiles()
			if len(tiles) != len(wantTiles) {
				t.Fatalf("got %d tiles, want %d", len(tiles), len(wantTiles))
			}
			for i := range tiles {
				if tiles[i] != wantTiles[i] {
					t.Fatalf("tile %d = %+v, want %+v", i, tiles[i], wantTiles[i])
				}
			}
		})
	}
}

func TestStep_FlushesTelemetry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	var windows []telemetry.WindowStats
	g := newTestGame(t, func(c *config.Config) {
		c.Dynamics.DT = 0.125
		c.Telemetry.StatsWindow = 1.25
	}, Options{
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for range 10 {
		if err := g.Step(0.125); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if len(windows) != 1 {
		t.Fatalf("got %d windows after 10 ticks, want 1", len(windows))
	}
	w := windows[0]
	if w.WindowEndTick != 10 || w.Agents != 1 || w.Spawned != 1 || w.Lights != 120 {
		t.Errorf("window = %+v, want end 10, 1 agent, 1 spawn, 120 lights", w)
	}
	if !(w.RedMax > 0) || !(w.BlueMax > 0) {
		t.Errorf("field summary red max %v, blue max %v; want positive", w.RedMax, w.BlueMax)
	}

	if w.SimTimeSec != 1.25 {
		t.Errorf("window sim time = %v, want 1.25", w.SimTimeSec)
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "frames.csv"))
	if err != nil {
		t.Fatalf("reading frames.csv: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 2 {
		t.Errorf("frames.csv has %d lines, want header + 1", len(lines))
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}

func TestStep_WindowsFollowSteppedTime(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newTestGame(t, func(c *config.Config) {
		c.Dynamics.DT = 0.125
		c.Telemetry.StatsWindow = 1
	}, Options{
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	// Frames twice as long as dynamics.dt close the window in half the ticks.
	for range 4 {
		if err := g.Step(0.25); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if len(windows) != 1 {
		t.Fatalf("got %d windows after 1s of 0.25s steps, want 1", len(windows))
	}
	if w := windows[0]; w.WindowEndTick != 4 || w.SimTimeSec != 1 {
		t.Errorf("window ends at tick %d, %vs; want 4, 1s", w.WindowEndTick, w.SimTimeSec)
	}
	if g.SimTime() != 1 {
		t.Errorf("SimTime = %v, want 1", g.SimTime())
	}
}

func TestStep_CullLifetimeUsesSteppedTime(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newTestGame(t, func(c *config.Config) {
		c.Telemetry.StatsWindow = 1
	}, Options{
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	if err := g.Step(0.5); err != nil {
		t.Fatalf("Step: %v", err)
	}
	spawnAt(g, r2.Vec{X: 1000, Y: 0})
	if err := g.Step(0.5); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	// Born at 0.5s, culled at the end of the step that reached 1s.
	if w := windows[0]; w.Culled != 1 || w.LifetimeMean != 0.5 {
		t.Errorf("culled %d with mean lifetime %v, want 1 and 0.5", w.Culled, w.LifetimeMean)
	}
}

func TestUpdate_AppliesResize(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	spawnAt(g, r2.Vec{X: 350, Y: 0})

	in := Input{Resize: &systems.Viewport{Width: 400, Height: 300}}
	if err := g.Update(in, frameDT); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if g.Viewport() != *in.Resize {
		t.Errorf("Viewport = %v, want %v", g.Viewport(), *in.Resize)
	}
	// The vehicle at x=350 is outside the new 200 half-width.
	if g.AgentCount() != 1 {
		t.Errorf("AgentCount = %d, want 1", g.AgentCount())
	}

	bad := Input{Resize: &systems.Viewport{Width: 0, Height: 300}}
	if err := g.Update(bad, frameDT); !errors.Is(err, systems.ErrInvalidViewport) {
		t.Errorf("Update with bad resize: err = %v, want ErrInvalidViewport", err)
	}
}

func TestUpdate_RejectedResizeKeepsFrame(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	vp := g.Viewport()
	p := r2.Vec{X: 40, Y: -30}

	in := Input{
		Spawn:   true,
		Pointer: Pointer{Pos: p, Present: true},
		Resize:  &systems.Viewport{Width: 0, Height: 0},
	}
	if err := g.Update(in, frameDT); !errors.Is(err, systems.ErrInvalidViewport) {
		t.Fatalf("Update: err = %v, want ErrInvalidViewport", err)
	}

	if g.Viewport() != vp {
		t.Errorf("Viewport = %v, want unchanged %v", g.Viewport(), vp)
	}
	if g.AgentCount() != 2 {
		t.Errorf("AgentCount = %d, want 2 (spawn still applied)", g.AgentCount())
	}
	if g.MouseLight() != p {
		t.Errorf("MouseLight = %v, want %v", g.MouseLight(), p)
	}
	if g.Tick() != 1 {
		t.Errorf("Tick = %d, want 1 (step still ran)", g.Tick())
	}
}

func TestFrame(t *testing.T) {
	g := newTestGame(t, nil, Options{})
	g.SetMode(BuildRemove)
	f := g.Frame()

	if len(f.Agents) != 1 || len(f.Lights) != 120 {
		t.Errorf("frame has %d agents and %d lights, want 1 and 120", len(f.Agents), len(f.Lights))
	}
	if f.TileSize != 16 || len(f.Tiles) != 51*39 {
		t.Errorf("frame tiles %d of size %v", len(f.Tiles), f.TileSize)
	}
	if f.Mode != BuildRemove || f.MouseLight != g.MouseLight() || f.Viewport != g.Viewport() {
		t.Errorf("frame = %+v out of step with the game", f)
	}
}

func TestBuildMode_String(t *testing.T) {
	tests := []struct {
		m    BuildMode
		want string
	}{
		{BuildInactive, "Inactive"},
		{BuildPlace, "Place"},
		{BuildRemove, "Remove"},
		{BuildMode(9), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("BuildMode(%d).String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}
