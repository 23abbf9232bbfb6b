package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/vehicles/systems"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Screen.Width != 800 || cfg.Screen.Height != 600 {
		t.Errorf("screen = %dx%d, want 800x600", cfg.Screen.Width, cfg.Screen.Height)
	}
	if got, want := cfg.Derived.Viewport, (systems.Viewport{Width: 800, Height: 600}); got != want {
		t.Errorf("Derived.Viewport = %v, want %v", got, want)
	}
	if got, want := cfg.Derived.Intensities, (systems.Intensities{Mouse: 1000, Light: 30, Car: 10}); got != want {
		t.Errorf("Derived.Intensities = %+v, want %+v", got, want)
	}
	if cfg.Intensity.MouseMax != 5000 || cfg.Intensity.LightMax != 100 || cfg.Intensity.CarMax != 100 {
		t.Errorf("slider maxima = %v/%v/%v, want 5000/100/100",
			cfg.Intensity.MouseMax, cfg.Intensity.LightMax, cfg.Intensity.CarMax)
	}
	if cfg.Derived.Dynamics.MaxSpeed != 200 || cfg.Derived.Dynamics.Force.MinDistance != 1 {
		t.Errorf("Derived.Dynamics = %+v", cfg.Derived.Dynamics)
	}
	if cfg.Derived.Field.TileSize != 16 || cfg.Derived.Field.Partition != systems.PartitionColumn {
		t.Errorf("Derived.Field = %+v", cfg.Derived.Field)
	}
	if cfg.Derived.Scatter != systems.ScatterUniform {
		t.Errorf("Derived.Scatter = %v, want uniform", cfg.Derived.Scatter)
	}
	if cfg.Lights.PlaceJitter != 10 || cfg.Lights.RemoveRadius != 50 || cfg.Lights.AreaPerLight != 4000 {
		t.Errorf("lights = %+v", cfg.Lights)
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := writeFile(t, "config.yaml", `
screen:
  width: 400
field:
  partition: cell
  scheduler: group
intensity:
  car: 50
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Screen.Width != 400 || cfg.Screen.Height != 600 {
		t.Errorf("screen = %dx%d, want 400x600 (height from defaults)", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Derived.Viewport.Width != 400 {
		t.Errorf("Derived.Viewport.Width = %v, want 400", cfg.Derived.Viewport.Width)
	}
	if cfg.Derived.Field.Partition != systems.PartitionCell || cfg.Field.Scheduler != "group" {
		t.Errorf("field = %+v", cfg.Field)
	}
	if cfg.Derived.Intensities.Car != 50 || cfg.Derived.Intensities.Light != 30 {
		t.Errorf("Derived.Intensities = %+v, want car 50 and default light", cfg.Derived.Intensities)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "screen: [")); err == nil {
		t.Error("Load of malformed YAML succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Screen.Width = 0 }},
		{"zero dt", func(c *Config) { c.Dynamics.DT = 0 }},
		{"zero max speed", func(c *Config) { c.Dynamics.MaxSpeed = 0 }},
		{"zero min distance", func(c *Config) { c.Dynamics.MinDistance = 0 }},
		{"negative min distance", func(c *Config) { c.Dynamics.MinDistance = -1 }},
		{"infinite min distance", func(c *Config) { c.Dynamics.MinDistance = math.Inf(1) }},
		{"zero tile size", func(c *Config) { c.Field.TileSize = 0 }},
		{"negative workers", func(c *Config) { c.Field.Workers = -1 }},
		{"unknown partition", func(c *Config) { c.Field.Partition = "diagonal" }},
		{"unknown scheduler", func(c *Config) { c.Field.Scheduler = "threads" }},
		{"unknown scatter", func(c *Config) { c.Lights.Scatter = "poisson" }},
		{"zero area per light", func(c *Config) { c.Lights.AreaPerLight = 0 }},
		{"negative intensity", func(c *Config) { c.Intensity.Light = -1 }},
		{"max below start", func(c *Config) { c.Intensity.MouseMax = 10 }},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate: err = %v, want ErrInvalidConfig", err)
			}
			if err := cfg.Finalize(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Finalize: err = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults fail validation: %v", err)
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "dynamics:\n  max_speed: -5\n")
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Load: err = %v, want ErrInvalidConfig", err)
	}
}

func TestFinalize_RecomputesDerived(t *testing.T) {
	cfg := Default()
	cfg.Screen.Width = 1024
	cfg.Intensity.Mouse = 0
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Derived.Viewport.Width != 1024 || cfg.Derived.Intensities.Mouse != 0 {
		t.Errorf("Derived = %+v, want width 1024 and mouse 0", cfg.Derived)
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Field.Scheduler = "serial"
	cfg.Lights.NoiseSeed = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Field != cfg.Field || loaded.Lights != cfg.Lights || loaded.Intensity != cfg.Intensity {
		t.Errorf("round trip changed the config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestCfg(t *testing.T) {
	old := global
	t.Cleanup(func() { global = old })

	global = nil
	defer func() {
		if recover() == nil {
			t.Error("Cfg before Init did not panic")
		}
	}()

	if err := Init(""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Cfg().Screen.Width != 800 {
		t.Errorf("Cfg().Screen.Width = %d", Cfg().Screen.Width)
	}
	global = nil
	Cfg()
}
