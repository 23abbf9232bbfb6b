// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/vehicles/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Dynamics  DynamicsConfig  `yaml:"dynamics"`
	Field     FieldConfig     `yaml:"field"`
	Lights    LightsConfig    `yaml:"lights"`
	Intensity IntensityConfig `yaml:"intensity"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int  `yaml:"width"`
	Height    int  `yaml:"height"`
	TargetFPS int  `yaml:"target_fps"`
	Resizable bool `yaml:"resizable"`
}

// DynamicsConfig holds the vehicle motion constants.
type DynamicsConfig struct {
	DT          float64 `yaml:"dt"`
	ForceScale  float64 `yaml:"force_scale"`
	MaxSpeed    float64 `yaml:"max_speed"`
	MinDistance float64 `yaml:"min_distance"`
}

// FieldConfig holds tile grid and scheduling parameters.
type FieldConfig struct {
	TileSize          float64 `yaml:"tile_size"`
	Gain              float64 `yaml:"gain"`
	CenterBias        float64 `yaml:"center_bias"`
	Partition         string  `yaml:"partition"`
	Scheduler         string  `yaml:"scheduler"`
	Workers           int     `yaml:"workers"`
	ParallelThreshold int     `yaml:"parallel_threshold"`
}

// LightsConfig holds light placement parameters.
type LightsConfig struct {
	AreaPerLight  float64 `yaml:"area_per_light"`
	PlaceJitter   float64 `yaml:"place_jitter"`
	RemoveRadius  float64 `yaml:"remove_radius"`
	IndexCellSize float64 `yaml:"index_cell_size"`
	Scatter       string  `yaml:"scatter"`
	NoiseScale    float64 `yaml:"noise_scale"`
	NoiseSeed     int64   `yaml:"noise_seed"`
}

// IntensityConfig holds the starting intensities and the slider ranges.
type IntensityConfig struct {
	Mouse    float64 `yaml:"mouse"`
	Light    float64 `yaml:"light"`
	Car      float64 `yaml:"car"`
	MouseMax float64 `yaml:"mouse_max"`
	LightMax float64 `yaml:"light_max"`
	CarMax   float64 `yaml:"car_max"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Viewport    systems.Viewport
	Intensities systems.Intensities
	Dynamics    systems.DynamicsParams
	Field       systems.FieldParams
	Scatter     systems.ScatterMode
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not load,
// which only happens when defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values.
// Call it again after changing fields by hand.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return c.computeDerived()
}

// Validate rejects values that would otherwise surface as NaNs or empty grids.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Screen.Width > 0 && c.Screen.Height > 0, "screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	check(c.Screen.TargetFPS >= 0, "screen.target_fps %d is negative", c.Screen.TargetFPS)

	check(c.Dynamics.DT > 0, "dynamics.dt %v must be positive", c.Dynamics.DT)
	check(c.Dynamics.ForceScale >= 0, "dynamics.force_scale %v is negative", c.Dynamics.ForceScale)
	check(c.Dynamics.MaxSpeed > 0, "dynamics.max_speed %v must be positive", c.Dynamics.MaxSpeed)
	check(c.Dynamics.MinDistance > 0 && !math.IsInf(c.Dynamics.MinDistance, 0), "dynamics.min_distance %v must be positive and finite", c.Dynamics.MinDistance)

	check(c.Field.TileSize > 0, "field.tile_size %v must be positive", c.Field.TileSize)
	check(c.Field.Gain >= 0, "field.gain %v is negative", c.Field.Gain)
	check(c.Field.Workers >= 0, "field.workers %d is negative", c.Field.Workers)
	if _, err := systems.ParsePartition(c.Field.Partition); err != nil {
		errs = append(errs, err)
	}
	switch c.Field.Scheduler {
	case "pool", "group", "serial":
	default:
		errs = append(errs, fmt.Errorf("field.scheduler %q is not one of pool, group, serial", c.Field.Scheduler))
	}

	check(c.Lights.AreaPerLight > 0, "lights.area_per_light %v must be positive", c.Lights.AreaPerLight)
	check(c.Lights.PlaceJitter >= 0, "lights.place_jitter %v is negative", c.Lights.PlaceJitter)
	check(c.Lights.RemoveRadius >= 0, "lights.remove_radius %v is negative", c.Lights.RemoveRadius)
	check(c.Lights.IndexCellSize > 0, "lights.index_cell_size %v must be positive", c.Lights.IndexCellSize)
	if _, err := systems.ParseScatterMode(c.Lights.Scatter); err != nil {
		errs = append(errs, err)
	}

	check(c.Intensity.Mouse >= 0, "intensity.mouse %v is negative", c.Intensity.Mouse)
	check(c.Intensity.Light >= 0, "intensity.light %v is negative", c.Intensity.Light)
	check(c.Intensity.Car >= 0, "intensity.car %v is negative", c.Intensity.Car)
	check(c.Intensity.MouseMax >= c.Intensity.Mouse, "intensity.mouse_max %v below mouse %v", c.Intensity.MouseMax, c.Intensity.Mouse)
	check(c.Intensity.LightMax >= c.Intensity.Light, "intensity.light_max %v below light %v", c.Intensity.LightMax, c.Intensity.Light)
	check(c.Intensity.CarMax >= c.Intensity.Car, "intensity.car_max %v below car %v", c.Intensity.CarMax, c.Intensity.Car)

	check(c.Telemetry.StatsWindow > 0, "telemetry.stats_window %v must be positive", c.Telemetry.StatsWindow)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	partition, err := systems.ParsePartition(c.Field.Partition)
	if err != nil {
		return err
	}
	scatter, err := systems.ParseScatterMode(c.Lights.Scatter)
	if err != nil {
		return err
	}

	force := systems.ForceParams{
		Scale:       c.Dynamics.ForceScale,
		MinDistance: c.Dynamics.MinDistance,
	}

	c.Derived = DerivedConfig{
		Viewport: systems.Viewport{
			Width:  float64(c.Screen.Width),
			Height: float64(c.Screen.Height),
		},
		Intensities: systems.Intensities{
			Mouse: c.Intensity.Mouse,
			Light: c.Intensity.Light,
			Car:   c.Intensity.Car,
		},
		Dynamics: systems.DynamicsParams{
			Force:    force,
			MaxSpeed: c.Dynamics.MaxSpeed,
		},
		Field: systems.FieldParams{
			TileSize:    c.Field.TileSize,
			Gain:        c.Field.Gain,
			CenterBias:  c.Field.CenterBias,
			MinDistance: c.Dynamics.MinDistance,
			Partition:   partition,
		},
		Scatter: scatter,
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
