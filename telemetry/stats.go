package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Vehicle population: at window end, and per-tick mean and max
	Agents     int     `csv:"agents"`
	AgentsMean float64 `csv:"agents_mean"`
	AgentsMax  int     `csv:"agents_max"`

	// Lights at window end
	Lights       int `csv:"lights"`
	PlacedLights int `csv:"placed_lights"`

	// Events during window
	Spawned       int `csv:"spawned"`
	Culled        int `csv:"culled"`
	Resets        int `csv:"resets"`
	Resizes       int `csv:"resizes"`
	LightsPlaced  int `csv:"lights_placed"`
	LightsRemoved int `csv:"lights_removed"`

	// Seconds culled vehicles survived
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeP90  float64 `csv:"lifetime_p90"`

	// Vehicle speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Unclamped field channels over all tiles (sampled at window end)
	RedMean  float64 `csv:"red_mean"`
	RedMax   float64 `csv:"red_max"`
	BlueMean float64 `csv:"blue_mean"`
	BlueMax  float64 `csv:"blue_max"`
}

// Summarize returns the mean, median and 90th percentile of values using the
// empirical quantile. It returns zeros for an empty slice and leaves values
// untouched.
func Summarize(values []float64) (mean, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return mean, p50, p90
}

// MeanMax returns the mean and maximum of values, or zeros if empty.
func MeanMax(values []float64) (mean, maxV float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.Mean(values, nil), floats.Max(values)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Float64("agents_mean", s.AgentsMean),
		slog.Int("agents_max", s.AgentsMax),
		slog.Int("lights", s.Lights),
		slog.Int("placed_lights", s.PlacedLights),
		slog.Int("spawned", s.Spawned),
		slog.Int("culled", s.Culled),
		slog.Int("resets", s.Resets),
		slog.Int("resizes", s.Resizes),
		slog.Int("lights_placed", s.LightsPlaced),
		slog.Int("lights_removed", s.LightsRemoved),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("lifetime_p90", s.LifetimeP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("red_mean", s.RedMean),
		slog.Float64("red_max", s.RedMax),
		slog.Float64("blue_mean", s.BlueMean),
		slog.Float64("blue_max", s.BlueMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
