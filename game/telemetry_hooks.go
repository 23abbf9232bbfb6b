package game

import (
	"log/slog"

	"github.com/pthm-cable/vehicles/telemetry"
)

// flushTelemetry closes the stats window when it is due and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.simTime) {
		return
	}

	red := make([]float64, len(g.tiles))
	blue := make([]float64, len(g.tiles))
	for i, t := range g.tiles {
		red[i] = t.Color.R
		blue[i] = t.Color.B
	}

	stats := g.collector.Flush(g.tick, g.simTime, telemetry.Sample{
		Agents:       g.agentCount,
		Lights:       g.lights.Len(),
		PlacedLights: g.lights.PlacedCount(),
		Speeds:       g.speeds(),
		Red:          red,
		Blue:         blue,
	})
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
