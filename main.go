package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/vehicles/camera"
	"github.com/pthm-cable/vehicles/config"
	"github.com/pthm-cable/vehicles/game"
	"github.com/pthm-cable/vehicles/renderer"
	"github.com/pthm-cable/vehicles/systems"
	"github.com/pthm-cable/vehicles/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	opts := game.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}

	if *headless {
		runHeadless(cfg, opts, *maxTicks)
		return
	}
	runWindowed(cfg, opts, *maxTicks)
}

// runHeadless steps the simulation at the configured fixed dt with no input.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int) {
	g, err := game.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"dt", cfg.Dynamics.DT,
		"max_ticks", maxTicks,
	)

	for {
		if err := g.Step(cfg.Dynamics.DT); err != nil {
			slog.Error("step failed", "error", err)
			return
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return
		}
	}
}

func runWindowed(cfg *config.Config, opts game.Options, maxTicks int) {
	if cfg.Screen.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable)
	}
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Vehicles")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Close()

	cam := camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height))
	overlays := ui.NewOverlayRegistry()
	panel := ui.NewSettingsPanel(10, 10, 220, g.Intensities(), ui.SliderRange{
		Mouse: cfg.Intensity.MouseMax,
		Light: cfg.Intensity.LightMax,
		Car:   cfg.Intensity.CarMax,
	})
	hud := ui.NewHUD()
	perfPanel := ui.NewPerfPanel(10, 0)

	field := renderer.NewFieldRenderer()
	vehicles := renderer.NewVehicleRenderer()
	lights := renderer.NewLightRenderer()

	for !rl.WindowShouldClose() {
		overlays.HandleKeyPress(rl.GetKeyPressed())

		if in, changed := panel.TakeIntensities(); changed {
			if err := g.SetIntensities(in); err != nil {
				slog.Warn("intensities rejected", "error", err)
			}
		}
		if err := g.Update(ui.PollInput(cam, panel), float64(rl.GetFrameTime())); err != nil {
			if !errors.Is(err, systems.ErrInvalidViewport) {
				slog.Error("update failed", "error", err)
				return
			}
			slog.Warn("resize rejected", "error", err)
		}
		g.Perf().RecordFrame()

		frame := g.Frame()
		screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		if overlays.IsEnabled(ui.OverlayField) {
			field.Draw(cam, frame.Tiles, frame.TileSize)
		}
		lights.ShowPlacement = overlays.IsEnabled(ui.OverlayPlacedLights)
		lights.Draw(cam, frame.Lights)
		vehicles.Draw(cam, frame.Agents)
		if overlays.IsEnabled(ui.OverlayVelocity) {
			vehicles.DrawVelocities(cam, frame.Agents)
		}
		lights.DrawMouse(cam, frame.MouseLight)

		panel.Draw(overlays)
		hud.Draw(screenW, ui.HUDData{
			Agents:       len(frame.Agents),
			Lights:       len(frame.Lights),
			PlacedLights: g.PlacedLightCount(),
			Tick:         g.Tick(),
			FPS:          rl.GetFPS(),
			Mode:         frame.Mode.String(),
		})
		if overlays.IsEnabled(ui.OverlayPerf) {
			perfPanel.SetPosition(screenW-230, 100)
			perfPanel.Draw(g.Perf().Stats())
		}
		if overlays.IsEnabled(ui.OverlayHelp) {
			hud.DrawControls(screenH, ui.ControlsLegend)
		}

		rl.EndDrawing()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
}
