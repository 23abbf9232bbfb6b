package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/vehicles/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Agents       int
	Lights       int
	PlacedLights int
	Tick         int64
	FPS          int32
	Mode         string
}

// HUD renders the main heads-up display in the top-right corner.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(screenWidth int32, data HUDData) {
	lines := []string{
		fmt.Sprintf("FPS: %d | Tick: %d", data.FPS, data.Tick),
		fmt.Sprintf("Vehicles: %d", data.Agents),
		fmt.Sprintf("Lights: %d (%d placed)", data.Lights, data.PlacedLights),
		fmt.Sprintf("Build: %s", data.Mode),
	}
	y := int32(10)
	for _, line := range lines {
		w := rl.MeasureText(line, 16)
		rl.DrawText(line, screenWidth-w-10, y, 16, rl.LightGray)
		y += 20
	}
}

// ControlsLegend is the key help shown at the bottom of the screen.
const ControlsLegend = "[Space] spawn  [R] reset  [LMB] place/remove  [F/H/V/L/P] overlays"

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s", stats.AvgTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range telemetry.Phases {
		avg := stats.PhaseAvg[name]
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
