package ui

import (
	"fmt"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/vehicles/game"
	"github.com/pthm-cable/vehicles/systems"
)

// SliderRange is the upper end of each intensity slider. All sliders start at zero.
type SliderRange struct {
	Mouse, Light, Car float64
}

// SettingsPanel is the raygui panel in the top-left corner: three intensity
// sliders, the build mode toggle, spawn and reset buttons and the overlay list.
type SettingsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32

	ranges      SliderRange
	intensities systems.Intensities
	mode        game.BuildMode
	changed     bool
	spawn       bool
	reset       bool
}

// NewSettingsPanel creates a panel showing the given starting intensities.
func NewSettingsPanel(x, y, width int32, initial systems.Intensities, ranges SliderRange) *SettingsPanel {
	return &SettingsPanel{
		renderer:    NewRenderer(),
		x:           x,
		y:           y,
		width:       width,
		ranges:      ranges,
		intensities: initial,
	}
}

// Bounds returns the screen area covered by the panel after the last Draw.
// Clicks inside it never reach the world.
func (p *SettingsPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{
		X:      float32(p.x),
		Y:      float32(p.y),
		Width:  float32(p.width),
		Height: float32(p.height),
	}
}

// Mode returns the selected build mode.
func (p *SettingsPanel) Mode() game.BuildMode {
	return p.mode
}

// TakeIntensities returns the slider values and whether they moved since the
// last call.
func (p *SettingsPanel) TakeIntensities() (systems.Intensities, bool) {
	changed := p.changed
	p.changed = false
	return p.intensities, changed
}

// takeSpawn reports and clears a Spawn button click.
func (p *SettingsPanel) takeSpawn() bool {
	v := p.spawn
	p.spawn = false
	return v
}

// takeReset reports and clears a Reset button click.
func (p *SettingsPanel) takeReset() bool {
	v := p.reset
	p.reset = false
	return v
}

// Draw renders the panel and records any widget changes. Must run between
// BeginDrawing and EndDrawing.
func (p *SettingsPanel) Draw(overlays *OverlayRegistry) {
	r := p.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	if p.height > 0 {
		r.DrawPanel(p.x, p.y, p.width, p.height)
	}

	x := float32(p.x + padding)
	y := p.y + padding
	w := float32(p.width - padding*2)

	rl.DrawText("Settings", p.x+padding, y, 16, rl.White)
	y += lineHeight + 6

	y = p.slider(x, y, w, "Mouse", &p.intensities.Mouse, p.ranges.Mouse)
	y = p.slider(x, y, w, "Lights", &p.intensities.Light, p.ranges.Light)
	y = p.slider(x, y, w, "Vehicles", &p.intensities.Car, p.ranges.Car)

	y = r.DrawSectionHeader(p.x+padding, y+4, "Build")
	active := gui.ToggleGroup(
		rl.Rectangle{X: x, Y: float32(y), Width: w / 3, Height: 20},
		strings.Join(game.BuildModeNames(), ";"),
		int32(p.mode),
	)
	p.mode = game.BuildMode(active)
	y += 28

	half := (w - 8) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, "Spawn") {
		p.spawn = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: float32(y), Width: half, Height: 24}, "Reset") {
		p.reset = true
	}
	y += 32

	if overlays != nil {
		for _, category := range overlays.Categories() {
			y = r.DrawSectionHeader(p.x+padding, y, categoryLabel(category))
			for _, desc := range overlays.ByCategory(category) {
				p.drawToggle(p.x+padding, y, desc, overlays.IsEnabled(desc.ID), p.width-padding*2)
				y += lineHeight
			}
			y += 4
		}
	}

	p.height = y - p.y + padding
}

// slider draws one labelled intensity slider and returns the next Y.
func (p *SettingsPanel) slider(x float32, y int32, w float32, label string, v *float64, maxV float64) int32 {
	r := p.renderer
	r.DrawLabel(int32(x), y, label)
	rl.DrawText(fmt.Sprintf("%.0f", *v), int32(x+w)-40, y, r.Theme.FontSize, r.Theme.ValueColor)
	y += r.Theme.LineHeight - 2

	newV := gui.SliderBar(
		rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 16},
		"", "",
		float32(*v), 0, float32(maxV),
	)
	if newV != float32(*v) {
		*v = float64(newV)
		p.changed = true
	}
	return y + 24
}

// drawToggle draws a single overlay toggle line.
func (p *SettingsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := p.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
