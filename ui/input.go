package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/vehicles/camera"
	"github.com/pthm-cable/vehicles/game"
	"github.com/pthm-cable/vehicles/systems"
)

// PollInput reads this frame's keyboard, mouse and window state into a
// game.Input. A new window size is applied to cam first so the pointer maps
// through it. A minimised window reports no size and is ignored. Left clicks
// over the settings panel are left to the panel and never build.
func PollInput(cam *camera.Camera, panel *SettingsPanel) game.Input {
	in := game.Input{
		Spawn: rl.IsKeyDown(rl.KeySpace) || panel.takeSpawn(),
		Reset: rl.IsKeyPressed(rl.KeyR) || panel.takeReset(),
		Mode:  panel.Mode(),
	}

	if !rl.IsWindowMinimized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		if cam.Sync(w, h) {
			in.Resize = &systems.Viewport{Width: float64(w), Height: float64(h)}
		}
	}

	mouse := rl.GetMousePosition()
	if rl.IsCursorOnScreen() {
		in.Pointer = game.Pointer{Pos: cam.ScreenToWorld(mouse.X, mouse.Y), Present: true}
	}
	in.Build = rl.IsMouseButtonDown(rl.MouseLeftButton) &&
		!rl.CheckCollisionPointRec(mouse, panel.Bounds())

	return in
}
