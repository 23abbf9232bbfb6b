package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/vehicles/systems"
)

// Pointer is the pointer state for one frame, in world coordinates.
// Pos is meaningless when Present is false.
type Pointer struct {
	Pos     r2.Vec
	Present bool
}

// BuildMode selects what a held pointer button does to the lights.
type BuildMode uint8

const (
	BuildInactive BuildMode = iota
	BuildPlace
	BuildRemove
)

// BuildModeNames returns the display names for all build modes.
// The order matches the BuildMode constants.
func BuildModeNames() []string {
	return []string{"Inactive", "Place", "Remove"}
}

func (m BuildMode) String() string {
	names := BuildModeNames()
	if int(m) < len(names) {
		return names[m]
	}
	return "Unknown"
}

// Input is one frame of host input.
type Input struct {
	Pointer Pointer
	Spawn   bool // spawn one vehicle at the origin
	Reset   bool // back to a single vehicle; ignored when Spawn is set
	Mode    BuildMode
	Build   bool // pointer button held over the world

	// Resize is the new window size, or nil when it did not change.
	Resize *systems.Viewport
}

// SetPointer moves the mouse light to the pointer, if the pointer is present.
// An absent pointer leaves the mouse light where it was.
func (g *Game) SetPointer(p Pointer) {
	if p.Present {
		g.mouseLight = p.Pos
	}
}

// Apply applies one frame of host input, in the order resize, pointer,
// vehicle actions, build action. A rejected resize leaves the viewport as it
// was; the rest of the input is still applied and the resize error returned.
func (g *Game) Apply(in Input) error {
	var resizeErr error
	if in.Resize != nil {
		resizeErr = g.Resize(in.Resize.Width, in.Resize.Height)
	}

	g.SetPointer(in.Pointer)

	if in.Spawn {
		g.SpawnAgent()
	} else if in.Reset {
		g.ResetAgents()
	}

	g.mode = in.Mode
	if in.Build && in.Pointer.Present {
		switch in.Mode {
		case BuildPlace:
			g.PlaceLightNear(in.Pointer.Pos)
		case BuildRemove:
			g.RemoveLightsNear(in.Pointer.Pos)
		}
	}
	return resizeErr
}
