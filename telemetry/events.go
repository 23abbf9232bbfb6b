// Package telemetry provides frame timing, windowed scene statistics,
// bookmarks and CSV output for a vehicles run.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventCull
	EventReset
	EventResize
	EventLightPlaced
	EventLightsRemoved
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventCull:
		return "cull"
	case EventReset:
		return "reset"
	case EventResize:
		return "resize"
	case EventLightPlaced:
		return "light_placed"
	case EventLightsRemoved:
		return "lights_removed"
	default:
		return "unknown"
	}
}

// Event represents a single telemetry event.
type Event struct {
	Type      EventType
	Tick      int64
	VehicleID uint32 // spawn and cull events

	// Optional fields depending on event type
	Count    int     // lights removed
	Lifetime float64 // seconds a culled vehicle survived
}

// NewSpawnEvent creates a vehicle spawn event.
func NewSpawnEvent(tick int64, vehicleID uint32) Event {
	return Event{Type: EventSpawn, Tick: tick, VehicleID: vehicleID}
}

// NewCullEvent creates an event for a vehicle that left the viewport.
func NewCullEvent(tick int64, vehicleID uint32, lifetime float64) Event {
	return Event{Type: EventCull, Tick: tick, VehicleID: vehicleID, Lifetime: lifetime}
}

// NewResetEvent creates a population reset event.
func NewResetEvent(tick int64) Event {
	return Event{Type: EventReset, Tick: tick}
}

// NewResizeEvent creates a viewport resize event.
func NewResizeEvent(tick int64) Event {
	return Event{Type: EventResize, Tick: tick}
}

// NewLightPlacedEvent creates an event for one user-placed light.
func NewLightPlacedEvent(tick int64) Event {
	return Event{Type: EventLightPlaced, Tick: tick, Count: 1}
}

// NewLightsRemovedEvent creates an event for n lights removed at once.
func NewLightsRemovedEvent(tick int64, n int) Event {
	return Event{Type: EventLightsRemoved, Tick: tick, Count: n}
}
