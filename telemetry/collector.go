package telemetry

// Sample is the scene state read when a window is flushed.
type Sample struct {
	Agents       int
	Lights       int
	PlacedLights int
	Speeds       []float64 // one per vehicle
	Red, Blue    []float64 // one per tile
}

// Collector accumulates events within windows of simulated time and produces
// WindowStats. Time is whatever the caller stepped by, so windows stay the
// same length when dt varies from frame to frame.
type Collector struct {
	windowDuration float64

	windowStartTick int64
	windowStartTime float64

	// Event counters for the current window
	spawned       int
	culled        int
	resets        int
	resizes       int
	lightsPlaced  int
	lightsRemoved int
	lifetimes     []float64

	// Per-tick agent counts
	agentTicks int
	agentSum   int
	agentMax   int
}

// windowSlack absorbs rounding in a sum of many small time steps, so that
// 300 steps of 1/60 close a 5 second window.
const windowSlack = 1e-9

// NewCollector creates a stats collector whose windows last windowDurationSec
// of simulated time.
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDuration: windowDurationSec}
}

// Record counts one event towards the current window.
func (c *Collector) Record(ev Event) {
	switch ev.Type {
	case EventSpawn:
		c.spawned++
	case EventCull:
		c.culled++
		c.lifetimes = append(c.lifetimes, ev.Lifetime)
	case EventReset:
		c.resets++
	case EventResize:
		c.resizes++
	case EventLightPlaced:
		c.lightsPlaced += ev.Count
	case EventLightsRemoved:
		c.lightsRemoved += ev.Count
	}
}

// ObserveAgents records the vehicle count after a tick.
func (c *Collector) ObserveAgents(n int) {
	c.agentTicks++
	c.agentSum += n
	c.agentMax = max(c.agentMax, n)
}

// ShouldFlush returns true if enough simulated time has passed to flush the
// window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDuration*(1-windowSlack)
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, simTime float64, s Sample) WindowStats {
	var agentsMean float64
	if c.agentTicks > 0 {
		agentsMean = float64(c.agentSum) / float64(c.agentTicks)
	}
	speedMean, speedP50, speedP90 := Summarize(s.Speeds)
	lifetimeMean, _, lifetimeP90 := Summarize(c.lifetimes)
	redMean, redMax := MeanMax(s.Red)
	blueMean, blueMax := MeanMax(s.Blue)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTime,

		Agents:     s.Agents,
		AgentsMean: agentsMean,
		AgentsMax:  c.agentMax,

		Lights:       s.Lights,
		PlacedLights: s.PlacedLights,

		Spawned:       c.spawned,
		Culled:        c.culled,
		Resets:        c.resets,
		Resizes:       c.resizes,
		LightsPlaced:  c.lightsPlaced,
		LightsRemoved: c.lightsRemoved,

		LifetimeMean: lifetimeMean,
		LifetimeP90:  lifetimeP90,

		SpeedMean: speedMean,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		RedMean:  redMean,
		RedMax:   redMax,
		BlueMean: blueMean,
		BlueMax:  blueMax,
	}

	// Reset for next window
	*c = Collector{
		windowDuration:  c.windowDuration,
		windowStartTick: currentTick,
		windowStartTime: simTime,
		lifetimes:       c.lifetimes[:0],
	}
	return stats
}

// WindowDuration returns the length of a window in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDuration
}
