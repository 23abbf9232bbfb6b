package telemetry

// LifetimeTracker remembers when each live vehicle was spawned, in simulated
// seconds.
type LifetimeTracker struct {
	birth map[uint32]float64
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{birth: make(map[uint32]float64)}
}

// Register records the simulated time at which a vehicle spawned.
func (lt *LifetimeTracker) Register(vehicleID uint32, birthTime float64) {
	lt.birth[vehicleID] = birthTime
}

// Remove forgets a vehicle and returns how many simulated seconds it lived.
// ok is false for a vehicle that was never registered.
func (lt *LifetimeTracker) Remove(vehicleID uint32, now float64) (seconds float64, ok bool) {
	birth, ok := lt.birth[vehicleID]
	if !ok {
		return 0, false
	}
	delete(lt.birth, vehicleID)
	return now - birth, true
}

// Clear forgets every vehicle.
func (lt *LifetimeTracker) Clear() {
	clear(lt.birth)
}

// Count returns the number of tracked vehicles.
func (lt *LifetimeTracker) Count() int {
	return len(lt.birth)
}
