package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// ForceParams holds the tuning constants of the inverse-square law.
type ForceParams struct {
	Scale       float64 // velocity per unit of intensity/d²
	MinDistance float64 // distances below this are floored
}

// inverseSquare returns factor/|d|² with |d| floored at minDist.
// ok is false when d is the zero vector and the direction is undefined.
func inverseSquare(d r2.Vec, factor, minDist float64) (mag float64, ok bool) {
	distSq := r2.Norm2(d)
	if distSq == 0 {
		return 0, false
	}
	if floor := minDist * minDist; distSq < floor {
		distSq = floor
	}
	return factor / distSq, true
}

// Repulsion returns the velocity change that a source at target with the
// given intensity applies to a vehicle at position. The result points from
// the source towards the vehicle. A source sitting exactly on the vehicle
// contributes nothing.
func Repulsion(position, target r2.Vec, factor float64, p ForceParams) r2.Vec {
	d := r2.Sub(target, position)
	mag, ok := inverseSquare(d, factor, p.MinDistance)
	if !ok {
		return r2.Vec{}
	}
	return r2.Scale(-mag*p.Scale, r2.Unit(d))
}

// ClampLength scales v down so its length does not exceed max.
func ClampLength(v r2.Vec, max float64) r2.Vec {
	n := r2.Norm(v)
	if n <= max {
		return v
	}
	if max <= 0 {
		return r2.Vec{}
	}
	v = r2.Scale(max/n, v)
	// The result must satisfy |v| <= max exactly. Rounding in the scale can
	// leave the norm an ulp or two above max, so shrink until it does not.
	for r2.Norm(v) > max {
		v = r2.Scale(1-0x1p-52, v)
	}
	return v
}
