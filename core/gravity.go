package core

import "math"

// Body models the physical properties of the landing target relevant to
// descent dynamics. All acceleration queries are pure functions of their
// inputs so alternative gravity profiles can be swapped in without touching
// the engine.
type Body struct {
	Name             string
	Radius           float64 // m
	SurfaceGravity   float64 // m/s²
	EquilibriumSpeed float64 // m/s; horizontal speed at which effective gravity vanishes
}

// Moon returns the reference landing target.
func Moon() Body {
	return Body{
		Name:             "Moon",
		Radius:           3475e3,
		SurfaceGravity:   1.622,
		EquilibriumSpeed: 1700,
	}
}

// GravityAt returns the gravitational acceleration at the given altitude.
// The descent happens over a sliver of the body radius, so gravity is
// treated as constant with altitude.
func (b Body) GravityAt(altitude float64) float64 {
	return b.SurfaceGravity
}

// EffectiveGravity returns the net downward acceleration once the
// centrifugal relief of horizontal motion is accounted for: at the
// equilibrium speed the craft is effectively in free orbit and the result
// is zero.
func (b Body) EffectiveGravity(horizontalSpeed float64) float64 {
	if b.EquilibriumSpeed == 0 {
		return b.SurfaceGravity
	}
	n := math.Abs(horizontalSpeed) / b.EquilibriumSpeed
	return (1 - n) * b.SurfaceGravity
}
