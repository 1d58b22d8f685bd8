package model

import "math"

// VehicleParams are the fixed physical parameters of the lander.
//
// Units: mass kg, thrust N, burn rate kg/s, lever arm m, inertia kg·m².
type VehicleParams struct {
	DryMass            float64
	InitialFuel        float64
	MainEngineThrust   float64
	MainEngineBurnRate float64 // fuel consumed per second at full throttle

	// Side-engine parameters serve the torque-driven attitude path; the
	// direct-angle path never reads them.
	SideEngineThrust   float64
	SideEngineLeverArm float64
	RotationalInertia  float64
}

// DefaultVehicleParams returns the reference lander configuration.
func DefaultVehicleParams() VehicleParams {
	return VehicleParams{
		DryMass:            165,
		InitialFuel:        420,
		MainEngineThrust:   430,
		MainEngineBurnRate: 0.15,
		SideEngineThrust:   25,
		SideEngineLeverArm: 1.5,
		RotationalInertia:  100,
	}
}

// InitialConditions describe the state the lander starts a mission in, and
// the state a reset returns it to.
type InitialConditions struct {
	Altitude           float64
	HorizontalDistance float64
	VerticalSpeed      float64
	HorizontalSpeed    float64
	Angle              float64
}

// DefaultInitialConditions returns the reference mission entry state:
// 30 km up, carried sideways at 1700 m/s, upright.
func DefaultInitialConditions() InitialConditions {
	return InitialConditions{
		Altitude:        30000,
		HorizontalSpeed: 1700,
	}
}

// Spacecraft is the mutable physical state of the lander during descent.
// Vertical speed is positive downward; the angle is in degrees with 0 being
// vertical. Mutation happens exclusively through the methods below, driven
// by the landing engine's integration step.
type Spacecraft struct {
	Params VehicleParams

	Fuel               float64 // remaining fuel, never negative
	TotalMass          float64 // DryMass + Fuel, maintained by ConsumeFuel
	VerticalSpeed      float64
	HorizontalSpeed    float64
	Altitude           float64 // clamped at 0
	HorizontalDistance float64
	Angle              float64 // degrees
	RotationalSpeed    float64 // degrees per second, torque path only
	Elapsed            float64 // seconds of simulation time
}

// NewSpacecraft constructs a lander with a full tank at the given initial
// conditions.
func NewSpacecraft(params VehicleParams, init InitialConditions) *Spacecraft {
	s := &Spacecraft{Params: params}
	s.Reset(init)
	return s
}

// ConsumeFuel burns up to amount kg of fuel, clamped so the tank never goes
// negative, and recomputes the total mass. It returns the quantity actually
// consumed.
func (s *Spacecraft) ConsumeFuel(amount float64) float64 {
	if amount < 0 {
		amount = 0
	}
	if amount > s.Fuel {
		amount = s.Fuel
	}
	s.Fuel -= amount
	s.TotalMass = s.Params.DryMass + s.Fuel
	return amount
}

// Integrate advances the translational state by one Euler step: speeds pick
// up the accelerations, then positions pick up the speeds. Altitude is
// clamped at the surface.
func (s *Spacecraft) Integrate(verticalAccel, horizontalAccel, dt float64) {
	s.VerticalSpeed += verticalAccel * dt
	s.HorizontalSpeed += horizontalAccel * dt

	s.Altitude -= s.VerticalSpeed * dt
	s.HorizontalDistance += s.HorizontalSpeed * dt
	if s.Altitude < 0 {
		s.Altitude = 0
	}
	s.Elapsed += dt
}

// ApplyTorque advances the rotational state with the inertia-based attitude
// model: angular acceleration is torque over inertia, converted from rad/s²
// to deg/s², integrated into rotational speed and then into the angle.
func (s *Spacecraft) ApplyTorque(torque, dt float64) {
	const degPerRad = 180 / math.Pi
	angularAccel := torque / s.Params.RotationalInertia * degPerRad
	s.RotationalSpeed += angularAccel * dt
	s.Angle += s.RotationalSpeed * dt
}

// Reset restores the lander to the given initial conditions with a full
// tank and the clock at zero.
func (s *Spacecraft) Reset(init InitialConditions) {
	s.Fuel = s.Params.InitialFuel
	s.TotalMass = s.Params.DryMass + s.Fuel
	s.VerticalSpeed = init.VerticalSpeed
	s.HorizontalSpeed = init.HorizontalSpeed
	s.Altitude = init.Altitude
	s.HorizontalDistance = init.HorizontalDistance
	s.Angle = init.Angle
	s.RotationalSpeed = 0
	s.Elapsed = 0
}
