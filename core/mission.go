package core

import (
	"fmt"

	"github.com/signalsfoundry/lander-simulator/control"
	"github.com/signalsfoundry/lander-simulator/model"
)

// AttitudeMode selects how the orientation correction is turned into an
// attitude change.
type AttitudeMode int

const (
	// AttitudeDirect applies the orientation correction straight to the
	// angle. This is the primary control path.
	AttitudeDirect AttitudeMode = iota
	// AttitudeTorque maps the correction onto a side-engine torque and
	// advances the angle through the rotational-inertia model.
	AttitudeTorque
)

func (m AttitudeMode) String() string {
	if m == AttitudeTorque {
		return "torque"
	}
	return "direct"
}

// MissionConfig fully describes one descent scenario: the body being landed
// on, the vehicle, where the run starts, and the controller tuning.
type MissionConfig struct {
	Description string

	BaseDt    float64 // s, fixed integration step before speed scaling
	TimeLimit float64 // s, mission aborts with a timeout beyond this

	UseEffectiveGravity bool
	Attitude            AttitudeMode

	Body    Body
	Vehicle model.VehicleParams
	Initial model.InitialConditions

	VerticalGains    control.Gains
	HorizontalGains  control.Gains
	OrientationGains control.Gains
}

// DefaultMissionConfig returns the reference soft-landing mission: descent
// from 30 km at 1700 m/s horizontal, with the tuning the vehicle was
// commissioned with.
func DefaultMissionConfig() *MissionConfig {
	return &MissionConfig{
		Description: "Soft landing from 30 km with 1700 m/s of horizontal speed to bleed off",
		BaseDt:      0.1,
		TimeLimit:   1000,
		Body:        Moon(),
		Vehicle:     model.DefaultVehicleParams(),
		Initial:     model.DefaultInitialConditions(),
		VerticalGains: control.Gains{
			Kp: 0.02, Ki: 0.0005, Kd: 0.005,
			Setpoint:  2.0, // descend at a steady 2 m/s
			OutputMin: -1, OutputMax: 1,
		},
		HorizontalGains: control.Gains{
			Kp: 0.02, Ki: 0.0005, Kd: 0.005,
			Setpoint:  0, // kill all horizontal motion
			OutputMin: -1, OutputMax: 1,
		},
		OrientationGains: control.Gains{
			Kp: 1.0, Ki: 0.001, Kd: 0.2,
			Setpoint:  0, // retargeted every tick from the horizontal axis
			OutputMin: -30, OutputMax: 30,
		},
	}
}

// Validate checks the parts of the config the engine divides by or
// integrates with.
func (c *MissionConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("mission config is nil")
	}
	if c.BaseDt <= 0 {
		return fmt.Errorf("mission config: base dt %v must be positive", c.BaseDt)
	}
	if c.TimeLimit <= 0 {
		return fmt.Errorf("mission config: time limit %v must be positive", c.TimeLimit)
	}
	if c.Vehicle.DryMass <= 0 {
		return fmt.Errorf("mission config: dry mass %v must be positive", c.Vehicle.DryMass)
	}
	if c.Vehicle.InitialFuel < 0 {
		return fmt.Errorf("mission config: initial fuel %v must not be negative", c.Vehicle.InitialFuel)
	}
	if c.Attitude == AttitudeTorque && c.Vehicle.RotationalInertia <= 0 {
		return fmt.Errorf("mission config: rotational inertia %v must be positive in torque mode", c.Vehicle.RotationalInertia)
	}
	return nil
}
