package core

import (
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/lander-simulator/control"
	"github.com/signalsfoundry/lander-simulator/model"
)

const (
	// throttleBias centres the vertical controller output so that a zero
	// correction holds the engine at half throttle.
	throttleBias = 0.5
	// brakingAltitude is the height below which the throttle is forced to
	// full regardless of controller output.
	brakingAltitude = 2000.0
	// maxGuidanceAngle bounds the tilt the horizontal axis may request (deg).
	maxGuidanceAngle = 20.0
	// maxBankAngle bounds the attitude the craft is allowed to reach (deg).
	maxBankAngle = 30.0
)

// LandingEngine couples the spacecraft state, the gravity model, and the
// three PID controllers into a fixed-step control-and-integration loop.
// One Tick is one step; the engine owns its state exclusively and is safe
// for a driver goroutine and API readers to share.
type LandingEngine struct {
	mu  sync.Mutex
	cfg MissionConfig

	craft          *model.Spacecraft
	verticalPID    *control.PID
	horizontalPID  *control.PID
	orientationPID *control.PID

	status    Status
	listeners []func(Snapshot, Status)
}

// NewLandingEngine builds an engine for the given mission. The config is
// copied; later mutation of the caller's copy has no effect.
func NewLandingEngine(cfg *MissionConfig) (*LandingEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new landing engine: %w", err)
	}
	return &LandingEngine{
		cfg:            *cfg,
		craft:          model.NewSpacecraft(cfg.Vehicle, cfg.Initial),
		verticalPID:    control.NewPID(cfg.VerticalGains),
		horizontalPID:  control.NewPID(cfg.HorizontalGains),
		orientationPID: control.NewPID(cfg.OrientationGains),
		status:         StatusRunning,
	}, nil
}

// AddTickListener registers a callback invoked with the post-step snapshot
// after every completed tick. Listeners run on the ticking goroutine and
// must not call back into the engine.
func (e *LandingEngine) AddTickListener(fn func(Snapshot, Status)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Snapshot returns the current lander state.
func (e *LandingEngine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Status returns the current run status.
func (e *LandingEngine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Mission returns a copy of the mission config the engine was built with.
func (e *LandingEngine) Mission() MissionConfig {
	return e.cfg
}

// Reset reinitialises the spacecraft to the mission's initial conditions,
// clears all three controllers, and returns the fresh snapshot. Any
// terminal state transitions back to running.
func (e *LandingEngine) Reset() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.craft.Reset(e.cfg.Initial)
	e.verticalPID.Reset()
	e.horizontalPID.Reset()
	e.orientationPID.Reset()
	e.status = StatusRunning
	return e.snapshotLocked()
}

// Tick advances the simulation by one fixed step of BaseDt scaled by
// speedMultiplier. A terminal engine returns its final snapshot unchanged.
// The effective step must be positive; Tick fails with
// control.ErrInvalidTimeStep otherwise.
func (e *LandingEngine) Tick(speedMultiplier float64) (Snapshot, Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	dt := e.cfg.BaseDt * speedMultiplier
	if dt <= 0 {
		return e.snapshotLocked(), e.status, fmt.Errorf("tick: %w (effective dt=%v)", control.ErrInvalidTimeStep, dt)
	}
	if e.status.Terminal() {
		return e.snapshotLocked(), e.status, nil
	}

	// Vertical axis: regulate descent rate through the throttle.
	verticalCorrection, err := e.verticalPID.Update(e.craft.VerticalSpeed, dt)
	if err != nil {
		return e.snapshotLocked(), e.status, err
	}
	throttle := clamp(throttleBias+verticalCorrection, 0, 1)
	if e.craft.Altitude < brakingAltitude {
		// Full braking near the surface. Safety override, not a
		// controller output.
		throttle = 1.0
	}

	// Horizontal axis: the correction becomes the attitude setpoint.
	horizontalCorrection, err := e.horizontalPID.Update(e.craft.HorizontalSpeed, dt)
	if err != nil {
		return e.snapshotLocked(), e.status, err
	}
	desiredAngle := clamp(horizontalCorrection, -maxGuidanceAngle, maxGuidanceAngle)

	// Orientation axis.
	e.orientationPID.SetSetpoint(desiredAngle)
	angleCorrection, err := e.orientationPID.Update(e.craft.Angle, dt)
	if err != nil {
		return e.snapshotLocked(), e.status, err
	}
	switch e.cfg.Attitude {
	case AttitudeTorque:
		e.craft.ApplyTorque(e.torqueCommand(angleCorrection), dt)
		e.craft.Angle = clamp(e.craft.Angle, -maxBankAngle, maxBankAngle)
	default:
		e.craft.Angle = clamp(e.craft.Angle+angleCorrection, -maxBankAngle, maxBankAngle)
	}

	// Fuel before thrust: the engine can only deliver what the remaining
	// fuel supports this step.
	demanded := e.craft.Params.MainEngineBurnRate * throttle * dt
	consumed := e.craft.ConsumeFuel(demanded)
	starved := consumed < demanded
	thrustScale := 1.0
	if demanded > 0 {
		thrustScale = consumed / demanded
	}

	mainThrust := throttle * e.craft.Params.MainEngineThrust * thrustScale
	angleRad := e.craft.Angle * math.Pi / 180
	thrustVertical := mainThrust * math.Cos(angleRad)
	thrustHorizontal := mainThrust * math.Sin(angleRad)

	g := e.cfg.Body.GravityAt(e.craft.Altitude)
	if e.cfg.UseEffectiveGravity {
		g = e.cfg.Body.EffectiveGravity(e.craft.HorizontalSpeed)
	}
	verticalAccel := g - thrustVertical/e.craft.TotalMass
	horizontalAccel := -thrustHorizontal / e.craft.TotalMass

	e.craft.Integrate(verticalAccel, horizontalAccel, dt)

	switch {
	case e.craft.Altitude <= 0:
		e.status = StatusLanded
	case starved:
		e.status = StatusFuelExhausted
	case e.craft.Elapsed >= e.cfg.TimeLimit:
		e.status = StatusTimedOut
	}

	snap := e.snapshotLocked()
	for _, fn := range e.listeners {
		fn(snap, e.status)
	}
	return snap, e.status, nil
}

// torqueCommand maps an orientation correction onto a side-engine torque,
// scaling the controller's output range onto the maximum couple the side
// engines can produce.
func (e *LandingEngine) torqueCommand(angleCorrection float64) float64 {
	norm := e.cfg.OrientationGains.OutputMax
	if norm == 0 {
		norm = 1
	}
	maxTorque := e.craft.Params.SideEngineThrust * e.craft.Params.SideEngineLeverArm
	return clamp(angleCorrection/norm, -1, 1) * maxTorque
}

func (e *LandingEngine) snapshotLocked() Snapshot {
	return Snapshot{
		Time:               e.craft.Elapsed,
		Altitude:           e.craft.Altitude,
		VerticalSpeed:      e.craft.VerticalSpeed,
		HorizontalSpeed:    e.craft.HorizontalSpeed,
		HorizontalDistance: e.craft.HorizontalDistance,
		Angle:              e.craft.Angle,
		FuelRemaining:      e.craft.Fuel,
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
