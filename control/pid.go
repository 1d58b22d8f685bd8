package control

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeStep is returned by Update when dt is zero or negative.
// The derivative term divides by dt, so there is no meaningful output to
// compute for such a step.
var ErrInvalidTimeStep = errors.New("invalid time step")

// Gains bundles the tuning of one PID axis. Setpoint is the initial target;
// it can be replaced at runtime through PID.SetSetpoint.
type Gains struct {
	Kp        float64
	Ki        float64
	Kd        float64
	Setpoint  float64
	OutputMin float64
	OutputMax float64
}

// PID is a scalar closed-loop controller with clamped output and anti-windup.
// It holds only its own gains, setpoint, and accumulators; it knows nothing
// about the plant it steers. One instance is created per control axis.
type PID struct {
	kp, ki, kd           float64
	setpoint             float64
	integral             float64
	prevError            float64
	outputMin, outputMax float64
}

// NewPID constructs a controller from the given gains with zeroed
// accumulators.
func NewPID(g Gains) *PID {
	return &PID{
		kp:        g.Kp,
		ki:        g.Ki,
		kd:        g.Kd,
		setpoint:  g.Setpoint,
		outputMin: g.OutputMin,
		outputMax: g.OutputMax,
	}
}

// SetSetpoint replaces the target value. It takes effect on the next Update.
func (p *PID) SetSetpoint(v float64) {
	p.setpoint = v
}

// Setpoint returns the current target value.
func (p *PID) Setpoint() float64 {
	return p.setpoint
}

// Reset zeroes the integral accumulator and the stored previous error.
// Gains and setpoint are left untouched.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
}

// Update advances the controller by one step of size dt and returns the
// clamped control output. The integral accumulator is re-clamped on every
// call so that the Ki*integral contribution alone can never exceed the
// output bounds (anti-windup); a zero Ki uses a divisor of 1 to keep the
// clamp well-defined.
//
// dt must be strictly positive; Update fails with ErrInvalidTimeStep
// otherwise and leaves the controller state unchanged.
func (p *PID) Update(measurement, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, fmt.Errorf("pid update: %w (dt=%v)", ErrInvalidTimeStep, dt)
	}

	err := p.setpoint - measurement
	p.integral += err * dt

	divisor := p.ki
	if divisor == 0 {
		divisor = 1
	}
	integralMax := p.outputMax / divisor
	if p.integral > integralMax {
		p.integral = integralMax
	}
	if p.integral < -integralMax {
		p.integral = -integralMax
	}

	derivative := (err - p.prevError) / dt
	output := p.kp*err + p.ki*p.integral + p.kd*derivative
	if output > p.outputMax {
		output = p.outputMax
	}
	if output < p.outputMin {
		output = p.outputMin
	}
	p.prevError = err
	return output, nil
}
