package core

// Status reports where a simulation run stands. Running is the only
// non-terminal value; once any terminal status is reached further ticks
// leave the state untouched until a reset.
type Status int

const (
	StatusRunning Status = iota
	StatusLanded
	StatusTimedOut
	StatusFuelExhausted
)

// Terminal reports whether the simulation has ended.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "RUNNING"
	case StatusLanded:
		return "LANDED"
	case StatusTimedOut:
		return "TIMED_OUT"
	case StatusFuelExhausted:
		return "FUEL_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// SoftLandingSpeedLimit is the touchdown speed (m/s) both velocity
// components must stay under for the landing to count as soft.
const SoftLandingSpeedLimit = 2.5

// Snapshot is the read-only view of the lander state handed to renderers,
// loggers, and telemetry after every tick. SI units throughout; the angle
// is in degrees.
type Snapshot struct {
	Time               float64 `json:"time"`
	Altitude           float64 `json:"altitude"`
	VerticalSpeed      float64 `json:"vertical_speed"`
	HorizontalSpeed    float64 `json:"horizontal_speed"`
	HorizontalDistance float64 `json:"horizontal_distance"`
	Angle              float64 `json:"angle"`
	FuelRemaining      float64 `json:"fuel_remaining"`
}

// SoftLanding reports whether the snapshot satisfies the mission success
// criterion of both speed components under the touchdown limit.
func (s Snapshot) SoftLanding() bool {
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(s.VerticalSpeed) < SoftLandingSpeedLimit && abs(s.HorizontalSpeed) < SoftLandingSpeedLimit
}
