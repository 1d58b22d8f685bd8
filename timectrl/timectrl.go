package timectrl

import (
	"fmt"
	"sync"
	"time"
)

// Driver issues simulation tick triggers at a fixed wall-clock cadence.
// Pausing suspends the trigger itself rather than any state inside the
// simulation, and the speed multiplier scales the effective step handed to
// each tick, not the cadence. Changing it therefore takes effect on the
// next tick without a discontinuity in accumulated controller state.
type Driver struct {
	mu       sync.RWMutex
	interval time.Duration
	speed    float64
	paused   bool
}

// NewDriver constructs a driver triggering every interval with the given
// initial speed multiplier.
func NewDriver(interval time.Duration, speed float64) (*Driver, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("new driver: interval %v must be positive", interval)
	}
	if speed <= 0 {
		return nil, fmt.Errorf("new driver: speed multiplier %v must be positive", speed)
	}
	return &Driver{interval: interval, speed: speed}, nil
}

// SetSpeed replaces the speed multiplier passed to subsequent ticks.
func (d *Driver) SetSpeed(multiplier float64) error {
	if multiplier <= 0 {
		return fmt.Errorf("set speed: multiplier %v must be positive", multiplier)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.speed = multiplier
	return nil
}

// Speed returns the current speed multiplier.
func (d *Driver) Speed() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.speed
}

// Pause suspends tick triggering. The run loop keeps waking on its cadence
// but stops invoking the step function.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

// Resume lifts a pause.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

// Paused reports whether triggering is currently suspended.
func (d *Driver) Paused() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.paused
}

// Start runs the trigger loop in its own goroutine and returns a channel
// closed when the loop exits. On every cadence interval, unless paused, the
// step function is invoked with the current speed multiplier; returning
// false from step ends the loop. Closing stop cancels the loop; beyond the
// step currently executing there is no in-flight work to cancel.
func (d *Driver) Start(stop <-chan struct{}, step func(speedMultiplier float64) bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.mu.RLock()
				paused, speed := d.paused, d.speed
				d.mu.RUnlock()
				if paused {
					continue
				}
				if !step(speed) {
					return
				}
			}
		}
	}()
	return done
}
