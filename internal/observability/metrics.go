package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/lander-simulator/core"
)

// FlightCollector bundles Prometheus metrics for the descent simulation and
// its HTTP control surface, and provides helpers to wire them into handlers.
type FlightCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	Ticks        prometheus.Counter
	TickDuration prometheus.Histogram
	Outcomes     *prometheus.CounterVec

	Altitude        prometheus.Gauge
	VerticalSpeed   prometheus.Gauge
	HorizontalSpeed prometheus.Gauge
	FuelRemaining   prometheus.Gauge
	Angle           prometheus.Gauge
}

// NewFlightCollector registers the simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewFlightCollector(reg prometheus.Registerer) (*FlightCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lander_http_requests_total",
		Help: "Total number of handled control-surface requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "lander_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lander_http_request_duration_seconds",
		Help:    "Control-surface request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"})
	durations, err = registerHistogramVec(reg, durations, "lander_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lander_ticks_total",
		Help: "Number of completed simulation ticks.",
	}), "lander_ticks_total")
	if err != nil {
		return nil, err
	}

	tickDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lander_tick_duration_seconds",
		Help:    "Wall-clock cost of one simulation tick.",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
	tickDuration, err = registerHistogram(reg, tickDuration, "lander_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lander_outcomes_total",
		Help: "Terminal simulation outcomes, labeled by status.",
	}, []string{"outcome"})
	outcomes, err = registerCounterVec(reg, outcomes, "lander_outcomes_total")
	if err != nil {
		return nil, err
	}

	newGauge := func(name, help string) (prometheus.Gauge, error) {
		return registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Name: name,
			Help: help,
		}), name)
	}
	altitude, err := newGauge("lander_altitude_meters", "Current altitude above the surface.")
	if err != nil {
		return nil, err
	}
	verticalSpeed, err := newGauge("lander_vertical_speed_mps", "Current vertical speed, positive downward.")
	if err != nil {
		return nil, err
	}
	horizontalSpeed, err := newGauge("lander_horizontal_speed_mps", "Current horizontal speed.")
	if err != nil {
		return nil, err
	}
	fuel, err := newGauge("lander_fuel_kg", "Remaining fuel mass.")
	if err != nil {
		return nil, err
	}
	angle, err := newGauge("lander_angle_degrees", "Current orientation angle.")
	if err != nil {
		return nil, err
	}

	return &FlightCollector{
		gatherer:        gatherer,
		HTTPRequests:    requests,
		HTTPDurations:   durations,
		Ticks:           ticks,
		TickDuration:    tickDuration,
		Outcomes:        outcomes,
		Altitude:        altitude,
		VerticalSpeed:   verticalSpeed,
		HorizontalSpeed: horizontalSpeed,
		FuelRemaining:   fuel,
		Angle:           angle,
	}, nil
}

// ObserveTick records one completed tick and refreshes the telemetry gauges
// from the post-step snapshot. Safe to call on a nil collector.
func (c *FlightCollector) ObserveTick(snap core.Snapshot) {
	if c == nil {
		return
	}
	if c.Ticks != nil {
		c.Ticks.Inc()
	}
	if c.Altitude != nil {
		c.Altitude.Set(snap.Altitude)
	}
	if c.VerticalSpeed != nil {
		c.VerticalSpeed.Set(snap.VerticalSpeed)
	}
	if c.HorizontalSpeed != nil {
		c.HorizontalSpeed.Set(snap.HorizontalSpeed)
	}
	if c.FuelRemaining != nil {
		c.FuelRemaining.Set(snap.FuelRemaining)
	}
	if c.Angle != nil {
		c.Angle.Set(snap.Angle)
	}
}

// ObserveTickDuration records the wall-clock cost of one tick.
func (c *FlightCollector) ObserveTickDuration(d time.Duration) {
	if c == nil || c.TickDuration == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// ObserveOutcome counts a terminal status. Call once per termination, not
// per tick.
func (c *FlightCollector) ObserveOutcome(status core.Status) {
	if c == nil || c.Outcomes == nil {
		return
	}
	c.Outcomes.WithLabelValues(status.String()).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FlightCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps next with request counting and latency
// observation under the given route label.
func (c *FlightCollector) InstrumentHandler(route string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, fmt.Sprintf("%d", rec.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
