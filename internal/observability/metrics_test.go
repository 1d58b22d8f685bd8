package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/signalsfoundry/lander-simulator/core"
)

func TestObserveTickUpdatesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}

	collector.ObserveTick(core.Snapshot{
		Altitude:        12345,
		VerticalSpeed:   42.5,
		HorizontalSpeed: -7,
		FuelRemaining:   399.5,
		Angle:           -3,
	})
	collector.ObserveTick(core.Snapshot{
		Altitude:        12000,
		VerticalSpeed:   43,
		HorizontalSpeed: -6,
		FuelRemaining:   399,
		Angle:           -2,
	})

	if got := testutil.ToFloat64(collector.Ticks); got != 2 {
		t.Fatalf("lander_ticks_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Altitude); got != 12000 {
		t.Fatalf("lander_altitude_meters = %v, want 12000", got)
	}
	if got := testutil.ToFloat64(collector.FuelRemaining); got != 399 {
		t.Fatalf("lander_fuel_kg = %v, want 399", got)
	}
}

func TestObserveOutcomeCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}

	collector.ObserveOutcome(core.StatusLanded)
	collector.ObserveOutcome(core.StatusLanded)
	collector.ObserveOutcome(core.StatusFuelExhausted)

	if got := testutil.ToFloat64(collector.Outcomes.WithLabelValues("LANDED")); got != 2 {
		t.Fatalf("LANDED outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Outcomes.WithLabelValues("FUEL_EXHAUSTED")); got != 1 {
		t.Fatalf("FUEL_EXHAUSTED outcomes = %v, want 1", got)
	}
}

func TestInstrumentHandlerRecordsRouteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}

	handler := collector.InstrumentHandler("/api/state", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/api/state", "GET", "200")); got != 1 {
		t.Fatalf("lander_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "lander_http_request_duration_seconds", map[string]string{
		"route": "/api/state",
	}); count != 1 {
		t.Fatalf("duration sample_count = %d, want 1", count)
	}
}

func TestInstrumentHandlerRecordsErrorCodes(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}

	handler := collector.InstrumentHandler("/api/speed", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad multiplier", http.StatusBadRequest)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/speed", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/api/speed", "POST", "400")); got != 1 {
		t.Fatalf("error-code counter = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesFlightTelemetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("NewFlightCollector: %v", err)
	}
	collector.ObserveTick(core.Snapshot{Altitude: 29999, FuelRemaining: 419})
	collector.ObserveTickDuration(50 * time.Microsecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"lander_ticks_total",
		"lander_tick_duration_seconds",
		"lander_altitude_meters",
		"lander_vertical_speed_mps",
		"lander_horizontal_speed_mps",
		"lander_fuel_kg",
		"lander_angle_degrees",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestDuplicateRegistrationReturnsExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("first NewFlightCollector: %v", err)
	}
	second, err := NewFlightCollector(reg)
	if err != nil {
		t.Fatalf("second NewFlightCollector: %v", err)
	}

	first.ObserveTick(core.Snapshot{})
	second.ObserveTick(core.Snapshot{})
	if got := testutil.ToFloat64(second.Ticks); got != 2 {
		t.Fatalf("shared tick counter = %v, want 2", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
