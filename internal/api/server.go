package api

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/lander-simulator/core"
	"github.com/signalsfoundry/lander-simulator/internal/logging"
	"github.com/signalsfoundry/lander-simulator/internal/observability"
	"github.com/signalsfoundry/lander-simulator/timectrl"
)

const requestIDHeader = "X-Request-Id"

// Server is the HTTP/JSON mission-control surface. Renderers poll /api/state
// for snapshots; operators drive pause, resume, reset, and speed through the
// POST endpoints. The simulation itself keeps advancing on the driver's
// cadence, so every handler only reads or flips control state.
type Server struct {
	engine    *core.LandingEngine
	driver    *timectrl.Driver
	collector *observability.FlightCollector
	log       logging.Logger
	tracer    trace.Tracer
}

// NewServer wires the control surface. driver and collector may be nil: a
// nil driver disables the pause/resume/speed endpoints, a nil collector
// disables request metrics.
func NewServer(engine *core.LandingEngine, driver *timectrl.Driver, collector *observability.FlightCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		engine:    engine,
		driver:    driver,
		collector: collector,
		log:       log,
		tracer:    otel.Tracer("lander/api"),
	}
}

// Handler returns the routed control surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/state", s.route("/api/state", http.MethodGet, s.handleState))
	mux.Handle("/api/reset", s.route("/api/reset", http.MethodPost, s.handleReset))
	mux.Handle("/api/pause", s.route("/api/pause", http.MethodPost, s.handlePause))
	mux.Handle("/api/resume", s.route("/api/resume", http.MethodPost, s.handleResume))
	mux.Handle("/api/speed", s.route("/api/speed", http.MethodPost, s.handleSpeed))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// route wraps a handler with method filtering, request-id logging, a span,
// and request metrics.
func (s *Server) route(name, method string, handler func(http.ResponseWriter, *http.Request)) http.Handler {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		if incoming := r.Header.Get(requestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}
		ctx, reqLog := logging.WithRequestLogger(ctx, s.log.With(logging.String("route", name)))

		ctx, span := s.tracer.Start(ctx, name)
		defer span.End()

		reqLog.Debug(ctx, "handling control request")
		handler(w, r.WithContext(ctx))
	})
	return s.collector.InstrumentHandler(name, h)
}

type stateResponse struct {
	Status   string        `json:"status"`
	Paused   bool          `json:"paused"`
	Speed    float64       `json:"speed"`
	Snapshot core.Snapshot `json:"snapshot"`
}

func (s *Server) stateResponse() stateResponse {
	resp := stateResponse{
		Status:   s.engine.Status().String(),
		Snapshot: s.engine.Snapshot(),
	}
	if s.driver != nil {
		resp.Paused = s.driver.Paused()
		resp.Speed = s.driver.Speed()
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Reset()
	s.log.Info(r.Context(), "simulation reset",
		logging.Float64("altitude", snap.Altitude),
		logging.Float64("fuel", snap.FuelRemaining),
	)
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if s.driver == nil {
		http.Error(w, "no tick driver attached", http.StatusServiceUnavailable)
		return
	}
	s.driver.Pause()
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if s.driver == nil {
		http.Error(w, "no tick driver attached", http.StatusServiceUnavailable)
		return
	}
	s.driver.Resume()
	writeJSON(w, http.StatusOK, s.stateResponse())
}

type speedRequest struct {
	Multiplier float64 `json:"multiplier"`
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.driver == nil {
		http.Error(w, "no tick driver attached", http.StatusServiceUnavailable)
		return
	}

	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid speed payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.driver.SetSpeed(req.Multiplier); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.log.Info(r.Context(), "speed multiplier changed", logging.Float64("multiplier", req.Multiplier))
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
