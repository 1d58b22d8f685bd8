package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/lander-simulator/core"
	"github.com/signalsfoundry/lander-simulator/internal/api"
	"github.com/signalsfoundry/lander-simulator/internal/logging"
	"github.com/signalsfoundry/lander-simulator/internal/observability"
	"github.com/signalsfoundry/lander-simulator/timectrl"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address for the control API")
	metricsAddr := flag.String("metrics-addr", ":9090", "listen address for Prometheus metrics")
	missionPath := flag.String("mission", "", "path to a JSON mission definition (defaults to the reference mission)")
	tick := flag.Duration("tick", 100*time.Millisecond, "wall-clock interval between simulation ticks")
	speed := flag.Float64("speed", 1.0, "initial speed multiplier")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	cfg, err := loadMission(*missionPath)
	if err != nil {
		log.Error(ctx, "failed to load mission", logging.String("path", *missionPath), logging.String("error", err.Error()))
		os.Exit(1)
	}

	engine, err := core.NewLandingEngine(cfg)
	if err != nil {
		log.Error(ctx, "failed to build engine", logging.String("error", err.Error()))
		os.Exit(1)
	}

	collector, err := observability.NewFlightCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to register metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	engine.AddTickListener(func(snap core.Snapshot, status core.Status) {
		collector.ObserveTick(snap)
		if status.Terminal() {
			collector.ObserveOutcome(status)
			log.Info(ctx, "mission reached terminal state",
				logging.String("outcome", status.String()),
				logging.Float64("t", snap.Time),
				logging.Float64("vertical_speed", snap.VerticalSpeed),
				logging.Float64("horizontal_speed", snap.HorizontalSpeed),
				logging.Float64("fuel", snap.FuelRemaining),
			)
		}
	})

	driver, err := timectrl.NewDriver(*tick, *speed)
	if err != nil {
		log.Error(ctx, "failed to build tick driver", logging.String("error", err.Error()))
		os.Exit(1)
	}

	stopTicks := make(chan struct{})
	done := driver.Start(stopTicks, func(multiplier float64) bool {
		start := time.Now()
		_, _, tickErr := engine.Tick(multiplier)
		collector.ObserveTickDuration(time.Since(start))
		if tickErr != nil {
			log.Error(ctx, "tick failed", logging.String("error", tickErr.Error()))
		}
		// Terminal engines no-op on further ticks, so keep the loop alive
		// for operator resets.
		return true
	})

	metricsServer := serveMetrics(ctx, *metricsAddr, collector, log)

	apiServer := &http.Server{
		Addr:    *addr,
		Handler: api.NewServer(engine, driver, collector, log).Handler(),
	}
	go func() {
		log.Info(ctx, "control API listening",
			logging.String("addr", *addr),
			logging.String("mission", cfg.Description),
			logging.Duration("tick", *tick),
		)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "control API server failed", logging.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	close(stopTicks)
	<-done

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "control API shutdown failed", logging.String("error", err.Error()))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "metrics server shutdown failed", logging.String("error", err.Error()))
		}
	}
}

func loadMission(path string) (*core.MissionConfig, error) {
	if path == "" {
		return core.DefaultMissionConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return core.LoadMissionConfig(f)
}

func serveMetrics(ctx context.Context, addr string, collector *observability.FlightCollector, log logging.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Info(ctx, "metrics listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server failed", logging.String("error", err.Error()))
		}
	}()
	return srv
}
