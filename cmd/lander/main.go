package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/lander-simulator/core"
	"github.com/signalsfoundry/lander-simulator/internal/logging"
	"github.com/signalsfoundry/lander-simulator/internal/observability"
)

func main() {
	missionPath := flag.String("mission", "", "path to a JSON mission definition (defaults to the reference mission)")
	speed := flag.Float64("speed", 1.0, "speed multiplier applied to every tick")
	progressEvery := flag.Float64("progress-every", 100, "seconds of simulation time between progress lines (0 disables)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

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

	log.Info(ctx, "starting descent",
		logging.String("mission", cfg.Description),
		logging.Float64("altitude", cfg.Initial.Altitude),
		logging.Float64("horizontal_speed", cfg.Initial.HorizontalSpeed),
		logging.Float64("fuel", cfg.Vehicle.InitialFuel),
		logging.Float64("speed_multiplier", *speed),
	)

	ctx, span := otel.Tracer("lander/batch").Start(ctx, "mission-run")
	snap, status, err := runToCompletion(ctx, log, engine, *speed, *progressEvery)
	span.End()
	if err != nil {
		log.Error(ctx, "mission aborted", logging.String("error", err.Error()))
		os.Exit(1)
	}

	printSummary(snap, status)
	if status == core.StatusLanded && !snap.SoftLanding() {
		os.Exit(2)
	}
	if status != core.StatusLanded {
		os.Exit(2)
	}
}

func loadMission(path string) (*core.MissionConfig, error) {
	if path == "" {
		return core.DefaultMissionConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mission %q: %w", path, err)
	}
	defer f.Close()
	return core.LoadMissionConfig(f)
}

// runToCompletion ticks the engine as fast as the loop allows until a
// terminal state is reached. The mission time limit guarantees termination.
func runToCompletion(ctx context.Context, log logging.Logger, engine *core.LandingEngine, speed, progressEvery float64) (core.Snapshot, core.Status, error) {
	nextProgress := progressEvery
	for {
		snap, status, err := engine.Tick(speed)
		if err != nil {
			return snap, status, err
		}
		if status.Terminal() {
			return snap, status, nil
		}
		if progressEvery > 0 && snap.Time >= nextProgress {
			nextProgress += progressEvery
			log.Info(ctx, "descent progress",
				logging.Float64("t", snap.Time),
				logging.Float64("altitude", snap.Altitude),
				logging.Float64("vertical_speed", snap.VerticalSpeed),
				logging.Float64("horizontal_speed", snap.HorizontalSpeed),
				logging.Float64("fuel", snap.FuelRemaining),
			)
		}
	}
}

func printSummary(snap core.Snapshot, status core.Status) {
	fmt.Printf("Mission complete: %s\n", status)
	fmt.Printf("Time: %.1f s, Altitude: %.2f m, Vertical Speed: %.2f m/s, Horizontal Speed: %.2f m/s, Fuel remaining: %.2f kg\n",
		snap.Time, snap.Altitude, snap.VerticalSpeed, snap.HorizontalSpeed, snap.FuelRemaining)
	if status == core.StatusLanded {
		if snap.SoftLanding() {
			fmt.Println("Touchdown was soft: both speed components under 2.5 m/s.")
		} else {
			fmt.Println("Touchdown was hard: speed criterion not met.")
		}
	}
}
