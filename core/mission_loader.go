package core

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/signalsfoundry/lander-simulator/control"
	"github.com/signalsfoundry/lander-simulator/model"
)

// internal JSON shapes, kept unexported so the on-disk format can evolve
// independently of the config structs.
type missionJSON struct {
	Description         string           `json:"description"`
	BaseDtS             *float64         `json:"base_dt_s"`
	TimeLimitS          *float64         `json:"time_limit_s"`
	UseEffectiveGravity *bool            `json:"use_effective_gravity"`
	AttitudeMode        string           `json:"attitude_mode"` // "direct" | "torque"
	Body                *bodyJSON        `json:"body"`
	Vehicle             *vehicleJSON     `json:"vehicle"`
	Initial             *initialJSON     `json:"initial"`
	Controllers         *controllersJSON `json:"controllers"`
}

type bodyJSON struct {
	Name             string  `json:"name"`
	RadiusM          float64 `json:"radius_m"`
	SurfaceGravity   float64 `json:"surface_gravity"`
	EquilibriumSpeed float64 `json:"equilibrium_speed"`
}

type vehicleJSON struct {
	DryMassKg          float64 `json:"dry_mass_kg"`
	InitialFuelKg      float64 `json:"initial_fuel_kg"`
	MainEngineThrustN  float64 `json:"main_engine_thrust_n"`
	MainEngineBurnRate float64 `json:"main_engine_burn_rate_kg_s"`
	SideEngineThrustN  float64 `json:"side_engine_thrust_n"`
	SideEngineLeverArm float64 `json:"side_engine_lever_arm_m"`
	RotationalInertia  float64 `json:"rotational_inertia"`
}

type initialJSON struct {
	AltitudeM           float64 `json:"altitude_m"`
	HorizontalDistanceM float64 `json:"horizontal_distance_m"`
	VerticalSpeedMS     float64 `json:"vertical_speed_ms"`
	HorizontalSpeedMS   float64 `json:"horizontal_speed_ms"`
	AngleDeg            float64 `json:"angle_deg"`
}

type controllersJSON struct {
	Vertical    *gainsJSON `json:"vertical"`
	Horizontal  *gainsJSON `json:"horizontal"`
	Orientation *gainsJSON `json:"orientation"`
}

type gainsJSON struct {
	Kp        float64 `json:"kp"`
	Ki        float64 `json:"ki"`
	Kd        float64 `json:"kd"`
	Setpoint  float64 `json:"setpoint"`
	OutputMin float64 `json:"output_min"`
	OutputMax float64 `json:"output_max"`
}

// LoadMissionConfig reads a JSON mission definition from r and returns it
// merged over the defaults: absent sections keep their default values,
// present sections replace the default section wholesale. The merged config
// is validated before being returned.
func LoadMissionConfig(r io.Reader) (*MissionConfig, error) {
	var payload missionJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("load mission config: decode failed: %w", err)
	}

	cfg := DefaultMissionConfig()
	if payload.Description != "" {
		cfg.Description = payload.Description
	}
	if payload.BaseDtS != nil {
		cfg.BaseDt = *payload.BaseDtS
	}
	if payload.TimeLimitS != nil {
		cfg.TimeLimit = *payload.TimeLimitS
	}
	if payload.UseEffectiveGravity != nil {
		cfg.UseEffectiveGravity = *payload.UseEffectiveGravity
	}
	cfg.Attitude = attitudeModeFromString(payload.AttitudeMode)

	if b := payload.Body; b != nil {
		cfg.Body = Body{
			Name:             b.Name,
			Radius:           b.RadiusM,
			SurfaceGravity:   b.SurfaceGravity,
			EquilibriumSpeed: b.EquilibriumSpeed,
		}
	}
	if v := payload.Vehicle; v != nil {
		cfg.Vehicle = model.VehicleParams{
			DryMass:            v.DryMassKg,
			InitialFuel:        v.InitialFuelKg,
			MainEngineThrust:   v.MainEngineThrustN,
			MainEngineBurnRate: v.MainEngineBurnRate,
			SideEngineThrust:   v.SideEngineThrustN,
			SideEngineLeverArm: v.SideEngineLeverArm,
			RotationalInertia:  v.RotationalInertia,
		}
	}
	if i := payload.Initial; i != nil {
		cfg.Initial = model.InitialConditions{
			Altitude:           i.AltitudeM,
			HorizontalDistance: i.HorizontalDistanceM,
			VerticalSpeed:      i.VerticalSpeedMS,
			HorizontalSpeed:    i.HorizontalSpeedMS,
			Angle:              i.AngleDeg,
		}
	}
	if c := payload.Controllers; c != nil {
		if c.Vertical != nil {
			cfg.VerticalGains = gainsFromJSON(c.Vertical)
		}
		if c.Horizontal != nil {
			cfg.HorizontalGains = gainsFromJSON(c.Horizontal)
		}
		if c.Orientation != nil {
			cfg.OrientationGains = gainsFromJSON(c.Orientation)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load mission config: %w", err)
	}
	return cfg, nil
}

func gainsFromJSON(g *gainsJSON) control.Gains {
	return control.Gains{
		Kp:        g.Kp,
		Ki:        g.Ki,
		Kd:        g.Kd,
		Setpoint:  g.Setpoint,
		OutputMin: g.OutputMin,
		OutputMax: g.OutputMax,
	}
}

// attitudeModeFromString maps the JSON attitude mode to the engine enum.
// Unknown or empty values fall back to the direct-angle path, the primary
// control path.
func attitudeModeFromString(s string) AttitudeMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "torque", "inertia", "rcs":
		return AttitudeTorque
	default:
		return AttitudeDirect
	}
}
