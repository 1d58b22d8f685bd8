package model

import (
	"math"
	"testing"
)

func TestNewSpacecraftMassInvariant(t *testing.T) {
	sc := NewSpacecraft(DefaultVehicleParams(), DefaultInitialConditions())

	if sc.Fuel != 420 {
		t.Fatalf("Fuel = %v, want 420", sc.Fuel)
	}
	if sc.TotalMass != 165+420 {
		t.Fatalf("TotalMass = %v, want %v", sc.TotalMass, 165+420)
	}
	if sc.Altitude != 30000 || sc.HorizontalSpeed != 1700 {
		t.Fatalf("unexpected initial state: altitude=%v hSpeed=%v", sc.Altitude, sc.HorizontalSpeed)
	}
}

func TestConsumeFuelClampsAtEmptyTank(t *testing.T) {
	sc := NewSpacecraft(DefaultVehicleParams(), DefaultInitialConditions())
	sc.Fuel = 1.0
	sc.TotalMass = sc.Params.DryMass + sc.Fuel

	consumed := sc.ConsumeFuel(5.0)
	if consumed != 1.0 {
		t.Fatalf("consumed = %v, want 1.0", consumed)
	}
	if sc.Fuel != 0 {
		t.Fatalf("Fuel = %v, want 0", sc.Fuel)
	}
	if sc.TotalMass != sc.Params.DryMass {
		t.Fatalf("TotalMass = %v, want dry mass %v", sc.TotalMass, sc.Params.DryMass)
	}

	// Burning from an empty tank stays at zero.
	if consumed := sc.ConsumeFuel(0.5); consumed != 0 {
		t.Fatalf("consumed from empty tank = %v, want 0", consumed)
	}
	if sc.Fuel != 0 {
		t.Fatalf("Fuel = %v after empty-tank burn, want 0", sc.Fuel)
	}
}

func TestConsumeFuelMaintainsMassInvariant(t *testing.T) {
	sc := NewSpacecraft(DefaultVehicleParams(), DefaultInitialConditions())

	for i := 0; i < 50; i++ {
		sc.ConsumeFuel(3.7)
		if got, want := sc.TotalMass, sc.Params.DryMass+sc.Fuel; got != want {
			t.Fatalf("step %d: TotalMass = %v, want %v", i, got, want)
		}
		if sc.Fuel < 0 {
			t.Fatalf("step %d: negative fuel %v", i, sc.Fuel)
		}
	}
}

func TestIntegratePureKinematics(t *testing.T) {
	// With zero accelerations horizontal distance must accumulate exactly
	// initialHorizontalSpeed * n * dt.
	init := InitialConditions{Altitude: 30000, HorizontalSpeed: 1700}
	sc := NewSpacecraft(DefaultVehicleParams(), init)

	const (
		dt = 0.1
		n  = 250
	)
	for i := 0; i < n; i++ {
		sc.Integrate(0, 0, dt)
	}

	want := 1700.0 * n * dt
	if math.Abs(sc.HorizontalDistance-want) > 1e-6 {
		t.Fatalf("HorizontalDistance = %v, want %v", sc.HorizontalDistance, want)
	}
	if math.Abs(sc.Elapsed-n*dt) > 1e-9 {
		t.Fatalf("Elapsed = %v, want %v", sc.Elapsed, n*dt)
	}
	if sc.Altitude != 30000 {
		t.Fatalf("Altitude = %v, want unchanged 30000", sc.Altitude)
	}
}

func TestIntegrateClampsAltitudeAtSurface(t *testing.T) {
	sc := NewSpacecraft(DefaultVehicleParams(), InitialConditions{Altitude: 1, VerticalSpeed: 100})

	sc.Integrate(0, 0, 1.0)
	if sc.Altitude != 0 {
		t.Fatalf("Altitude = %v, want clamp at 0", sc.Altitude)
	}
}

func TestApplyTorqueRotationalKinematics(t *testing.T) {
	params := DefaultVehicleParams()
	sc := NewSpacecraft(params, InitialConditions{})

	// 100 N·m against 100 kg·m² is 1 rad/s² of angular acceleration.
	sc.ApplyTorque(100, 1.0)

	wantSpeed := 180 / math.Pi
	if math.Abs(sc.RotationalSpeed-wantSpeed) > 1e-9 {
		t.Fatalf("RotationalSpeed = %v, want %v", sc.RotationalSpeed, wantSpeed)
	}
	if math.Abs(sc.Angle-wantSpeed) > 1e-9 {
		t.Fatalf("Angle = %v, want %v", sc.Angle, wantSpeed)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	init := DefaultInitialConditions()
	sc := NewSpacecraft(DefaultVehicleParams(), init)

	sc.ConsumeFuel(100)
	sc.Integrate(1.5, -0.5, 10)
	sc.ApplyTorque(50, 1)

	sc.Reset(init)

	fresh := NewSpacecraft(DefaultVehicleParams(), init)
	if *sc != *fresh {
		t.Fatalf("Reset state = %+v, want %+v", *sc, *fresh)
	}
}
