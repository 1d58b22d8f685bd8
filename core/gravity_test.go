package core

import (
	"math"
	"testing"
)

func TestGravityConstantWithAltitude(t *testing.T) {
	moon := Moon()

	for _, altitude := range []float64{0, 2000, 30000} {
		if g := moon.GravityAt(altitude); g != 1.622 {
			t.Fatalf("GravityAt(%v) = %v, want 1.622", altitude, g)
		}
	}
}

func TestEffectiveGravityScalesWithHorizontalSpeed(t *testing.T) {
	moon := Moon()

	if g := moon.EffectiveGravity(0); g != moon.SurfaceGravity {
		t.Fatalf("EffectiveGravity(0) = %v, want full surface gravity", g)
	}
	if g := moon.EffectiveGravity(1700); g != 0 {
		t.Fatalf("EffectiveGravity(1700) = %v, want 0 at equilibrium speed", g)
	}
	if g := moon.EffectiveGravity(-1700); g != 0 {
		t.Fatalf("EffectiveGravity(-1700) = %v, want sign-independent 0", g)
	}
	if g := moon.EffectiveGravity(850); math.Abs(g-0.811) > 1e-12 {
		t.Fatalf("EffectiveGravity(850) = %v, want 0.811", g)
	}
}

func TestEffectiveGravityZeroEquilibriumSpeed(t *testing.T) {
	b := Body{SurfaceGravity: 9.81}

	if g := b.EffectiveGravity(123); g != 9.81 {
		t.Fatalf("EffectiveGravity with no equilibrium speed = %v, want surface gravity", g)
	}
}
