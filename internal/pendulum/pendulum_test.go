package pendulum

import (
	"errors"
	"math"
	"testing"

	"github.com/mtovar/labsim/internal/dynamo"
)

func TestEquilibrium(t *testing.T) {
	m := NewModel(DefaultParams())

	dx := m.Derive(dynamo.State{0, 0}, 0)

	if math.Abs(dx[0]) > 1e-12 {
		t.Errorf("expected zero velocity at equilibrium, got %f", dx[0])
	}
	if math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected zero acceleration at equilibrium, got %f", dx[1])
	}
}

func TestGravityOnly(t *testing.T) {
	p := DefaultParams()
	p.Damping = 0
	p.DragCoeff = 0
	m := NewModel(p)

	dx := m.Derive(dynamo.State{math.Pi / 2, 0}, 0)

	expected := -p.Gravity / p.Length
	if math.Abs(dx[1]-expected) > 1e-9 {
		t.Errorf("expected acceleration %f, got %f", expected, dx[1])
	}
}

func TestSmallAnglePeriodMatch(t *testing.T) {
	p := DefaultParams()
	p.Damping = 0
	p.DragCoeff = 0
	p.InitialAngle = 5 * math.Pi / 180
	p.Duration = 20

	res, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Measured {
		t.Fatal("expected a measured period over 20s")
	}

	closed := SmallAnglePeriod(p.Length, p.Gravity)
	if math.Abs(res.Period-closed)/closed > 0.01 {
		t.Errorf("measured period %f deviates >1%% from closed-form %f", res.Period, closed)
	}
}

func TestEnergyConservedWithoutLosses(t *testing.T) {
	p := DefaultParams()
	p.Damping = 0
	p.DragCoeff = 0

	res, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}

	e0 := res.Samples[0].Energy
	for _, s := range res.Samples {
		if math.Abs(s.Energy-e0)/e0 > 1e-3 {
			t.Fatalf("energy drifted beyond 1e-3 relative at t=%.2f: %f vs %f", s.T, s.Energy, e0)
		}
	}
}

func TestEnergyDecaysWithDamping(t *testing.T) {
	p := DefaultParams()
	p.Damping = 0.2
	p.DragCoeff = 0.47

	res, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}

	// allow a tiny numerical tolerance per step
	for i := 1; i < len(res.Samples); i++ {
		if res.Samples[i].Energy > res.Samples[i-1].Energy+1e-9 {
			t.Fatalf("energy increased at t=%.2f under damping", res.Samples[i].T)
		}
	}
	last := res.Samples[len(res.Samples)-1].Energy
	if last >= res.Samples[0].Energy {
		t.Error("expected net energy loss over the run")
	}
}

func TestTooFewPeaks(t *testing.T) {
	p := DefaultParams()
	p.Duration = 1.0 // shorter than one period

	res, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Measured {
		t.Error("expected fallback period for a sub-period run")
	}
	if res.Period != SmallAnglePeriod(p.Length, p.Gravity) {
		t.Errorf("fallback period %f != small-angle period", res.Period)
	}

	_, _, err = EstimatePeriod(res.Samples)
	if !errors.Is(err, ErrTooFewPeaks) {
		t.Errorf("expected ErrTooFewPeaks, got %v", err)
	}
}

func TestSeriesShape(t *testing.T) {
	p := DefaultParams()
	p.Dt = 0.01
	p.Duration = 2.0

	res, err := Simulate(p, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Samples) != 201 {
		t.Fatalf("expected 201 samples for 2s at dt=0.01, got %d", len(res.Samples))
	}
	if res.Samples[0].T != 0 || res.Samples[0].Theta != p.InitialAngle {
		t.Error("first sample must carry the initial condition at t=0")
	}
	for i := 1; i < len(res.Samples); i++ {
		if res.Samples[i].T <= res.Samples[i-1].T {
			t.Fatalf("time not strictly increasing at index %d", i)
		}
	}
}

func TestValidation(t *testing.T) {
	cases := []func(*Params){
		func(p *Params) { p.Length = -1 },
		func(p *Params) { p.Mass = 0 },
		func(p *Params) { p.Gravity = 0 },
		func(p *Params) { p.Damping = -0.1 },
		func(p *Params) { p.Dt = 0 },
		func(p *Params) { p.Duration = -5 },
	}
	for i, mutate := range cases {
		p := DefaultParams()
		mutate(&p)
		if _, err := Simulate(p, nil); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
