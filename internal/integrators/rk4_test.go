package integrators

import (
	"math"
	"testing"

	"github.com/mtovar/labsim/internal/dynamo"
)

// harmonic oscillator: x'' = -x, exact solution cos(t).
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerLessAccurateThanRK4(t *testing.T) {
	sys := &oscillator{}
	dt := 0.01
	steps := 500

	run := func(integ dynamo.Stepper) float64 {
		x := dynamo.State{1.0, 0.0}
		for i := 0; i < steps; i++ {
			x = integ.Step(sys, x, float64(i)*dt, dt)
		}
		return math.Abs(x[0] - math.Cos(float64(steps)*dt))
	}

	errEuler := run(NewEuler())
	errRK4 := run(NewRK4())

	if errRK4 >= errEuler {
		t.Errorf("rk4 error %.2e not smaller than euler error %.2e", errRK4, errEuler)
	}
}
