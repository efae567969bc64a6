package integrators

import "github.com/mtovar/labsim/internal/dynamo"

// Euler is the explicit first-order stepper, kept for integrator
// comparisons; RK4 is the default everywhere else.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
