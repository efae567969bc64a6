// Package dynamo provides the numerical primitives behind the time-series
// simulators.
//
// It defines the small vocabulary shared by the ODE-driven demos:
//
//   - [State]: vector of state variables (dX/dt = f(X, t))
//   - [System]: interface an ODE model implements
//   - [Stepper]: fixed-step numerical integrator interface
//
// # Example
//
//	sys := pendulum.NewModel(params)
//	step := integrators.NewRK4()
//	x := dynamo.State{theta0, 0}
//	x = step.Step(sys, x, t, dt)
//
// Steppers reuse internal scratch buffers and are NOT safe for concurrent
// use; give each goroutine its own instance.
package dynamo
