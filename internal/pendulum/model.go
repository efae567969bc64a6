// Package pendulum simulates a nonlinear damped pendulum with aerodynamic
// drag and derives the quantities the demos present: the full swing
// trajectory, a measured oscillation period, and the closed-form
// small-angle period used in formula mode.
package pendulum

import (
	"fmt"
	"math"

	"github.com/mtovar/labsim/internal/dynamo"
)

// BobArea is the fixed cross-section of the bob used in the drag term, m².
const BobArea = 0.00785

// Params are the physical inputs to one simulation run. Immutable once
// passed to Simulate.
type Params struct {
	Length       float64 `yaml:"length"`        // m
	InitialAngle float64 `yaml:"initial_angle"` // rad
	InitialOmega float64 `yaml:"initial_omega"` // rad/s
	Damping      float64 `yaml:"damping"`       // N*m*s/rad
	DragCoeff    float64 `yaml:"drag_coeff"`    // dimensionless C_d
	AirDensity   float64 `yaml:"air_density"`   // kg/m^3
	Mass         float64 `yaml:"mass"`          // kg
	Gravity      float64 `yaml:"gravity"`       // m/s^2
	Dt           float64 `yaml:"dt"`            // s
	Duration     float64 `yaml:"duration"`      // s
}

// DefaultParams mirror the interactive demo's initial control positions.
func DefaultParams() Params {
	return Params{
		Length:       1.0,
		InitialAngle: 0.35,
		Damping:      0.05,
		DragCoeff:    0.47,
		AirDensity:   1.225,
		Mass:         1.0,
		Gravity:      9.81,
		Dt:           0.01,
		Duration:     20.0,
	}
}

// Validate rejects physically meaningless inputs before integration.
func (p Params) Validate() error {
	switch {
	case p.Length <= 0:
		return fmt.Errorf("%w: length %g must be positive", dynamo.ErrParameterBounds, p.Length)
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass %g must be positive", dynamo.ErrParameterBounds, p.Mass)
	case p.Gravity <= 0:
		return fmt.Errorf("%w: gravity %g must be positive", dynamo.ErrParameterBounds, p.Gravity)
	case p.Damping < 0:
		return fmt.Errorf("%w: damping %g must be non-negative", dynamo.ErrParameterBounds, p.Damping)
	case p.DragCoeff < 0:
		return fmt.Errorf("%w: drag coefficient %g must be non-negative", dynamo.ErrParameterBounds, p.DragCoeff)
	case p.AirDensity < 0:
		return fmt.Errorf("%w: air density %g must be non-negative", dynamo.ErrParameterBounds, p.AirDensity)
	case p.Dt <= 0 || p.Duration <= 0:
		return fmt.Errorf("%w: dt %g, duration %g", dynamo.ErrStepSize, p.Dt, p.Duration)
	}
	return nil
}

// Model is the ODE form of the pendulum: state [theta, omega].
type Model struct {
	Length     float64
	Mass       float64
	Damping    float64
	DragCoeff  float64
	AirDensity float64
	Gravity    float64
}

func NewModel(p Params) *Model {
	return &Model{
		Length:     p.Length,
		Mass:       p.Mass,
		Damping:    p.Damping,
		DragCoeff:  p.DragCoeff,
		AirDensity: p.AirDensity,
		Gravity:    p.Gravity,
	}
}

func (m *Model) StateDim() int { return 2 }

// Derive returns [omega, alpha] for state [theta, omega].
//
// Torque balance about the pivot: gravity restoring torque, viscous
// damping c*omega acting at radius L, and quadratic air drag
// 0.5*rho*|v|*v*A*Cd on the bob at radius L, divided by the moment of
// inertia m*L^2.
func (m *Model) Derive(x dynamo.State, t float64) dynamo.State {
	theta, omega := x[0], x[1]

	v := m.Length * omega
	gravityTorque := -m.Mass * m.Gravity * m.Length * math.Sin(theta)
	dampingTorque := -m.Damping * omega * m.Length * m.Length
	dragTorque := -0.5 * m.AirDensity * math.Abs(v) * v * BobArea * m.DragCoeff * m.Length

	alpha := (gravityTorque + dampingTorque + dragTorque) / (m.Mass * m.Length * m.Length)
	return dynamo.State{omega, alpha}
}

// Energy is the total mechanical energy for state [theta, omega].
func (m *Model) Energy(x dynamo.State) float64 {
	v := m.Length * x[1]
	ke := 0.5 * m.Mass * v * v
	pe := m.Mass * m.Gravity * m.Length * (1 - math.Cos(x[0]))
	return ke + pe
}

// Alpha evaluates the angular acceleration at the given state.
func (m *Model) Alpha(theta, omega float64) float64 {
	return m.Derive(dynamo.State{theta, omega}, 0)[1]
}

// SmallAnglePeriod is the closed-form period 2*pi*sqrt(L/g), valid for
// small swings. It doubles as formula-mode output and as the fallback when
// peak detection cannot measure a period.
func SmallAnglePeriod(length, gravity float64) float64 {
	return 2 * math.Pi * math.Sqrt(length/gravity)
}
