package pendulum

import (
	"errors"
	"fmt"
	"math"

	"github.com/mtovar/labsim/internal/dynamo"
	"github.com/mtovar/labsim/internal/integrators"
)

// ErrTooFewPeaks means the trajectory did not oscillate long enough to
// measure a period; callers substitute SmallAnglePeriod.
var ErrTooFewPeaks = errors.New("pendulum: need at least 3 peaks to estimate period")

// Sample is one recorded integration step.
type Sample struct {
	T      float64 `json:"t"`
	Theta  float64 `json:"theta"`
	Omega  float64 `json:"omega"`
	Alpha  float64 `json:"alpha"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Energy float64 `json:"energy"`
}

// Result is a full trajectory plus the period estimate for it.
type Result struct {
	Samples []Sample

	// Period is the measured mean inter-peak interval, or the
	// small-angle fallback when Measured is false.
	Period    float64
	PeriodStd float64
	// Measured is true when Period came from peak detection rather
	// than the closed-form fallback.
	Measured bool
}

// Simulate integrates the pendulum from t=0 to p.Duration inclusive with
// the given stepper (RK4 when nil), recording every step.
func Simulate(p Params, stepper dynamo.Stepper) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if stepper == nil {
		stepper = integrators.NewRK4()
	}

	model := NewModel(p)
	steps := int(math.Round(p.Duration / p.Dt))

	samples := make([]Sample, 0, steps+1)
	x := dynamo.State{p.InitialAngle, p.InitialOmega}
	t := 0.0
	samples = append(samples, record(model, p, x, t))

	for i := 0; i < steps; i++ {
		x = stepper.Step(model, x, t, p.Dt)
		t += p.Dt
		if !x.IsValid() {
			return nil, &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}
		samples = append(samples, record(model, p, x, t))
	}

	res := &Result{Samples: samples}
	mean, std, err := EstimatePeriod(samples)
	if err != nil {
		res.Period = SmallAnglePeriod(p.Length, p.Gravity)
		res.Measured = false
	} else {
		res.Period = mean
		res.PeriodStd = std
		res.Measured = true
	}
	return res, nil
}

func record(m *Model, p Params, x dynamo.State, t float64) Sample {
	theta, omega := x[0], x[1]
	return Sample{
		T:      t,
		Theta:  theta,
		Omega:  omega,
		Alpha:  m.Alpha(theta, omega),
		X:      p.Length * math.Sin(theta),
		Y:      -p.Length * math.Cos(theta),
		Energy: m.Energy(x),
	}
}

// EstimatePeriod finds local maxima of theta over the series and returns
// the mean and standard deviation of the inter-peak time differences.
// Fewer than 3 peaks yields ErrTooFewPeaks.
func EstimatePeriod(samples []Sample) (mean, std float64, err error) {
	var peaks []float64
	for i := 1; i < len(samples)-1; i++ {
		if samples[i].Theta > samples[i-1].Theta && samples[i].Theta > samples[i+1].Theta {
			peaks = append(peaks, samples[i].T)
		}
	}
	if len(peaks) < 3 {
		return 0, 0, fmt.Errorf("%w (found %d)", ErrTooFewPeaks, len(peaks))
	}

	intervals := make([]float64, len(peaks)-1)
	sum := 0.0
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = peaks[i] - peaks[i-1]
		sum += intervals[i-1]
	}
	mean = sum / float64(len(intervals))

	variance := 0.0
	for _, iv := range intervals {
		d := iv - mean
		variance += d * d
	}
	variance /= float64(len(intervals))
	return mean, math.Sqrt(variance), nil
}
