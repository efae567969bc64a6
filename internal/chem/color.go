package chem

import (
	"fmt"
	"math"

	"github.com/mtovar/labsim/internal/dynamo"
	"github.com/mtovar/labsim/internal/rng"
)

// Params are the inputs to one color computation. PathLengthCm is carried
// as a dataset feature for parity with the lab worksheet; the indicator
// models themselves do not depend on it.
type Params struct {
	Indicator    Indicator
	PH           float64
	PathLengthCm float64
	// NoiseSigma is the half-width of the uniform perturbation added to
	// each channel; zero disables noise.
	NoiseSigma float64
}

func DefaultParams() Params {
	return Params{Indicator: Litmus, PH: 7.0, PathLengthCm: 1.0}
}

func (p Params) Validate() error {
	if p.PH < 0 || p.PH > 14 {
		return fmt.Errorf("%w: pH %g outside [0, 14]", dynamo.ErrParameterBounds, p.PH)
	}
	if p.NoiseSigma < 0 {
		return fmt.Errorf("%w: noise sigma %g must be non-negative", dynamo.ErrParameterBounds, p.NoiseSigma)
	}
	if p.PathLengthCm < 0 {
		return fmt.Errorf("%w: path length %g must be non-negative", dynamo.ErrParameterBounds, p.PathLengthCm)
	}
	return nil
}

// Simulate computes the indicator color for the given parameters. A nil
// source disables noise regardless of NoiseSigma.
func Simulate(p Params, src *rng.Source) (RGB, error) {
	if err := p.Validate(); err != nil {
		return RGB{}, err
	}

	var c RGB
	switch p.Indicator {
	case Litmus:
		c = litmusColor(p.PH)
	case Universal:
		c = universalColor(p.PH)
	default:
		return RGB{}, fmt.Errorf("%w: %d", ErrUnknownIndicator, int(p.Indicator))
	}

	if src != nil && p.NoiseSigma > 0 {
		c = perturb(c, p.NoiseSigma, src)
	}
	return c, nil
}

// litmusColor blends the acid and base colors with the
// Henderson-Hasselbalch base fraction ratio/(1+ratio), ratio = 10^(pH-pKa).
func litmusColor(ph float64) RGB {
	ratio := math.Pow(10, ph-litmusPKa)
	baseFrac := ratio / (1 + ratio)
	return lerp(litmusAcid, litmusBase, baseFrac)
}

// universalColor interpolates between the bracketing anchors of the chart,
// clamping outside the table. A pH exactly on an anchor returns that
// anchor's color.
func universalColor(ph float64) RGB {
	if ph <= universalTable[0].ph {
		return universalTable[0].color
	}
	last := universalTable[len(universalTable)-1]
	if ph >= last.ph {
		return last.color
	}

	for i := 1; i < len(universalTable); i++ {
		hi := universalTable[i]
		if ph > hi.ph {
			continue
		}
		lo := universalTable[i-1]
		if ph == hi.ph {
			return hi.color
		}
		t := (ph - lo.ph) / (hi.ph - lo.ph)
		return lerp(lo.color, hi.color, t)
	}
	return last.color
}

func lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: int(math.Round(float64(a.R) + t*float64(b.R-a.R))),
		G: int(math.Round(float64(a.G) + t*float64(b.G-a.G))),
		B: int(math.Round(float64(a.B) + t*float64(b.B-a.B))),
	}
}

// perturb adds independent uniform noise in [-sigma, sigma] per channel
// and clamps to the displayable range.
func perturb(c RGB, sigma float64, src *rng.Source) RGB {
	jitter := func(ch int) int {
		v := float64(ch) + (src.Float64()*2-1)*sigma
		return clampChannel(int(math.Round(v)))
	}
	return RGB{R: jitter(c.R), G: jitter(c.G), B: jitter(c.B)}
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
