package dataset

import (
	"github.com/mtovar/labsim/internal/chem"
	"github.com/mtovar/labsim/internal/pendulum"
	"github.com/mtovar/labsim/internal/rng"
	"github.com/mtovar/labsim/internal/tomato"
)

// Sampling ranges. These are fixed: changing them invalidates any
// previously trained normalization.
const (
	phMin, phMax     = 0.0, 14.0
	pathMin, pathMax = 0.5, 2.0
	chemNoiseSigma   = 6.0

	lengthMin, lengthMax   = 0.2, 2.5
	angleMin, angleMax     = 0.1, 1.2
	dampingMin, dampingMax = 0.0, 0.4
	dragMin, dragMax       = 0.0, 1.0
	massMin, massMax       = 0.5, 3.0
	gravityMin, gravityMax = 3.7, 24.8

	tempMin, tempMax   = 12.0, 35.0
	moistMin, moistMax = 20.0, 90.0
	sunMin, sunMax     = 4.0, 14.0
	daysMin, daysMax   = 30, 150
)

// pendulum dataset runs use a finer grid than the interactive demo;
// accuracy of the period label is bounded by dt.
const (
	pendDatasetDt       = 0.005
	pendDatasetDuration = 20.0
)

// GenerateAcidBase draws n (pH, path length) tuples for one indicator and
// labels them with the noisy simulated color, channels normalized to [0,1].
func GenerateAcidBase(ind chem.Indicator, n int, seed uint32) (*Set, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	src := rng.New(seed)

	set := &Set{
		FeatureNames: []string{"ph", "path_length_cm"},
		TargetNames:  []string{"r", "g", "b"},
		Rows:         make([]Row, 0, n),
	}
	for i := 0; i < n; i++ {
		p := chem.Params{
			Indicator:    ind,
			PH:           src.InRange(phMin, phMax),
			PathLengthCm: src.InRange(pathMin, pathMax),
			NoiseSigma:   chemNoiseSigma,
		}
		c, err := chem.Simulate(p, src)
		if err != nil {
			return nil, err
		}
		set.Rows = append(set.Rows, Row{
			Features: []float64{p.PH, p.PathLengthCm},
			Targets:  []float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255},
		})
	}
	return set, nil
}

// GeneratePendulum draws n parameter tuples and labels each with its
// oscillation period in seconds. Over-damped draws whose trajectory has
// too few peaks fall back to the closed-form small-angle period and are
// marked with Fallback.
func GeneratePendulum(n int, seed uint32) (*Set, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	src := rng.New(seed)

	set := &Set{
		FeatureNames: []string{"length", "initial_angle", "damping", "drag_coeff", "mass", "gravity"},
		TargetNames:  []string{"period_s"},
		Rows:         make([]Row, 0, n),
	}
	for i := 0; i < n; i++ {
		p := pendulum.Params{
			Length:       src.InRange(lengthMin, lengthMax),
			InitialAngle: src.InRange(angleMin, angleMax),
			Damping:      src.InRange(dampingMin, dampingMax),
			DragCoeff:    src.InRange(dragMin, dragMax),
			AirDensity:   1.225,
			Mass:         src.InRange(massMin, massMax),
			Gravity:      src.InRange(gravityMin, gravityMax),
			Dt:           pendDatasetDt,
			Duration:     pendDatasetDuration,
		}
		res, err := pendulum.Simulate(p, nil)
		if err != nil {
			return nil, err
		}
		set.Rows = append(set.Rows, Row{
			Features:  []float64{p.Length, p.InitialAngle, p.Damping, p.DragCoeff, p.Mass, p.Gravity},
			Targets:   []float64{res.Period},
			Fallback:  !res.Measured,
		})
	}
	return set, nil
}

// GenerateTomato draws n environment tuples (with a sampled day count)
// and labels each with the plant height on the final day.
func GenerateTomato(n int, seed uint32) (*Set, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	src := rng.New(seed)

	set := &Set{
		FeatureNames: []string{"avg_temp_c", "soil_moisture_pct", "sunlight_hours", "nutrient_index", "pest_pressure", "days"},
		TargetNames:  []string{"height_cm"},
		Rows:         make([]Row, 0, n),
	}
	for i := 0; i < n; i++ {
		p := tomato.Params{
			AvgTempC:        src.InRange(tempMin, tempMax),
			SoilMoisturePct: src.InRange(moistMin, moistMax),
			SunlightHours:   src.InRange(sunMin, sunMax),
			NutrientIndex:   src.Float64(),
			PestPressure:    src.Float64(),
			Days:            daysMin + int(src.Float64()*float64(daysMax-daysMin+1)),
		}
		h, err := tomato.HeightAtDay(p, nil)
		if err != nil {
			return nil, err
		}
		set.Rows = append(set.Rows, Row{
			Features: []float64{p.AvgTempC, p.SoilMoisturePct, p.SunlightHours, p.NutrientIndex, p.PestPressure, float64(p.Days)},
			Targets:  []float64{h},
		})
	}
	return set, nil
}

// GenerateTomatoDaily draws n environments and emits one row per simulated
// day, labeling (environment..., day) with that day's height. Used for the
// trajectory-labeled training mode.
func GenerateTomatoDaily(n int, seed uint32) (*Set, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	src := rng.New(seed)

	set := &Set{
		FeatureNames: []string{"avg_temp_c", "soil_moisture_pct", "sunlight_hours", "nutrient_index", "pest_pressure", "day"},
		TargetNames:  []string{"height_cm"},
	}
	for i := 0; i < n; i++ {
		p := tomato.Params{
			AvgTempC:        src.InRange(tempMin, tempMax),
			SoilMoisturePct: src.InRange(moistMin, moistMax),
			SunlightHours:   src.InRange(sunMin, sunMax),
			NutrientIndex:   src.Float64(),
			PestPressure:    src.Float64(),
			Days:            daysMin + int(src.Float64()*float64(daysMax-daysMin+1)),
		}
		days, err := tomato.Simulate(p, nil)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			set.Rows = append(set.Rows, Row{
				Features: []float64{p.AvgTempC, p.SoilMoisturePct, p.SunlightHours, p.NutrientIndex, p.PestPressure, float64(d.Day)},
				Targets:  []float64{d.HeightCm},
			})
		}
	}
	return set, nil
}
