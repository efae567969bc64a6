package tomato

import (
	"fmt"
	"math"

	"github.com/mtovar/labsim/internal/dynamo"
	"github.com/mtovar/labsim/internal/rng"
)

// TBaseC is the GDD base temperature for tomato.
const TBaseC = 10.0

const (
	maxBiomass    = 1.0   // normalized carrying capacity
	growthRate    = 0.09  // logistic rate per effective day
	initialBiomass = 0.01 // seeded at germination
	maxHeightCm   = 240.0
	heightK       = 2.2 // height saturation vs biomass
	maxLeaves     = 90.0
	leavesK       = 2.6
	fruitCap      = 40.0
	fruitRate     = 0.004 // fruits per biomass-weighted effective GDD
	attritionRate = 0.02  // daily fractional loss per unit pest pressure
	germPerDay    = 25.0  // germination % per fully suitable day
)

// Params are the environmental inputs, held constant across the run.
type Params struct {
	AvgTempC        float64 `yaml:"avg_temp_c"`
	SoilMoisturePct float64 `yaml:"soil_moisture_pct"` // 0..100
	SunlightHours   float64 `yaml:"sunlight_hours"`    // 0..24
	NutrientIndex   float64 `yaml:"nutrient_index"`    // 0..1
	PestPressure    float64 `yaml:"pest_pressure"`     // 0..1
	Days            int     `yaml:"days"`
	// TempJitterC enables a stochastic daily temperature perturbation
	// drawn from the run's PRNG stream; zero keeps the run fully
	// deterministic without a source.
	TempJitterC float64 `yaml:"temp_jitter_c"`
}

func DefaultParams() Params {
	return Params{
		AvgTempC:        24,
		SoilMoisturePct: 60,
		SunlightHours:   10,
		NutrientIndex:   0.7,
		PestPressure:    0.1,
		Days:            120,
	}
}

func (p Params) Validate() error {
	switch {
	case p.Days <= 0:
		return fmt.Errorf("%w: day count %d must be positive", dynamo.ErrParameterBounds, p.Days)
	case p.AvgTempC < -10 || p.AvgTempC > 50:
		return fmt.Errorf("%w: average temperature %g outside [-10, 50]", dynamo.ErrParameterBounds, p.AvgTempC)
	case p.SoilMoisturePct < 0 || p.SoilMoisturePct > 100:
		return fmt.Errorf("%w: soil moisture %g outside [0, 100]", dynamo.ErrParameterBounds, p.SoilMoisturePct)
	case p.SunlightHours < 0 || p.SunlightHours > 24:
		return fmt.Errorf("%w: sunlight %g outside [0, 24]", dynamo.ErrParameterBounds, p.SunlightHours)
	case p.NutrientIndex < 0 || p.NutrientIndex > 1:
		return fmt.Errorf("%w: nutrient index %g outside [0, 1]", dynamo.ErrParameterBounds, p.NutrientIndex)
	case p.PestPressure < 0 || p.PestPressure > 1:
		return fmt.Errorf("%w: pest pressure %g outside [0, 1]", dynamo.ErrParameterBounds, p.PestPressure)
	case p.TempJitterC < 0:
		return fmt.Errorf("%w: temperature jitter %g must be non-negative", dynamo.ErrParameterBounds, p.TempJitterC)
	}
	return nil
}

// DayState is the observable state at the end of one simulated day.
type DayState struct {
	Day            int     `json:"day"`
	GDD            float64 `json:"gdd"` // cumulative
	GerminationPct float64 `json:"germination_pct"`
	Biomass        float64 `json:"biomass"`
	HeightCm       float64 `json:"height_cm"`
	Leaves         float64 `json:"leaves"`
	Stage          Stage   `json:"stage"`
	Fruits         float64 `json:"fruits"`
	Health         float64 `json:"health"`
}

// Simulate runs the daily growth loop and returns one DayState per day.
// A nil source is fine when TempJitterC is zero.
func Simulate(p Params, src *rng.Source) ([]DayState, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.TempJitterC > 0 && src == nil {
		return nil, fmt.Errorf("%w: temperature jitter requires a seeded source", dynamo.ErrParameterBounds)
	}

	moistMult := moistureMultiplier(p.SoilMoisturePct)
	lightMult := lightMultiplier(p.SunlightHours)
	nutrMult := nutrientMultiplier(p.NutrientIndex)
	pestMult := pestMultiplier(p.PestPressure)
	envMult := moistMult * lightMult * nutrMult * pestMult
	health := healthIndex(moistMult, lightMult, nutrMult, pestMult)

	days := make([]DayState, 0, p.Days)

	var (
		cumGDD     float64
		germPct    float64
		germinated bool
		biomass    float64
		fruits     float64
	)

	for day := 1; day <= p.Days; day++ {
		temp := p.AvgTempC
		if p.TempJitterC > 0 {
			temp += (src.Float64()*2 - 1) * p.TempJitterC
		}
		gddToday := math.Max(0, temp-TBaseC)
		cumGDD += gddToday

		if !germinated {
			germPct += germPerDay * germinationSuitability(temp, p.SoilMoisturePct)
			if germPct >= 100 {
				germPct = 100
				germinated = true
				biomass = initialBiomass
			}
		}

		if germinated {
			// logistic increment; multipliers are non-negative, so
			// biomass never decreases
			biomass += growthRate * biomass * (1 - biomass/maxBiomass) * envMult
		}

		stage := StageFromGDD(cumGDD, germinated)

		if stage >= FruitSet {
			fruits += fruitRate * biomass * gddToday * pestMult
			if fruits > fruitCap {
				fruits = fruitCap
			}
		}
		// Attrition runs every late-stage day on top of same-day accrual;
		// the worksheet applies both without reconciling them, and that
		// behavior is preserved as is.
		if stage >= FruitDevelopment {
			fruits *= 1 - attritionRate*p.PestPressure
		}

		days = append(days, DayState{
			Day:            day,
			GDD:            cumGDD,
			GerminationPct: germPct,
			Biomass:        biomass,
			HeightCm:       maxHeightCm * (1 - math.Exp(-heightK*biomass)),
			Leaves:         math.Round(maxLeaves * (1 - math.Exp(-leavesK*biomass))),
			Stage:          stage,
			Fruits:         fruits,
			Health:         health,
		})
	}

	return days, nil
}

// HeightAtDay is the convenience target used for dataset generation:
// final-day height for the given environment.
func HeightAtDay(p Params, src *rng.Source) (float64, error) {
	days, err := Simulate(p, src)
	if err != nil {
		return 0, err
	}
	return days[len(days)-1].HeightCm, nil
}

// germinationSuitability is the product of a temperature window centered
// near 25C and moisture adequacy, each in [0, 1].
func germinationSuitability(tempC, moisturePct float64) float64 {
	t := math.Exp(-math.Pow(tempC-25, 2) / (2 * 36))
	m := math.Min(1, moisturePct/50)
	return t * m
}

// moistureMultiplier peaks at 60% soil moisture and falls off as a bell.
func moistureMultiplier(pct float64) float64 {
	return math.Exp(-math.Pow(pct-60, 2) / (2 * 324))
}

// lightMultiplier increases with day length and saturates by 12 hours.
func lightMultiplier(hours float64) float64 {
	if hours >= 12 {
		return 1
	}
	return hours / 12
}

// nutrientMultiplier maps the 0..1 nutrient index linearly onto 0.6..1.4.
func nutrientMultiplier(idx float64) float64 {
	return 0.6 + 0.8*idx
}

// pestMultiplier decreases linearly from 1.0 at no pressure to 0.65 at
// full pressure.
func pestMultiplier(pressure float64) float64 {
	return 1 - 0.35*pressure
}

func healthIndex(moist, light, nutr, pest float64) float64 {
	return 0.3*moist + 0.25*light + 0.25*nutr + 0.2*pest
}
