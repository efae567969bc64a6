// Package tomato simulates day-by-day tomato growth: growing-degree-day
// accumulation, germination, logistic biomass growth under environmental
// multipliers, phenology staging, fruiting, and a daily health index.
package tomato

// Stage is the discrete phenology phase, ordered by development.
type Stage int

const (
	Seed Stage = iota
	Germination
	Seedling
	Vegetative
	Flowering
	FruitSet
	FruitDevelopment
	Ripening
)

var stageNames = [...]string{
	"seed",
	"germination",
	"seedling",
	"vegetative",
	"flowering",
	"fruit_set",
	"fruit_development",
	"ripening",
}

func (s Stage) String() string {
	if s < Seed || s > Ripening {
		return "unknown"
	}
	return stageNames[s]
}

// Cumulative GDD at which each stage begins. Values mirror the lab
// worksheet and are deliberately not re-tuned.
const (
	seedlingAt   = 50.0
	vegetativeAt = 150.0
	floweringAt  = 400.0
	fruitSetAt   = 700.0
	fruitDevAt   = 900.0
	ripeningAt   = 1200.0
)

// StageFromGDD maps cumulative GDD to a stage. An ungerminated plant
// stays at Seed no matter how much heat has accumulated.
func StageFromGDD(cumGDD float64, germinated bool) Stage {
	if !germinated {
		return Seed
	}
	switch {
	case cumGDD < seedlingAt:
		return Germination
	case cumGDD < vegetativeAt:
		return Seedling
	case cumGDD < floweringAt:
		return Vegetative
	case cumGDD < fruitSetAt:
		return Flowering
	case cumGDD < fruitDevAt:
		return FruitSet
	case cumGDD < ripeningAt:
		return FruitDevelopment
	default:
		return Ripening
	}
}
