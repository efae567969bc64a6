package config

import (
	"github.com/mtovar/labsim/internal/pendulum"
	"github.com/mtovar/labsim/internal/tomato"
)

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"small": {
			Experiment: "pendulum",
			Pendulum: pendulum.Params{
				Length: 1.0, InitialAngle: 0.15, Damping: 0.02, DragCoeff: 0.47,
				AirDensity: 1.225, Mass: 1.0, Gravity: 9.81, Dt: 0.01, Duration: 20.0,
			},
		},
		"wide": {
			Experiment: "pendulum",
			Pendulum: pendulum.Params{
				Length: 1.5, InitialAngle: 1.2, Damping: 0.02, DragCoeff: 0.47,
				AirDensity: 1.225, Mass: 1.0, Gravity: 9.81, Dt: 0.01, Duration: 30.0,
			},
		},
		"viscous": {
			Experiment: "pendulum",
			Pendulum: pendulum.Params{
				Length: 0.8, InitialAngle: 0.9, Damping: 0.35, DragCoeff: 1.0,
				AirDensity: 1.225, Mass: 0.6, Gravity: 9.81, Dt: 0.01, Duration: 15.0,
			},
		},
		"lunar": {
			Experiment: "pendulum",
			Pendulum: pendulum.Params{
				Length: 1.0, InitialAngle: 0.35, Damping: 0.0, DragCoeff: 0.0,
				AirDensity: 0.0, Mass: 1.0, Gravity: 1.62, Dt: 0.01, Duration: 40.0,
			},
		},
	},
	"tomato": {
		"greenhouse": {
			Experiment: "tomato",
			Tomato: tomato.Params{
				AvgTempC: 25.0, SoilMoisturePct: 60.0, SunlightHours: 13.0,
				NutrientIndex: 0.9, PestPressure: 0.05, Days: 120,
			},
		},
		"drought": {
			Experiment: "tomato",
			Tomato: tomato.Params{
				AvgTempC: 31.0, SoilMoisturePct: 25.0, SunlightHours: 12.0,
				NutrientIndex: 0.5, PestPressure: 0.2, Days: 120,
			},
		},
		"shade": {
			Experiment: "tomato",
			Tomato: tomato.Params{
				AvgTempC: 21.0, SoilMoisturePct: 55.0, SunlightHours: 6.0,
				NutrientIndex: 0.7, PestPressure: 0.1, Days: 150,
			},
		},
	},
	"acid-litmus": {
		"vinegar": {
			Experiment: "acid-litmus",
			Chem:       ChemConfig{Indicator: "litmus", PH: 2.9, PathLengthCm: 1.0},
		},
		"ammonia": {
			Experiment: "acid-litmus",
			Chem:       ChemConfig{Indicator: "litmus", PH: 11.5, PathLengthCm: 1.0},
		},
	},
	"acid-universal": {
		"titration": {
			Experiment: "acid-universal",
			Chem:       ChemConfig{Indicator: "universal", PH: 7.0, PathLengthCm: 1.0, NoiseSigma: 4.0},
		},
		"soda": {
			Experiment: "acid-universal",
			Chem:       ChemConfig{Indicator: "universal", PH: 3.4, PathLengthCm: 1.0},
		},
	},
}

func GetPreset(experiment, preset string) *Config {
	expPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	cfg, ok := expPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(experiment string) []string {
	expPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(expPresets))
	for name := range expPresets {
		names = append(names, name)
	}
	return names
}
