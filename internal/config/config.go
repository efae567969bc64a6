package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mtovar/labsim/internal/pendulum"
	"github.com/mtovar/labsim/internal/tomato"
)

const (
	DefaultSamples    = 400
	DefaultEpochs     = 200
	DefaultBatchSize  = 16
	DefaultSeed       = 1337
	DefaultLearnRate  = 0.005
	DefaultValidSplit = 0.15
)

type Config struct {
	Experiment string          `yaml:"experiment"`
	Pendulum   pendulum.Params `yaml:"pendulum"`
	Tomato     tomato.Params   `yaml:"tomato"`
	Chem       ChemConfig      `yaml:"chem"`
	Training   TrainingConfig  `yaml:"training"`
}

type ChemConfig struct {
	Indicator    string  `yaml:"indicator"`
	PH           float64 `yaml:"ph"`
	PathLengthCm float64 `yaml:"path_length_cm"`
	NoiseSigma   float64 `yaml:"noise_sigma"`
}

type TrainingConfig struct {
	Samples         int     `yaml:"samples"`
	Epochs          int     `yaml:"epochs"`
	BatchSize       int     `yaml:"batch_size"`
	LearningRate    float64 `yaml:"learning_rate"`
	ValidationSplit float64 `yaml:"validation_split"`
	Seed            uint32  `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Experiment: "pendulum",
		Pendulum:   pendulum.DefaultParams(),
		Tomato:     tomato.DefaultParams(),
		Chem: ChemConfig{
			Indicator:    "universal",
			PH:           7.0,
			PathLengthCm: 1.0,
			NoiseSigma:   0.0,
		},
		Training: TrainingConfig{
			Samples:         DefaultSamples,
			Epochs:          DefaultEpochs,
			BatchSize:       DefaultBatchSize,
			LearningRate:    DefaultLearnRate,
			ValidationSplit: DefaultValidSplit,
			Seed:            DefaultSeed,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
