// Package experiment wires each demo domain's simulator, dataset
// generator, and ML session into the surface the CLI and HTTP layers
// consume.
package experiment

import (
	"context"
	"fmt"

	"github.com/mtovar/labsim/internal/dataset"
	"github.com/mtovar/labsim/internal/ml"
	"github.com/mtovar/labsim/internal/store"
)

// Experiment is one demo domain's training and inference surface. The
// typed simulation entry points live on the concrete types; this
// interface covers what the CLI and inference server need generically.
type Experiment interface {
	Name() string
	FeatureNames() []string

	// Ready reports whether a trained model is installed.
	Ready() bool

	// GenerateDataset draws n reproducible synthetic rows.
	GenerateDataset(n int, seed uint32) (*dataset.Set, error)

	// Train fits a fresh model on the set and installs it in the
	// experiment's session. At most one Train per experiment should
	// be in flight; callers serialize invocations.
	Train(ctx context.Context, set *dataset.Set, opts ml.Options) (*ml.Summary, error)

	// PredictVector runs inference on raw feature values and returns
	// outputs already rescaled to physical units.
	PredictVector(ctx context.Context, features []float64) ([]float64, error)

	// Save and Load move the session's model + normalization through
	// the two fixed store slots for this experiment.
	Save(ctx context.Context, kv *store.KV) error
	Load(ctx context.Context, kv *store.KV) error
}

// Registry maps experiment names to constructors.
type Registry struct {
	builders map[string]func() Experiment
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]func() Experiment)}
	r.builders["acid-litmus"] = func() Experiment { return NewAcidBase(LitmusVariant) }
	r.builders["acid-universal"] = func() Experiment { return NewAcidBase(UniversalVariant) }
	r.builders["pendulum"] = func() Experiment { return NewPendulum() }
	r.builders["tomato"] = func() Experiment { return NewTomato() }
	return r
}

func (r *Registry) Get(name string) (Experiment, error) {
	fn, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown experiment: %s", name)
	}
	return fn(), nil
}

func (r *Registry) Names() []string {
	return []string{"acid-litmus", "acid-universal", "pendulum", "tomato"}
}

// checkSet validates set shape against the experiment before training.
func checkSet(set *dataset.Set, featureNames []string) error {
	if set == nil || len(set.Rows) == 0 {
		return fmt.Errorf("%w: empty dataset", ml.ErrDatasetTooSmall)
	}
	if len(set.FeatureNames) != len(featureNames) {
		return fmt.Errorf("%w: dataset has %d feature columns, experiment expects %d",
			ml.ErrFeatureMismatch, len(set.FeatureNames), len(featureNames))
	}
	return nil
}
