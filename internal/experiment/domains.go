package experiment

import (
	"context"
	"math"

	"github.com/mtovar/labsim/internal/chem"
	"github.com/mtovar/labsim/internal/dataset"
	"github.com/mtovar/labsim/internal/ml"
	"github.com/mtovar/labsim/internal/pendulum"
	"github.com/mtovar/labsim/internal/rng"
	"github.com/mtovar/labsim/internal/store"
	"github.com/mtovar/labsim/internal/tomato"
)

// Network shapes per domain: small MLPs with ReLU hidden layers. The
// color net ends in a sigmoid because its targets are [0,1] channels;
// the scalar regressions end linear.
var (
	acidArch     = ml.Arch{Sizes: []int{2, 32, 24, 16, 3}, Output: ml.Sigmoid}
	pendulumArch = ml.Arch{Sizes: []int{6, 48, 32, 16, 1}, Output: ml.Linear}
	tomatoArch   = ml.Arch{Sizes: []int{6, 48, 32, 16, 1}, Output: ml.Linear}
)

// Variant selects which indicator an acid-base experiment models.
type Variant int

const (
	LitmusVariant Variant = iota
	UniversalVariant
)

// AcidBase is the indicator-color experiment.
type AcidBase struct {
	variant Variant
	session *ml.Session
}

func NewAcidBase(v Variant) *AcidBase {
	return &AcidBase{
		variant: v,
		session: ml.NewSession([]string{"ph", "path_length_cm"}),
	}
}

func (a *AcidBase) Name() string {
	if a.variant == UniversalVariant {
		return "acid-universal"
	}
	return "acid-litmus"
}

func (a *AcidBase) FeatureNames() []string { return a.session.FeatureNames() }

func (a *AcidBase) Ready() bool { return a.session.Ready() }

func (a *AcidBase) indicator() chem.Indicator {
	if a.variant == UniversalVariant {
		return chem.Universal
	}
	return chem.Litmus
}

// RunSimulation is formula mode: the exact indicator color, optionally
// noisy when a source is supplied.
func (a *AcidBase) RunSimulation(ph, pathLengthCm, noiseSigma float64, src *rng.Source) (chem.RGB, error) {
	return chem.Simulate(chem.Params{
		Indicator:    a.indicator(),
		PH:           ph,
		PathLengthCm: pathLengthCm,
		NoiseSigma:   noiseSigma,
	}, src)
}

func (a *AcidBase) GenerateDataset(n int, seed uint32) (*dataset.Set, error) {
	return dataset.GenerateAcidBase(a.indicator(), n, seed)
}

func (a *AcidBase) Train(ctx context.Context, set *dataset.Set, opts ml.Options) (*ml.Summary, error) {
	if err := checkSet(set, a.FeatureNames()); err != nil {
		return nil, err
	}
	return a.session.Train(ctx, acidArch, set.FeatureMatrix(), set.TargetMatrix(), opts)
}

// PredictVector maps [pH, pathLength] to RGB channels in [0, 255].
func (a *AcidBase) PredictVector(ctx context.Context, features []float64) ([]float64, error) {
	out, err := a.session.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	scaled := make([]float64, len(out))
	for i, v := range out {
		scaled[i] = math.Round(v * 255)
	}
	return scaled, nil
}

// PredictColor is the typed convenience over PredictVector.
func (a *AcidBase) PredictColor(ctx context.Context, ph, pathLengthCm float64) (chem.RGB, error) {
	out, err := a.PredictVector(ctx, []float64{ph, pathLengthCm})
	if err != nil {
		return chem.RGB{}, err
	}
	return chem.RGB{R: clamp255(out[0]), G: clamp255(out[1]), B: clamp255(out[2])}, nil
}

func (a *AcidBase) Save(ctx context.Context, kv *store.KV) error {
	return saveSession(ctx, kv, a.Name(), a.session)
}

func (a *AcidBase) Load(ctx context.Context, kv *store.KV) error {
	return loadSession(ctx, kv, a.Name(), a.session)
}

// Pendulum is the oscillation-period experiment.
type Pendulum struct {
	session *ml.Session
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		session: ml.NewSession([]string{"length", "initial_angle", "damping", "drag_coeff", "mass", "gravity"}),
	}
}

func (p *Pendulum) Name() string           { return "pendulum" }
func (p *Pendulum) FeatureNames() []string { return p.session.FeatureNames() }

func (p *Pendulum) Ready() bool { return p.session.Ready() }

// RunSimulation is formula mode: the full RK4 trajectory and period.
func (p *Pendulum) RunSimulation(params pendulum.Params) (*pendulum.Result, error) {
	return pendulum.Simulate(params, nil)
}

func (p *Pendulum) GenerateDataset(n int, seed uint32) (*dataset.Set, error) {
	return dataset.GeneratePendulum(n, seed)
}

func (p *Pendulum) Train(ctx context.Context, set *dataset.Set, opts ml.Options) (*ml.Summary, error) {
	if err := checkSet(set, p.FeatureNames()); err != nil {
		return nil, err
	}
	return p.session.Train(ctx, pendulumArch, set.FeatureMatrix(), set.TargetMatrix(), opts)
}

// PredictVector maps the six pendulum features to a period in seconds.
func (p *Pendulum) PredictVector(ctx context.Context, features []float64) ([]float64, error) {
	return p.session.Predict(ctx, features)
}

// PredictPeriod is the typed convenience over PredictVector.
func (p *Pendulum) PredictPeriod(ctx context.Context, params pendulum.Params) (float64, error) {
	out, err := p.PredictVector(ctx, []float64{
		params.Length, params.InitialAngle, params.Damping,
		params.DragCoeff, params.Mass, params.Gravity,
	})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

func (p *Pendulum) Save(ctx context.Context, kv *store.KV) error {
	return saveSession(ctx, kv, p.Name(), p.session)
}

func (p *Pendulum) Load(ctx context.Context, kv *store.KV) error {
	return loadSession(ctx, kv, p.Name(), p.session)
}

// Tomato is the plant-height experiment.
type Tomato struct {
	session *ml.Session
}

func NewTomato() *Tomato {
	return &Tomato{
		session: ml.NewSession([]string{"avg_temp_c", "soil_moisture_pct", "sunlight_hours", "nutrient_index", "pest_pressure", "days"}),
	}
}

func (t *Tomato) Name() string           { return "tomato" }
func (t *Tomato) FeatureNames() []string { return t.session.FeatureNames() }

func (t *Tomato) Ready() bool { return t.session.Ready() }

// RunSimulation is formula mode: the full daily growth series.
func (t *Tomato) RunSimulation(params tomato.Params, src *rng.Source) ([]tomato.DayState, error) {
	return tomato.Simulate(params, src)
}

func (t *Tomato) GenerateDataset(n int, seed uint32) (*dataset.Set, error) {
	return dataset.GenerateTomato(n, seed)
}

func (t *Tomato) Train(ctx context.Context, set *dataset.Set, opts ml.Options) (*ml.Summary, error) {
	if err := checkSet(set, t.FeatureNames()); err != nil {
		return nil, err
	}
	return t.session.Train(ctx, tomatoArch, set.FeatureMatrix(), set.TargetMatrix(), opts)
}

// PredictVector maps the six environment features to a height in cm.
func (t *Tomato) PredictVector(ctx context.Context, features []float64) ([]float64, error) {
	return t.session.Predict(ctx, features)
}

// PredictHeight is the typed convenience over PredictVector.
func (t *Tomato) PredictHeight(ctx context.Context, params tomato.Params) (float64, error) {
	out, err := t.PredictVector(ctx, []float64{
		params.AvgTempC, params.SoilMoisturePct, params.SunlightHours,
		params.NutrientIndex, params.PestPressure, float64(params.Days),
	})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

func (t *Tomato) Save(ctx context.Context, kv *store.KV) error {
	return saveSession(ctx, kv, t.Name(), t.session)
}

func (t *Tomato) Load(ctx context.Context, kv *store.KV) error {
	return loadSession(ctx, kv, t.Name(), t.session)
}

// saveSession persists the two slots sequentially. The writes are not
// transactional: a crash between them leaves one slot newer than the
// other, which loaders treat as a normal (if stale) pairing.
func saveSession(ctx context.Context, kv *store.KV, name string, s *ml.Session) error {
	model, norm, err := s.Snapshot()
	if err != nil {
		return err
	}
	if err := kv.SaveModel(ctx, name, model); err != nil {
		return err
	}
	return kv.SaveNormalization(ctx, name, norm)
}

func loadSession(ctx context.Context, kv *store.KV, name string, s *ml.Session) error {
	model, err := kv.LoadModel(ctx, name)
	if err != nil {
		return err
	}
	norm, err := kv.LoadNormalization(ctx, name)
	if err != nil {
		return err
	}
	return s.Restore(model, norm)
}

func clamp255(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
