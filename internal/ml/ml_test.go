package ml

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mtovar/labsim/internal/rng"
)

func TestNormalizationRoundTrip(t *testing.T) {
	names := []string{"a", "b", "c"}
	rows := [][]float64{
		{1, 10, 100},
		{2, 20, 200},
		{3, 30, 300},
		{4, 40, 400},
	}

	norm, err := FitNormalization(names, rows)
	if err != nil {
		t.Fatal(err)
	}

	for _, row := range rows {
		z, err := norm.Standardize(names, row)
		if err != nil {
			t.Fatal(err)
		}
		back, err := norm.Destandardize(names, z)
		if err != nil {
			t.Fatal(err)
		}
		for i := range row {
			if math.Abs(back[i]-row[i]) > 1e-9 {
				t.Errorf("feature %s: round trip %f != original %f", names[i], back[i], row[i])
			}
		}
	}
}

func TestNormalizationPopulationStd(t *testing.T) {
	norm, err := FitNormalization([]string{"x"}, [][]float64{{1}, {3}})
	if err != nil {
		t.Fatal(err)
	}
	// population std of {1,3} is 1, not sqrt(2)
	if math.Abs(norm.Std["x"]-1-epsilon) > 1e-12 {
		t.Errorf("expected population std 1+eps, got %.12f", norm.Std["x"])
	}
	if norm.Mean["x"] != 2 {
		t.Errorf("expected mean 2, got %f", norm.Mean["x"])
	}
}

func TestNormalizationConstantColumn(t *testing.T) {
	norm, err := FitNormalization([]string{"k"}, [][]float64{{5}, {5}, {5}})
	if err != nil {
		t.Fatal(err)
	}
	z, err := norm.Standardize([]string{"k"}, []float64{5})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(z[0]) || math.IsInf(z[0], 0) {
		t.Errorf("constant column produced non-finite z-score %f", z[0])
	}
}

func TestNormalizationPreconditions(t *testing.T) {
	if _, err := FitNormalization([]string{"x"}, [][]float64{{1}}); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("expected ErrTooFewRows, got %v", err)
	}
	if _, err := FitNormalization([]string{"x", "y"}, [][]float64{{1, 2}, {1}}); !errors.Is(err, ErrFeatureMismatch) {
		t.Errorf("expected ErrFeatureMismatch, got %v", err)
	}
}

func TestNetworkDeterministicInit(t *testing.T) {
	arch := Arch{Sizes: []int{2, 8, 1}, Output: Linear}
	a, err := NewNetwork(arch, rng.New(5))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewNetwork(arch, rng.New(5))
	if err != nil {
		t.Fatal(err)
	}

	in := []float64{0.3, -0.7}
	if a.Forward(in)[0] != b.Forward(in)[0] {
		t.Error("identically seeded networks diverge")
	}
}

func TestFitLearnsLinearMap(t *testing.T) {
	// y = 2a - b, standardized-ish inputs
	src := rng.New(11)
	X := make([][]float64, 200)
	Y := make([][]float64, 200)
	for i := range X {
		a := src.Float64()*2 - 1
		b := src.Float64()*2 - 1
		X[i] = []float64{a, b}
		Y[i] = []float64{2*a - b}
	}

	net, err := NewNetwork(Arch{Sizes: []int{2, 16, 8, 1}, Output: Linear}, rng.New(3))
	if err != nil {
		t.Fatal(err)
	}

	epochs := 0
	summary, err := net.Fit(context.Background(), X, Y, Options{
		Epochs:    150,
		BatchSize: 16,
		Seed:      3,
		OnEpochEnd: func(s EpochStats) {
			epochs++
			if math.IsNaN(s.Loss) {
				t.Fatalf("loss went NaN at epoch %d", s.Epoch)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if epochs != 150 || summary.Epochs != 150 {
		t.Errorf("expected 150 epoch callbacks, got %d", epochs)
	}
	if summary.RunID == "" {
		t.Error("expected a run id")
	}
	if summary.FinalLoss > 0.05 {
		t.Errorf("network failed to fit a linear map: final MSE %f", summary.FinalLoss)
	}
	if len(summary.History) != 150 {
		t.Errorf("expected full history, got %d entries", len(summary.History))
	}
}

func TestFitPreconditions(t *testing.T) {
	net, _ := NewNetwork(Arch{Sizes: []int{1, 4, 1}, Output: Linear}, nil)
	x := [][]float64{{1}, {2}, {3}}
	y := [][]float64{{1}, {2}, {3}}
	ctx := context.Background()

	if _, err := net.Fit(ctx, x[:1], y[:1], Options{Epochs: 1, BatchSize: 1}); !errors.Is(err, ErrDatasetTooSmall) {
		t.Errorf("expected ErrDatasetTooSmall, got %v", err)
	}
	if _, err := net.Fit(ctx, x, y, Options{Epochs: 0, BatchSize: 1}); !errors.Is(err, ErrBadEpochs) {
		t.Errorf("expected ErrBadEpochs, got %v", err)
	}
	if _, err := net.Fit(ctx, x, y, Options{Epochs: 1, BatchSize: 0}); !errors.Is(err, ErrBadBatchSize) {
		t.Errorf("expected ErrBadBatchSize, got %v", err)
	}
	if _, err := net.Fit(ctx, [][]float64{{1, 2}, {3, 4}}, y[:2], Options{Epochs: 1, BatchSize: 1}); !errors.Is(err, ErrFeatureMismatch) {
		t.Errorf("expected ErrFeatureMismatch, got %v", err)
	}
}

func TestSessionPredictBeforeTrain(t *testing.T) {
	s := NewSession([]string{"x"})
	if _, err := s.Predict(context.Background(), []float64{1}); !errors.Is(err, ErrModelNotReady) {
		t.Errorf("expected ErrModelNotReady, got %v", err)
	}
}

func TestSessionTrainThenPredict(t *testing.T) {
	s := NewSession([]string{"x"})

	X := make([][]float64, 60)
	Y := make([][]float64, 60)
	src := rng.New(21)
	for i := range X {
		v := src.Float64() * 10
		X[i] = []float64{v}
		Y[i] = []float64{0.5} // constant target: net should settle near it
	}

	_, err := s.Train(context.Background(), Arch{Sizes: []int{1, 8, 1}, Output: Sigmoid}, X, Y, Options{
		Epochs: 100, BatchSize: 8, Seed: 21,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Ready() {
		t.Fatal("session not ready after training")
	}

	out, err := s.Predict(context.Background(), []float64{5})
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		t.Fatalf("non-finite prediction %f", out[0])
	}
	if out[0] < 0 || out[0] > 1 {
		t.Errorf("sigmoid output %f outside [0,1]", out[0])
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	net, err := NewNetwork(Arch{Sizes: []int{3, 8, 4, 2}, Output: Sigmoid}, rng.New(9))
	if err != nil {
		t.Fatal(err)
	}

	data, err := net.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	back, err := UnmarshalNetwork(data)
	if err != nil {
		t.Fatal(err)
	}

	in := []float64{0.2, -1.1, 0.7}
	want := net.Forward(in)
	got := back.Forward(in)
	for i := range want {
		if math.Abs(want[i]-got[i]) > 1e-12 {
			t.Errorf("output %d: %f != %f after round trip", i, got[i], want[i])
		}
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	if _, err := UnmarshalNetwork([]byte("{not json")); err == nil {
		t.Error("expected decode error for corrupt blob")
	}
	if _, err := UnmarshalNetwork([]byte(`{"arch":{"sizes":[2,4,1],"output":1},"weights":[[1]],"biases":[[1]]}`)); err == nil {
		t.Error("expected shape mismatch error")
	}
}
