package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mtovar/labsim/internal/experiment"
	"github.com/mtovar/labsim/internal/ml"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(experiment.NewRegistry())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func trainAcidUniversal(t *testing.T, srv *Server) {
	t.Helper()
	exp := srv.Experiment("acid-universal")
	if exp == nil {
		t.Fatal("acid-universal not registered")
	}
	set, err := exp.GenerateDataset(60, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = exp.Train(context.Background(), set, ml.Options{Epochs: 10, BatchSize: 8, Seed: 7})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestListExperiments(t *testing.T) {
	srv, ts := newTestServer(t)
	trainAcidUniversal(t, srv)

	infos, err := NewClient(ts.URL).Experiments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 experiments, got %d", len(infos))
	}
	byName := map[string]ExperimentInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}
	if !byName["acid-universal"].Ready {
		t.Error("acid-universal should be ready after training")
	}
	if byName["pendulum"].Ready {
		t.Error("pendulum should not be ready")
	}
	if len(byName["tomato"].Features) != 6 {
		t.Errorf("expected 6 tomato features, got %d", len(byName["tomato"].Features))
	}
}

func TestInfer(t *testing.T) {
	srv, ts := newTestServer(t)
	trainAcidUniversal(t, srv)

	outputs, err := NewClient(ts.URL).Infer(context.Background(), "acid-universal", map[string][]float64{
		"ph":             {2.0, 7.0, 12.0},
		"path_length_cm": {1.0, 1.0, 1.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 3 {
		t.Fatalf("expected 3 output rows, got %d", len(outputs))
	}
	for i, out := range outputs {
		if len(out) != 3 {
			t.Fatalf("row %d: expected 3 channels, got %d", i, len(out))
		}
		for _, ch := range out {
			if ch < 0 || ch > 255 {
				t.Errorf("row %d: channel %f out of range", i, ch)
			}
		}
	}
}

func TestInfer_NotTrained(t *testing.T) {
	_, ts := newTestServer(t)

	_, err := NewClient(ts.URL).Infer(context.Background(), "pendulum", map[string][]float64{
		"length": {1.0}, "initial_angle": {0.3}, "damping": {0.05},
		"drag_coeff": {0.47}, "mass": {1.0}, "gravity": {9.81},
	})
	if err == nil {
		t.Fatal("expected error for untrained experiment")
	}
	if !strings.Contains(err.Error(), "no trained model") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInfer_UnknownExperiment(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/infer/alchemy", "application/json",
		strings.NewReader(`{"inputs":{"ph":[7]}}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestInfer_BadInputs(t *testing.T) {
	srv, ts := newTestServer(t)
	trainAcidUniversal(t, srv)

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"empty inputs", `{"inputs":{}}`},
		{"missing column", `{"inputs":{"ph":[7]}}`},
		{"ragged columns", `{"inputs":{"ph":[7,8],"path_length_cm":[1]}}`},
		{"unknown column", `{"inputs":{"ph":[7],"path_length_cm":[1],"temp":[20]}}`},
		{"empty columns", `{"inputs":{"ph":[],"path_length_cm":[]}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/infer/acid-universal", "application/json",
				strings.NewReader(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}
