// Package httpapi exposes trained experiments over a small JSON
// inference API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mtovar/labsim/internal/experiment"
	"github.com/mtovar/labsim/internal/ml"
	"github.com/mtovar/labsim/internal/store"
)

// Server holds one live instance of every registered experiment.
// Training and loading mutate the sessions in place, so the same
// instances serve all requests.
type Server struct {
	experiments map[string]experiment.Experiment
}

func NewServer(reg *experiment.Registry) *Server {
	s := &Server{experiments: make(map[string]experiment.Experiment)}
	for _, name := range reg.Names() {
		exp, err := reg.Get(name)
		if err != nil {
			continue
		}
		s.experiments[name] = exp
	}
	return s
}

// LoadSaved restores previously persisted sessions. Experiments with
// no saved model are left untrained rather than failing startup.
func (s *Server) LoadSaved(ctx context.Context, kv *store.KV) error {
	for name, exp := range s.experiments {
		err := exp.Load(ctx, kv)
		if err == nil || errors.Is(err, store.ErrNotFound) {
			continue
		}
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// Experiment returns the live instance for name, or nil.
func (s *Server) Experiment(name string) experiment.Experiment {
	return s.experiments[name]
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/api/experiments", s.listExperiments).Methods("GET")
	r.HandleFunc("/api/infer/{experiment}", s.infer).Methods("POST")

	return r
}

// Handler wraps the router with request logging.
func (s *Server) Handler(logDst io.Writer) http.Handler {
	return handlers.LoggingHandler(logDst, s.Router())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type ExperimentInfo struct {
	Name     string   `json:"name"`
	Features []string `json:"features"`
	Ready    bool     `json:"ready"`
}

func (s *Server) listExperiments(w http.ResponseWriter, r *http.Request) {
	infos := make([]ExperimentInfo, 0, len(s.experiments))
	for _, name := range sortedNames(s.experiments) {
		exp := s.experiments[name]
		infos = append(infos, ExperimentInfo{
			Name:     name,
			Features: exp.FeatureNames(),
			Ready:    exp.Ready(),
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

// InferRequest carries named feature columns. All columns must have
// the same length; row i across all columns forms one input vector.
type InferRequest struct {
	Inputs map[string][]float64 `json:"inputs"`
}

type InferResponse struct {
	Experiment string      `json:"experiment"`
	Outputs    [][]float64 `json:"outputs"`
}

func (s *Server) infer(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["experiment"]
	exp, ok := s.experiments[name]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown experiment: "+name)
		return
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	defer r.Body.Close()

	var req InferRequest
	if err := json.Unmarshal(b, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, "inputs are required")
		return
	}

	rows, err := columnsToRows(exp.FeatureNames(), req.Inputs)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outputs := make([][]float64, 0, len(rows))
	for _, row := range rows {
		out, err := exp.PredictVector(r.Context(), row)
		if err != nil {
			if errors.Is(err, ml.ErrModelNotReady) {
				writeError(w, http.StatusConflict, "experiment has no trained model")
				return
			}
			writeError(w, http.StatusInternalServerError, "inference failed")
			return
		}
		outputs = append(outputs, out)
	}

	writeJSON(w, http.StatusOK, InferResponse{Experiment: name, Outputs: outputs})
}

// columnsToRows validates the named columns against the expected
// feature order and transposes them into per-row vectors.
func columnsToRows(featureNames []string, inputs map[string][]float64) ([][]float64, error) {
	n := -1
	for _, name := range featureNames {
		col, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("missing input column %q", name)
		}
		if n == -1 {
			n = len(col)
		} else if len(col) != n {
			return nil, fmt.Errorf("input column %q has %d values, want %d", name, len(col), n)
		}
	}
	if n == 0 {
		return nil, errors.New("input columns are empty")
	}
	for name := range inputs {
		if !contains(featureNames, name) {
			return nil, fmt.Errorf("unexpected input column %q", name)
		}
	}

	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, len(featureNames))
		for j, name := range featureNames {
			row[j] = inputs[name][i]
		}
		rows[i] = row
	}
	return rows, nil
}

func contains(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}

func sortedNames(m map[string]experiment.Experiment) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
