package ml

import (
	"context"
	"errors"
	"sync"

	"github.com/mtovar/labsim/internal/rng"
)

// ErrModelNotReady means prediction was attempted before any model was
// trained or loaded into the session.
var ErrModelNotReady = errors.New("ml: no model trained or loaded")

// Session owns the current model and normalization for one domain. It
// replaces the demo's process-wide singletons: each caller constructs its
// own session, so parallel experiments cannot cross-contaminate.
//
// A single-writer lock guards the slot: Train replaces model and
// normalization together on success only, and predictions either see the
// old pair or the new pair, never a mix.
type Session struct {
	featureNames []string

	mu    sync.RWMutex
	model *Network
	norm  *Normalization
}

// NewSession creates an empty session for the given feature columns.
func NewSession(featureNames []string) *Session {
	return &Session{featureNames: append([]string(nil), featureNames...)}
}

// FeatureNames returns the feature order this session standardizes by.
func (s *Session) FeatureNames() []string {
	return append([]string(nil), s.featureNames...)
}

// Ready reports whether a model and normalization are loaded.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil && s.norm != nil
}

// Train fits normalization on X, standardizes it, builds a fresh network
// for arch, and trains it. The session slot is replaced only after the
// run completes; a failed or cancelled run leaves the previous model
// untouched.
func (s *Session) Train(ctx context.Context, arch Arch, X, Y [][]float64, opts Options) (*Summary, error) {
	norm, err := FitNormalization(s.featureNames, X)
	if err != nil {
		return nil, err
	}

	std := make([][]float64, len(X))
	for i, row := range X {
		if std[i], err = norm.Standardize(s.featureNames, row); err != nil {
			return nil, err
		}
	}

	net, err := NewNetwork(arch, newInitSource(opts.Seed))
	if err != nil {
		return nil, err
	}

	summary, err := net.Fit(ctx, std, Y, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.model = net
	s.norm = norm
	s.mu.Unlock()
	return summary, nil
}

// Predict standardizes raw features with the training-time normalization
// and runs a forward pass. The output is still in network units; domain
// rescaling (e.g. channel*255) is the caller's job.
func (s *Session) Predict(ctx context.Context, x []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	model, norm := s.model, s.norm
	s.mu.RUnlock()

	if model == nil || norm == nil {
		return nil, ErrModelNotReady
	}

	std, err := norm.Standardize(s.featureNames, x)
	if err != nil {
		return nil, err
	}
	return model.Forward(std), nil
}

// Snapshot returns the current model and normalization for persistence.
func (s *Session) Snapshot() (*Network, *Normalization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil || s.norm == nil {
		return nil, nil, ErrModelNotReady
	}
	return s.model, s.norm, nil
}

// Restore installs a previously persisted model and normalization.
func (s *Session) Restore(model *Network, norm *Normalization) error {
	if model == nil || norm == nil {
		return errors.New("ml: restore requires both model and normalization")
	}
	if model.InputDim() != len(s.featureNames) {
		return ErrFeatureMismatch
	}
	s.mu.Lock()
	s.model = model
	s.norm = norm
	s.mu.Unlock()
	return nil
}

// newInitSource decorrelates weight initialization from the shuffle
// stream while staying seed-deterministic.
func newInitSource(seed uint32) *rng.Source {
	return rng.New(seed ^ 0x9E3779B9)
}
