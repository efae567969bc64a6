// Package dataset draws reproducible synthetic training data from the
// simulators. Every generator samples parameters uniformly from fixed
// per-domain ranges using the deterministic PRNG, so identical (n, seed)
// calls emit bit-identical rows.
package dataset

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned for a non-positive sample count.
var ErrEmpty = errors.New("dataset: sample count must be positive")

// Row is one training example: raw (non-normalized) features plus the
// simulator-derived targets. Fallback marks targets that were replaced
// by a closed-form fallback because the measured value was degenerate.
type Row struct {
	Features []float64 `json:"features"`
	Targets  []float64 `json:"targets"`
	Fallback bool      `json:"fallback,omitempty"`
}

// Set is an ordered sequence of rows with the column naming needed for
// normalization bookkeeping and persisted metadata.
type Set struct {
	FeatureNames []string `json:"feature_names"`
	TargetNames  []string `json:"target_names"`
	Rows         []Row    `json:"rows"`
}

// FeatureMatrix copies the feature columns into a row-major matrix.
func (s *Set) FeatureMatrix() [][]float64 {
	out := make([][]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = append([]float64(nil), r.Features...)
	}
	return out
}

// TargetMatrix copies the target columns into a row-major matrix.
func (s *Set) TargetMatrix() [][]float64 {
	out := make([][]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = append([]float64(nil), r.Targets...)
	}
	return out
}

// Append concatenates user-collected rows onto generated ones. Feature
// width must match; mixing shapes is a caller error.
func (s *Set) Append(rows []Row) error {
	for i, r := range rows {
		if len(r.Features) != len(s.FeatureNames) || len(r.Targets) != len(s.TargetNames) {
			return fmt.Errorf("dataset: row %d has %d features / %d targets, want %d / %d",
				i, len(r.Features), len(r.Targets), len(s.FeatureNames), len(s.TargetNames))
		}
		s.Rows = append(s.Rows, r)
	}
	return nil
}
