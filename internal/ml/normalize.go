// Package ml implements the training half of the demos: per-feature
// standardization, a small dense regression network, Adam training with
// epoch callbacks, and the session object that owns the current model.
package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// epsilon floors the standard deviation so constant features cannot
// divide by zero.
const epsilon = 1e-7

var (
	ErrTooFewRows      = errors.New("ml: need at least 2 rows to fit normalization")
	ErrUnknownFeature  = errors.New("ml: feature not present in normalization")
	ErrFeatureMismatch = errors.New("ml: feature count mismatch")
)

// Normalization holds per-feature mean and standard deviation keyed by
// feature name. It is computed once from a training set and reapplied
// unchanged at inference; the persisted form is exactly this JSON shape.
type Normalization struct {
	Mean map[string]float64 `json:"mean"`
	Std  map[string]float64 `json:"std"`
}

// FitNormalization computes population mean/std per feature column.
func FitNormalization(names []string, rows [][]float64) (*Normalization, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewRows, len(rows))
	}
	for i, r := range rows {
		if len(r) != len(names) {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrFeatureMismatch, i, len(r), len(names))
		}
	}

	n := &Normalization{
		Mean: make(map[string]float64, len(names)),
		Std:  make(map[string]float64, len(names)),
	}
	col := make([]float64, len(rows))
	for j, name := range names {
		for i := range rows {
			col[i] = rows[i][j]
		}
		mean := stat.Mean(col, nil)
		// population variance, not sample-corrected
		variance := stat.MomentAbout(2, col, mean, nil)
		n.Mean[name] = mean
		n.Std[name] = math.Sqrt(variance) + epsilon
	}
	return n, nil
}

// Standardize maps raw features to z-scores in the order given by names.
func (n *Normalization) Standardize(names []string, x []float64) ([]float64, error) {
	if len(x) != len(names) {
		return nil, fmt.Errorf("%w: got %d values for %d names", ErrFeatureMismatch, len(x), len(names))
	}
	out := make([]float64, len(x))
	for i, name := range names {
		mean, ok := n.Mean[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
		out[i] = (x[i] - mean) / n.Std[name]
	}
	return out, nil
}

// Destandardize is the inverse transform; Standardize then Destandardize
// returns the original values within floating-point tolerance.
func (n *Normalization) Destandardize(names []string, z []float64) ([]float64, error) {
	if len(z) != len(names) {
		return nil, fmt.Errorf("%w: got %d values for %d names", ErrFeatureMismatch, len(z), len(names))
	}
	out := make([]float64, len(z))
	for i, name := range names {
		mean, ok := n.Mean[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
		}
		out[i] = z[i]*n.Std[name] + mean
	}
	return out, nil
}
