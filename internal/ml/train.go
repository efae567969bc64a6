package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/mtovar/labsim/internal/rng"
)

// Training preconditions; all are checked before any buffer allocation.
var (
	ErrDatasetTooSmall = errors.New("ml: training needs at least 2 rows")
	ErrBadEpochs       = errors.New("ml: epoch count must be positive")
	ErrBadBatchSize    = errors.New("ml: batch size must be positive")
)

// Adam hyperparameters (fixed, matching the demo defaults).
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8

	defaultLearningRate    = 0.005
	defaultValidationSplit = 0.15
)

// EpochStats is handed to the progress callback after every epoch. It is
// observational only; mutating it does not affect training.
type EpochStats struct {
	Epoch   int
	Loss    float64 // training MSE
	ValLoss float64 // holdout MSE, zero when no holdout
	MAE     float64 // training mean absolute error
}

// Options control one training run.
type Options struct {
	Epochs       int
	BatchSize    int
	LearningRate float64 // defaults to 0.005
	// ValidationSplit is the holdout fraction used for monitoring only;
	// no early stopping. Defaults to 0.15.
	ValidationSplit float64
	// Seed drives shuffling and weight initialization.
	Seed uint32
	// OnEpochEnd fires synchronously after each epoch; it must not block.
	OnEpochEnd func(EpochStats)
}

// Summary describes a completed training run.
type Summary struct {
	RunID     string
	Epochs    int
	Rows      int
	FinalLoss float64
	FinalVal  float64
	FinalMAE  float64
	History   []EpochStats
	Elapsed   time.Duration
}

// adamState holds first/second moment estimates shaped like one layer.
type adamState struct {
	mw, vw *mat.Dense
	mb, vb *mat.VecDense
}

// Fit trains the network in place with Adam on MSE. X must already be
// standardized. The run cannot be cancelled mid-epoch beyond the context
// check at epoch boundaries; a cancelled run leaves the network partially
// trained and returns the context error.
func (n *Network) Fit(ctx context.Context, X, Y [][]float64, opts Options) (*Summary, error) {
	if err := checkPreconditions(n, X, Y, opts); err != nil {
		return nil, err
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = defaultLearningRate
	}
	if opts.ValidationSplit <= 0 {
		opts.ValidationSplit = defaultValidationSplit
	}

	start := time.Now()
	src := rng.New(opts.Seed)

	// one deterministic shuffle, then a fixed holdout tail
	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	shuffle(order, src)

	valCount := int(float64(len(X)) * opts.ValidationSplit)
	if len(X)-valCount < 1 {
		valCount = 0
	}
	trainIdx := order[:len(order)-valCount]
	valIdx := order[len(order)-valCount:]

	states := make([]*adamState, len(n.layers))
	for i, l := range n.layers {
		r, c := l.w.Dims()
		states[i] = &adamState{
			mw: mat.NewDense(r, c, nil),
			vw: mat.NewDense(r, c, nil),
			mb: mat.NewVecDense(r, nil),
			vb: mat.NewVecDense(r, nil),
		}
	}

	summary := &Summary{
		RunID:   uuid.NewString(),
		Epochs:  opts.Epochs,
		Rows:    len(X),
		History: make([]EpochStats, 0, opts.Epochs),
	}

	step := 0
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		shuffle(trainIdx, src)

		for from := 0; from < len(trainIdx); from += opts.BatchSize {
			to := from + opts.BatchSize
			if to > len(trainIdx) {
				to = len(trainIdx)
			}
			step++
			n.adamStep(trainIdx[from:to], X, Y, states, opts.LearningRate, step)
		}

		stats := EpochStats{Epoch: epoch}
		stats.Loss, stats.MAE = n.evaluate(trainIdx, X, Y)
		if len(valIdx) > 0 {
			stats.ValLoss, _ = n.evaluate(valIdx, X, Y)
		}
		summary.History = append(summary.History, stats)
		if opts.OnEpochEnd != nil {
			opts.OnEpochEnd(stats)
		}
	}

	last := summary.History[len(summary.History)-1]
	summary.FinalLoss = last.Loss
	summary.FinalVal = last.ValLoss
	summary.FinalMAE = last.MAE
	summary.Elapsed = time.Since(start)
	return summary, nil
}

func checkPreconditions(n *Network, X, Y [][]float64, opts Options) error {
	if len(X) < 2 {
		return fmt.Errorf("%w (got %d)", ErrDatasetTooSmall, len(X))
	}
	if len(X) != len(Y) {
		return fmt.Errorf("%w: %d feature rows vs %d target rows", ErrFeatureMismatch, len(X), len(Y))
	}
	if opts.Epochs <= 0 {
		return fmt.Errorf("%w (got %d)", ErrBadEpochs, opts.Epochs)
	}
	if opts.BatchSize <= 0 {
		return fmt.Errorf("%w (got %d)", ErrBadBatchSize, opts.BatchSize)
	}
	for i := range X {
		if len(X[i]) != n.InputDim() {
			return fmt.Errorf("%w: row %d has %d features, network expects %d", ErrFeatureMismatch, i, len(X[i]), n.InputDim())
		}
		if len(Y[i]) != n.OutputDim() {
			return fmt.Errorf("%w: row %d has %d targets, network expects %d", ErrFeatureMismatch, i, len(Y[i]), n.OutputDim())
		}
	}
	return nil
}

// adamStep accumulates batch gradients and applies one Adam update.
func (n *Network) adamStep(batch []int, X, Y [][]float64, states []*adamState, lr float64, step int) {
	gradW := make([]*mat.Dense, len(n.layers))
	gradB := make([]*mat.VecDense, len(n.layers))
	for i, l := range n.layers {
		r, c := l.w.Dims()
		gradW[i] = mat.NewDense(r, c, nil)
		gradB[i] = mat.NewVecDense(r, nil)
	}

	for _, idx := range batch {
		acts := n.forwardCached(X[idx])
		out := acts[len(acts)-1]

		// output delta for MSE: (a - y) * act'(a)
		delta := mat.NewVecDense(out.Len(), nil)
		for i := 0; i < out.Len(); i++ {
			a := out.AtVec(i)
			delta.SetVec(i, (a-Y[idx][i])*n.layers[len(n.layers)-1].act.prime(a))
		}

		for l := len(n.layers) - 1; l >= 0; l-- {
			prev := acts[l]

			gradW[l].RankOne(gradW[l], 1, delta, prev)
			gradB[l].AddVec(gradB[l], delta)

			if l > 0 {
				back := mat.NewVecDense(prev.Len(), nil)
				back.MulVec(n.layers[l].w.T(), delta)
				for i := 0; i < back.Len(); i++ {
					back.SetVec(i, back.AtVec(i)*n.layers[l-1].act.prime(prev.AtVec(i)))
				}
				delta = back
			}
		}
	}

	invBatch := 1.0 / float64(len(batch))
	bc1 := 1 - math.Pow(adamBeta1, float64(step))
	bc2 := 1 - math.Pow(adamBeta2, float64(step))

	for li, l := range n.layers {
		st := states[li]
		r, c := l.w.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				g := gradW[li].At(i, j) * invBatch
				m := adamBeta1*st.mw.At(i, j) + (1-adamBeta1)*g
				v := adamBeta2*st.vw.At(i, j) + (1-adamBeta2)*g*g
				st.mw.Set(i, j, m)
				st.vw.Set(i, j, v)
				l.w.Set(i, j, l.w.At(i, j)-lr*(m/bc1)/(math.Sqrt(v/bc2)+adamEps))
			}
			g := gradB[li].AtVec(i) * invBatch
			m := adamBeta1*st.mb.AtVec(i) + (1-adamBeta1)*g
			v := adamBeta2*st.vb.AtVec(i) + (1-adamBeta2)*g*g
			st.mb.SetVec(i, m)
			st.vb.SetVec(i, v)
			l.b.SetVec(i, l.b.AtVec(i)-lr*(m/bc1)/(math.Sqrt(v/bc2)+adamEps))
		}
	}
}

// evaluate returns MSE and MAE over the given rows.
func (n *Network) evaluate(idx []int, X, Y [][]float64) (mse, mae float64) {
	if len(idx) == 0 {
		return 0, 0
	}
	count := 0
	for _, i := range idx {
		out := n.Forward(X[i])
		for j := range out {
			d := out[j] - Y[i][j]
			mse += d * d
			mae += math.Abs(d)
			count++
		}
	}
	return mse / float64(count), mae / float64(count)
}

// shuffle is a Fisher-Yates pass driven by the deterministic source.
func shuffle(idx []int, src *rng.Source) {
	for i := len(idx) - 1; i > 0; i-- {
		j := int(src.Float64() * float64(i+1))
		idx[i], idx[j] = idx[j], idx[i]
	}
}
