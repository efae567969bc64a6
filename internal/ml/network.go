package ml

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mtovar/labsim/internal/rng"
)

// Activation selects the elementwise nonlinearity of a layer.
type Activation int

const (
	ReLU Activation = iota
	Linear
	Sigmoid
)

var ErrUnknownActivation = errors.New("ml: unknown activation")

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Linear:
		return "linear"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

func (a Activation) apply(z float64) float64 {
	switch a {
	case ReLU:
		return math.Max(0, z)
	case Sigmoid:
		return 1 / (1 + math.Exp(-z))
	default:
		return z
	}
}

// derivative in terms of the activated output.
func (a Activation) prime(out float64) float64 {
	switch a {
	case ReLU:
		if out > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		return out * (1 - out)
	default:
		return 1
	}
}

// Arch describes a network: layer widths from input to output and the
// output nonlinearity (hidden layers are always ReLU).
type Arch struct {
	Sizes  []int      `json:"sizes"`
	Output Activation `json:"output"`
}

func (a Arch) validate() error {
	if len(a.Sizes) < 3 {
		return fmt.Errorf("ml: arch needs input, at least one hidden, and output layer, got %v", a.Sizes)
	}
	for _, s := range a.Sizes {
		if s <= 0 {
			return fmt.Errorf("ml: non-positive layer width in %v", a.Sizes)
		}
	}
	if a.Output != ReLU && a.Output != Linear && a.Output != Sigmoid {
		return fmt.Errorf("%w: %d", ErrUnknownActivation, int(a.Output))
	}
	return nil
}

type layer struct {
	w   *mat.Dense    // out x in
	b   *mat.VecDense // out
	act Activation
}

// Network is a dense feed-forward regression net. Weights are owned by
// the training pipeline; prediction is read-only.
type Network struct {
	arch   Arch
	layers []*layer
}

// NewNetwork builds a network with He-style initialization drawn from the
// given deterministic source, so identical seeds build identical nets.
func NewNetwork(arch Arch, src *rng.Source) (*Network, error) {
	if err := arch.validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = rng.New(1)
	}

	n := &Network{arch: arch, layers: make([]*layer, 0, len(arch.Sizes)-1)}
	for l := 1; l < len(arch.Sizes); l++ {
		in, out := arch.Sizes[l-1], arch.Sizes[l]
		scale := math.Sqrt(2.0 / float64(in))

		w := mat.NewDense(out, in, nil)
		for i := 0; i < out; i++ {
			for j := 0; j < in; j++ {
				w.Set(i, j, (src.Float64()*2-1)*scale)
			}
		}
		act := ReLU
		if l == len(arch.Sizes)-1 {
			act = arch.Output
		}
		n.layers = append(n.layers, &layer{
			w:   w,
			b:   mat.NewVecDense(out, nil),
			act: act,
		})
	}
	return n, nil
}

// Arch returns the architecture this network was built with.
func (n *Network) Arch() Arch { return n.arch }

// InputDim returns the expected feature width.
func (n *Network) InputDim() int { return n.arch.Sizes[0] }

// OutputDim returns the target width.
func (n *Network) OutputDim() int { return n.arch.Sizes[len(n.arch.Sizes)-1] }

// Forward runs one inference pass over standardized features.
func (n *Network) Forward(x []float64) []float64 {
	a := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for _, l := range n.layers {
		z := mat.NewVecDense(l.w.RawMatrix().Rows, nil)
		z.MulVec(l.w, a)
		z.AddVec(z, l.b)
		for i := 0; i < z.Len(); i++ {
			z.SetVec(i, l.act.apply(z.AtVec(i)))
		}
		a = z
	}
	out := make([]float64, a.Len())
	copy(out, a.RawVector().Data)
	return out
}

// forwardCached runs a pass keeping every layer's activated output for
// backpropagation. Index 0 is the input itself.
func (n *Network) forwardCached(x []float64) []*mat.VecDense {
	acts := make([]*mat.VecDense, 0, len(n.layers)+1)
	a := mat.NewVecDense(len(x), append([]float64(nil), x...))
	acts = append(acts, a)
	for _, l := range n.layers {
		z := mat.NewVecDense(l.w.RawMatrix().Rows, nil)
		z.MulVec(l.w, a)
		z.AddVec(z, l.b)
		for i := 0; i < z.Len(); i++ {
			z.SetVec(i, l.act.apply(z.AtVec(i)))
		}
		a = z
		acts = append(acts, a)
	}
	return acts
}
