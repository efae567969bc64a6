package ml

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// modelBlob is the persisted wire form of a trained network.
type modelBlob struct {
	Arch    Arch        `json:"arch"`
	Weights [][]float64 `json:"weights"` // row-major, one slice per layer
	Biases  [][]float64 `json:"biases"`
}

// Marshal serializes the network for the key-value store.
func (n *Network) Marshal() ([]byte, error) {
	blob := modelBlob{Arch: n.arch}
	for _, l := range n.layers {
		r, c := l.w.Dims()
		w := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			w = append(w, l.w.RawRowView(i)...)
		}
		b := make([]float64, r)
		copy(b, l.b.RawVector().Data)
		blob.Weights = append(blob.Weights, w)
		blob.Biases = append(blob.Biases, b)
	}
	return json.Marshal(blob)
}

// UnmarshalNetwork rebuilds a network from its persisted form. Any shape
// inconsistency is reported as a decode error, never a panic.
func UnmarshalNetwork(data []byte) (*Network, error) {
	var blob modelBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("ml: decode model: %w", err)
	}
	if err := blob.Arch.validate(); err != nil {
		return nil, fmt.Errorf("ml: decode model: %w", err)
	}
	layers := len(blob.Arch.Sizes) - 1
	if len(blob.Weights) != layers || len(blob.Biases) != layers {
		return nil, fmt.Errorf("ml: decode model: %d layers declared, %d weight / %d bias blocks",
			layers, len(blob.Weights), len(blob.Biases))
	}

	n := &Network{arch: blob.Arch, layers: make([]*layer, 0, layers)}
	for l := 0; l < layers; l++ {
		in, out := blob.Arch.Sizes[l], blob.Arch.Sizes[l+1]
		if len(blob.Weights[l]) != in*out || len(blob.Biases[l]) != out {
			return nil, fmt.Errorf("ml: decode model: layer %d shape mismatch", l)
		}
		act := ReLU
		if l == layers-1 {
			act = blob.Arch.Output
		}
		n.layers = append(n.layers, &layer{
			w:   mat.NewDense(out, in, append([]float64(nil), blob.Weights[l]...)),
			b:   mat.NewVecDense(out, append([]float64(nil), blob.Biases[l]...)),
			act: act,
		})
	}
	return n, nil
}
