package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mtovar/labsim/internal/ml"
)

// Slot key layout: "<domain>/model" and "<domain>/norm".
func modelKey(name string) string { return name + "/model" }
func normKey(name string) string  { return name + "/norm" }

// SaveModel serializes and stores the network under the named slot,
// replacing any previous contents.
func (s *KV) SaveModel(ctx context.Context, name string, net *ml.Network) error {
	blob, err := net.Marshal()
	if err != nil {
		return err
	}
	return s.Put(ctx, modelKey(name), blob)
}

// LoadModel returns ErrNotFound for an empty slot and wraps decode
// failures in ErrCorrupt.
func (s *KV) LoadModel(ctx context.Context, name string) (*ml.Network, error) {
	blob, err := s.Get(ctx, modelKey(name))
	if err != nil {
		return nil, err
	}
	net, err := ml.UnmarshalNetwork(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: model %q: %v", ErrCorrupt, name, err)
	}
	return net, nil
}

// SaveNormalization stores the mean/std record as JSON.
func (s *KV) SaveNormalization(ctx context.Context, name string, norm *ml.Normalization) error {
	blob, err := json.Marshal(norm)
	if err != nil {
		return err
	}
	return s.Put(ctx, normKey(name), blob)
}

// LoadNormalization mirrors LoadModel's not-found vs corrupt split.
func (s *KV) LoadNormalization(ctx context.Context, name string) (*ml.Normalization, error) {
	blob, err := s.Get(ctx, normKey(name))
	if err != nil {
		return nil, err
	}
	var norm ml.Normalization
	if err := json.Unmarshal(blob, &norm); err != nil {
		return nil, fmt.Errorf("%w: normalization %q: %v", ErrCorrupt, name, err)
	}
	if norm.Mean == nil || norm.Std == nil {
		return nil, fmt.Errorf("%w: normalization %q: missing mean or std", ErrCorrupt, name)
	}
	return &norm, nil
}
