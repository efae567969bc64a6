// Package rng provides the deterministic pseudo-random source used for
// synthetic dataset generation and simulated measurement noise.
//
// The generator is a Mulberry32 mix: a single 32-bit state word advanced by
// a fixed odd increment, scrambled with two xorshift/multiply rounds. The
// same seed always yields the same sequence regardless of call site, which
// is what makes generated datasets reproducible bit for bit.
package rng

// increment is the fixed odd step added to the state word each draw.
const increment uint32 = 0x6D2B79F5

// Source is a restartable deterministic stream of floats in [0, 1).
// It is not safe for concurrent use; give each goroutine its own Source.
type Source struct {
	state uint32
	seed  uint32
}

// New returns a Source positioned at the start of the sequence for seed.
func New(seed uint32) *Source {
	return &Source{state: seed, seed: seed}
}

// Float64 advances the stream and returns the next value in [0, 1).
func (s *Source) Float64() float64 {
	s.state += increment
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / (1 << 32)
}

// InRange scales the next draw into [lo, hi).
func (s *Source) InRange(lo, hi float64) float64 {
	return lo + s.Float64()*(hi-lo)
}

// Reset rewinds the stream to its initial seed position.
func (s *Source) Reset() {
	s.state = s.seed
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() uint32 {
	return s.seed
}
