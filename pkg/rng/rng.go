// Package rng provides the seedable randomness source consumed by the shard
// generator and the explosion planner. Every draw is explicit so a layout can
// be replayed from its seed.
package rng

import (
	"math"
	"math/rand/v2"
)

// Source yields uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// seedMix decorrelates the second PCG word from the seed.
const seedMix = 0x9e3779b97f4a7c15

// New returns a deterministic source for the given seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// Range draws a value in [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Centered draws a value in [-half, half).
func Centered(src Source, half float64) float64 {
	return (src.Float64()*2 - 1) * half
}

// Angle draws a value in [0, 2π).
func Angle(src Source) float64 {
	return src.Float64() * 2 * math.Pi
}

// Sequence replays a fixed list of draws, wrapping around when exhausted.
// It is meant for tests that need to pin a specific draw.
type Sequence struct {
	Values []float64
	pos    int
}

// Float64 returns the next value.
func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

// Drawn reports how many values have been consumed.
func (s *Sequence) Drawn() int {
	return s.pos
}

// Counter wraps a Source and counts draws.
type Counter struct {
	Src Source
	N   int
}

// Float64 returns the next value from the wrapped source.
func (c *Counter) Float64() float64 {
	c.N++
	return c.Src.Float64()
}
