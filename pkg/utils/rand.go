package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seeded random number generator for reproducible sampling
type RandSource struct {
	rng *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed falls back to the current time.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// NormFloat64 returns a normally distributed random number with mean and stddev
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// TruncNormFloat64 returns a normally distributed random number with mean and
// stddev, rejected until it falls inside [min, max]. After maxDraws rejections
// the result is clamped instead, so a kernel far outside the bounds cannot
// stall the caller.
func (r *RandSource) TruncNormFloat64(mean, stddev, min, max float64) float64 {
	const maxDraws = 100
	for i := 0; i < maxDraws; i++ {
		v := r.NormFloat64(mean, stddev)
		if v >= min && v <= max {
			return v
		}
	}
	return ClampFloat64(r.NormFloat64(mean, stddev), min, max)
}
