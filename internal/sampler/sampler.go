package sampler

import (
	"github.com/sam-harri/GaussianPI/pkg/utils"
)

// Observation is one prior trial's outcome as seen by a proposer.
// Failed trials carry a +Inf loss.
type Observation struct {
	Params map[string]float64
	Loss   float64
}

// Sampler chooses the next candidate parameter vector given the full set of
// prior completed-or-failed observations for a study
type Sampler interface {
	// Suggest returns the next candidate. Every value lies within the
	// declared search-space bounds.
	Suggest(history []Observation) map[string]float64
	// Name returns the name of the sampling strategy
	Name() string
}

// deriveSeed mixes the configured seed with the history length so that a
// proposal depends only on (seed, replayed history), never on in-memory
// sampler state. Resuming a study reproduces the same draw for the same
// trial index.
func deriveSeed(seed int64, n int) int64 {
	s := int64(uint64(seed) + uint64(n)*0x9E3779B97F4A7C15 + 1)
	if s == 0 {
		s = 1
	}
	return s
}

// uniformDraw samples each parameter uniformly within its interval
func uniformDraw(space SearchSpace, rng *utils.RandSource) map[string]float64 {
	params := make(map[string]float64, len(space.Params))
	for _, p := range space.Params {
		params[p.Name] = rng.UniformFloat64(p.Min, p.Max)
	}
	return params
}

// RandomSampler proposes uniform-random candidates within bounds.
// It is the baseline strategy and the startup phase of the TPE sampler.
type RandomSampler struct {
	space SearchSpace
	seed  int64
}

// NewRandomSampler creates a uniform-random sampler over the given space
func NewRandomSampler(space SearchSpace, seed int64) *RandomSampler {
	return &RandomSampler{space: space, seed: seed}
}

func (s *RandomSampler) Name() string {
	return "random"
}

// Suggest returns a uniform-random candidate. The draw is a pure function of
// the seed and the number of prior observations.
func (s *RandomSampler) Suggest(history []Observation) map[string]float64 {
	rng := utils.NewRandSource(deriveSeed(s.seed, len(history)))
	return uniformDraw(s.space, rng)
}
