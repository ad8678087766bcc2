package sampler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sam-harri/GaussianPI/pkg/utils"
)

// TPESampler implements the tree-structured Parzen estimator, a sequential
// model-based strategy. Observations are split at a quantile of the loss into
// a good and a bad group, a Parzen mixture is fit to each group per
// dimension, candidates are drawn from the good mixture, and the candidate
// maximizing the density ratio l(x)/g(x) is proposed. Maximizing that ratio
// is equivalent to maximizing expected improvement.
type TPESampler struct {
	space      SearchSpace
	seed       int64
	startup    int     // uniform-random trials before the surrogate kicks in
	candidates int     // acquisition candidates drawn per proposal
	gamma      float64 // quantile separating good from bad observations
	gammaCap   int     // upper bound on the good-group size
}

// NewTPESampler creates a TPE sampler over the given space
func NewTPESampler(space SearchSpace, seed int64) *TPESampler {
	return &TPESampler{
		space:      space,
		seed:       seed,
		startup:    10,
		candidates: 24,
		gamma:      0.25,
		gammaCap:   25,
	}
}

// WithStartupTrials sets the number of uniform-random startup trials
func (s *TPESampler) WithStartupTrials(n int) *TPESampler {
	if n > 0 {
		s.startup = n
	}
	return s
}

// WithCandidateCount sets the number of acquisition candidates per proposal
func (s *TPESampler) WithCandidateCount(n int) *TPESampler {
	if n > 0 {
		s.candidates = n
	}
	return s
}

func (s *TPESampler) Name() string {
	return "tpe"
}

// Suggest proposes the next candidate from the replayed history.
// The proposal is a pure function of (seed, history): resuming a study with
// the same ledger reproduces the same draw for the same trial index.
func (s *TPESampler) Suggest(history []Observation) map[string]float64 {
	rng := utils.NewRandSource(deriveSeed(s.seed, len(history)))

	if len(history) < s.startup {
		return uniformDraw(s.space, rng)
	}

	below, above := s.split(history)
	if len(below) == 0 || len(above) == 0 {
		return uniformDraw(s.space, rng)
	}

	params := make(map[string]float64, len(s.space.Params))
	for _, p := range s.space.Params {
		l := newParzen(groupValues(below, p.Name), p)
		g := newParzen(groupValues(above, p.Name), p)

		bestScore := math.Inf(-1)
		bestX := p.Min
		for i := 0; i < s.candidates; i++ {
			x := l.sample(rng)
			score := math.Log(l.pdf(x)+1e-12) - math.Log(g.pdf(x)+1e-12)
			if score > bestScore {
				bestScore = score
				bestX = x
			}
		}
		params[p.Name] = bestX
	}
	return params
}

// split partitions the history at the gamma quantile of the loss.
// Failed observations (+Inf loss) sort last and land in the bad group.
func (s *TPESampler) split(history []Observation) (below, above []Observation) {
	sorted := make([]Observation, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Loss < sorted[j].Loss
	})

	n := len(sorted)
	nBelow := int(math.Ceil(s.gamma * float64(n)))
	if nBelow > s.gammaCap {
		nBelow = s.gammaCap
	}
	if nBelow >= n {
		nBelow = n - 1
	}
	if nBelow < 1 {
		nBelow = 1
	}

	// A good group of all-failed observations carries no information.
	if math.IsInf(sorted[0].Loss, 1) {
		return nil, sorted
	}
	for nBelow > 0 && math.IsInf(sorted[nBelow-1].Loss, 1) {
		nBelow--
	}

	return sorted[:nBelow], sorted[nBelow:]
}

// groupValues extracts one dimension's finite values from a group
func groupValues(group []Observation, name string) []float64 {
	values := make([]float64, 0, len(group))
	for _, obs := range group {
		if v, ok := obs.Params[name]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	return values
}

// parzen is a one-dimensional mixture of truncated Gaussian kernels over a
// parameter's closed interval, with a wide prior kernel at the midpoint so
// the density never vanishes anywhere in the interval.
type parzen struct {
	param   Param
	mus     []float64
	sigmas  []float64
	kernels []distuv.Normal
	trunc   []float64 // per-kernel truncation mass over [Min, Max]
}

func newParzen(values []float64, p Param) *parzen {
	width := p.Width()

	sigma := utils.StdDev(values)
	floor := width / float64(len(values)+1)
	if sigma < floor {
		sigma = floor
	}

	mus := make([]float64, 0, len(values)+1)
	sigmas := make([]float64, 0, len(values)+1)
	for _, v := range values {
		mus = append(mus, v)
		sigmas = append(sigmas, sigma)
	}
	// Prior kernel: midpoint, interval-wide.
	mus = append(mus, p.Min+width/2)
	sigmas = append(sigmas, width)

	pz := &parzen{
		param:   p,
		mus:     mus,
		sigmas:  sigmas,
		kernels: make([]distuv.Normal, len(mus)),
		trunc:   make([]float64, len(mus)),
	}
	for i := range mus {
		pz.kernels[i] = distuv.Normal{Mu: mus[i], Sigma: sigmas[i]}
		mass := pz.kernels[i].CDF(p.Max) - pz.kernels[i].CDF(p.Min)
		if mass < 1e-12 {
			mass = 1e-12
		}
		pz.trunc[i] = mass
	}
	return pz
}

// pdf evaluates the truncated mixture density at x
func (pz *parzen) pdf(x float64) float64 {
	total := 0.0
	for i, k := range pz.kernels {
		total += k.Prob(x) / pz.trunc[i]
	}
	return total / float64(len(pz.kernels))
}

// sample draws from the mixture, truncated to the parameter's interval
func (pz *parzen) sample(rng *utils.RandSource) float64 {
	i := rng.Intn(len(pz.mus))
	return rng.TruncNormFloat64(pz.mus[i], pz.sigmas[i], pz.param.Min, pz.param.Max)
}
