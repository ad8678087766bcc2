// Package sampler proposes candidate parameter vectors from accumulated
// trial history. Strategies are interchangeable behind the Sampler interface
// and hold no state beyond their seed, so an interrupted study can rebuild
// its proposer purely by replaying the persisted ledger.
package sampler

import (
	"fmt"
	"math"
)

// InvalidSpaceError indicates a bad search-space declaration.
// It is fatal at study creation, before any engine initialization.
type InvalidSpaceError struct {
	Reason string
}

func (e *InvalidSpaceError) Error() string {
	return "invalid search space: " + e.Reason
}

// Param declares the closed interval for one tunable parameter
type Param struct {
	Name string
	Min  float64
	Max  float64
}

// Width returns the length of the parameter's interval
func (p Param) Width() float64 {
	return p.Max - p.Min
}

// SearchSpace is the ordered set of declared parameter intervals for a study
type SearchSpace struct {
	Params []Param
}

// NewSearchSpace creates a search space from the given parameter intervals
func NewSearchSpace(params ...Param) SearchSpace {
	return SearchSpace{Params: params}
}

// Validate checks the search-space declaration and returns an
// *InvalidSpaceError if it is empty or malformed
func (s SearchSpace) Validate() error {
	if len(s.Params) == 0 {
		return &InvalidSpaceError{Reason: "no parameters declared"}
	}
	seen := make(map[string]bool)
	for _, p := range s.Params {
		if p.Name == "" {
			return &InvalidSpaceError{Reason: "parameter name cannot be empty"}
		}
		if seen[p.Name] {
			return &InvalidSpaceError{Reason: "duplicate parameter name: " + p.Name}
		}
		seen[p.Name] = true

		if math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0) {
			return &InvalidSpaceError{Reason: "parameter " + p.Name + ": bounds must be finite"}
		}
		if p.Min >= p.Max {
			return &InvalidSpaceError{
				Reason: fmt.Sprintf("parameter %s: min (%g) must be less than max (%g)", p.Name, p.Min, p.Max),
			}
		}
	}
	return nil
}

// Names returns the declared parameter names in order
func (s SearchSpace) Names() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// Contains reports whether every declared parameter is present in params and
// lies within its closed interval
func (s SearchSpace) Contains(params map[string]float64) bool {
	for _, p := range s.Params {
		v, ok := params[p.Name]
		if !ok || v < p.Min || v > p.Max {
			return false
		}
	}
	return true
}
