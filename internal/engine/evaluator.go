// Package engine is the adapter to the external black-box simulation engine.
// The rest of the module depends only on the three-series contract exposed
// here, never on the engine's own protocol.
package engine

import (
	"context"
	"fmt"
)

// Result holds the three aligned series produced by one simulation run
type Result struct {
	Time     []float64
	Actual   []float64
	Setpoint []float64
}

// Len returns the common series length
func (r *Result) Len() int {
	return len(r.Time)
}

// Evaluator runs the external engine's control model for one parameter
// vector. Implementations own the engine-specific protocol and must leave
// the engine in a usable state even when an evaluation fails.
type Evaluator interface {
	// Evaluate blocks until the engine finishes one simulation. The trial id
	// is threaded through for traceability only.
	Evaluate(ctx context.Context, params map[string]float64, trialID int) (*Result, error)
	// Close releases the engine handle
	Close() error
}

// EvaluatorError indicates the external engine failed, was unreachable, or
// returned malformed data. It carries the parameter vector and trial id of
// the evaluation that failed.
type EvaluatorError struct {
	TrialID int
	Params  map[string]float64
	Err     error
}

func (e *EvaluatorError) Error() string {
	return fmt.Sprintf("evaluator failed for trial %d (params %v): %v", e.TrialID, e.Params, e.Err)
}

func (e *EvaluatorError) Unwrap() error {
	return e.Err
}

// trimAligned trims the three series to their common minimum length, in case
// the engine produces slightly misaligned arrays
func trimAligned(res *Result) *Result {
	n := len(res.Time)
	if len(res.Actual) < n {
		n = len(res.Actual)
	}
	if len(res.Setpoint) < n {
		n = len(res.Setpoint)
	}
	res.Time = res.Time[:n]
	res.Actual = res.Actual[:n]
	res.Setpoint = res.Setpoint[:n]
	return res
}

// trimSettle discards the warm-up prefix: all samples strictly before the
// settle time. A non-positive settle time leaves the series untouched.
func trimSettle(res *Result, settle float64) *Result {
	if settle <= 0 {
		return res
	}
	start := 0
	for start < len(res.Time) && res.Time[start] < settle {
		start++
	}
	res.Time = res.Time[start:]
	res.Actual = res.Actual[start:]
	res.Setpoint = res.Setpoint[start:]
	return res
}
