// Package loss scores an evaluation's output series as a single scalar.
// The computation is pure and performs no I/O.
package loss

import "math"

// ComputationError indicates malformed evaluator output reaching the scorer
type ComputationError struct {
	Reason string
}

func (e *ComputationError) Error() string {
	return "loss computation failed: " + e.Reason
}

// IntegratedAbsoluteError computes the integral of |actual - setpoint| over
// the time axis using trapezoidal integration, so uneven sampling intervals
// from the external engine are handled correctly.
//
// The three series must have equal, non-zero length and the time axis must be
// monotonically non-decreasing. The result is always non-negative, and is
// exactly zero when actual equals setpoint pointwise.
func IntegratedAbsoluteError(time, actual, setpoint []float64) (float64, error) {
	n := len(time)
	if n == 0 {
		return 0, &ComputationError{Reason: "empty series"}
	}
	if len(actual) != n || len(setpoint) != n {
		return 0, &ComputationError{Reason: "series lengths differ"}
	}

	total := 0.0
	prevErr := math.Abs(actual[0] - setpoint[0])
	for i := 1; i < n; i++ {
		dt := time[i] - time[i-1]
		if dt < 0 {
			return 0, &ComputationError{Reason: "time axis is not monotonically non-decreasing"}
		}
		curErr := math.Abs(actual[i] - setpoint[i])
		total += dt * (prevErr + curErr) / 2
		prevErr = curErr
	}

	return total, nil
}
