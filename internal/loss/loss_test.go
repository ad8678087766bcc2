package loss

import (
	"errors"
	"math"
	"testing"
)

func TestZeroLossWhenActualEqualsSetpoint(t *testing.T) {
	time := []float64{0, 0.5, 1.3, 2.0}
	series := []float64{1, 2, 3, 4}

	got, err := IntegratedAbsoluteError(time, series, series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("loss = %f, want exactly 0", got)
	}
}

func TestConstantErrorIntegratesToCTimesT(t *testing.T) {
	// Error of 0.5 held over a 5s span integrates to exactly 2.5,
	// regardless of uneven sampling.
	time := []float64{0, 1, 2.5, 4, 5}
	actual := make([]float64, len(time))
	setpoint := make([]float64, len(time))
	for i := range time {
		actual[i] = 2.0
		setpoint[i] = 2.5
	}

	got, err := IntegratedAbsoluteError(time, actual, setpoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2.5 {
		t.Fatalf("loss = %f, want 0.5*5 = 2.5", got)
	}
}

func TestConstantErrorFullSpan(t *testing.T) {
	time := []float64{0, 2, 5, 10}
	actual := []float64{1, 1, 1, 1}
	setpoint := []float64{1.5, 1.5, 1.5, 1.5}

	got, err := IntegratedAbsoluteError(time, actual, setpoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5.0 {
		t.Fatalf("loss = %f, want 0.5*10 = 5.0", got)
	}
}

func TestLossNonNegative(t *testing.T) {
	time := []float64{0, 1, 2, 3}
	actual := []float64{0, -1, 2, -3}
	setpoint := []float64{1, 1, -1, 3}

	got, err := IntegratedAbsoluteError(time, actual, setpoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got < 0 {
		t.Fatalf("loss = %f, want non-negative", got)
	}
}

func TestRefinementConvergence(t *testing.T) {
	// Trapezoidal integration of a smooth error curve: halving the step
	// changes the result by less than a small bound.
	integrate := func(steps int) float64 {
		time := make([]float64, steps+1)
		actual := make([]float64, steps+1)
		setpoint := make([]float64, steps+1)
		for i := 0; i <= steps; i++ {
			ti := float64(i) / float64(steps) * math.Pi
			time[i] = ti
			actual[i] = math.Sin(ti)
			setpoint[i] = 0
		}
		got, err := IntegratedAbsoluteError(time, actual, setpoint)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return got
	}

	coarse := integrate(100)
	fine := integrate(200)

	// Exact integral of sin over [0, pi] is 2.
	if math.Abs(fine-2.0) > 1e-3 {
		t.Fatalf("fine integral = %f, want close to 2.0", fine)
	}
	if math.Abs(fine-coarse) > 1e-3 {
		t.Fatalf("refinement changed the integral by %f, want < 1e-3", math.Abs(fine-coarse))
	}
}

func TestErrorOnMismatchedLengths(t *testing.T) {
	_, err := IntegratedAbsoluteError([]float64{0, 1}, []float64{1}, []float64{1, 2})
	var compErr *ComputationError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *ComputationError, got %v", err)
	}
}

func TestErrorOnEmptySeries(t *testing.T) {
	_, err := IntegratedAbsoluteError(nil, nil, nil)
	var compErr *ComputationError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *ComputationError for empty series, got %v", err)
	}
}

func TestErrorOnDecreasingTimeAxis(t *testing.T) {
	_, err := IntegratedAbsoluteError(
		[]float64{0, 2, 1},
		[]float64{0, 0, 0},
		[]float64{1, 1, 1},
	)
	var compErr *ComputationError
	if !errors.As(err, &compErr) {
		t.Fatalf("expected *ComputationError for decreasing time axis, got %v", err)
	}
}

func TestRepeatedTimestampsAllowed(t *testing.T) {
	// Non-decreasing, not strictly increasing: duplicate samples from the
	// engine contribute zero-width trapezoids.
	got, err := IntegratedAbsoluteError(
		[]float64{0, 1, 1, 2},
		[]float64{0, 0, 0, 0},
		[]float64{1, 1, 1, 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2.0 {
		t.Fatalf("loss = %f, want 2.0", got)
	}
}
