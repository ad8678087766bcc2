package models

import (
	"math"
	"testing"
)

func TestTrialTerminal(t *testing.T) {
	tests := []struct {
		status TrialStatus
		want   bool
	}{
		{TrialProposed, false},
		{TrialRunning, false},
		{TrialCompleted, true},
		{TrialFailed, true},
	}
	for _, tt := range tests {
		trial := &Trial{ID: 1, Status: tt.status}
		if got := trial.Terminal(); got != tt.want {
			t.Errorf("Terminal() with status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFailedLoss(t *testing.T) {
	if !math.IsInf(FailedLoss(), 1) {
		t.Fatalf("FailedLoss() = %f, want +Inf", FailedLoss())
	}
}
