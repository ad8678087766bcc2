package models

import (
	"math"
	"time"
)

// TrialStatus represents the lifecycle state of a trial
type TrialStatus string

const (
	// TrialProposed means a candidate has been drawn but not yet evaluated
	TrialProposed TrialStatus = "proposed"
	// TrialRunning means the external engine is evaluating the candidate
	TrialRunning TrialStatus = "running"
	// TrialCompleted means the trial produced a finite loss
	TrialCompleted TrialStatus = "completed"
	// TrialFailed means evaluation or scoring failed; loss is +Inf
	TrialFailed TrialStatus = "failed"
)

// Trial is one parameter-vector evaluation attempt within a study.
// IDs are unique and strictly increasing within a study, assigned at
// proposal time. Once a trial reaches a terminal status its record is
// immutable.
type Trial struct {
	ID           int
	Params       map[string]float64
	Status       TrialStatus
	Loss         float64
	StartedAt    time.Time
	EndedAt      time.Time
	ArtifactPath string
}

// Terminal reports whether the trial has reached a terminal status
func (t *Trial) Terminal() bool {
	return t.Status == TrialCompleted || t.Status == TrialFailed
}

// FailedLoss is the sentinel loss recorded for failed trials
func FailedLoss() float64 {
	return math.Inf(1)
}
