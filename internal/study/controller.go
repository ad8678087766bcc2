// Package study drives the trial loop: propose a candidate, evaluate it
// against the external engine, score the output, persist the outcome, and
// repeat until the trial budget is exhausted.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sam-harri/GaussianPI/internal/engine"
	"github.com/sam-harri/GaussianPI/internal/loss"
	"github.com/sam-harri/GaussianPI/internal/sampler"
	"github.com/sam-harri/GaussianPI/internal/store"
	"github.com/sam-harri/GaussianPI/pkg/logger"
	"github.com/sam-harri/GaussianPI/pkg/models"
)

// NoCompletedTrialsError indicates every trial in a run failed, so there is
// no best parameter set to report
type NoCompletedTrialsError struct {
	Study string
}

func (e *NoCompletedTrialsError) Error() string {
	return "study " + e.Study + " has no completed trials"
}

// Result is the outcome of a study run
type Result struct {
	BestParams      map[string]float64
	BestLoss        float64
	BestTrialID     int
	TotalTrials     int
	CompletedTrials int
	FailedTrials    int
	Duration        time.Duration
}

// Controller owns the trial loop for one named study. It holds the engine
// handle exclusively for the lifetime of the run and is the ledger's single
// writer; it must not be shared across goroutines.
type Controller struct {
	name      string
	space     sampler.SearchSpace
	evaluator engine.Evaluator
	proposer  sampler.Sampler
	ledger    *store.Ledger
	artifacts *store.ArtifactWriter
	bestRerun bool
	log       *slog.Logger
	sessionID string
}

type options struct {
	dataDir   string
	proposer  sampler.Sampler
	seed      int64
	artifacts bool
	bestRerun bool
	log       *slog.Logger
}

// Option configures a study controller
type Option func(*options)

// WithDataDir sets the storage location for the ledger and artifacts.
// Storage is always an explicit location, never the ambient working
// directory.
func WithDataDir(dir string) Option {
	return func(o *options) { o.dataDir = dir }
}

// WithSampler replaces the default TPE proposer
func WithSampler(s sampler.Sampler) Option {
	return func(o *options) { o.proposer = s }
}

// WithSeed sets the seed for the default proposer
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithArtifacts enables per-trial artifact persistence
func WithArtifacts(enabled bool) Option {
	return func(o *options) { o.artifacts = enabled }
}

// WithBestRerun re-evaluates the best parameters once after the run and
// persists the resulting series
func WithBestRerun(enabled bool) Option {
	return func(o *options) { o.bestRerun = enabled }
}

// WithLogger sets the study's logger
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

// New creates a controller for a named study. An invalid search space fails
// here, before anything is persisted. If a ledger already exists under the
// study's name it is replayed, so the run resumes instead of starting over.
func New(name string, space sampler.SearchSpace, evaluator engine.Evaluator, opts ...Option) (*Controller, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}

	o := &options{dataDir: "data", log: logger.Default}
	for _, opt := range opts {
		opt(o)
	}
	if o.proposer == nil {
		o.proposer = sampler.NewTPESampler(space, o.seed)
	}

	ledger, err := store.OpenLedger(store.LedgerPath(o.dataDir, name), space.Names())
	if err != nil {
		return nil, fmt.Errorf("failed to open study ledger: %w", err)
	}

	var artifacts *store.ArtifactWriter
	if o.artifacts {
		artifacts, err = store.NewArtifactWriter(o.dataDir, name, space.Names())
		if err != nil {
			ledger.Close()
			return nil, err
		}
	}

	return &Controller{
		name:      name,
		space:     space,
		evaluator: evaluator,
		proposer:  o.proposer,
		ledger:    ledger,
		artifacts: artifacts,
		bestRerun: o.bestRerun,
		log:       o.log,
		sessionID: uuid.NewString(),
	}, nil
}

// Close releases the study's ledger. The evaluator is owned by the caller.
func (c *Controller) Close() error {
	return c.ledger.Close()
}

// Run executes up to budget new trials and returns the best trial recorded
// across the whole ledger, resumed history included. A failed trial never
// aborts the run; it is persisted with a +Inf loss and the loop continues.
func (c *Controller) Run(ctx context.Context, budget int) (*Result, error) {
	start := time.Now()

	history := asObservations(c.ledger.Trials())
	c.log.Info("study started",
		"study", c.name,
		"session_id", c.sessionID,
		"sampler", c.proposer.Name(),
		"resumed_trials", len(history),
		"budget", budget,
	)

loop:
	for i := 0; i < budget; i++ {
		select {
		case <-ctx.Done():
			// Cancellation granularity is "stop requesting new trials".
			c.log.Warn("study interrupted", "study", c.name, "trials_run", i)
			break loop
		default:
		}

		trial := c.runTrial(ctx, c.ledger.NextID(), c.proposer.Suggest(history))

		// The terminal record is durable before the next proposal is
		// requested; a crash loses at most the in-flight trial.
		if err := c.ledger.Append(trial); err != nil {
			return nil, fmt.Errorf("failed to persist trial %d: %w", trial.ID, err)
		}
		history = append(history, sampler.Observation{Params: trial.Params, Loss: trial.Loss})

		if trial.Status == models.TrialCompleted {
			c.log.Info("trial completed",
				"study", c.name,
				"trial_id", trial.ID,
				"params", trial.Params,
				"loss", trial.Loss,
				"duration", trial.EndedAt.Sub(trial.StartedAt),
			)
		}
	}

	best := bestTrial(c.ledger.Trials())
	if best == nil {
		return nil, &NoCompletedTrialsError{Study: c.name}
	}

	if c.bestRerun {
		c.rerunBest(ctx, best)
	}

	result := c.buildResult(best, time.Since(start))
	c.log.Info("study finished",
		"study", c.name,
		"best_trial_id", result.BestTrialID,
		"best_params", result.BestParams,
		"best_loss", result.BestLoss,
		"completed", result.CompletedTrials,
		"failed", result.FailedTrials,
	)
	return result, nil
}

// runTrial takes one candidate through proposed -> running -> terminal.
// Evaluator and scoring errors are contained here: they produce a failed
// trial, never an aborted study.
func (c *Controller) runTrial(ctx context.Context, id int, params map[string]float64) *models.Trial {
	trial := &models.Trial{
		ID:     id,
		Params: params,
		Status: models.TrialProposed,
	}

	trial.Status = models.TrialRunning
	trial.StartedAt = time.Now()
	res, err := c.evaluator.Evaluate(ctx, trial.Params, trial.ID)
	trial.EndedAt = time.Now()

	if err == nil {
		var lossVal float64
		lossVal, err = loss.IntegratedAbsoluteError(res.Time, res.Actual, res.Setpoint)
		if err == nil {
			trial.Status = models.TrialCompleted
			trial.Loss = lossVal
			c.writeArtifact(trial, res)
			return trial
		}
	}

	trial.Status = models.TrialFailed
	trial.Loss = models.FailedLoss()
	c.log.Warn("trial failed",
		"study", c.name,
		"trial_id", trial.ID,
		"params", trial.Params,
		"error", err,
	)
	return trial
}

// writeArtifact persists a completed trial's series. Artifact failures are
// telemetry losses, not trial failures.
func (c *Controller) writeArtifact(trial *models.Trial, res *engine.Result) {
	if c.artifacts == nil {
		return
	}
	path, err := c.artifacts.WriteTrialSeries(trial, res)
	if err != nil {
		c.log.Warn("failed to write trial artifact", "trial_id", trial.ID, "error", err)
		return
	}
	trial.ArtifactPath = path
}

// rerunBest evaluates the best parameters once more and persists the series,
// so the winning response curve is available for inspection
func (c *Controller) rerunBest(ctx context.Context, best *models.Trial) {
	if c.artifacts == nil {
		return
	}
	c.log.Info("re-running simulation with best parameters", "study", c.name, "params", best.Params)
	res, err := c.evaluator.Evaluate(ctx, best.Params, best.ID)
	if err != nil {
		c.log.Error("best-parameter re-run failed", "study", c.name, "error", err)
		return
	}
	path, err := c.artifacts.WriteBestSeries(best.Params, res)
	if err != nil {
		c.log.Error("failed to persist best-parameter series", "study", c.name, "error", err)
		return
	}
	c.log.Info("best result data saved", "study", c.name, "path", path)
}

func (c *Controller) buildResult(best *models.Trial, elapsed time.Duration) *Result {
	result := &Result{
		BestParams:  best.Params,
		BestLoss:    best.Loss,
		BestTrialID: best.ID,
		Duration:    elapsed,
	}
	for _, t := range c.ledger.Trials() {
		result.TotalTrials++
		switch t.Status {
		case models.TrialCompleted:
			result.CompletedTrials++
		case models.TrialFailed:
			result.FailedTrials++
		}
	}
	return result
}

// bestTrial scans for the completed trial with minimal loss; ties keep the
// earliest trial
func bestTrial(trials []models.Trial) *models.Trial {
	var best *models.Trial
	for i := range trials {
		t := &trials[i]
		if t.Status != models.TrialCompleted {
			continue
		}
		if best == nil || t.Loss < best.Loss {
			best = t
		}
	}
	return best
}

// asObservations converts persisted trials into the proposer's view of
// history: params/loss pairs, failed trials carrying +Inf
func asObservations(trials []models.Trial) []sampler.Observation {
	obs := make([]sampler.Observation, len(trials))
	for i, t := range trials {
		obs[i] = sampler.Observation{Params: t.Params, Loss: t.Loss}
	}
	return obs
}

// Run creates a controller, runs the study to its budget, and returns the
// best trial's parameters and loss. This is the single outward API call;
// everything else is internal composition.
func Run(ctx context.Context, evaluator engine.Evaluator, space sampler.SearchSpace, budget int, name string, opts ...Option) (*Result, error) {
	c, err := New(name, space, evaluator, opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Run(ctx, budget)
}
