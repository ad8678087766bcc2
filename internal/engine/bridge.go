package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sam-harri/GaussianPI/pkg/logger"
	"github.com/sam-harri/GaussianPI/pkg/utils"
)

// BridgeConfig configures the connection to an engine bridge process
type BridgeConfig struct {
	// BaseURL is the bridge's HTTP address, e.g. http://127.0.0.1:8090
	BaseURL string
	// Model is the control model the bridge loads into the engine
	Model string
	// SettleTime discards samples before this time after each run; zero
	// disables the warm-up trim
	SettleTime float64
	// ConnectTimeout bounds the initial wait for the bridge to come up
	ConnectTimeout time.Duration
}

// BridgeEvaluator drives a single stateful engine instance through an HTTP
// bridge. It writes the candidate gains into the engine's workspace, triggers
// one simulation of the loaded model, and reads back the three result arrays.
// The engine cannot be driven concurrently; callers issue one Evaluate at a
// time.
type BridgeEvaluator struct {
	cfg    BridgeConfig
	client *http.Client
	log    *slog.Logger
}

// simulateRequest is the bridge's run-one-simulation payload
type simulateRequest struct {
	TrialID int                `json:"trial_id"`
	Params  map[string]float64 `json:"params"`
}

// simulateResponse carries the engine's three output arrays
type simulateResponse struct {
	Time     []float64 `json:"time"`
	Actual   []float64 `json:"actual"`
	Setpoint []float64 `json:"setpoint"`
	Error    string    `json:"error,omitempty"`
}

type loadModelRequest struct {
	Model string `json:"model"`
}

// NewBridgeEvaluator connects to the bridge, waits for it to become healthy,
// and loads the control model. This is the engine initialization boundary:
// it fails before any trial runs if the engine is unreachable.
func NewBridgeEvaluator(cfg BridgeConfig, log *slog.Logger) (*BridgeEvaluator, error) {
	if log == nil {
		log = logger.Default
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	e := &BridgeEvaluator{
		cfg: cfg,
		// Simulations may take minutes; the engine owns the pace.
		client: &http.Client{},
		log:    log,
	}

	if err := e.waitReady(cfg.ConnectTimeout); err != nil {
		return nil, fmt.Errorf("engine bridge not ready: %w", err)
	}
	if err := e.loadModel(); err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", cfg.Model, err)
	}

	log.Info("engine bridge ready", "url", cfg.BaseURL, "model", cfg.Model)
	return e, nil
}

// waitReady polls the bridge health endpoint with exponential backoff
func (e *BridgeEvaluator) waitReady(timeout time.Duration) error {
	backoff := utils.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0)
	deadline := time.Now().Add(timeout)

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := e.client.Get(e.cfg.BaseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("health check returned status %d", resp.StatusCode)
		} else {
			lastErr = err
		}

		delay := backoff.NextDelay(attempt)
		if time.Now().Add(delay).After(deadline) {
			return lastErr
		}
		e.log.Debug("waiting for engine bridge", "attempt", attempt, "delay", delay)
		time.Sleep(delay)
	}
}

// loadModel asks the bridge to (re)load the control model into the engine
func (e *BridgeEvaluator) loadModel() error {
	body, err := json.Marshal(loadModelRequest{Model: e.cfg.Model})
	if err != nil {
		return err
	}
	resp, err := e.client.Post(e.cfg.BaseURL+"/v1/model/load", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model load returned status %d", resp.StatusCode)
	}
	return nil
}

// Evaluate runs one simulation with the given gains. On any protocol error
// the model is reloaded before returning, so a bad candidate cannot leave the
// engine in an inconsistent state for the next trial.
func (e *BridgeEvaluator) Evaluate(ctx context.Context, params map[string]float64, trialID int) (*Result, error) {
	res, err := e.simulate(ctx, params, trialID)
	if err != nil {
		if reloadErr := e.loadModel(); reloadErr != nil {
			e.log.Error("model reload after failed evaluation also failed", "trial_id", trialID, "error", reloadErr)
		}
		return nil, &EvaluatorError{TrialID: trialID, Params: params, Err: err}
	}
	return res, nil
}

func (e *BridgeEvaluator) simulate(ctx context.Context, params map[string]float64, trialID int) (*Result, error) {
	body, err := json.Marshal(simulateRequest{TrialID: trialID, Params: params})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/v1/simulate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var simResp simulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&simResp); err != nil {
		return nil, fmt.Errorf("malformed bridge response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if simResp.Error != "" {
			return nil, fmt.Errorf("simulation failed: %s", simResp.Error)
		}
		return nil, fmt.Errorf("simulation returned status %d", resp.StatusCode)
	}

	res := trimAligned(&Result{
		Time:     simResp.Time,
		Actual:   simResp.Actual,
		Setpoint: simResp.Setpoint,
	})
	if res.Len() == 0 {
		return nil, fmt.Errorf("engine returned empty series")
	}

	return trimSettle(res, e.cfg.SettleTime), nil
}

// Close shuts the engine down. Shutdown failures are logged, not returned as
// hard errors; the engine process outlives the study either way.
func (e *BridgeEvaluator) Close() error {
	resp, err := e.client.Post(e.cfg.BaseURL+"/v1/shutdown", "application/json", nil)
	if err != nil {
		e.log.Warn("engine shutdown request failed", "error", err)
		return nil
	}
	resp.Body.Close()
	return nil
}
