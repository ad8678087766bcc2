package config

import (
	"fmt"
	"math"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level
	validLogLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := validateStudy(&cfg.Study); err != nil {
		return fmt.Errorf("study validation failed: %w", err)
	}
	if err := validateEngine(&cfg.Engine); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		return fmt.Errorf("search validation failed: %w", err)
	}

	return nil
}

// validateStudy validates the study section
func validateStudy(s *Study) error {
	if s.Name == "" {
		return fmt.Errorf("study name cannot be empty")
	}
	if s.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if s.Budget < 0 {
		return fmt.Errorf("budget cannot be negative, got %d", s.Budget)
	}
	return nil
}

// validateEngine validates the engine section
func validateEngine(e *Engine) error {
	if e.BridgeURL == "" {
		return fmt.Errorf("bridge_url cannot be empty")
	}
	if e.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if e.SettleTimeSec < 0 {
		return fmt.Errorf("settle_time_sec cannot be negative, got %f", e.SettleTimeSec)
	}
	if _, err := e.GetConnectTimeout(); err != nil {
		return fmt.Errorf("invalid connect_timeout %s: %w", e.ConnectTimeout, err)
	}
	return nil
}

// validateSearch validates the search section.
// Bound ordering is checked again by the sampler's search space at study
// creation; this catches config mistakes before anything is constructed.
func validateSearch(s *Search) error {
	validSamplers := map[string]bool{
		"":       true, // defaults to tpe
		"tpe":    true,
		"random": true,
	}
	if !validSamplers[s.Sampler] {
		return fmt.Errorf("invalid sampler: %s (must be tpe or random)", s.Sampler)
	}
	if s.StartupTrials < 0 {
		return fmt.Errorf("startup_trials cannot be negative, got %d", s.StartupTrials)
	}

	if len(s.Params) == 0 {
		return fmt.Errorf("at least one search parameter must be defined")
	}
	paramNames := make(map[string]bool)
	for _, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if paramNames[p.Name] {
			return fmt.Errorf("duplicate parameter name: %s", p.Name)
		}
		paramNames[p.Name] = true

		if math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0) {
			return fmt.Errorf("parameter %s: bounds must be finite", p.Name)
		}
		if p.Min >= p.Max {
			return fmt.Errorf("parameter %s: min (%f) must be less than max (%f)", p.Name, p.Min, p.Max)
		}
	}

	return nil
}
