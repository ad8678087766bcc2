package config

import "time"

// Config represents the main tuning configuration
type Config struct {
	LogLevel string `yaml:"log_level"`
	Study    Study  `yaml:"study"`
	Engine   Engine `yaml:"engine"`
	Search   Search `yaml:"search"`
}

// Study identifies the study and where its data lives.
// Re-running with the same name against the same data_dir resumes the study.
type Study struct {
	Name      string `yaml:"name"`
	DataDir   string `yaml:"data_dir"`
	Budget    int    `yaml:"budget"`
	Artifacts bool   `yaml:"artifacts"`
	BestRerun bool   `yaml:"best_rerun"`
}

// Engine configures the connection to the external simulation engine bridge
type Engine struct {
	BridgeURL      string  `yaml:"bridge_url"`
	Model          string  `yaml:"model"`
	SettleTimeSec  float64 `yaml:"settle_time_sec,omitempty"`
	ConnectTimeout string  `yaml:"connect_timeout,omitempty"`
}

// Search configures the proposer strategy and the parameter search space
type Search struct {
	Sampler       string       `yaml:"sampler"` // "tpe" or "random"
	Seed          int64        `yaml:"seed,omitempty"`
	StartupTrials int          `yaml:"startup_trials,omitempty"`
	Params        []ParamRange `yaml:"params"`
}

// ParamRange declares the closed interval for one tunable parameter
type ParamRange struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// GetConnectTimeout parses the engine connect timeout, defaulting to 30s
func (e *Engine) GetConnectTimeout() (time.Duration, error) {
	if e.ConnectTimeout == "" {
		return 30 * time.Second, nil
	}
	return time.ParseDuration(e.ConnectTimeout)
}
