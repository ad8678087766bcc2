// Package main is the entry point for the pitune CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sam-harri/GaussianPI/internal/engine"
	"github.com/sam-harri/GaussianPI/internal/sampler"
	"github.com/sam-harri/GaussianPI/internal/store"
	"github.com/sam-harri/GaussianPI/internal/study"
	"github.com/sam-harri/GaussianPI/pkg/config"
	"github.com/sam-harri/GaussianPI/pkg/logger"
	"github.com/sam-harri/GaussianPI/pkg/models"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "pitune",
		Short:   "pitune — closed-loop PI controller gain tuning",
		Version: version,
	}

	root.PersistentFlags().StringP("config", "c", "config.yaml", "path to configuration file")

	root.AddCommand(
		tuneCmd(),
		bestCmd(),
	)

	return root
}

func tuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Run a tuning study against the simulation engine bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			budget, _ := cmd.Flags().GetInt("budget")
			return executeTune(path, budget)
		},
	}
	cmd.Flags().Int("budget", 0, "override trial budget (0 = use config)")
	return cmd
}

func bestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "best",
		Short: "Show the best recorded trial for the configured study",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			return showBest(path)
		},
	}
}

// executeTune loads config, connects to the engine bridge, and runs the
// study to its trial budget.
func executeTune(configPath string, budgetOverride int) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, os.Stdout)
	logger.SetDefault(log)

	space := buildSpace(cfg)
	// A bad search space must surface before the engine bridge is touched.
	if err := space.Validate(); err != nil {
		return err
	}

	budget := cfg.Study.Budget
	if budgetOverride > 0 {
		budget = budgetOverride
	}

	connectTimeout, err := cfg.Engine.GetConnectTimeout()
	if err != nil {
		return fmt.Errorf("invalid engine connect_timeout: %w", err)
	}

	evaluator, err := engine.NewBridgeEvaluator(engine.BridgeConfig{
		BaseURL:        cfg.Engine.BridgeURL,
		Model:          cfg.Engine.Model,
		SettleTime:     cfg.Engine.SettleTimeSec,
		ConnectTimeout: connectTimeout,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to connect to engine bridge: %w", err)
	}
	defer evaluator.Close()

	result, err := study.Run(signalContext(), evaluator, space, budget, cfg.Study.Name,
		study.WithDataDir(cfg.Study.DataDir),
		study.WithSampler(buildSampler(cfg, space)),
		study.WithArtifacts(cfg.Study.Artifacts),
		study.WithBestRerun(cfg.Study.BestRerun),
		study.WithLogger(log),
	)
	if err != nil {
		return err
	}

	fmt.Printf("Best trial: %d\n", result.BestTrialID)
	for _, name := range space.Names() {
		fmt.Printf("  %-4s %.6f\n", name, result.BestParams[name])
	}
	fmt.Printf("  loss %.6f\n", result.BestLoss)
	fmt.Printf("Trials: %d completed, %d failed in %s\n",
		result.CompletedTrials, result.FailedTrials, result.Duration.Round(time.Millisecond))
	return nil
}

// showBest replays the study ledger and prints the completed trial with the
// lowest loss, without touching the engine.
func showBest(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	space := buildSpace(cfg)
	if err := space.Validate(); err != nil {
		return err
	}

	ledger, err := store.OpenLedger(store.LedgerPath(cfg.Study.DataDir, cfg.Study.Name), space.Names())
	if err != nil {
		return err
	}
	defer ledger.Close()

	var best *models.Trial
	for _, trial := range ledger.Trials() {
		if trial.Status != models.TrialCompleted {
			continue
		}
		t := trial
		if best == nil || t.Loss < best.Loss {
			best = &t
		}
	}
	if best == nil {
		fmt.Printf("Study %s has no completed trials yet.\n", cfg.Study.Name)
		return nil
	}

	fmt.Printf("Study %s — best trial %d of %d\n", cfg.Study.Name, best.ID, ledger.Len())
	for _, name := range space.Names() {
		fmt.Printf("  %-4s %.6f\n", name, best.Params[name])
	}
	fmt.Printf("  loss %.6f\n", best.Loss)
	return nil
}

// buildSpace converts the declared parameter ranges into a search space
func buildSpace(cfg *config.Config) sampler.SearchSpace {
	params := make([]sampler.Param, len(cfg.Search.Params))
	for i, p := range cfg.Search.Params {
		params[i] = sampler.Param{Name: p.Name, Min: p.Min, Max: p.Max}
	}
	return sampler.NewSearchSpace(params...)
}

// buildSampler constructs the configured proposer strategy
func buildSampler(cfg *config.Config, space sampler.SearchSpace) sampler.Sampler {
	if cfg.Search.Sampler == "random" {
		return sampler.NewRandomSampler(space, cfg.Search.Seed)
	}
	tpe := sampler.NewTPESampler(space, cfg.Search.Seed)
	if cfg.Search.StartupTrials > 0 {
		tpe = tpe.WithStartupTrials(cfg.Search.StartupTrials)
	}
	return tpe
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx
}
