// Package main is the entry point for the precedent CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluxkit/precedent"
	"github.com/fluxkit/precedent/internal/config"
	"github.com/fluxkit/precedent/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precedent",
		Short: "Pattern recommendations from your own history",
		Long: `Precedent mines a repository's commit history into patterns, embeds
them with a local ONNX model, and answers natural-language queries with
ranked recommendations grounded in work that already shipped.`,
	}

	cmd.AddCommand(initCmd())
	cmd.AddCommand(refreshCmd())
	cmd.AddCommand(queryCmd())
	cmd.AddCommand(metricsCmd())
	cmd.AddCommand(statsCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newClient builds a Client from the environment plus per-command
// overrides applied to the loaded config.
func newClient(ctx context.Context, envFile string, overrides ...func(config.AppConfig) config.AppConfig) (*precedent.Client, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		cfg = override(cfg)
	}

	logger := log.New(cfg)
	return precedent.New(ctx,
		precedent.WithConfig(cfg),
		precedent.WithLogger(logger),
	)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func repoOverride(repoPath string) func(config.AppConfig) config.AppConfig {
	return func(cfg config.AppConfig) config.AppConfig {
		if repoPath != "" {
			return cfg.WithRepoPath(repoPath)
		}
		return cfg
	}
}
