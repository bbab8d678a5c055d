package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fluxkit/precedent/internal/config"
)

func metricsCmd() *cobra.Command {
	var (
		envFile    string
		windowDays int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Refresh pattern metrics from the telemetry backend",
		Long: `Refresh pattern metrics from the telemetry backend.

Requires PRECEDENT_TELEMETRY_BASE_URL (and usually a token) to be set.
When the backend is unreachable, stored metrics are left untouched and
ranking keeps using the last refreshed values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := newClient(ctx, envFile, func(cfg config.AppConfig) config.AppConfig {
				if windowDays > 0 {
					window := time.Duration(windowDays) * 24 * time.Hour
					return cfg.WithTelemetry(cfg.Telemetry().WithWindow(window))
				}
				return cfg
			})
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			report, err := client.RefreshMetrics(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Refreshed metrics for %d of %d patterns\n", report.Updated, report.Patterns)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&windowDays, "window", 0, "Aggregation window in days (default: 30)")

	return cmd
}
