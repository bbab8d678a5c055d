package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pattern store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := newClient(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			count, err := client.Count(ctx)
			if err != nil {
				return err
			}

			cfg := client.Config()
			fmt.Printf("Patterns:   %d\n", count)
			fmt.Printf("Database:   %s\n", cfg.DBURL())
			fmt.Printf("Models:     %s\n", cfg.ModelDir())
			fmt.Printf("Repository: %s\n", cfg.RepoPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}
