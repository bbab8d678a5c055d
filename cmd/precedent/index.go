package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func initCmd() *cobra.Command {
	var (
		envFile  string
		repoPath string
		commits  int
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Index recent repository history into the pattern store",
		Long: `Index recent repository history into the pattern store.

Walks history newest-first, skipping merge commits, automated commits, and
changes below the minimum diff size, then embeds and stores each pattern.
Run it again at any time; re-indexing the same commits is idempotent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := newClient(ctx, envFile, repoOverride(repoPath))
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			report, err := client.Index.IndexRecent(ctx, commits)
			if err != nil {
				return err
			}

			fmt.Printf("Indexed %d of %d extracted patterns\n", report.Indexed, report.Extracted)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&repoPath, "repo", "", "Repository to mine (default: current directory)")
	cmd.Flags().IntVar(&commits, "commits", 100, "Number of qualifying commits to index")

	return cmd
}

func refreshCmd() *cobra.Command {
	var (
		envFile  string
		repoPath string
		commits  int
		since    string
		until    string
		pathGlob string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-index history, optionally restricted by date or path",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := newClient(ctx, envFile, repoOverride(repoPath))
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			switch {
			case since != "" || until != "":
				sinceTime, untilTime, err := parseDateRange(since, until)
				if err != nil {
					return err
				}
				report, err := client.Index.IndexDateRange(ctx, sinceTime, untilTime)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d of %d extracted patterns\n", report.Indexed, report.Extracted)

			case pathGlob != "":
				report, err := client.Index.IndexByPath(ctx, pathGlob)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d of %d extracted patterns\n", report.Indexed, report.Extracted)

			default:
				report, err := client.Index.IndexRecent(ctx, commits)
				if err != nil {
					return err
				}
				fmt.Printf("Indexed %d of %d extracted patterns\n", report.Indexed, report.Extracted)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&repoPath, "repo", "", "Repository to mine (default: current directory)")
	cmd.Flags().IntVar(&commits, "commits", 100, "Number of qualifying commits to index")
	cmd.Flags().StringVar(&since, "since", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "End date (YYYY-MM-DD, default: now)")
	cmd.Flags().StringVar(&pathGlob, "path", "", "Only commits touching files matching this glob")

	return cmd
}

func parseDateRange(since, until string) (time.Time, time.Time, error) {
	sinceTime := time.Time{}
	untilTime := time.Now()

	if since != "" {
		parsed, err := time.Parse(dateLayout, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since date %q: %w", since, err)
		}
		sinceTime = parsed
	}
	if until != "" {
		parsed, err := time.Parse(dateLayout, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until date %q: %w", until, err)
		}
		untilTime = parsed
	}
	return sinceTime, untilTime, nil
}
