package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxkit/precedent/domain/search"
)

func queryCmd() *cobra.Command {
	var (
		envFile  string
		top      int
		tags     []string
		pathGlob string
	)

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Recommend patterns for a task description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			client, err := newClient(ctx, envFile)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			filters := search.NewFilters()
			if len(tags) > 0 {
				filters = filters.WithTags(tags...)
			}
			if pathGlob != "" {
				filters = filters.WithPathGlob(pathGlob)
			}

			queryText := strings.Join(args, " ")
			recommendations, err := client.Recommend.Recommend(ctx, queryText, top, filters)
			if err != nil {
				return err
			}

			if len(recommendations) == 0 {
				fmt.Println("No matching patterns. Index more history with 'precedent init'.")
				return nil
			}

			for i, rec := range recommendations {
				fmt.Printf("%d. %s\n", i+1, rec.Explanation())
				fmt.Printf("   score=%.3f (similarity=%.3f recency=%.3f usage=%.3f)\n",
					rec.FinalScore(), rec.SimilarityScore(), rec.RecencyScore(), rec.UsageScore())
				if paths := rec.Pattern().FilePaths(); len(paths) > 0 {
					fmt.Printf("   files: %s\n", strings.Join(paths, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&top, "top", 5, "Maximum number of recommendations")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Only patterns carrying any of these tags")
	cmd.Flags().StringVar(&pathGlob, "path", "", "Only patterns touching files matching this glob")

	return cmd
}
