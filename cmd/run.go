package cmd

import (
	"github.com/spf13/cobra"
)

// newRunCommand returns the full pipeline command: every stage end to end
// across all configured sports and levels.
func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full collection pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, _, db, err := buildPipeline(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := p.Run(ctx)
			if err != nil {
				return err
			}

			log.Info("Pipeline complete",
				"queries", result.RunStats.TotalQueries,
				"search_results", result.RunStats.TotalSearchResults,
				"scraped_pages", result.RunStats.TotalScrapedPages,
				"tournaments", result.RunStats.TotalTournamentsExtracted,
				"inserted", result.InsertStats.Inserted,
				"duplicates", result.InsertStats.Duplicates,
				"seconds", result.RunStats.ExecutionTimeSeconds)
			return nil
		},
	}
}
