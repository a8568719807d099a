package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/jsondoc"
)

// newSearchCommand returns the search collection stage command. It reads
// the query file produced by generate and writes ranked, deduplicated
// search results.
func newSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run web searches for previously generated queries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			var queryDoc domain.QueryDocument
			queriesPath := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.QueriesFile)
			if err := jsondoc.Load(queriesPath, &queryDoc); err != nil {
				return fmt.Errorf("load queries (run generate first): %w", err)
			}

			collector, err := newCollector(cfg, log)
			if err != nil {
				return err
			}

			if limit <= 0 {
				limit = cfg.Pipeline.SearchLimit
			}
			doc := collector.Run(cmd.Context(), queryDoc.Queries, limit)

			path := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.SearchResultsFile)
			if err := jsondoc.Save(path, doc); err != nil {
				return fmt.Errorf("save search results: %w", err)
			}

			log.Info("Search collection complete",
				"results", doc.Metadata.TotalResults,
				"file", path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum queries to execute (default from config)")

	return cmd
}
