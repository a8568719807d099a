package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/jsondoc"
)

// newStoreCommand returns the storage stage command. It reads extracted
// tournament data and inserts it into PostgreSQL, skipping duplicates.
func newStoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "store",
		Short: "Store extracted tournaments in PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			var doc domain.TournamentDocument
			dataPath := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.TournamentDataFile)
			if err := jsondoc.Load(dataPath, &doc); err != nil {
				return fmt.Errorf("load tournament data (run extract first): %w", err)
			}

			ctx := cmd.Context()
			db, repo, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			stats := repo.InsertBatch(ctx, doc.Tournaments)

			log.Info("Storage complete",
				"processed", stats.Processed,
				"inserted", stats.Inserted,
				"duplicates", stats.Duplicates,
				"failed", stats.Failed)
			return nil
		},
	}
}
