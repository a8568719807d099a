package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/jsondoc"
)

// newGenerateCommand returns the query generation stage command.
func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate search queries for every configured sport and level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			completer, err := newCompleter(cfg, log)
			if err != nil {
				return err
			}

			doc := newGenerator(cfg, completer, log).GenerateAll(cmd.Context())

			path := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.QueriesFile)
			if err := jsondoc.Save(path, doc); err != nil {
				return fmt.Errorf("save queries: %w", err)
			}

			log.Info("Query generation complete",
				"queries", doc.Metadata.TotalQueries,
				"file", path)
			return nil
		},
	}
}
