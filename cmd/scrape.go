package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/jsondoc"
)

// newScrapeCommand returns the content scraping stage command. It reads
// collected search results and scrapes the top-ranked pages.
func newScrapeCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the top-ranked search results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			var searchDoc domain.SearchDocument
			resultsPath := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.SearchResultsFile)
			if err := jsondoc.Load(resultsPath, &searchDoc); err != nil {
				return fmt.Errorf("load search results (run search first): %w", err)
			}

			scr, err := newScraper(cfg, log)
			if err != nil {
				return err
			}

			doc := scr.ScrapeTop(cmd.Context(), searchDoc.Results, count)

			path := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.ScrapedContentFile)
			if err := jsondoc.Save(path, doc); err != nil {
				return fmt.Errorf("save scraped content: %w", err)
			}

			log.Info("Content scraping complete",
				"pages", doc.Metadata.SuccessfulExtractions,
				"file", path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of top results to scrape")

	return cmd
}
