package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/extractor"
	"github.com/jonesrussell/gotourney/internal/jsondoc"
)

// newExtractCommand returns the model extraction stage command. It reads
// scraped content and writes enhanced, validated tournament records.
func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract structured tournament records from scraped content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			var scrapeDoc domain.ScrapeDocument
			scrapedPath := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.ScrapedContentFile)
			if err := jsondoc.Load(scrapedPath, &scrapeDoc); err != nil {
				return fmt.Errorf("load scraped content (run scrape first): %w", err)
			}

			completer, err := newCompleter(cfg, log)
			if err != nil {
				return err
			}
			ext, err := newExtractor(cfg, completer, log)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var all []domain.Tournament
			for i := range scrapeDoc.Scraped {
				content := &scrapeDoc.Scraped[i]

				records, extractErr := ext.Extract(ctx, content)
				if extractErr != nil {
					log.Warn("Extraction failed for page, skipping",
						"url", content.TournamentInfo.URL,
						"error", extractErr)
					continue
				}
				all = append(all, extractor.Enhance(records, content.SearchContext)...)
			}

			tournaments := extractor.Validate(
				extractor.FilterByConfidence(all, cfg.Pipeline.ConfidenceThreshold))
			doc := extractor.BuildDocument(tournaments, cfg.Pipeline.ConfidenceThreshold)

			path := filepath.Join(cfg.Pipeline.OutputDir, cfg.Pipeline.TournamentDataFile)
			if err := jsondoc.Save(path, doc); err != nil {
				return fmt.Errorf("save tournament data: %w", err)
			}

			log.Info("Extraction complete",
				"tournaments", len(tournaments),
				"file", path)
			return nil
		},
	}
}
