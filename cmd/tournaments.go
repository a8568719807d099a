package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/domain"
	"github.com/jonesrussell/gotourney/internal/storage"
)

const (
	tournamentsDefaultLimit = 20
	cellPreviewLength       = 40
)

// newTournamentsCommand returns the command listing stored tournaments in
// a table.
func newTournamentsCommand() *cobra.Command {
	var (
		sport         string
		level         string
		limit         int
		minConfidence float64
	)

	cmd := &cobra.Command{
		Use:   "tournaments",
		Short: "List stored tournaments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, repo, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			filter := storage.ListFilter{
				Sport: sport,
				Level: level,
				Limit: limit,
			}
			if minConfidence > 0 {
				filter.MinConfidence = &minConfidence
			}

			tournaments, total, err := repo.List(ctx, filter)
			if err != nil {
				return fmt.Errorf("list tournaments: %w", err)
			}

			renderTournaments(tournaments, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&sport, "sport", "", "filter by sport")
	cmd.Flags().StringVar(&level, "level", "", "filter by level")
	cmd.Flags().IntVarP(&limit, "limit", "l", tournamentsDefaultLimit, "maximum rows to show")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "minimum confidence score")

	return cmd
}

func renderTournaments(tournaments []domain.Tournament, total int) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"ID", "Name", "Sport", "Level", "Dates", "Venue", "Conf", "Created"})

	for i := range tournaments {
		tr := &tournaments[i]
		t.AppendRow(table.Row{
			tr.ID,
			truncateCell(tr.Name),
			tr.Sport,
			tr.Level,
			truncateCell(strings.Join(tr.DateInfo, "; ")),
			truncateCell(strings.Join(tr.Venue, "; ")),
			fmt.Sprintf("%.2f", tr.ConfidenceScore),
			tr.CreatedAt.Format("2006-01-02"),
		})
	}

	t.AppendFooter(table.Row{"Total", total})
	t.Render()
}

func truncateCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= cellPreviewLength {
		return s
	}
	return s[:cellPreviewLength-3] + "..."
}
