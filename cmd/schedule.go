package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/scheduler"
)

// newScheduleCommand returns the scheduler command: the full pipeline run
// on a recurring cron schedule until interrupted.
func newScheduleCommand() *cobra.Command {
	var (
		schedule   string
		runOnStart bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the collection pipeline on a recurring schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			if schedule != "" {
				cfg.Scheduler.Schedule = schedule
			}
			if runOnStart {
				cfg.Scheduler.RunOnStart = true
			}

			ctx := cmd.Context()
			p, _, db, err := buildPipeline(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			s := scheduler.New(cfg.Scheduler, p, log)
			if err := s.Start(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			s.Stop()
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "", "cron expression (default from config)")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run one pass immediately on startup")

	return cmd
}
