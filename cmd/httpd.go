package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/api"
)

const shutdownTimeout = 30 * time.Second

// newHTTPDCommand returns the API server command. It serves stored
// tournaments plus on-demand discovery until interrupted.
func newHTTPDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the tournament REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			p, repo, db, err := buildPipeline(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			handler := api.NewHandler(repo, p, cfg.Pipeline, cfg.App.Version, log)
			server := api.NewServer(cfg, handler, log)

			errChan := make(chan error, 1)
			go func() {
				errChan <- server.Start()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errChan:
				return err
			case sig := <-quit:
				log.Info("Shutdown signal received", "signal", sig.String())
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
