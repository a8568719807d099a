// Package cmd implements the gotourney command-line interface: the full
// collection run, the individual pipeline stages, the recurring scheduler,
// and the HTTP API server.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/gotourney/internal/config"
	"github.com/jonesrussell/gotourney/internal/logger"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "gotourney",
		Short: "Collect and serve sports tournament data",
		Long: `gotourney discovers sports tournaments on the public web: it generates
search queries per sport and competition level, collects and ranks search
results, scrapes the most promising pages, extracts structured tournament
records with a language model, and stores them in PostgreSQL behind a REST
API.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so viper sees its variables.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newGenerateCommand(),
		newSearchCommand(),
		newScrapeCommand(),
		newExtractCommand(),
		newStoreCommand(),
		newRunCommand(),
		newScheduleCommand(),
		newTournamentsCommand(),
		newHTTPDCommand(),
	)
}

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if debug {
		cfg.App.Debug = true
		cfg.Log.Level = logger.DebugLevel
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, log, nil
}
