// Package config provides application configuration loaded from a YAML
// file, environment variables, and defaults via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jonesrussell/gotourney/internal/logger"
)

// Errors returned during configuration validation.
var (
	// ErrMissingSports is returned when no sports are configured.
	ErrMissingSports = errors.New("at least one sport must be configured")
	// ErrMissingLevels is returned when no levels are configured.
	ErrMissingLevels = errors.New("at least one level must be configured")
	// ErrMissingDatabase is returned when database parameters are incomplete.
	ErrMissingDatabase = errors.New("database host and name are required")
)

// Config is the root application configuration. Components receive the
// sections they need at construction; nothing reads the environment at
// call time.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Log       logger.Config   `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Serper    SerperConfig    `mapstructure:"serper"`
	Firecrawl FirecrawlConfig `mapstructure:"firecrawl"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SerperConfig holds search provider settings.
type SerperConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ResultCount  int           `mapstructure:"result_count"`
	Language     string        `mapstructure:"language"`
	Geography    string        `mapstructure:"geography"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
}

// FirecrawlConfig holds scrape provider settings.
type FirecrawlConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	WaitFor time.Duration `mapstructure:"wait_for"`
}

// AnthropicConfig holds language-model provider settings.
type AnthropicConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	ExtractTemp       float64 `mapstructure:"extract_temperature"`
	ExtractMaxTokens  int     `mapstructure:"extract_max_tokens"`
	EnhanceTemp       float64 `mapstructure:"enhance_temperature"`
	EnhanceMaxTokens  int     `mapstructure:"enhance_max_tokens"`
}

// PipelineConfig holds the sport/level coverage and stage tuning knobs.
type PipelineConfig struct {
	Sports              []string `mapstructure:"sports"`
	Levels              []string `mapstructure:"levels"`
	LocalLevels         []string `mapstructure:"local_levels"`
	SearchLimit         int      `mapstructure:"search_limit"`
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	OutputDir           string   `mapstructure:"output_dir"`
	QueriesFile         string   `mapstructure:"queries_file"`
	SearchResultsFile   string   `mapstructure:"search_results_file"`
	ScrapedContentFile  string   `mapstructure:"scraped_content_file"`
	TournamentDataFile  string   `mapstructure:"tournament_data_file"`
}

// SchedulerConfig holds the recurring collection schedule.
type SchedulerConfig struct {
	// Schedule is a standard 5-field cron expression
	// (minute hour day month weekday).
	Schedule   string `mapstructure:"schedule"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// AllLevels returns regular levels followed by local levels.
func (p *PipelineConfig) AllLevels() []string {
	levels := make([]string, 0, len(p.Levels)+len(p.LocalLevels))
	levels = append(levels, p.Levels...)
	levels = append(levels, p.LocalLevels...)
	return levels
}

// IsLocalLevel reports whether level belongs to the local tier list.
func (p *PipelineConfig) IsLocalLevel(level string) bool {
	for _, l := range p.LocalLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}
	return false
}

// Load reads configuration from the given file (optional), environment
// variables, and defaults, in increasing order of precedence for env vars.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("GOTOURNEY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// No config file is fine; env vars and defaults cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable. Provider credentials
// are deliberately not required here: stages that need a missing credential
// fail soft at run time instead of blocking unrelated commands.
func (c *Config) Validate() error {
	if len(c.Pipeline.Sports) == 0 {
		return ErrMissingSports
	}
	if len(c.Pipeline.Levels) == 0 && len(c.Pipeline.LocalLevels) == 0 {
		return ErrMissingLevels
	}
	if c.Database.Host == "" || c.Database.Name == "" {
		return ErrMissingDatabase
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gotourney")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "sports_calendar")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.result_count", 5)
	v.SetDefault("serper.language", "en")
	v.SetDefault("serper.geography", "in")
	v.SetDefault("serper.request_delay", time.Second)

	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev")
	v.SetDefault("firecrawl.wait_for", 2*time.Second)

	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.extract_temperature", 0.1)
	v.SetDefault("anthropic.extract_max_tokens", 1500)
	v.SetDefault("anthropic.enhance_temperature", 0.7)
	v.SetDefault("anthropic.enhance_max_tokens", 2000)

	v.SetDefault("pipeline.sports", defaultSports)
	v.SetDefault("pipeline.levels", defaultLevels)
	v.SetDefault("pipeline.local_levels", defaultLocalLevels)
	v.SetDefault("pipeline.search_limit", defaultSearchLimit)
	v.SetDefault("pipeline.confidence_threshold", defaultConfidenceThreshold)
	v.SetDefault("pipeline.output_dir", ".")
	v.SetDefault("pipeline.queries_file", "queries.json")
	v.SetDefault("pipeline.search_results_file", "search_results.json")
	v.SetDefault("pipeline.scraped_content_file", "scraped_content.json")
	v.SetDefault("pipeline.tournament_data_file", "tournament_data.json")

	v.SetDefault("scheduler.schedule", "0 2 * * *")
	v.SetDefault("scheduler.run_on_start", false)
}
