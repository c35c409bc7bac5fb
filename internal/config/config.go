package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/thivinthegreat/gold-rate-tracker/internal/history"
	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

// Config holds all application configuration.
type Config struct {
	History struct {
		Path           string            `yaml:"path"`
		DateColumn     string            `yaml:"date_column"`
		DateLayouts    []string          `yaml:"date_layouts"`
		MissingMarkers []string          `yaml:"missing_markers"`
		Metals         map[string]string `yaml:"metals"` // metal -> price column
	} `yaml:"history"`
	Output struct {
		SnapshotPath string `yaml:"snapshot_path"`
	} `yaml:"output"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies overrides from the
// environment and from an optional .env file (ENV_FILE, default ".env").
// Variables already set in the environment win over the .env file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}
	getenv := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}

	// Environment variable overrides
	if v := getenv("HISTORY_PATH"); v != "" {
		cfg.History.Path = v
	}
	if v := getenv("SNAPSHOT_PATH"); v != "" {
		cfg.Output.SnapshotPath = v
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := getenv("CRON_UPDATE"); v != "" {
		cfg.Schedule.UpdateCron = v
	}
	if v := getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	def := history.DefaultSchema()
	if cfg.History.Path == "" {
		cfg.History.Path = "data/history.csv"
	}
	if cfg.History.DateColumn == "" {
		cfg.History.DateColumn = def.DateColumn
	}
	if len(cfg.History.DateLayouts) == 0 {
		cfg.History.DateLayouts = def.DateLayouts
	}
	if cfg.History.MissingMarkers == nil {
		cfg.History.MissingMarkers = def.MissingMarkers
	}
	if len(cfg.History.Metals) == 0 {
		cfg.History.Metals = make(map[string]string, len(def.Metals))
		for m, col := range def.Metals {
			cfg.History.Metals[string(m)] = col
		}
	}
	if cfg.Output.SnapshotPath == "" {
		cfg.Output.SnapshotPath = "data/latest.json"
	}
	if cfg.Schedule.UpdateCron == "" {
		cfg.Schedule.UpdateCron = "0 30 18 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/gold_rate_tracker.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}
	if c.Output.SnapshotPath == "" {
		return fmt.Errorf("output.snapshot_path is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.UpdateCron); err != nil {
		return fmt.Errorf("schedule.update_cron: %w", err)
	}
	if err := c.Schema().Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Schema builds the history schema from the history section.
func (c *Config) Schema() history.Schema {
	metals := make(map[model.Metal]string, len(c.History.Metals))
	for m, col := range c.History.Metals {
		metals[model.Metal(m)] = col
	}
	return history.Schema{
		DateColumn:     c.History.DateColumn,
		DateLayouts:    c.History.DateLayouts,
		MissingMarkers: c.History.MissingMarkers,
		Metals:         metals,
	}
}
