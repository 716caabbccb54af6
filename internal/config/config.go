package config

import (
	"errors"
	"strings"
	"time"
)

// ErrMissingAPIKey is fatal: nothing runs without the Gemini credential.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

type Config struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	Prompt string `mapstructure:"prompt"`

	StartIndex int    `mapstructure:"start_index"`
	EndIndex   int    `mapstructure:"end_index"`
	Prefix     string `mapstructure:"prefix"`
	Suffix     string `mapstructure:"suffix"`
	ImageDir   string `mapstructure:"image_dir"`
	Output     string `mapstructure:"output"`

	Delay        time.Duration `mapstructure:"delay"`
	Pacing       string        `mapstructure:"pacing"`
	MaxDimension int           `mapstructure:"max_dimension"`

	LogLevel    string `mapstructure:"log_level"`
	Verbose     bool   `mapstructure:"verbose"`
	MetricsFile string `mapstructure:"metrics_file"`

	History  HistoryConfig  `mapstructure:"history"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// HistoryConfig enables optional result stores. Empty values disable them.
// Postgres opts into a store located by DATABASE_URL or the PG* variables
// when DSN is empty; those variables alone never enable it.
type HistoryConfig struct {
	DSN      string `mapstructure:"dsn"`
	Postgres bool   `mapstructure:"postgres"`
	BoltPath string `mapstructure:"bolt_path"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

func (t TelegramConfig) Enabled() bool {
	return strings.TrimSpace(t.Token) != "" && t.ChatID != 0
}

func DefaultConfig() Config {
	return Config{
		Model:      "gemini-2.0-flash",
		Prompt:     "Extract all text from this image.",
		StartIndex: 0,
		EndIndex:   0,
		ImageDir:   ".",
		Output:     "extracted_text.docx",
		Delay:      20 * time.Second,
		Pacing:     "fixed",
		LogLevel:   "info",
	}
}

// Validate only checks what the run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
