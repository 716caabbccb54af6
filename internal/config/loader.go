package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of the optional config file.
	ConfigFileName = "img2text"

	// EnvPrefix is the prefix for environment overrides (IMG2TEXT_OUTPUT ...).
	EnvPrefix = "IMG2TEXT"
)

// Loader resolves configuration from defaults, an optional YAML file, the
// environment and bound command-line flags, in increasing precedence.
type Loader struct {
	v *viper.Viper
}

func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{v: v}
}

// Load reads configFile if given, otherwise searches the default locations.
// A missing default file is not an error. The result is not validated.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setDefaults()
	l.setupEnvironmentVariables()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configFile, err)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	return &cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if configDir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(configDir, "img2text"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "img2text"))
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Unprefixed names kept for existing deployments.
	_ = l.v.BindEnv("api_key", "GEMINI_API_KEY")
	_ = l.v.BindEnv("model", "IMG2TEXT_MODEL", "GEMINI_MODEL")
	_ = l.v.BindEnv("telegram.token", "IMG2TEXT_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("api_key", "")
	l.v.SetDefault("model", d.Model)
	l.v.SetDefault("prompt", d.Prompt)
	l.v.SetDefault("start_index", d.StartIndex)
	l.v.SetDefault("end_index", d.EndIndex)
	l.v.SetDefault("prefix", d.Prefix)
	l.v.SetDefault("suffix", d.Suffix)
	l.v.SetDefault("image_dir", d.ImageDir)
	l.v.SetDefault("output", d.Output)
	l.v.SetDefault("delay", d.Delay)
	l.v.SetDefault("pacing", d.Pacing)
	l.v.SetDefault("max_dimension", d.MaxDimension)
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)
	l.v.SetDefault("metrics_file", d.MetricsFile)
	l.v.SetDefault("history.dsn", d.History.DSN)
	l.v.SetDefault("history.postgres", d.History.Postgres)
	l.v.SetDefault("history.bolt_path", d.History.BoltPath)
	l.v.SetDefault("telegram.token", d.Telegram.Token)
	l.v.SetDefault("telegram.chat_id", d.Telegram.ChatID)
}
