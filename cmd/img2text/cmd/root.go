package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"img2text/internal/batch"
	"img2text/internal/config"
	"img2text/internal/logger"
	"img2text/internal/ocr"
	"img2text/internal/ocr/gemini"
)

// Engine is an extraction engine holding a client that must be released.
type Engine interface {
	ocr.Engine
	Close() error
}

// Deps are the pieces the command builds from configuration. Tests replace
// them to avoid network access.
type Deps struct {
	NewEngine func(ctx context.Context, cfg *config.Config, log *zap.Logger) (Engine, error)
	NewLogger func(cfg *config.Config) (*zap.Logger, error)
	NewPacer  func(kind string, interval time.Duration) (batch.Pacer, error)
}

func DefaultDeps() Deps {
	return Deps{
		NewEngine: func(ctx context.Context, cfg *config.Config, log *zap.Logger) (Engine, error) {
			e, err := gemini.New(ctx, cfg.APIKey, cfg.Model, log)
			if err != nil {
				return nil, err
			}
			e.MaxDimension = cfg.MaxDimension
			return e, nil
		},
		NewLogger: func(cfg *config.Config) (*zap.Logger, error) {
			return logger.New(cfg.LogLevel, cfg.Verbose)
		},
		NewPacer: batch.NewPacer,
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"start":            "start_index",
	"end":              "end_index",
	"prefix":           "prefix",
	"suffix":           "suffix",
	"dir":              "image_dir",
	"output":           "output",
	"model":            "model",
	"prompt":           "prompt",
	"delay":            "delay",
	"pacing":           "pacing",
	"max-dimension":    "max_dimension",
	"log-level":        "log_level",
	"verbose":          "verbose",
	"metrics-file":     "metrics_file",
	"history-dsn":      "history.dsn",
	"history-postgres": "history.postgres",
	"history-bolt":     "history.bolt_path",
	"telegram-chat-id": "telegram.chat_id",
}

func NewRootCommand(deps Deps) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "img2text",
		Short: "Extract text from a numbered series of images with Gemini",
		Long: `img2text walks a numbered series of image files (prefix + 4-digit index + suffix),
sends each one to a Gemini vision model, prints the extracted text and collects
everything into a single document (.docx, .xlsx, .txt or .md).

The Gemini API key is read from GEMINI_API_KEY. Other settings come from flags,
IMG2TEXT_* environment variables or an img2text.yaml config file.

Examples:
  img2text --dir ./scans --prefix page_ --suffix .png --start 1 --end 40
  img2text --config book.yaml --output book.xlsx --pacing limiter --delay 10s`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.NewLoader(v).Load(cfgFile)
			if err != nil {
				return err
			}
			return run(cmd, deps, cfg)
		},
	}

	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default: ./img2text.yaml or $XDG_CONFIG_HOME/img2text/img2text.yaml)")
	f.Int("start", d.StartIndex, "first image index (inclusive)")
	f.Int("end", d.EndIndex, "last image index (inclusive)")
	f.String("prefix", d.Prefix, "file name prefix before the 4-digit index")
	f.String("suffix", d.Suffix, "file name suffix after the index, e.g. .png")
	f.String("dir", d.ImageDir, "directory holding the images")
	f.StringP("output", "o", d.Output, "output document (.docx, .xlsx, .txt, .md)")
	f.String("model", d.Model, "Gemini model name")
	f.String("prompt", d.Prompt, "instruction sent with every image")
	f.Duration("delay", d.Delay, "pause between two images")
	f.String("pacing", d.Pacing, "pacing policy: fixed, limiter or none")
	f.Int("max-dimension", d.MaxDimension, "downscale images whose longer side exceeds this (0 keeps originals)")
	f.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	f.BoolP("verbose", "v", false, "verbose diagnostics (same as --log-level=debug)")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	f.String("history-dsn", "", "PostgreSQL DSN to record results in")
	f.Bool("history-postgres", false, "record results in PostgreSQL located by DATABASE_URL or PG* variables")
	f.String("history-bolt", "", "bbolt file to record results in")
	f.Int64("telegram-chat-id", 0, "Telegram chat to notify when done (token from TELEGRAM_BOT_TOKEN)")

	return cmd
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		fl := fs.Lookup(name)
		if fl == nil {
			return fmt.Errorf("flag %s not defined", name)
		}
		if err := v.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}
