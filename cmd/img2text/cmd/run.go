package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"img2text/internal/batch"
	"img2text/internal/config"
	"img2text/internal/document"
	"img2text/internal/metrics"
	"img2text/internal/notify"
	"img2text/internal/paths"
	"img2text/internal/store"
)

// run performs one batch. Configuration problems abort before any path is
// generated or any client is created; per-image and save failures do not.
func run(cmd *cobra.Command, deps Deps, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := batch.CheckPacing(cfg.Pacing); err != nil {
		return err
	}
	if _, err := document.Format(cfg.Output); err != nil {
		return err
	}

	log, err := deps.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// The loop is not cancellable: it runs to completion or the process is killed.
	ctx := context.Background()

	recorder, err := openRecorders(ctx, cfg, log)
	if err != nil {
		return err
	}
	if recorder != nil {
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Warn("close history", zap.Error(err))
			}
		}()
	}

	engine, err := deps.NewEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("extraction engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn("close engine", zap.Error(err))
		}
	}()

	// A limiter starts timing on construction: nothing slow may follow it.
	newPacer := deps.NewPacer
	if newPacer == nil {
		newPacer = batch.NewPacer
	}
	pacer, err := newPacer(cfg.Pacing, cfg.Delay)
	if err != nil {
		return err
	}

	collector := metrics.New()
	driver := &batch.Driver{
		Engine:  engine,
		Pacer:   pacer,
		Prompt:  cfg.Prompt,
		Out:     cmd.OutOrStdout(),
		Log:     log,
		Metrics: collector,
	}
	if recorder != nil {
		driver.Recorder = recorder
	}

	ps := paths.Generate(cfg.StartIndex, cfg.EndIndex, cfg.Prefix, cfg.Suffix, cfg.ImageDir)
	log.Info("batch starting",
		zap.Int("images", len(ps)),
		zap.String("engine", engine.Name()),
		zap.String("model", engine.GetModel()),
		zap.String("output", cfg.Output),
	)

	sum := driver.Run(ctx, ps, cfg.Output)

	log.Info("batch finished",
		zap.String("run_id", sum.RunID),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("not_found", sum.NotFound),
		zap.Int("failed", sum.Failed),
		zap.Duration("took", sum.Duration),
	)

	if cfg.MetricsFile != "" {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	notifyDone(ctx, cfg, sum, log)
	return nil
}

func openRecorders(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Recorder, error) {
	var recs store.Multi
	if cfg.History.BoltPath != "" {
		b, err := store.NewBolt(cfg.History.BoltPath)
		if err != nil {
			return nil, err
		}
		log.Info("recording history", zap.String("bolt", cfg.History.BoltPath))
		recs = append(recs, b)
	}
	dsn, err := postgresDSN(cfg.History)
	if err != nil {
		_ = recs.Close()
		return nil, err
	}
	if dsn != "" {
		pg, err := store.NewPostgres(ctx, dsn)
		if err != nil {
			_ = recs.Close()
			return nil, err
		}
		log.Info("recording history", zap.String("db", store.SafeDSNSummary(dsn)))
		recs = append(recs, pg)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs, nil
}

// postgresDSN returns the history database to open, or "" for none. An
// explicit DSN wins; the DATABASE_URL and PG* fallbacks apply only when
// history.postgres is set.
func postgresDSN(h config.HistoryConfig) (string, error) {
	if dsn := strings.TrimSpace(h.DSN); dsn != "" {
		return dsn, nil
	}
	if !h.Postgres {
		return "", nil
	}
	dsn := store.ResolveDSN(os.Getenv("DATABASE_URL"),
		os.Getenv("PGUSER"), os.Getenv("PGPASSWORD"), os.Getenv("PGHOST"), os.Getenv("PGPORT"), os.Getenv("PGDATABASE"))
	if dsn == "" {
		return "", errors.New("postgres history enabled but neither DATABASE_URL nor PGHOST is set")
	}
	return dsn, nil
}

func notifyDone(ctx context.Context, cfg *config.Config, sum batch.Summary, log *zap.Logger) {
	if !cfg.Telegram.Enabled() {
		return
	}
	tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		log.Warn("telegram unavailable", zap.Error(err))
		return
	}
	if err := tg.Notify(ctx, sum); err != nil {
		log.Warn("telegram notify", zap.Error(err))
	}
}
