package store

import (
	"context"
	"errors"
	"time"

	"img2text/internal/batch"
)

// Record is one stored extraction result.
type Record struct {
	RunID      string    `json:"run_id"`
	Position   int       `json:"position"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	Status     string    `json:"status"`
	Text       string    `json:"text"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

func newRecord(runID string, position int, r batch.ExtractionResult) Record {
	return Record{
		RunID:      runID,
		Position:   position,
		Filename:   r.Filename,
		Path:       r.Path,
		Status:     r.Outcome.Status.String(),
		Text:       r.Text(),
		DurationMS: r.Duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}

// Recorder is a batch.Recorder that owns a resource.
type Recorder interface {
	batch.Recorder
	Close() error
}

// Multi fans every record out to all recorders. A failing recorder does not
// keep the others from receiving the record.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, runID string, position int, r batch.ExtractionResult) error {
	var errs []error
	for _, rec := range m {
		if err := rec.Record(ctx, runID, position, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
