package batch

import (
	"context"
	"time"

	"img2text/internal/ocr"
)

// ExtractionResult is the outcome for one generated path.
type ExtractionResult struct {
	Filename string
	Path     string
	Outcome  ocr.Result
	Duration time.Duration
}

// Text is the extracted text, or the sentinel text for a failed item.
func (r ExtractionResult) Text() string { return r.Outcome.String() }

// Summary is everything a run produced, results in input order.
type Summary struct {
	RunID      string
	Results    []ExtractionResult
	Succeeded  int
	NotFound   int
	Failed     int
	OutputPath string
	SaveErr    error
	Started    time.Time
	Duration   time.Duration
}

func (s Summary) Total() int { return len(s.Results) }

// Recorder persists results as they are produced. Errors are logged by the
// driver and never stop the run.
type Recorder interface {
	Record(ctx context.Context, runID string, position int, r ExtractionResult) error
}

// Metrics receives per-item and per-run observations.
type Metrics interface {
	ObserveResult(status ocr.Status, took time.Duration)
	ObserveSave(err error)
}
