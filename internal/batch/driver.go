package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"img2text/internal/document"
	"img2text/internal/ocr"
)

// Driver walks a path sequence one image at a time.
type Driver struct {
	Engine ocr.Engine
	Pacer  Pacer
	Prompt string
	Title  string

	// Out receives the user-facing progress and report; defaults to stdout.
	Out io.Writer
	Log *zap.Logger

	Recorder Recorder
	Metrics  Metrics
}

// Run processes paths in order and saves the document to outputPath. It
// always returns one result per path; a failed save is reported on Out and in
// Summary.SaveErr.
func (d *Driver) Run(ctx context.Context, paths []string, outputPath string) Summary {
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	pacer := d.Pacer
	if pacer == nil {
		pacer = FixedDelay{Interval: DefaultDelay}
	}
	title := d.Title
	if title == "" {
		title = document.DefaultTitle
	}

	sum := Summary{
		RunID:      uuid.NewString(),
		Results:    make([]ExtractionResult, 0, len(paths)),
		OutputPath: outputPath,
		Started:    time.Now(),
	}
	log = log.With(zap.String("run_id", sum.RunID))

	fmt.Fprintf(out, "Starting image text extraction process with %s (%s)...\n", d.Engine.Name(), d.Engine.GetModel())
	doc := document.New(title)

	if len(paths) == 0 {
		fmt.Fprintln(out, "No image paths generated. Check your start/end indices and prefixes.")
		log.Warn("empty path sequence")
	}

	for i, p := range paths {
		name := filepath.Base(p)
		fmt.Fprintf(out, "\nProcessing image %d/%d: %s\n", i+1, len(paths), name)

		start := time.Now()
		res := d.Engine.Extract(ctx, p, d.Prompt)
		took := time.Since(start)

		switch res.Status {
		case ocr.StatusSuccess:
			sum.Succeeded++
		case ocr.StatusNotFound:
			sum.NotFound++
			fmt.Fprintf(out, "Warning: Image file not found at %s. Skipping.\n", p)
		default:
			sum.Failed++
			fmt.Fprintf(out, "Error calling vision API for %s: %s\n", p, res.Reason)
		}

		er := ExtractionResult{Filename: name, Path: p, Outcome: res, Duration: took}
		fmt.Fprintf(out, "Extracted Text: %s\n", er.Text())
		sum.Results = append(sum.Results, er)

		doc.AddEntry(name, er.Text())

		log.Info("image processed",
			zap.Int("position", i),
			zap.String("file", name),
			zap.Stringer("status", res.Status),
			zap.Duration("took", took),
		)
		if d.Metrics != nil {
			d.Metrics.ObserveResult(res.Status, took)
		}
		if d.Recorder != nil {
			if err := d.Recorder.Record(ctx, sum.RunID, i, er); err != nil {
				log.Warn("record result", zap.String("file", name), zap.Error(err))
			}
		}

		if i < len(paths)-1 {
			fmt.Fprintf(out, "Waiting%s before processing next image...\n", describe(pacer))
			if err := pacer.Wait(ctx); err != nil {
				log.Warn("pacing wait interrupted", zap.Error(err))
			}
		}
	}

	sum.SaveErr = doc.Save(outputPath)
	if sum.SaveErr != nil {
		fmt.Fprintf(out, "\nError saving document to %s: %v\n", outputPath, sum.SaveErr)
		fmt.Fprintln(out, "Please ensure the directory exists and you have write permissions.")
		log.Error("save document", zap.String("path", outputPath), zap.Error(sum.SaveErr))
	} else {
		fmt.Fprintf(out, "\nAll extracted texts successfully saved to: %s\n", outputPath)
	}
	if d.Metrics != nil {
		d.Metrics.ObserveSave(sum.SaveErr)
	}

	PrintReport(out, sum.Results)
	sum.Duration = time.Since(sum.Started)
	return sum
}

// PrintReport writes every result in order, followed by the completion line.
func PrintReport(w io.Writer, results []ExtractionResult) {
	fmt.Fprintln(w, "\n--- Console Output of All Extracted Texts ---")
	for _, r := range results {
		fmt.Fprintf(w, "File: %s\nText: %s\n%s\n", r.Filename, r.Text(), strings.Repeat("-", 30))
	}
	fmt.Fprintln(w, "\nProcess complete.")
}

func describe(p Pacer) string {
	if s, ok := p.(fmt.Stringer); ok {
		return " for " + s.String()
	}
	return ""
}
