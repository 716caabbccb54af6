package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"img2text/internal/ocr"
	"img2text/internal/paths"
)

type fakeEngine struct {
	results map[string]ocr.Result
	calls   []string
	prompts []string
}

func (f *fakeEngine) Name() string     { return "fake" }
func (f *fakeEngine) GetModel() string { return "fake-1" }

func (f *fakeEngine) Extract(_ context.Context, path, prompt string) ocr.Result {
	f.calls = append(f.calls, path)
	f.prompts = append(f.prompts, prompt)
	if r, ok := f.results[filepath.Base(path)]; ok {
		return r
	}
	return ocr.Success("text of " + filepath.Base(path))
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

type recordedItem struct {
	runID    string
	position int
	file     string
}

type fakeRecorder struct {
	items []recordedItem
	err   error
}

func (r *fakeRecorder) Record(_ context.Context, runID string, position int, er ExtractionResult) error {
	r.items = append(r.items, recordedItem{runID, position, er.Filename})
	return r.err
}

type fakeMetrics struct {
	statuses []ocr.Status
	saves    []error
}

func (m *fakeMetrics) ObserveResult(s ocr.Status, _ time.Duration) { m.statuses = append(m.statuses, s) }
func (m *fakeMetrics) ObserveSave(err error)                     { m.saves = append(m.saves, err) }

func newDriver(t *testing.T, eng *fakeEngine, pacer Pacer) (*Driver, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return &Driver{
		Engine: eng,
		Pacer:  pacer,
		Prompt: ocr.DefaultPrompt,
		Out:    &buf,
		Log:    zaptest.NewLogger(t),
	}, &buf
}

func TestRunProcessesInOrderWithNMinusOnePauses(t *testing.T) {
	eng := &fakeEngine{results: map[string]ocr.Result{
		"img_0001.png": ocr.NotFound(),
		"img_0002.png": ocr.CallFailed("deadline exceeded"),
	}}
	pacer := &countingPacer{}
	d, buf := newDriver(t, eng, pacer)
	ps := paths.Generate(0, 3, "img_", ".png", "scans")
	out := filepath.Join(t.TempDir(), "result.txt")

	sum := d.Run(context.Background(), ps, out)

	assert.Equal(t, 3, pacer.waits)
	require.Equal(t, 4, sum.Total())
	assert.Equal(t, ps, eng.calls)
	for i, r := range sum.Results {
		assert.Equal(t, ps[i], r.Path)
		assert.Equal(t, filepath.Base(ps[i]), r.Filename)
	}
	assert.Equal(t, "text of img_0000.png", sum.Results[0].Text())
	assert.Equal(t, "N/A (Image file not found)", sum.Results[1].Text())
	assert.Equal(t, "API call failed: deadline exceeded", sum.Results[2].Text())
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 1, sum.NotFound)
	assert.Equal(t, 1, sum.Failed)
	assert.NoError(t, sum.SaveErr)
	assert.NotEmpty(t, sum.RunID)

	for _, p := range eng.prompts {
		assert.Equal(t, ocr.DefaultPrompt, p)
	}

	console := buf.String()
	assert.Contains(t, console, "Processing image 1/4: img_0000.png")
	assert.Contains(t, console, "Warning: Image file not found at "+ps[1]+". Skipping.")
	assert.Contains(t, console, "All extracted texts successfully saved to: "+out)
	assert.Contains(t, console, "File: img_0003.png\nText: text of img_0003.png\n"+strings.Repeat("-", 30))
	assert.True(t, strings.HasSuffix(console, "Process complete.\n"))

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "--- File: img_0002.png ---\n\nAPI call failed: deadline exceeded")
}

func TestRunSingleImageNeverPauses(t *testing.T) {
	pacer := &countingPacer{}
	d, buf := newDriver(t, &fakeEngine{}, pacer)

	sum := d.Run(context.Background(), []string{"only_0000.png"}, filepath.Join(t.TempDir(), "r.md"))

	assert.Zero(t, pacer.waits)
	assert.Equal(t, 1, sum.Total())
	assert.NotContains(t, buf.String(), "Waiting")
}

func TestRunEmptySequence(t *testing.T) {
	eng := &fakeEngine{}
	pacer := &countingPacer{}
	d, buf := newDriver(t, eng, pacer)
	out := filepath.Join(t.TempDir(), "empty.docx")

	sum := d.Run(context.Background(), paths.Generate(5, 3, "img_", ".png", ""), out)

	assert.Zero(t, sum.Total())
	assert.Empty(t, eng.calls)
	assert.Zero(t, pacer.waits)
	assert.Contains(t, buf.String(), "No image paths generated. Check your start/end indices and prefixes.")
	assert.Contains(t, buf.String(), "Process complete.")
	assert.FileExists(t, out)
}

func TestRunSaveFailureStillReports(t *testing.T) {
	d, buf := newDriver(t, &fakeEngine{}, NoDelay{})
	out := filepath.Join(t.TempDir(), "does", "not", "exist", "result.docx")
	ps := paths.Generate(1, 2, "p", ".jpg", "in")

	sum := d.Run(context.Background(), ps, out)

	require.Error(t, sum.SaveErr)
	assert.Equal(t, 2, sum.Total())
	console := buf.String()
	assert.Contains(t, console, "Error saving document to "+out)
	assert.Contains(t, console, "Please ensure the directory exists and you have write permissions.")
	assert.Contains(t, console, "--- Console Output of All Extracted Texts ---")
	assert.Contains(t, console, "File: p0002.jpg")
	assert.True(t, strings.HasSuffix(console, "Process complete.\n"))
}

func TestRunFeedsRecorderAndMetrics(t *testing.T) {
	eng := &fakeEngine{results: map[string]ocr.Result{"p0001.png": ocr.NotFound()}}
	rec := &fakeRecorder{err: errors.New("db down")}
	met := &fakeMetrics{}
	d, _ := newDriver(t, eng, NoDelay{})
	d.Recorder = rec
	d.Metrics = met

	sum := d.Run(context.Background(), paths.Generate(0, 1, "p", ".png", ""), filepath.Join(t.TempDir(), "r.txt"))

	require.Len(t, rec.items, 2)
	assert.Equal(t, recordedItem{sum.RunID, 0, "p0000.png"}, rec.items[0])
	assert.Equal(t, recordedItem{sum.RunID, 1, "p0001.png"}, rec.items[1])
	assert.Equal(t, []ocr.Status{ocr.StatusSuccess, ocr.StatusNotFound}, met.statuses)
	assert.Equal(t, []error{nil}, met.saves)
	assert.Equal(t, 2, sum.Total())
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, []ExtractionResult{{Filename: "a.png", Outcome: ocr.Success("hi")}})

	assert.Equal(t, "\n--- Console Output of All Extracted Texts ---\nFile: a.png\nText: hi\n"+
		strings.Repeat("-", 30)+"\n\nProcess complete.\n", buf.String())
}

func TestRunAnnouncesPauseInSeconds(t *testing.T) {
	d, buf := newDriver(t, &fakeEngine{}, FixedDelay{Interval: time.Millisecond})

	d.Run(context.Background(), []string{"a_0000.png", "a_0001.png"}, filepath.Join(t.TempDir(), "r.txt"))

	assert.Equal(t, 1, strings.Count(buf.String(), "Waiting for 0.001 seconds before processing next image...\n"))
}
