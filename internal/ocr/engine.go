package ocr

import "context"

// DefaultPrompt is the instruction sent alongside every image.
const DefaultPrompt = "Extract all text from this image."

// Engine extracts text from one image per call. Implementations never return
// a Go error: every failure is folded into the Result.
type Engine interface {
	Name() string
	GetModel() string
	Extract(ctx context.Context, path, prompt string) Result
}
