package gemini

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"img2text/internal/imageio"
	"img2text/internal/ocr"
	"img2text/internal/util"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// generator is the part of *genai.GenerativeModel the engine relies on.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Engine struct {
	Model string
	// MaxDimension downscales images whose longer side exceeds it; 0 sends
	// the file untouched.
	MaxDimension int

	client *genai.Client
	gen    generator
	log    *zap.Logger
}

// New opens one Gemini client for the whole run. Close must be called when
// the batch is done.
func New(ctx context.Context, apiKey, model string, log *zap.Logger) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	m := cl.GenerativeModel(model)
	if m == nil {
		_ = cl.Close()
		return nil, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	e := newEngine(model, m, log)
	e.client = cl
	return e, nil
}

func newEngine(model string, gen generator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Model: model, gen: gen, log: log.Named("gemini")}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Close releases the underlying client.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Extract sends the image at path together with prompt and returns the text
// the model read from it. The call is made exactly once.
func (e *Engine) Extract(ctx context.Context, path, prompt string) ocr.Result {
	if strings.TrimSpace(prompt) == "" {
		prompt = ocr.DefaultPrompt
	}

	img, err := imageio.Load(path, e.MaxDimension)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.log.Warn("image file not found", zap.String("path", path))
			return ocr.NotFound()
		}
		e.log.Error("image load failed", zap.String("path", path), zap.Error(err))
		return ocr.CallFailed(err.Error())
	}

	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
	}

	start := time.Now()
	resp, err := e.gen.GenerateContent(ctx, parts...)
	if err != nil {
		e.log.Error("generate content failed",
			zap.String("path", path), zap.String("model", e.Model), zap.Error(err))
		return ocr.CallFailed(err.Error())
	}

	txt := util.CleanText(allText(resp))
	if txt == "" {
		reason := emptyReason(resp)
		e.log.Warn("empty response", zap.String("path", path), zap.String("reason", reason))
		return ocr.CallFailed(reason)
	}

	e.log.Debug("text extracted",
		zap.String("path", path),
		zap.String("mime", img.MIMEType),
		zap.Bool("resized", img.Resized),
		zap.Int("chars", len(txt)),
		zap.Duration("took", time.Since(start)),
	)
	return ocr.Success(txt)
}

// allText joins the text parts of the first candidate that has content.
func allText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

func emptyReason(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "empty response"
	}
	return fmt.Sprintf("empty response (finish reason: %v)", resp.Candidates[0].FinishReason)
}

func ptrFloat32(v float32) *float32 { return &v }
