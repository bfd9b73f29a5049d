package descargo

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"
	"unicode/utf8"

	"reclamala-backend/internal/citizen"
	"reclamala-backend/internal/llm"
	"reclamala-backend/internal/ocr"
	"reclamala-backend/internal/shared/metrics"
	"reclamala-backend/internal/shared/telemetry"
	"reclamala-backend/internal/uploads"
)

// MaxLetterRunes bounds the generated letter handed to the renderer.
const MaxLetterRunes = 20000

// Renderer turns the final letter into document bytes.
type Renderer interface {
	Render(letter string) ([]byte, error)
}

// Request carries everything one pipeline run needs.
type Request struct {
	RequestID string
	Image     *multipart.FileHeader
	Profile   citizen.Profile
}

// Pipeline runs upload, extraction, composition, generation and rendering
// strictly in sequence. It holds no per-request state.
type Pipeline struct {
	Receiver          *uploads.Receiver
	Extractor         ocr.Extractor
	Generator         llm.Generator
	Renderer          Renderer
	OCRTimeout        time.Duration
	GenerationTimeout time.Duration
}

// Run produces the rendered document. The stored upload is removed before Run
// returns, whatever the outcome. onStage, when set, observes each transition.
func (p *Pipeline) Run(ctx context.Context, req Request, onStage func(Stage)) ([]byte, error) {
	started := time.Now()
	metrics.IncDescargoStarted()

	enter := func(stage Stage) {
		telemetry.Info("descargo.stage", map[string]any{
			"request_id": req.RequestID,
			"stage":      string(stage),
		})
		if onStage != nil {
			onStage(stage)
		}
	}

	var doc []byte
	err := p.Receiver.With(ctx, req.Image, func(img uploads.Image) error {
		enter(StageReceived)

		enter(StageExtracting)
		text, err := p.extract(ctx, img.Path)
		if err != nil {
			return stageErr(StageExtracting, err)
		}

		enter(StageComposing)
		prompt := llm.Compose(text, req.Profile)

		enter(StageGenerating)
		letter, err := p.generate(ctx, prompt)
		if err != nil {
			return stageErr(StageGenerating, err)
		}

		enter(StageRendering)
		doc, err = p.Renderer.Render(letter)
		return stageErr(StageRendering, err)
	})
	if err != nil {
		stage := FailedStage(err)
		metrics.IncDescargoFailed(string(stage))
		telemetry.Error("descargo.failed", map[string]any{
			"request_id": req.RequestID,
			"stage":      string(stage),
			"err":        err.Error(),
		})
		if onStage != nil {
			onStage(StageFailed)
		}
		return nil, err
	}

	metrics.IncDescargoCompleted()
	elapsed := time.Since(started)
	metrics.ObserveDescargoDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("descargo.completed", map[string]any{
		"request_id":  req.RequestID,
		"duration_ms": elapsed.Milliseconds(),
		"pdf_bytes":   len(doc),
	})
	return doc, nil
}

func (p *Pipeline) extract(ctx context.Context, path string) (string, error) {
	if p.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.OCRTimeout)
		defer cancel()
	}
	text, err := p.Extractor.ExtractText(ctx, path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ocr.ErrNoText
	}
	return text, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	if p.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.GenerationTimeout)
		defer cancel()
	}
	letter, err := p.Generator.GenerateLetter(ctx, prompt)
	if err != nil {
		return "", err
	}
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidLetter)
	}
	if n := utf8.RuneCountInString(letter); n > MaxLetterRunes {
		return "", fmt.Errorf("%w: %d runes", ErrInvalidLetter, n)
	}
	return letter, nil
}
