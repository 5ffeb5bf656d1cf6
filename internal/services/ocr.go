package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"ai-interviewer/internal/observability/logging"
)

// OCREngine is the provider contract for the last extraction tier: one
// encoded image in, recognized text out. Pluggable so tests run without a
// tesseract installation.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

type tesseractEngine struct {
	languages []string
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine(languages ...string) OCREngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &tesseractEngine{languages: languages}
}

func (e *tesseractEngine) Name() string { return "tesseract" }

func (e *tesseractEngine) Recognize(ctx context.Context, image []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return "", fmt.Errorf("failed to set languages: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// ocrImages runs every harvested image through the engine and concatenates
// whatever it can read. Per-image failures are logged and skipped.
func ocrImages(ctx context.Context, engine OCREngine, images [][]byte) (string, error) {
	if engine == nil {
		return "", fmt.Errorf("no OCR engine configured")
	}
	if len(images) == 0 {
		return "", fmt.Errorf("no embedded images found")
	}

	log := logging.WithComponent("ocr")
	var sb strings.Builder

	for i, img := range images {
		text, err := engine.Recognize(ctx, img)
		if err != nil {
			log.Warn().Err(err).Int("image", i).Str("engine", engine.Name()).Msg("OCR failed for image")
			continue
		}
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("OCR produced no text")
	}

	return text, nil
}
