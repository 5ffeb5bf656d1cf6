package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

// ErrUnsupportedFormat is returned for anything that is not a PDF or DOCX.
var ErrUnsupportedFormat = errors.New("unsupported file format: only PDF and DOCX are allowed")

type ExtractionResult struct {
	Text      string
	PageCount int
	Method    string
}

// TextExtractor turns an uploaded document into plain text. Each format runs
// through a fixed tier order (structured parser, raw fallback, OCR) and the
// first tier that yields text wins.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*ExtractionResult, error)
	SupportedExtensions() []string
}

type extractionTier struct {
	name string
	run  func(ctx context.Context, data []byte) (string, int, error)
}

type extractionPipeline struct {
	pdfTiers  []extractionTier
	docxTiers []extractionTier
}

func NewTextExtractor(engine OCREngine) TextExtractor {
	structured := structuredPDFParser{}
	raw := rawPDFParser{}
	docx := docxParser{}

	return &extractionPipeline{
		pdfTiers: []extractionTier{
			{
				name: "pdf_structured",
				run: func(_ context.Context, data []byte) (string, int, error) {
					return structured.Extract(data)
				},
			},
			{
				name: "pdf_raw",
				run: func(_ context.Context, data []byte) (string, int, error) {
					return raw.Extract(data)
				},
			},
			{
				name: "pdf_ocr",
				run: func(ctx context.Context, data []byte) (string, int, error) {
					text, err := ocrImages(ctx, engine, raw.Images(data))
					return text, 0, err
				},
			},
		},
		docxTiers: []extractionTier{
			{
				name: "docx_xml",
				run: func(_ context.Context, data []byte) (string, int, error) {
					return docx.Extract(data)
				},
			},
			{
				name: "docx_stripped",
				run: func(_ context.Context, data []byte) (string, int, error) {
					return docx.ExtractStripped(data)
				},
			},
			{
				name: "docx_ocr",
				run: func(ctx context.Context, data []byte) (string, int, error) {
					text, err := ocrImages(ctx, engine, docx.Images(data))
					return text, 0, err
				},
			},
		},
	}
}

func (p *extractionPipeline) SupportedExtensions() []string {
	return []string{".pdf", ".docx"}
}

func (p *extractionPipeline) Extract(ctx context.Context, data []byte, filename string) (*ExtractionResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %s", filename)
	}

	var tiers []extractionTier
	var format string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		tiers, format = p.pdfTiers, "pdf"
	case ".docx":
		tiers, format = p.docxTiers, "docx"
	default:
		return nil, ErrUnsupportedFormat
	}

	log := logging.WithComponent("extractor")
	var lastErr error

	for _, tier := range tiers {
		start := time.Now()
		text, pages, err := tier.run(ctx, data)
		metrics.DefaultMetrics.RecordExtraction(format, tier.name, err, time.Since(start).Seconds())

		if err != nil {
			log.Warn().Err(err).Str("tier", tier.name).Str("filename", filename).Msg("extraction tier failed, trying next")
			lastErr = err
			continue
		}

		log.Info().Str("tier", tier.name).Str("filename", filename).Int("pages", pages).Int("chars", len(text)).Msg("text extracted")
		return &ExtractionResult{Text: text, PageCount: pages, Method: tier.name}, nil
	}

	return nil, fmt.Errorf("all extraction tiers failed for %s: %w", filename, lastErr)
}
