package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

type claudeService struct {
	client    anthropic.Client
	modelName anthropic.Model
	maxTokens int64
}

// NewClaudeService builds the Anthropic-backed text generator. Claude has no
// embedding endpoint, so it only satisfies TextGenerator.
func NewClaudeService(apiKey string) TextGenerator {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &claudeService{
		client:    client,
		modelName: anthropic.ModelClaude3_7SonnetLatest,
		maxTokens: 4096,
	}
}

// Name implements TextGenerator.
func (c *claudeService) Name() string {
	return "claude"
}

// GenerateText implements TextGenerator.
func (c *claudeService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	start := time.Now()
	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.modelName,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	metrics.DefaultMetrics.RecordLLMRequest("claude", "generate", err, time.Since(start).Seconds())
	if err != nil {
		logging.WithComponent("claude").Error().Err(err).Msg("Claude API error")
		return "", fmt.Errorf("failed to call Claude API: %w", err)
	}

	if len(response.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	var parts []string
	for _, block := range response.Content {
		text := block.AsText()
		if text.Text != "" {
			parts = append(parts, text.Text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text content in Claude response")
	}

	return strings.Join(parts, "\n"), nil
}

// GenerateTextWithRetry implements TextGenerator.
func (c *claudeService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := c.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			logging.WithComponent("claude").Warn().
				Int("attempt", attempt).
				Err(err).
				Msg("Generation attempt failed, retrying")
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
