package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-interviewer/internal/config"
)

// TextGenerator is the contract every LLM provider satisfies. Callers hold a
// nil TextGenerator when no provider is configured and fall back to canned
// content, so every call site must tolerate nil.
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

// Embedder produces dense vectors for question bank retrieval.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// NewTextGenerator builds the provider named in config. A missing API key is
// not an error: the app runs in degraded mode without AI, so this returns
// (nil, nil) and leaves the decision to the caller.
func NewTextGenerator(cfg config.LLMConfig) (TextGenerator, error) {
	switch cfg.Provider {
	case "claude":
		if cfg.AnthropicAPIKey == "" {
			return nil, nil
		}
		return NewClaudeService(cfg.AnthropicAPIKey), nil
	case "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewGeminiService(cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

// parseJSONResponse extracts and unmarshals JSON from an LLM response.
func parseJSONResponse(response string, target interface{}) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w\nResponse: %s", err, response)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or
// other formatting. The earliest opening bracket decides whether an object or
// an array is extracted, so an array of objects is not mistaken for a single
// object.
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startArr != -1 && endArr > startArr && (startObj == -1 || startArr < startObj) {
		return text[startArr : endArr+1]
	}
	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return text
}
