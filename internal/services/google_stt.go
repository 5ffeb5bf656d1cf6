package services

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"ai-interviewer/internal/config"
)

type googleTranscriber struct {
	client       *speech.Client
	languageCode string
}

// NewSpeechToTextProvider builds the provider named in config. The mock
// provider serves local development without cloud credentials; "disabled"
// returns (nil, nil) and transcription reports service_unavailable.
func NewSpeechToTextProvider(ctx context.Context, cfg config.STTConfig) (SpeechToText, error) {
	switch cfg.Provider {
	case "disabled":
		return nil, nil
	case "mock":
		return NewMockTranscriber(), nil
	case "google", "":
		return NewGoogleTranscriber(ctx, cfg.LanguageCode)
	default:
		return nil, fmt.Errorf("unknown STT provider: %q", cfg.Provider)
	}
}

// NewGoogleTranscriber creates the Google Cloud Speech-to-Text provider.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
func NewGoogleTranscriber(ctx context.Context, languageCode string) (SpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &googleTranscriber{
		client:       client,
		languageCode: languageCode,
	}, nil
}

// Name implements SpeechToText.
func (g *googleTranscriber) Name() string {
	return "google"
}

// Recognize implements SpeechToText.
func (g *googleTranscriber) Recognize(ctx context.Context, audio []byte, format string) (string, float64, error) {
	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingForFormat(format),
			LanguageCode:               g.languageCode,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", 0, err
	}

	var parts []string
	var confidence float64
	var scored int
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		parts = append(parts, alt.Transcript)
		if alt.Confidence > 0 {
			confidence += float64(alt.Confidence)
			scored++
		}
	}

	if scored > 0 {
		confidence /= float64(scored)
	}

	return strings.Join(parts, " "), confidence, nil
}

// Close implements SpeechToText.
func (g *googleTranscriber) Close() error {
	return g.client.Close()
}

// encodingForFormat maps an upload extension to the recognizer encoding.
// WAV headers carry their own encoding, so they stay unspecified.
func encodingForFormat(format string) speechpb.RecognitionConfig_AudioEncoding {
	switch format {
	case "mp3", "m4a":
		return speechpb.RecognitionConfig_MP3
	case "webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
