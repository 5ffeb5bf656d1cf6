package services

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/models"
)

type googleSynthesizer struct {
	client       *texttospeech.Client
	languageCode string
}

// NewSpeechSynthesizer builds the provider named in config. Requires
// GOOGLE_APPLICATION_CREDENTIALS to be set for the google provider.
// "disabled" returns (nil, nil); callers run text-only.
func NewSpeechSynthesizer(ctx context.Context, cfg config.TTSConfig) (SpeechSynthesizer, error) {
	switch cfg.Provider {
	case "disabled":
		return nil, nil
	case "google", "":
		return NewGoogleSynthesizer(ctx, cfg.LanguageCode)
	default:
		return nil, fmt.Errorf("unknown TTS provider: %q", cfg.Provider)
	}
}

func NewGoogleSynthesizer(ctx context.Context, languageCode string) (SpeechSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create texttospeech client: %w", err)
	}

	return &googleSynthesizer{
		client:       client,
		languageCode: languageCode,
	}, nil
}

// Synthesize implements SpeechSynthesizer.
func (g *googleSynthesizer) Synthesize(ctx context.Context, text, voiceID string, useSSML bool) ([]byte, error) {
	input := &texttospeechpb.SynthesisInput{}
	if useSSML {
		input.InputSource = &texttospeechpb.SynthesisInput_Ssml{Ssml: text}
	} else {
		input.InputSource = &texttospeechpb.SynthesisInput_Text{Text: text}
	}

	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: input,
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageFromVoice(voiceID, g.languageCode),
			Name:         voiceID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, err
	}

	return resp.AudioContent, nil
}

// ListVoices implements SpeechSynthesizer. Only English voices are exposed.
func (g *googleSynthesizer) ListVoices(ctx context.Context) ([]models.Voice, error) {
	resp, err := g.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}

	voices := make([]models.Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		if len(v.LanguageCodes) == 0 || !strings.HasPrefix(v.LanguageCodes[0], "en") {
			continue
		}
		voices = append(voices, models.Voice{
			ID:       v.Name,
			Name:     v.Name,
			Language: v.LanguageCodes[0],
			Gender:   v.SsmlGender.String(),
		})
	}

	return voices, nil
}

// Close implements SpeechSynthesizer.
func (g *googleSynthesizer) Close() error {
	return g.client.Close()
}

// languageFromVoice derives the language code from a voice name like
// "en-US-Neural2-F".
func languageFromVoice(voiceID, fallback string) string {
	parts := strings.SplitN(voiceID, "-", 3)
	if len(parts) >= 3 {
		return parts[0] + "-" + parts[1]
	}
	return fallback
}
