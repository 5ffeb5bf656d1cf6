package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

// ErrTTSUnavailable is returned when no synthesizer is configured. Handlers
// map it to a null audio payload so the interview continues text-only.
var ErrTTSUnavailable = errors.New("speech synthesis not available")

// preferredInterviewVoices are tried in order when no voice is requested.
// Professional, clear voices suited to interview questions.
var preferredInterviewVoices = []string{
	"en-US-Neural2-F",
	"en-US-Neural2-D",
	"en-GB-Neural2-A",
	"en-GB-Neural2-B",
}

// SpeechSynthesizer is the raw text-to-speech provider contract.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string, useSSML bool) ([]byte, error)
	ListVoices(ctx context.Context) ([]models.Voice, error)
	Close() error
}

// TTSService layers interview behavior over a synthesizer: text cleaning,
// base64 encoding for inline playback, artifact persistence for replays, and
// voice selection.
type TTSService interface {
	Available() bool
	SynthesizeBase64(ctx context.Context, text, voiceID string, useSSML bool) (string, error)
	QuestionAudio(ctx context.Context, sessionID string, questionID int, text, voiceID string) (filename, audioBase64 string, err error)
	Voices(ctx context.Context) ([]models.Voice, error)
	InterviewVoice(ctx context.Context) string
}

type ttsService struct {
	synth        SpeechSynthesizer // nil when no provider could be initialized
	store        ArtifactStore
	defaultVoice string

	mu         sync.Mutex
	voiceCache []models.Voice
}

func NewTTSService(synth SpeechSynthesizer, store ArtifactStore, defaultVoice string) TTSService {
	return &ttsService{
		synth:        synth,
		store:        store,
		defaultVoice: defaultVoice,
	}
}

// Available implements TTSService.
func (t *ttsService) Available() bool {
	return t.synth != nil
}

// SynthesizeBase64 implements TTSService.
func (t *ttsService) SynthesizeBase64(ctx context.Context, text, voiceID string, useSSML bool) (string, error) {
	audio, err := t.synthesize(ctx, text, voiceID, useSSML)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

// QuestionAudio implements TTSService. The generated clip is stored under the
// session's audio prefix so the replay route can serve it later; a storage
// failure only loses the replay, inline playback still works.
func (t *ttsService) QuestionAudio(ctx context.Context, sessionID string, questionID int, text, voiceID string) (string, string, error) {
	audio, err := t.synthesize(ctx, text, voiceID, false)
	if err != nil {
		return "", "", err
	}

	// Filename embeds the session id so the audio route can authorize serving.
	filename := fmt.Sprintf("question_%d_%s.mp3", questionID, sessionID)
	if _, err := t.store.SaveRaw(ctx, AudioArtifactKey(sessionID, filename), audio, "audio/mpeg"); err != nil {
		logging.WithSession(sessionID).Warn().Err(err).Msg("Failed to persist question audio")
		filename = ""
	}

	return filename, base64.StdEncoding.EncodeToString(audio), nil
}

func (t *ttsService) synthesize(ctx context.Context, text, voiceID string, useSSML bool) ([]byte, error) {
	if t.synth == nil {
		return nil, ErrTTSUnavailable
	}

	clean := cleanTextForSpeech(text)
	if clean == "" {
		return nil, ErrTTSUnavailable
	}

	if voiceID == "" {
		voiceID = t.InterviewVoice(ctx)
	}

	start := time.Now()
	audio, err := t.synth.Synthesize(ctx, clean, voiceID, useSSML)
	metrics.DefaultMetrics.RecordTTS(err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	logging.WithComponent("tts").Info().
		Str("voice", voiceID).
		Int("bytes", len(audio)).
		Str("text", truncateText(text, 50)).
		Msg("Generated speech")

	return audio, nil
}

// Voices implements TTSService. The provider list is fetched once and cached
// for the process lifetime.
func (t *ttsService) Voices(ctx context.Context) ([]models.Voice, error) {
	if t.synth == nil {
		return []models.Voice{}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.voiceCache != nil {
		return t.voiceCache, nil
	}

	voices, err := t.synth.ListVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list voices: %w", err)
	}

	t.voiceCache = voices
	return voices, nil
}

// InterviewVoice implements TTSService. Falls back through the preferred
// list, then the first available voice, then the configured default.
func (t *ttsService) InterviewVoice(ctx context.Context) string {
	voices, err := t.Voices(ctx)
	if err != nil {
		logging.WithComponent("tts").Warn().Err(err).Msg("Could not determine best voice")
		return t.defaultVoice
	}

	available := make(map[string]bool, len(voices))
	for _, v := range voices {
		available[v.ID] = true
	}

	for _, preferred := range preferredInterviewVoices {
		if available[preferred] {
			return preferred
		}
	}

	if len(voices) > 0 {
		return voices[0].ID
	}

	return t.defaultVoice
}

// cleanTextForSpeech prepares text for synthesis. Quotes confuse the neural
// voices into odd pauses.
func cleanTextForSpeech(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.ReplaceAll(clean, `"`, "")
	clean = strings.ReplaceAll(clean, "'", "")
	return clean
}
