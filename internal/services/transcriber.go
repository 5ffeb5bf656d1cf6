package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

// Transcription statuses. The message for each non-success status tells the
// candidate to type the answer instead, so the interview never dead-ends on
// a speech failure.
const (
	TranscribeStatusSuccess       = "success"
	TranscribeStatusUnavailable   = "service_unavailable"
	TranscribeStatusUploadFail    = "upload_failed"
	TranscribeStatusFailed        = "transcription_failed"
	TranscribeStatusTimeout       = "timeout"
	TranscribeStatusError         = "error"
	TranscribeStatusInvalidFormat = "invalid_format"
	TranscribeStatusShortAudio    = "short_audio"
	TranscribeStatusTooLarge      = "file_too_large"
)

// SpeechToText is the batch transcription provider contract. format is the
// lowercase audio extension without the dot ("wav", "mp3", "m4a", "webm").
type SpeechToText interface {
	Name() string
	Recognize(ctx context.Context, audio []byte, format string) (text string, confidence float64, err error)
	Close() error
}

// TranscriptionService turns an uploaded recording into text. The audio is
// staged in the artifact store for the duration of the job and removed
// afterwards. Every outcome is a soft status, never an HTTP error.
type TranscriptionService interface {
	Available() bool
	ProviderName() string
	TranscribeUpload(ctx context.Context, sessionID, filename string, audio []byte) models.TranscriptionResponse
}

type transcriptionService struct {
	stt     SpeechToText // nil when no provider could be initialized
	store   ArtifactStore
	timeout time.Duration
}

func NewTranscriptionService(stt SpeechToText, store ArtifactStore, timeout time.Duration) TranscriptionService {
	return &transcriptionService{
		stt:     stt,
		store:   store,
		timeout: timeout,
	}
}

// Available implements TranscriptionService.
func (t *transcriptionService) Available() bool {
	return t.stt != nil
}

// ProviderName implements TranscriptionService.
func (t *transcriptionService) ProviderName() string {
	if t.stt == nil {
		return "none"
	}
	return t.stt.Name()
}

// TranscribeUpload implements TranscriptionService.
func (t *transcriptionService) TranscribeUpload(ctx context.Context, sessionID, filename string, audio []byte) models.TranscriptionResponse {
	if t.stt == nil {
		return transcriptionFailure(TranscribeStatusUnavailable, "Speech-to-text service unavailable. Please type your answer.")
	}

	logger := logging.WithSession(sessionID)
	provider := t.stt.Name()

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	jobName := fmt.Sprintf("interview-%s-%s", sessionID, uuid.New().String()[:8])
	stagingKey := fmt.Sprintf("audio/%s.%s", jobName, format)

	if _, err := t.store.SaveRaw(ctx, stagingKey, audio, "audio/"+format); err != nil {
		logger.Error().Err(err).Msg("Failed to stage audio for transcription")
		metrics.DefaultMetrics.RecordSTT(provider, TranscribeStatusUploadFail, 0)
		return transcriptionFailure(TranscribeStatusUploadFail, "Audio upload failed. Please type your answer.")
	}
	// The staged copy exists only for the duration of the job.
	defer func() {
		if err := t.store.Delete(context.Background(), stagingKey); err != nil {
			logger.Warn().Err(err).Str("key", stagingKey).Msg("Failed to delete staged audio")
		}
	}()

	recognizeCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	text, confidence, err := t.stt.Recognize(recognizeCtx, audio, format)
	latency := time.Since(start).Seconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Str("job", jobName).Msg("Transcription job timed out")
			metrics.DefaultMetrics.RecordSTT(provider, TranscribeStatusTimeout, latency)
			return transcriptionFailure(TranscribeStatusTimeout, "Audio processing timed out. Please type your answer.")
		}
		logger.Error().Err(err).Str("job", jobName).Msg("Transcription failed")
		metrics.DefaultMetrics.RecordSTT(provider, TranscribeStatusFailed, latency)
		return transcriptionFailure(TranscribeStatusFailed, "Audio transcription failed. Please type your answer.")
	}

	metrics.DefaultMetrics.RecordSTT(provider, TranscribeStatusSuccess, latency)

	text = strings.TrimSpace(text)
	if text == "" {
		text = "No speech detected in audio."
	}

	return models.TranscriptionResponse{
		Transcription: text,
		Confidence:    confidence,
		Status:        TranscribeStatusSuccess,
	}
}

func transcriptionFailure(status, message string) models.TranscriptionResponse {
	return models.TranscriptionResponse{
		Transcription: message,
		Confidence:    0.0,
		Status:        status,
	}
}

// mockTranscripts are cycled by the mock provider so local development works
// without cloud credentials.
var mockTranscripts = []struct {
	text       string
	confidence float64
}{
	{"I have five years of experience building backend services in Go and Python, most recently focused on event-driven systems.", 0.94},
	{"In my last project I led the migration of a monolith to microservices, which cut deploy times from an hour to ten minutes.", 0.91},
	{"When I am under pressure I break the problem into smaller pieces and communicate early about what can slip.", 0.93},
	{"I am most interested in this role because it combines distributed systems work with direct customer impact.", 0.97},
	{"One weakness I have been working on is delegating sooner instead of trying to fix everything myself.", 0.89},
}

type mockTranscriber struct{}

// NewMockTranscriber returns a provider that cycles canned answers.
func NewMockTranscriber() SpeechToText {
	return &mockTranscriber{}
}

var (
	mockTranscriptIndex int
	mockTranscriptMu    sync.Mutex
)

// Name implements SpeechToText.
func (m *mockTranscriber) Name() string {
	return "mock"
}

// Recognize implements SpeechToText.
func (m *mockTranscriber) Recognize(ctx context.Context, audio []byte, format string) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	mockTranscriptMu.Lock()
	entry := mockTranscripts[mockTranscriptIndex%len(mockTranscripts)]
	mockTranscriptIndex++
	mockTranscriptMu.Unlock()

	return entry.text, entry.confidence, nil
}

// Close implements SpeechToText.
func (m *mockTranscriber) Close() error {
	return nil
}
