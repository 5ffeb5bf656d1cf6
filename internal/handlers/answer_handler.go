package handlers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
}

type AnswerHandler struct {
	analysisRepo  repositories.AnalysisRepository
	analyzer      services.AnswerAnalyzer
	transcriber   services.TranscriptionService
	store         services.ArtifactStore
	publisher     *events.Publisher
	minAudioBytes int64
	maxAudioBytes int64
}

func NewAnswerHandler(
	analysisRepo repositories.AnalysisRepository,
	analyzer services.AnswerAnalyzer,
	transcriber services.TranscriptionService,
	store services.ArtifactStore,
	publisher *events.Publisher,
	minAudioBytes, maxAudioBytes int64,
) *AnswerHandler {
	return &AnswerHandler{
		analysisRepo:  analysisRepo,
		analyzer:      analyzer,
		transcriber:   transcriber,
		store:         store,
		publisher:     publisher,
		minAudioBytes: minAudioBytes,
		maxAudioBytes: maxAudioBytes,
	}
}

// HandleAnalyzeAnswer handles POST /analyze-answer
func (h *AnswerHandler) HandleAnalyzeAnswer(c *fiber.Ctx) error {
	var req models.AnalyzeAnswerRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	if req.QuestionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question_id is required",
		})
	}

	if strings.TrimSpace(req.Answer) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "answer is required",
		})
	}

	ctx := c.UserContext()

	artifact, err := loadQuestionsArtifact(ctx, h.store, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No questions found for session",
		})
	}

	var question *models.QuestionPayload
	for i := range artifact.Questions {
		if artifact.Questions[i].ID == req.QuestionID {
			question = &artifact.Questions[i]
			break
		}
	}
	if question == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question not found",
		})
	}

	// Resume context sharpens the relevance scoring but is not required.
	var resume models.ResumeArtifact
	_ = h.store.LoadJSON(ctx, req.SessionID, "resume", &resume)

	evaluation, aiPowered := h.analyzer.Analyze(ctx, question.Question, question.Type, req.Answer, resume.Text)

	analysisArtifact := models.AnalysisArtifact{
		QuestionID: req.QuestionID,
		Question:   question.Question,
		Answer:     req.Answer,
		Analysis:   evaluation,
		AnalyzedAt: time.Now(),
	}
	kind := fmt.Sprintf("analysis_%d", req.QuestionID)
	if _, err := h.store.SaveJSON(ctx, req.SessionID, kind, analysisArtifact); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save analysis",
		})
	}

	analysisJSON, err := json.Marshal(evaluation)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save analysis",
		})
	}

	row := &models.AnswerAnalysis{
		ID:             uuid.New(),
		SessionID:      sessionID,
		QuestionNumber: req.QuestionID,
		Answer:         req.Answer,
		OverallScore:   evaluation.Score,
		Feedback:       evaluation.Feedback,
		AnalysisJSON:   string(analysisJSON),
		CreatedAt:      time.Now(),
	}
	if err := h.analysisRepo.Create(row); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save analysis",
		})
	}

	_ = h.publisher.PublishAnswer(ctx, req.SessionID, map[string]interface{}{
		"question_id": req.QuestionID,
		"score":       evaluation.Score,
		"ai_powered":  aiPowered,
	})

	return c.JSON(evaluation)
}

// HandleTranscribeAudio handles POST /transcribe-audio. Bad recordings come
// back as soft statuses with a 200 so the client can always fall back to a
// typed answer.
func (h *AnswerHandler) HandleTranscribeAudio(c *fiber.Ctx) error {
	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(transcriptionStatus(services.TranscribeStatusError,
			"❌ Audio processing failed. Please type your answer below."))
	}

	if !audioExtensions[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		return c.JSON(transcriptionStatus(services.TranscribeStatusInvalidFormat,
			"Please upload a valid audio file (WAV, MP3, M4A, WebM)."))
	}

	audio, err := readUploadedFile(fileHeader)
	if err != nil {
		return c.JSON(transcriptionStatus(services.TranscribeStatusError,
			"❌ Audio processing failed. Please type your answer below."))
	}

	if int64(len(audio)) < h.minAudioBytes {
		return c.JSON(transcriptionStatus(services.TranscribeStatusShortAudio,
			"⚠️ Audio recording too short. Please record for at least 2 seconds or type your answer."))
	}

	if int64(len(audio)) > h.maxAudioBytes {
		return c.JSON(transcriptionStatus(services.TranscribeStatusTooLarge,
			"⚠️ Audio file too large. Please keep recordings under 10MB or type your answer."))
	}

	result := h.transcriber.TranscribeUpload(c.UserContext(), sessionID, fileHeader.Filename, audio)
	return c.JSON(result)
}

// HandleTestTranscribe handles GET /test-transcribe
func (h *AnswerHandler) HandleTestTranscribe(c *fiber.Ctx) error {
	available := h.transcriber.Available()

	status := "ready"
	message := "Speech-to-text service is ready"
	if !available {
		status = "unavailable"
		message = "Speech-to-text service unavailable"
	}

	return c.JSON(fiber.Map{
		"available": available,
		"service":   h.transcriber.ProviderName(),
		"status":    status,
		"message":   message,
	})
}

func transcriptionStatus(status, message string) models.TranscriptionResponse {
	return models.TranscriptionResponse{
		Transcription: message,
		Confidence:    0.0,
		Status:        status,
	}
}
