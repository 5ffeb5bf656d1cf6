package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
)

type InterviewHandler struct {
	sessionRepo  repositories.SessionRepository
	questionRepo repositories.QuestionRepository
	generator    services.QuestionGenerator
	tts          services.TTSService
	store        services.ArtifactStore
	publisher    *events.Publisher
}

func NewInterviewHandler(
	sessionRepo repositories.SessionRepository,
	questionRepo repositories.QuestionRepository,
	generator services.QuestionGenerator,
	tts services.TTSService,
	store services.ArtifactStore,
	publisher *events.Publisher,
) *InterviewHandler {
	return &InterviewHandler{
		sessionRepo:  sessionRepo,
		questionRepo: questionRepo,
		generator:    generator,
		tts:          tts,
		store:        store,
		publisher:    publisher,
	}
}

// HandleGenerateQuestions handles POST /generate-questions
func (h *InterviewHandler) HandleGenerateQuestions(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest

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

	if _, err := h.sessionRepo.FindByID(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	ctx := c.UserContext()

	var resume models.ResumeArtifact
	if err := h.store.LoadJSON(ctx, req.SessionID, "resume", &resume); err != nil || resume.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No resume data found",
		})
	}

	// Job description is optional context: ignore a missing artifact.
	var jd models.JDArtifact
	_ = h.store.LoadJSON(ctx, req.SessionID, "jd", &jd)

	questions, aiPowered := h.generator.Generate(ctx, resume.Text, jd.Text)

	interviewVoice := h.tts.InterviewVoice(ctx)
	logger := logging.WithSession(req.SessionID)
	logger.Info().Str("voice", interviewVoice).Int("count", len(questions)).Msg("Synthesizing question audio")

	now := time.Now()
	payloads := make([]models.QuestionPayload, 0, len(questions))
	rows := make([]models.Question, 0, len(questions))

	for _, q := range questions {
		payload := models.QuestionPayload{
			ID:         q.ID,
			Question:   q.Question,
			Type:       q.Type,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		}
		row := models.Question{
			ID:         uuid.New(),
			SessionID:  sessionID,
			Number:     q.ID,
			Text:       q.Question,
			Type:       q.Type,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		// A failed clip degrades that one question to text-only.
		filename, audio, err := h.tts.QuestionAudio(ctx, req.SessionID, q.ID, q.Question, interviewVoice)
		if err != nil {
			logger.Warn().Err(err).Int("question_id", q.ID).Msg("Failed to generate question audio")
		} else {
			voice := interviewVoice
			payload.Audio = &audio
			payload.HasAudio = true
			payload.VoiceID = voice
			row.HasAudio = true
			row.VoiceID = &voice
			if filename != "" {
				key := services.AudioArtifactKey(req.SessionID, filename)
				row.AudioKey = &key
			}
		}

		payloads = append(payloads, payload)
		rows = append(rows, row)
	}

	// Regenerating replaces the previous question set.
	if err := h.questionRepo.DeleteBySession(sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset questions",
		})
	}
	if err := h.questionRepo.CreateBatch(rows); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save questions",
		})
	}

	artifact := models.QuestionsArtifact{
		Questions:   payloads,
		AIPowered:   aiPowered,
		GeneratedAt: now,
	}
	if _, err := h.store.SaveJSON(ctx, req.SessionID, "questions", artifact); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save questions",
		})
	}

	if err := h.sessionRepo.UpdateQuestionCount(sessionID, len(payloads)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update session",
		})
	}

	_ = h.publisher.PublishSession(ctx, events.EventQuestionsGenerated, req.SessionID, map[string]interface{}{
		"count":      len(payloads),
		"ai_powered": aiPowered,
	})

	technical, behavioral, general := countQuestionTypes(payloads)

	return c.JSON(models.QuestionsResponse{
		Questions: payloads,
		SessionID: req.SessionID,
		Summary: models.QuestionSummary{
			TotalQuestions: len(payloads),
			Technical:      technical,
			Behavioral:     behavioral,
			General:        general,
		},
		Message:   "AI-generated questions with audio (real-time)",
		AIPowered: aiPowered,
	})
}

// HandleQuestionAudio handles GET /question-audio/:session_id/:question_id.
// Audio missing from the stored set is synthesized on demand and persisted.
func (h *InterviewHandler) HandleQuestionAudio(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	questionID, err := c.ParamsInt("question_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	ctx := c.UserContext()

	artifact, err := loadQuestionsArtifact(ctx, h.store, sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No questions found",
		})
	}

	index := -1
	for i := range artifact.Questions {
		if artifact.Questions[i].ID == questionID {
			index = i
			break
		}
	}
	if index == -1 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Question not found",
		})
	}

	question := &artifact.Questions[index]

	if question.Audio == nil || *question.Audio == "" {
		_, audio, err := h.tts.QuestionAudio(ctx, sessionID, question.ID, question.Question, "")
		if err != nil {
			logging.WithQuestion(sessionID, question.ID).Warn().Err(err).Msg("On-demand audio synthesis failed")
		} else {
			question.Audio = &audio
			question.HasAudio = true
			if _, err := h.store.SaveJSON(ctx, sessionID, "questions", artifact); err != nil {
				logging.WithSession(sessionID).Warn().Err(err).Msg("Failed to persist question audio")
			}
		}
	}

	questionType := question.Type
	if questionType == "" {
		questionType = "general"
	}

	return c.JSON(models.QuestionAudioResponse{
		QuestionID: question.ID,
		Question:   question.Question,
		Audio:      question.Audio,
		HasAudio:   question.HasAudio,
		Type:       questionType,
	})
}

// HandleVoices handles GET /voices
func (h *InterviewHandler) HandleVoices(c *fiber.Ctx) error {
	ctx := c.UserContext()

	voices, err := h.tts.Voices(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list voices",
		})
	}

	return c.JSON(models.VoicesResponse{
		Voices:       voices,
		CurrentVoice: h.tts.InterviewVoice(ctx),
		Message:      fmt.Sprintf("Found %d available voices", len(voices)),
	})
}

// HandleReplayQuestion handles POST /replay-question
func (h *InterviewHandler) HandleReplayQuestion(c *fiber.Ctx) error {
	var req models.ReplayRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.QuestionText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question text is required",
		})
	}

	ctx := c.UserContext()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = h.tts.InterviewVoice(ctx)
	}

	response := models.ReplayResponse{
		QuestionText: req.QuestionText,
		VoiceID:      voiceID,
		UseSSML:      req.UseSSML,
	}

	audio, err := h.tts.SynthesizeBase64(ctx, req.QuestionText, voiceID, req.UseSSML)
	if err != nil {
		logging.WithComponent("handlers").Warn().Err(err).Msg("Replay synthesis failed")
	} else {
		response.Audio = &audio
		response.HasAudio = true
	}

	return c.JSON(response)
}

// HandleTestAudio handles GET /test-audio/:text, serving the clip directly
// so it can be checked in a browser.
func (h *InterviewHandler) HandleTestAudio(c *fiber.Ctx) error {
	text := c.Params("text")
	if decoded, err := url.PathUnescape(text); err == nil {
		text = decoded
	}

	audioB64, err := h.tts.SynthesizeBase64(c.UserContext(), text, "", false)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate audio",
		})
	}

	data, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to decode audio",
		})
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	c.Set(fiber.HeaderContentDisposition, `inline; filename=test.mp3`)
	return c.Send(data)
}

// HandleInterviewSummary handles GET /interview-summary/:session_id
func (h *InterviewHandler) HandleInterviewSummary(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	ctx := c.UserContext()

	artifact, err := loadQuestionsArtifact(ctx, h.store, sessionID)
	if err != nil || len(artifact.Questions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No interview data found",
		})
	}

	analyses := make([]models.AnalysisArtifact, 0, len(artifact.Questions))
	var scoreSum float64
	for _, q := range artifact.Questions {
		var analysis models.AnalysisArtifact
		if err := h.store.LoadJSON(ctx, sessionID, fmt.Sprintf("analysis_%d", q.ID), &analysis); err != nil {
			continue
		}
		analyses = append(analyses, analysis)
		scoreSum += analysis.Analysis.Score
	}

	var averageScore float64
	if len(analyses) > 0 {
		averageScore = scoreSum / float64(len(analyses))
	}

	technical, behavioral, general := countQuestionTypes(artifact.Questions)

	return c.JSON(models.InterviewSummaryResponse{
		SessionID:         sessionID,
		TotalQuestions:    len(artifact.Questions),
		AnsweredQuestions: len(analyses),
		QuestionsByType: map[string]int{
			"technical":  technical,
			"behavioral": behavioral,
			"general":    general,
		},
		AverageScore: averageScore,
		Questions:    artifact.Questions,
		Analyses:     analyses,
	})
}

func loadQuestionsArtifact(ctx context.Context, store services.ArtifactStore, sessionID string) (*models.QuestionsArtifact, error) {
	var artifact models.QuestionsArtifact
	if err := store.LoadJSON(ctx, sessionID, "questions", &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func countQuestionTypes(questions []models.QuestionPayload) (technical, behavioral, general int) {
	for _, q := range questions {
		switch q.Type {
		case "technical":
			technical++
		case "behavioral":
			behavioral++
		case "general":
			general++
		}
	}
	return technical, behavioral, general
}
