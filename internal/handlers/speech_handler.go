package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
	"ai-interviewer/internal/services"
	"ai-interviewer/internal/session"
)

const speechInstructions = "Welcome to your AI interview! I'll ask you questions and provide detailed feedback. Speak clearly and take your time."

type SpeechHandler struct {
	sessions  session.Store
	generator services.QuestionGenerator
	analyzer  services.AnswerAnalyzer
	tts       services.TTSService
	store     services.ArtifactStore
	publisher *events.Publisher
}

func NewSpeechHandler(
	sessions session.Store,
	generator services.QuestionGenerator,
	analyzer services.AnswerAnalyzer,
	tts services.TTSService,
	store services.ArtifactStore,
	publisher *events.Publisher,
) *SpeechHandler {
	return &SpeechHandler{
		sessions:  sessions,
		generator: generator,
		analyzer:  analyzer,
		tts:       tts,
		store:     store,
		publisher: publisher,
	}
}

// HandleStart handles POST /speech-interview/start
func (h *SpeechHandler) HandleStart(c *fiber.Ctx) error {
	var req models.SpeechStartRequest

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

	if _, err := uuid.Parse(req.SessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	ctx := c.UserContext()

	var resume models.ResumeArtifact
	if err := h.store.LoadJSON(ctx, req.SessionID, "resume", &resume); err != nil || resume.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No resume data found",
		})
	}

	var jd models.JDArtifact
	_ = h.store.LoadJSON(ctx, req.SessionID, "jd", &jd)

	questions, _ := h.generator.Generate(ctx, resume.Text, jd.Text)
	if len(questions) == 0 {
		questions = speechFallbackQuestions()
	}

	first := questions[0]

	var audioFile *string
	filename, _, err := h.tts.QuestionAudio(ctx, req.SessionID, first.ID, first.Question, "")
	if err != nil {
		logging.WithSession(req.SessionID).Warn().Err(err).Msg("Failed to synthesize first question audio")
	} else if filename != "" {
		audioFile = &filename
	}

	state := session.NewState(req.SessionID, questions, req.DifficultyLevel)
	if err := h.sessions.Save(ctx, state); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start speech session",
		})
	}

	metrics.DefaultMetrics.SpeechSessionsStarted.Inc()
	_ = h.publisher.PublishSession(ctx, events.EventSpeechStarted, req.SessionID, map[string]interface{}{
		"total_questions": len(questions),
		"difficulty":      state.DifficultyLevel,
	})

	firstPayload := generatedPayload(first, audioFile != nil)

	return c.JSON(models.SpeechStartResponse{
		SessionID:       req.SessionID,
		FirstQuestion:   &firstPayload,
		AudioFile:       audioFile,
		TotalQuestions:  len(questions),
		DifficultyLevel: state.DifficultyLevel,
		Instructions:    speechInstructions,
	})
}

// HandleAnalyze handles POST /speech-interview/analyze. Each answer is scored,
// recorded against the live session, and followed by the next question with
// its audio file, plus adaptive difficulty feedback.
func (h *SpeechHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.SpeechAnswerRequest

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

	if _, err := uuid.Parse(req.SessionID); err != nil {
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

	state, err := h.sessions.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No speech session found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load speech session",
		})
	}

	current, ok := state.CurrentQuestion()
	if !ok || req.QuestionID != current.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question ID mismatch",
		})
	}

	var resume models.ResumeArtifact
	_ = h.store.LoadJSON(ctx, req.SessionID, "resume", &resume)

	evaluation, aiPowered := h.analyzer.Analyze(ctx, current.Question, current.Type, req.Answer, resume.Text)

	record := session.QuestionRecord{
		QuestionID:   req.QuestionID,
		Question:     current.Question,
		Answer:       req.Answer,
		ResponseTime: req.ResponseTime,
		Analysis:     evaluation,
	}
	state.RecordAnswer(record)

	// Trend and difficulty read the history, so compute them after the
	// answer is recorded and before the level is overwritten.
	trend := state.PerformanceTrend()
	nextDifficulty := state.NextDifficulty()
	state.DifficultyLevel = nextDifficulty

	next, complete := state.Advance()

	var nextPayload *models.QuestionPayload
	var nextAudio *string
	if !complete {
		filename, _, err := h.tts.QuestionAudio(ctx, req.SessionID, next.ID, next.Question, "")
		if err != nil {
			logging.WithQuestion(req.SessionID, next.ID).Warn().Err(err).Msg("Failed to synthesize next question audio")
		} else if filename != "" {
			nextAudio = &filename
		}
		payload := generatedPayload(next, nextAudio != nil)
		nextPayload = &payload
	}

	if err := h.sessions.Save(ctx, state); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save speech session",
		})
	}

	// Per-answer record is kept for audit; losing it does not break the flow.
	kind := fmt.Sprintf("speech_analysis_%d", req.QuestionID)
	if _, err := h.store.SaveJSON(ctx, req.SessionID, kind, record); err != nil {
		logging.WithSession(req.SessionID).Warn().Err(err).Msg("Failed to save speech answer record")
	}

	metrics.DefaultMetrics.SpeechAnswersAnalyzed.Inc()
	if complete {
		metrics.DefaultMetrics.SpeechSessionsCompleted.Inc()
	}
	_ = h.publisher.PublishAnswer(ctx, req.SessionID, map[string]interface{}{
		"question_id": req.QuestionID,
		"score":       evaluation.Score,
		"ai_powered":  aiPowered,
		"is_complete": complete,
	})

	return c.JSON(models.SpeechAnswerResponse{
		Analysis:     evaluation,
		NextQuestion: nextPayload,
		NextAudio:    nextAudio,
		IsComplete:   complete,
		SessionProgress: models.SessionProgress{
			Completed:    state.SessionStats.Completed,
			Total:        state.SessionStats.TotalQuestions,
			AverageScore: state.SessionStats.AverageScore,
		},
		Adaptive: models.AdaptiveFeedback{
			NextDifficulty:   nextDifficulty,
			PerformanceTrend: trend,
		},
	})
}

// HandleAudio handles GET /speech-interview/audio/:session_id/:filename.
// Filenames embed the session id, which doubles as the serving check.
func (h *SpeechHandler) HandleAudio(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID format",
		})
	}

	filename := c.Params("filename")
	if decoded, err := url.PathUnescape(filename); err == nil {
		filename = decoded
	}

	if strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") ||
		!strings.Contains(filename, sessionID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Audio file not found",
		})
	}

	data, err := h.store.LoadRaw(c.UserContext(), services.AudioArtifactKey(sessionID, filename))
	if err != nil {
		if errors.Is(err, services.ErrArtifactNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Audio file not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load audio file",
		})
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(data)
}

// speechFallbackQuestions is the last-resort set when the generator yields
// nothing at all.
func speechFallbackQuestions() []models.GeneratedQuestion {
	return []models.GeneratedQuestion{
		{ID: 1, Question: "Tell me about yourself and your technical background.", Type: "technical", Difficulty: "baseline"},
		{ID: 2, Question: "Describe a challenging project you worked on recently.", Type: "behavioral", Difficulty: "baseline"},
		{ID: 3, Question: "How do you handle working under pressure?", Type: "situational", Difficulty: "baseline"},
		{ID: 4, Question: "What interests you most about this role?", Type: "custom", Difficulty: "baseline"},
	}
}

func generatedPayload(q models.GeneratedQuestion, hasAudio bool) models.QuestionPayload {
	return models.QuestionPayload{
		ID:         q.ID,
		Question:   q.Question,
		Type:       q.Type,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		HasAudio:   hasAudio,
	}
}
