package services

import (
	"context"
	"errors"
	"strings"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

const maxQuestions = 8

var errNoQuestions = errors.New("no valid questions in model response")

// QuestionGenerator produces the interview question set for a session.
// Generation never fails outright: when no LLM is configured, or the model
// returns something unparseable, a curated fallback set keyed to the resume
// content is used instead.
type QuestionGenerator interface {
	Generate(ctx context.Context, resumeText, jdText string) (questions []models.GeneratedQuestion, aiPowered bool)
	AIAvailable() bool
}

type questionGenerator struct {
	generator  TextGenerator // nil when no provider is configured
	embedder   Embedder
	bank       QuestionBank
	prompts    *PromptBuilder
	maxRetries int
}

func NewQuestionGenerator(generator TextGenerator, embedder Embedder, bank QuestionBank, maxRetries int) QuestionGenerator {
	return &questionGenerator{
		generator:  generator,
		embedder:   embedder,
		bank:       bank,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
	}
}

// AIAvailable implements QuestionGenerator.
func (qg *questionGenerator) AIAvailable() bool {
	return qg.generator != nil
}

// Generate implements QuestionGenerator.
func (qg *questionGenerator) Generate(ctx context.Context, resumeText, jdText string) ([]models.GeneratedQuestion, bool) {
	logger := logging.WithComponent("questions")

	if qg.generator != nil {
		questions, err := qg.generateWithAI(ctx, resumeText, jdText)
		if err == nil {
			metrics.DefaultMetrics.RecordQuestions(qg.generator.Name(), len(questions))
			return questions, true
		}
		logger.Warn().Err(err).Msg("AI question generation failed, using fallback set")
	}

	questions := qg.fallbackQuestions(resumeText)
	metrics.DefaultMetrics.RecordQuestions("fallback", len(questions))
	return questions, false
}

type rawQuestion struct {
	Question   string `json:"question"`
	Type       string `json:"type"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

func (qg *questionGenerator) generateWithAI(ctx context.Context, resumeText, jdText string) ([]models.GeneratedQuestion, error) {
	bankContext := qg.bankContext(ctx, resumeText, jdText)

	prompt := qg.prompts.BuildQuestionPrompt(resumeText, jdText, bankContext)

	response, err := qg.generator.GenerateTextWithRetry(ctx, prompt, 0.7, qg.maxRetries)
	if err != nil {
		return nil, err
	}

	var raw []rawQuestion
	if err := parseJSONResponse(response, &raw); err != nil {
		return nil, err
	}

	questions := make([]models.GeneratedQuestion, 0, len(raw))
	for _, q := range raw {
		if len(questions) >= maxQuestions {
			break
		}

		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}

		qType := strings.ToLower(strings.TrimSpace(q.Type))
		if qType == "" {
			qType = "general"
		}
		category := q.Category
		if category == "" {
			category = "general"
		}
		difficulty := q.Difficulty
		if difficulty == "" {
			difficulty = "medium"
		}

		questions = append(questions, models.GeneratedQuestion{
			ID:         len(questions) + 1,
			Question:   text,
			Type:       qType,
			Category:   category,
			Difficulty: difficulty,
		})
	}

	if len(questions) == 0 {
		return nil, errNoQuestions
	}

	return questions, nil
}

// bankContext retrieves similar curated questions for the generation prompt.
// Any failure here degrades to an empty context.
func (qg *questionGenerator) bankContext(ctx context.Context, resumeText, jdText string) string {
	if qg.embedder == nil || qg.bank == nil {
		return ""
	}

	query := resumeText
	if sections := ParseResumeSections(resumeText); sections["skills"] != "" {
		query = sections["skills"]
	}
	if jdText != "" {
		query = query + "\n" + jdText
	}

	embedding, err := qg.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		logging.WithComponent("questions").Warn().Err(err).Msg("Embedding for question bank lookup failed")
		return ""
	}

	matches, err := qg.bank.SearchSimilar(ctx, embedding, "", 5)
	if err != nil {
		logging.WithComponent("questions").Warn().Err(err).Msg("Question bank search failed")
		return ""
	}

	return FormatBankContext(matches)
}

// fallbackQuestions builds the static question set. Technology-specific
// questions are added when the resume mentions the matching stack.
func (qg *questionGenerator) fallbackQuestions(resumeText string) []models.GeneratedQuestion {
	resumeLower := strings.ToLower(resumeText)

	questions := []models.GeneratedQuestion{
		{Question: "Tell me about yourself and your professional journey.", Type: "general", Category: "introduction", Difficulty: "easy"},
		{Question: "Describe a challenging project you worked on and how you overcame obstacles.", Type: "behavioral", Category: "problem_solving", Difficulty: "medium"},
		{Question: "How do you stay updated with the latest technologies and industry trends?", Type: "general", Category: "learning", Difficulty: "easy"},
		{Question: "Tell me about a time when you had to learn a new technology quickly.", Type: "behavioral", Category: "adaptability", Difficulty: "medium"},
	}

	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(resumeLower, w) {
				return true
			}
		}
		return false
	}

	if containsAny("python", "java", "javascript", "programming", "software") {
		questions = append(questions, models.GeneratedQuestion{
			Question: "Walk me through your approach to debugging a complex software issue.", Type: "technical", Category: "debugging", Difficulty: "medium",
		})
	}
	if containsAny("aws", "cloud", "azure", "gcp") {
		questions = append(questions, models.GeneratedQuestion{
			Question: "Explain your experience with cloud technologies and their benefits.", Type: "technical", Category: "cloud", Difficulty: "medium",
		})
	}
	if containsAny("machine learning", "ai", "data science", "ml") {
		questions = append(questions, models.GeneratedQuestion{
			Question: "Describe a machine learning project you've worked on from start to finish.", Type: "technical", Category: "data_science", Difficulty: "hard",
		})
	}
	if containsAny("react", "frontend", "ui", "web development") {
		questions = append(questions, models.GeneratedQuestion{
			Question: "How do you ensure good user experience in your frontend applications?", Type: "technical", Category: "frontend", Difficulty: "medium",
		})
	}

	questions = append(questions,
		models.GeneratedQuestion{Question: "Describe a situation where you had to work under tight deadlines.", Type: "behavioral", Category: "time_management", Difficulty: "medium"},
		models.GeneratedQuestion{Question: "Tell me about a time when you disagreed with your manager or team lead.", Type: "behavioral", Category: "conflict_resolution", Difficulty: "hard"},
	)

	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	for i := range questions {
		questions[i].ID = i + 1
	}

	return questions
}
