package services

import (
	"context"
	"errors"
	"strings"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/logging"
)

var errIncompleteEvaluation = errors.New("model evaluation missing overall score")

// AnswerAnalyzer scores a candidate's answer to one question. Without a
// configured LLM it falls back to a heuristic based on answer length and
// concrete detail, so feedback is degraded but never fabricated as AI output.
type AnswerAnalyzer interface {
	Analyze(ctx context.Context, questionText, questionType, answer, resumeText string) (evaluation models.AnswerEvaluation, aiPowered bool)
}

type answerAnalyzer struct {
	generator  TextGenerator // nil → heuristic only
	prompts    *PromptBuilder
	maxRetries int
}

func NewAnswerAnalyzer(generator TextGenerator, maxRetries int) AnswerAnalyzer {
	return &answerAnalyzer{
		generator:  generator,
		prompts:    NewPromptBuilder(),
		maxRetries: maxRetries,
	}
}

// Analyze implements AnswerAnalyzer.
func (a *answerAnalyzer) Analyze(ctx context.Context, questionText, questionType, answer, resumeText string) (models.AnswerEvaluation, bool) {
	if a.generator != nil {
		evaluation, err := a.analyzeWithAI(ctx, questionText, questionType, answer, resumeText)
		if err == nil {
			return evaluation, true
		}
		logging.WithComponent("analyzer").Warn().Err(err).Msg("AI answer analysis failed, using heuristic scoring")
	}

	return heuristicEvaluation(answer), false
}

func (a *answerAnalyzer) analyzeWithAI(ctx context.Context, questionText, questionType, answer, resumeText string) (models.AnswerEvaluation, error) {
	prompt := a.prompts.BuildAnalysisPrompt(questionText, questionType, answer, resumeText)

	response, err := a.generator.GenerateTextWithRetry(ctx, prompt, 0.3, a.maxRetries)
	if err != nil {
		return models.AnswerEvaluation{}, err
	}

	var evaluation models.AnswerEvaluation
	if err := parseJSONResponse(response, &evaluation); err != nil {
		return models.AnswerEvaluation{}, err
	}

	// A zero overall score means the model skipped the contract.
	if evaluation.Score == 0 {
		return models.AnswerEvaluation{}, errIncompleteEvaluation
	}

	evaluation.Score = clampScore(evaluation.Score)
	evaluation.TechnicalAccuracy = clampScore(evaluation.TechnicalAccuracy)
	evaluation.Communication = clampScore(evaluation.Communication)
	evaluation.Relevance = clampScore(evaluation.Relevance)

	if evaluation.Feedback == "" {
		evaluation.Feedback = "Good answer with relevant details."
	}
	if len(evaluation.Strengths) == 0 {
		evaluation.Strengths = []string{"Clear communication"}
	}
	if len(evaluation.Improvements) == 0 {
		evaluation.Improvements = []string{"Could provide more specific examples"}
	}

	return evaluation, nil
}

// heuristicEvaluation scores on answer length and concrete detail. Scores
// cluster in the middle of the range on purpose; only the LLM path hands out
// extremes.
func heuristicEvaluation(answer string) models.AnswerEvaluation {
	words := strings.Fields(answer)
	lower := strings.ToLower(answer)

	score := 4.0
	switch {
	case len(words) >= 100:
		score = 7.0
	case len(words) >= 50:
		score = 6.5
	case len(words) >= 25:
		score = 5.5
	case len(words) >= 10:
		score = 4.5
	}

	var strengths, improvements []string

	if containsAnyOf(lower, "for example", "for instance", "in my last", "in my previous", "when i") {
		score += 0.5
		strengths = append(strengths, "Backs claims with concrete examples")
	}
	if strings.ContainsAny(answer, "0123456789") {
		score += 0.5
		strengths = append(strengths, "Quantifies impact with numbers")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "Clear communication")
	}

	if len(words) < 25 {
		improvements = append(improvements, "Expand the answer with a concrete example and its outcome")
	}
	if !strings.ContainsAny(answer, "0123456789") {
		improvements = append(improvements, "Quantify results where possible")
	}
	if len(improvements) == 0 {
		improvements = append(improvements, "Could provide more specific examples")
	}

	score = clampScore(score)

	var feedback string
	switch {
	case score >= 7:
		feedback = "Good answer with relevant details."
	case score >= 5:
		feedback = "Reasonable answer. Adding a concrete example with measurable results would strengthen it."
	default:
		feedback = "The answer is too brief to evaluate well. Walk through a specific situation, your actions, and the outcome."
	}

	return models.AnswerEvaluation{
		Score:             score,
		TechnicalAccuracy: clampScore(score - 0.5),
		Communication:     clampScore(score + 0.5),
		Relevance:         score,
		Feedback:          feedback,
		Strengths:         strengths,
		Improvements:      improvements,
	}
}

func clampScore(v float64) float64 {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func containsAnyOf(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
