package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/metrics"
	"ai-interviewer/internal/repositories"
)

type ReportBuilderService interface {
	BuildReport(ctx context.Context, reportID uuid.UUID) error
}

type reportBuilderService struct {
	reportRepo    repositories.ReportRepository
	sessionRepo   repositories.SessionRepository
	questionRepo  repositories.QuestionRepository
	analysisRepo  repositories.AnalysisRepository
	generator     TextGenerator // nil → heuristic summary
	embedder      Embedder      // nil → no rubric retrieval
	bank          QuestionBank  // nil → no rubric retrieval
	publisher     *events.Publisher
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewReportBuilderService(
	reportRepo repositories.ReportRepository,
	sessionRepo repositories.SessionRepository,
	questionRepo repositories.QuestionRepository,
	analysisRepo repositories.AnalysisRepository,
	generator TextGenerator,
	embedder Embedder,
	bank QuestionBank,
	publisher *events.Publisher,
	maxRetries int,
) ReportBuilderService {
	return &reportBuilderService{
		reportRepo:    reportRepo,
		sessionRepo:   sessionRepo,
		questionRepo:  questionRepo,
		analysisRepo:  analysisRepo,
		generator:     generator,
		embedder:      embedder,
		bank:          bank,
		publisher:     publisher,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

type sessionSummaryResult struct {
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
}

var validRecommendations = map[string]bool{
	"Strong Hire": true,
	"Hire":        true,
	"Maybe":       true,
	"No Hire":     true,
}

func (r *reportBuilderService) BuildReport(ctx context.Context, reportID uuid.UUID) error {
	started := time.Now()

	// Update status to processing
	if err := r.reportRepo.UpdateStatus(reportID, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Printf("🔄 Starting report for job ID: %s\n", reportID)

	report, err := r.reportRepo.FindByID(reportID)
	if err != nil {
		r.reportRepo.UpdateError(reportID, err.Error())
		return r.fail(started, fmt.Errorf("failed to get report: %w", err))
	}

	session, err := r.sessionRepo.FindByID(report.SessionID)
	if err != nil {
		r.reportRepo.UpdateError(reportID, fmt.Sprintf("Session not found: %v", err))
		return r.fail(started, fmt.Errorf("failed to get session: %w", err))
	}

	// Step 1: Load the question set
	log.Println("📋 Loading interview questions...")
	questions, err := r.questionRepo.FindBySession(session.ID)
	if err != nil {
		r.reportRepo.UpdateError(reportID, fmt.Sprintf("Failed to load questions: %v", err))
		return r.fail(started, fmt.Errorf("failed to load questions: %w", err))
	}
	if len(questions) == 0 {
		r.reportRepo.UpdateError(reportID, "No questions found for session")
		return r.fail(started, fmt.Errorf("no questions for session %s", session.ID))
	}

	// Step 2: Load answer analyses
	log.Println("📊 Loading answer analyses...")
	analyses, err := r.analysisRepo.FindBySession(session.ID)
	if err != nil {
		r.reportRepo.UpdateError(reportID, fmt.Sprintf("Failed to load analyses: %v", err))
		return r.fail(started, fmt.Errorf("failed to load analyses: %w", err))
	}
	if len(analyses) == 0 {
		r.reportRepo.UpdateError(reportID, "No answered questions for session")
		return r.fail(started, fmt.Errorf("no answers recorded for session %s", session.ID))
	}

	// Step 3: Aggregate scores
	avgScore, avgTechnical, avgCommunication, evaluations := aggregateScores(analyses)

	// Step 4: Generate the overall summary
	log.Println("🤖 Generating session summary...")
	summary := r.generateSummary(ctx, questions, analyses, evaluations, avgScore, avgTechnical, avgCommunication)

	// Step 5: Save results
	log.Println("💾 Saving report...")
	strengths := strings.Join(summary.Strengths, "\n")
	improvements := strings.Join(summary.Improvements, "\n")
	updateData := &repositories.ReportUpdateData{
		OverallScore:       &avgScore,
		TechnicalScore:     &avgTechnical,
		CommunicationScore: &avgCommunication,
		Recommendation:     &summary.Recommendation,
		Summary:            &summary.Summary,
		Strengths:          &strengths,
		Improvements:       &improvements,
	}

	if err := r.reportRepo.UpdateResult(reportID, updateData); err != nil {
		return r.fail(started, fmt.Errorf("failed to save results: %w", err))
	}

	_ = r.publisher.PublishSession(ctx, events.EventReportCompleted, session.ID.String(), map[string]interface{}{
		"report_id":      reportID.String(),
		"overall_score":  avgScore,
		"recommendation": summary.Recommendation,
	})

	metrics.DefaultMetrics.RecordReport(nil, time.Since(started).Seconds())
	log.Printf("✅ Report completed successfully for job ID: %s\n", reportID)
	return nil
}

func (r *reportBuilderService) fail(started time.Time, err error) error {
	metrics.DefaultMetrics.RecordReport(err, time.Since(started).Seconds())
	return err
}

// aggregateScores averages the per-answer scores. Technical and communication
// averages come from the stored evaluation JSON; rows without one fall back
// to the overall score.
func aggregateScores(analyses []models.AnswerAnalysis) (avgScore, avgTechnical, avgCommunication float64, evaluations map[int]models.AnswerEvaluation) {
	evaluations = make(map[int]models.AnswerEvaluation, len(analyses))

	var sumScore, sumTechnical, sumCommunication float64
	var technicalCount, communicationCount int

	for _, analysis := range analyses {
		sumScore += analysis.OverallScore

		var evaluation models.AnswerEvaluation
		if err := json.Unmarshal([]byte(analysis.AnalysisJSON), &evaluation); err != nil {
			continue
		}
		evaluations[analysis.QuestionNumber] = evaluation

		if evaluation.TechnicalAccuracy > 0 {
			sumTechnical += evaluation.TechnicalAccuracy
			technicalCount++
		}
		if evaluation.Communication > 0 {
			sumCommunication += evaluation.Communication
			communicationCount++
		}
	}

	avgScore = sumScore / float64(len(analyses))
	avgTechnical = avgScore
	if technicalCount > 0 {
		avgTechnical = sumTechnical / float64(technicalCount)
	}
	avgCommunication = avgScore
	if communicationCount > 0 {
		avgCommunication = sumCommunication / float64(communicationCount)
	}

	return avgScore, avgTechnical, avgCommunication, evaluations
}

// generateSummary asks the LLM for the final assessment and falls back to a
// score-derived one when no generator is configured or the call fails.
func (r *reportBuilderService) generateSummary(
	ctx context.Context,
	questions []models.Question,
	analyses []models.AnswerAnalysis,
	evaluations map[int]models.AnswerEvaluation,
	avgScore, avgTechnical, avgCommunication float64,
) sessionSummaryResult {
	fallback := heuristicSummary(questions, analyses, evaluations, avgScore, avgTechnical, avgCommunication)

	if r.generator == nil {
		return fallback
	}

	questionTypes := make(map[int]string, len(questions))
	for _, q := range questions {
		questionTypes[q.Number] = q.Type
	}

	var lines []string
	for _, analysis := range analyses {
		lines = append(lines, fmt.Sprintf("Q%d (%s, score %.1f): %s",
			analysis.QuestionNumber, questionTypes[analysis.QuestionNumber], analysis.OverallScore, analysis.Feedback))
	}
	feedback := strings.Join(lines, "\n")

	prompt := r.promptBuilder.BuildSummaryPrompt(
		len(questions), len(analyses), avgScore, avgTechnical, avgCommunication, feedback,
		r.rubricContext(ctx, feedback))

	response, err := r.generator.GenerateTextWithRetry(ctx, prompt, 0.5, r.maxRetries)
	if err != nil {
		log.Printf("⚠️  Summary generation failed, using score-derived summary: %v\n", err)
		return fallback
	}

	var summary sessionSummaryResult
	if err := parseJSONResponse(response, &summary); err != nil {
		log.Printf("⚠️  Summary response unparseable, using score-derived summary: %v\n", err)
		return fallback
	}

	if summary.Summary == "" {
		summary.Summary = fallback.Summary
	}
	if !validRecommendations[summary.Recommendation] {
		summary.Recommendation = recommendationForScore(avgScore)
	}
	if len(summary.Strengths) == 0 {
		summary.Strengths = fallback.Strengths
	}
	if len(summary.Improvements) == 0 {
		summary.Improvements = fallback.Improvements
	}

	return summary
}

// rubricContext pulls the scoring-rubric chunks closest to the session's
// feedback so the summary prompt applies consistent standards. Retrieval is
// best-effort, the summary works without it.
func (r *reportBuilderService) rubricContext(ctx context.Context, feedback string) string {
	if r.embedder == nil || r.bank == nil || strings.TrimSpace(feedback) == "" {
		return ""
	}

	embedding, err := r.embedder.GenerateEmbedding(ctx, feedback)
	if err != nil {
		log.Printf("⚠️  Rubric embedding failed, summarizing without rubric: %v\n", err)
		return ""
	}

	matches, err := r.bank.SearchRubric(ctx, embedding, 3)
	if err != nil {
		log.Printf("⚠️  Rubric search failed, summarizing without rubric: %v\n", err)
		return ""
	}

	return FormatRubricContext(matches)
}

// heuristicSummary composes the report from stored evaluations alone.
func heuristicSummary(
	questions []models.Question,
	analyses []models.AnswerAnalysis,
	evaluations map[int]models.AnswerEvaluation,
	avgScore, avgTechnical, avgCommunication float64,
) sessionSummaryResult {
	summary := fmt.Sprintf(
		"The candidate answered %d of %d questions with an average score of %.1f out of 10. Technical accuracy averaged %.1f and communication %.1f. Review the per-question feedback for details.",
		len(analyses), len(questions), avgScore, avgTechnical, avgCommunication)

	return sessionSummaryResult{
		Summary:        summary,
		Recommendation: recommendationForScore(avgScore),
		Strengths:      collectDistinct(analyses, evaluations, func(e models.AnswerEvaluation) []string { return e.Strengths }, 3),
		Improvements:   collectDistinct(analyses, evaluations, func(e models.AnswerEvaluation) []string { return e.Improvements }, 3),
	}
}

func recommendationForScore(avg float64) string {
	switch {
	case avg >= 8.5:
		return "Strong Hire"
	case avg >= 7:
		return "Hire"
	case avg >= 5:
		return "Maybe"
	default:
		return "No Hire"
	}
}

func collectDistinct(analyses []models.AnswerAnalysis, evaluations map[int]models.AnswerEvaluation, pick func(models.AnswerEvaluation) []string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, analysis := range analyses {
		evaluation, ok := evaluations[analysis.QuestionNumber]
		if !ok {
			continue
		}
		for _, item := range pick(evaluation) {
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			out = append(out, item)
			if len(out) >= limit {
				return out
			}
		}
	}
	if len(out) == 0 {
		out = append(out, "See per-question feedback")
	}
	return out
}
