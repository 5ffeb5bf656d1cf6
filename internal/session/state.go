// Package session holds the state of live speech interviews.
package session

import (
	"time"

	"ai-interviewer/internal/models"
)

// Difficulty levels for the adaptive interview.
const (
	DifficultyFoundational = "foundational"
	DifficultyBaseline     = "baseline"
	DifficultyAdvanced     = "advanced"
)

// QuestionRecord is one answered question in the session history.
type QuestionRecord struct {
	QuestionID   int                     `json:"question_id"`
	Question     string                  `json:"question"`
	Answer       string                  `json:"answer"`
	ResponseTime float64                 `json:"response_time"`
	Analysis     models.AnswerEvaluation `json:"analysis"`
}

// Stats tracks running totals for a live interview.
type Stats struct {
	TotalQuestions int     `json:"total_questions"`
	Completed      int     `json:"completed"`
	AverageScore   float64 `json:"average_score"`
}

// State is the full state of a live speech interview.
type State struct {
	SessionID            string                     `json:"session_id"`
	Questions            []models.GeneratedQuestion `json:"questions"`
	CurrentQuestionIndex int                        `json:"current_question_index"`
	DifficultyLevel      string                     `json:"difficulty_level"`
	QuestionHistory      []QuestionRecord           `json:"question_history"`
	SessionStats         Stats                      `json:"session_stats"`
	CreatedAt            time.Time                  `json:"created_at"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

// NewState initializes a session over the given question set.
func NewState(sessionID string, questions []models.GeneratedQuestion, difficultyLevel string) *State {
	if difficultyLevel == "" {
		difficultyLevel = DifficultyBaseline
	}
	now := time.Now()
	return &State{
		SessionID:       sessionID,
		Questions:       questions,
		DifficultyLevel: difficultyLevel,
		SessionStats:    Stats{TotalQuestions: len(questions)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// CurrentQuestion returns the question awaiting an answer.
func (s *State) CurrentQuestion() (models.GeneratedQuestion, bool) {
	if s.CurrentQuestionIndex < 0 || s.CurrentQuestionIndex >= len(s.Questions) {
		return models.GeneratedQuestion{}, false
	}
	return s.Questions[s.CurrentQuestionIndex], true
}

// RecordAnswer appends the answered question and updates running stats.
func (s *State) RecordAnswer(record QuestionRecord) {
	s.QuestionHistory = append(s.QuestionHistory, record)
	s.SessionStats.Completed++

	var sum float64
	for _, r := range s.QuestionHistory {
		sum += r.Analysis.Score
	}
	s.SessionStats.AverageScore = sum / float64(len(s.QuestionHistory))
	s.UpdatedAt = time.Now()
}

// Advance moves to the next question. complete is true when the interview
// is over.
func (s *State) Advance() (next models.GeneratedQuestion, complete bool) {
	if s.CurrentQuestionIndex+1 >= len(s.Questions) {
		return models.GeneratedQuestion{}, true
	}
	s.CurrentQuestionIndex++
	s.UpdatedAt = time.Now()
	return s.Questions[s.CurrentQuestionIndex], false
}

// PerformanceTrend compares the last two scores.
func (s *State) PerformanceTrend() string {
	n := len(s.QuestionHistory)
	if n > 1 && s.QuestionHistory[n-1].Analysis.Score > s.QuestionHistory[n-2].Analysis.Score {
		return "improving"
	}
	return "stable"
}

// NextDifficulty adapts the level: two consecutive scores of 8 or higher
// move up, two of 4 or lower move down, anything else keeps the level.
func (s *State) NextDifficulty() string {
	n := len(s.QuestionHistory)
	if n < 2 {
		return s.DifficultyLevel
	}

	last := s.QuestionHistory[n-1].Analysis.Score
	prev := s.QuestionHistory[n-2].Analysis.Score

	switch {
	case last >= 8 && prev >= 8:
		return DifficultyAdvanced
	case last <= 4 && prev <= 4:
		return DifficultyFoundational
	default:
		return s.DifficultyLevel
	}
}
