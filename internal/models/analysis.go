package models

import (
	"time"

	"github.com/google/uuid"
)

type AnswerAnalysis struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID      uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	QuestionNumber int       `gorm:"not null" json:"question_number"`
	Answer         string    `gorm:"type:text" json:"answer"`
	OverallScore   float64   `gorm:"type:decimal(4,2)" json:"overall_score"`
	Feedback       string    `gorm:"type:text" json:"feedback"`
	AnalysisJSON   string    `gorm:"type:text" json:"-"`
	ResponseTime   float64   `gorm:"type:decimal(7,2);default:0" json:"response_time"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Relations
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (AnswerAnalysis) TableName() string {
	return "answer_analyses"
}
