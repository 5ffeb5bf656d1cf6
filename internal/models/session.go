package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusUploaded       SessionStatus = "uploaded"
	SessionStatusQuestionsReady SessionStatus = "questions_ready"
	SessionStatusCompleted      SessionStatus = "completed"
)

type InterviewSession struct {
	ID              uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Status          SessionStatus `gorm:"not null;default:'uploaded'" json:"status"`
	ResumeFilename  string        `gorm:"type:text" json:"resume_filename"`
	JDFilename      *string       `gorm:"type:text" json:"jd_filename,omitempty"`
	ResumeArtifact  string        `gorm:"type:text" json:"resume_artifact"`
	JDArtifact      *string       `gorm:"type:text" json:"jd_artifact,omitempty"`
	QuestionCount   int           `gorm:"default:0" json:"question_count"`
	DifficultyLevel string        `gorm:"type:text;default:'baseline'" json:"difficulty_level"`
	CreatedAt       time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}
