package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusQueued     ReportStatus = "queued"
	StatusProcessing ReportStatus = "processing"
	StatusCompleted  ReportStatus = "completed"
	StatusFailed     ReportStatus = "failed"
)

type Report struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID          uuid.UUID    `gorm:"type:uuid;not null;index" json:"session_id"`
	Status             ReportStatus `gorm:"not null;default:'queued'" json:"status"`
	OverallScore       *float64     `gorm:"type:decimal(4,2)" json:"overall_score,omitempty"`
	TechnicalScore     *float64     `gorm:"type:decimal(4,2)" json:"technical_score,omitempty"`
	CommunicationScore *float64     `gorm:"type:decimal(4,2)" json:"communication_score,omitempty"`
	Recommendation     *string      `gorm:"type:text" json:"recommendation,omitempty"`
	Summary            *string      `gorm:"type:text" json:"summary,omitempty"`
	Strengths          *string      `gorm:"type:text" json:"strengths,omitempty"`
	Improvements       *string      `gorm:"type:text" json:"improvements,omitempty"`
	ErrorMessage       *string      `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt          time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time    `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (Report) TableName() string {
	return "reports"
}
