package models

import (
	"time"

	"github.com/google/uuid"
)

type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	Number     int       `gorm:"not null" json:"number"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Type       string    `gorm:"type:text" json:"type"`
	Category   string    `gorm:"type:text" json:"category"`
	Difficulty string    `gorm:"type:text" json:"difficulty"`
	VoiceID    *string   `gorm:"type:text" json:"voice_id,omitempty"`
	HasAudio   bool      `gorm:"default:false" json:"has_audio"`
	AudioKey   *string   `gorm:"type:text" json:"audio_key,omitempty"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relations
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}
