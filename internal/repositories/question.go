package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-interviewer/internal/models"
)

type QuestionRepository interface {
	CreateBatch(questions []models.Question) error
	FindBySession(sessionID uuid.UUID) ([]models.Question, error)
	FindBySessionAndNumber(sessionID uuid.UUID, number int) (*models.Question, error)
	UpdateAudio(id uuid.UUID, voiceID string, audioKey string) error
	DeleteBySession(sessionID uuid.UUID) error
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) CreateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	if err := r.db.Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}

	return nil
}

func (r *questionRepository) FindBySession(sessionID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("number ASC").
		Find(&questions).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}

	return questions, nil
}

func (r *questionRepository) FindBySessionAndNumber(sessionID uuid.UUID, number int) (*models.Question, error) {
	var question models.Question
	err := r.db.
		Where("session_id = ? AND number = ?", sessionID, number).
		First(&question).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("question not found")
		}
		return nil, fmt.Errorf("failed to find question: %w", err)
	}

	return &question, nil
}

func (r *questionRepository) UpdateAudio(id uuid.UUID, voiceID string, audioKey string) error {
	result := r.db.Model(&models.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"voice_id":   voiceID,
			"has_audio":  true,
			"audio_key":  audioKey,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update question audio: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("question not found")
	}

	return nil
}

func (r *questionRepository) DeleteBySession(sessionID uuid.UUID) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&models.Question{}).Error; err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}

	return nil
}
