package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-interviewer/internal/models"
)

type AnalysisRepository interface {
	Create(analysis *models.AnswerAnalysis) error
	FindBySession(sessionID uuid.UUID) ([]models.AnswerAnalysis, error)
	FindBySessionAndQuestion(sessionID uuid.UUID, number int) (*models.AnswerAnalysis, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(analysis *models.AnswerAnalysis) error {
	if err := r.db.Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	return nil
}

func (r *analysisRepository) FindBySession(sessionID uuid.UUID) ([]models.AnswerAnalysis, error) {
	var analyses []models.AnswerAnalysis
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}

	return analyses, nil
}

// FindBySessionAndQuestion returns the most recent analysis for a question;
// re-answering a question produces a new row.
func (r *analysisRepository) FindBySessionAndQuestion(sessionID uuid.UUID, number int) (*models.AnswerAnalysis, error) {
	var analysis models.AnswerAnalysis
	err := r.db.
		Where("session_id = ? AND question_number = ?", sessionID, number).
		Order("created_at DESC").
		First(&analysis).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("analysis not found")
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}

	return &analysis, nil
}
