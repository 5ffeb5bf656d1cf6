package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
)

type ReportHandler struct {
	reportRepo  repositories.ReportRepository
	sessionRepo repositories.SessionRepository
	worker      services.Worker
}

func NewReportHandler(
	reportRepo repositories.ReportRepository,
	sessionRepo repositories.SessionRepository,
	worker services.Worker,
) *ReportHandler {
	return &ReportHandler{
		reportRepo:  reportRepo,
		sessionRepo: sessionRepo,
		worker:      worker,
	}
}

// HandleCreateReport handles POST /reports
func (h *ReportHandler) HandleCreateReport(c *fiber.Ctx) error {
	var req models.ReportRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session_id format",
		})
	}

	if _, err := h.sessionRepo.FindByID(sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	report := &models.Report{
		ID:        uuid.New(),
		SessionID: sessionID,
		Status:    models.StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.reportRepo.Create(report); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create report job",
		})
	}

	// Enqueue job to worker
	h.worker.EnqueueJob(report.ID)

	// Return job ID immediately
	return c.Status(fiber.StatusAccepted).JSON(models.ReportResponse{
		ID:     report.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetReport handles GET /reports/:id
func (h *ReportHandler) HandleGetReport(c *fiber.Ctx) error {
	idParam := c.Params("id")
	reportID, err := uuid.Parse(idParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid report ID format",
		})
	}

	report, err := h.reportRepo.FindByID(reportID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Report not found",
		})
	}

	// Build response based on status
	response := models.ReportResultResponse{
		ID:     report.ID.String(),
		Status: string(report.Status),
	}

	if report.Status == models.StatusCompleted {
		response.Result = buildReportData(report)
	}

	if report.Status == models.StatusFailed && report.ErrorMessage != nil {
		response.ErrorMessage = report.ErrorMessage
	}

	return c.JSON(response)
}

func buildReportData(report *models.Report) *models.ReportData {
	data := &models.ReportData{}
	if report.OverallScore != nil {
		data.OverallScore = *report.OverallScore
	}
	if report.TechnicalScore != nil {
		data.TechnicalScore = *report.TechnicalScore
	}
	if report.CommunicationScore != nil {
		data.CommunicationScore = *report.CommunicationScore
	}
	if report.Recommendation != nil {
		data.Recommendation = *report.Recommendation
	}
	if report.Summary != nil {
		data.Summary = *report.Summary
	}
	if report.Strengths != nil {
		data.Strengths = *report.Strengths
	}
	if report.Improvements != nil {
		data.Improvements = *report.Improvements
	}
	return data
}
