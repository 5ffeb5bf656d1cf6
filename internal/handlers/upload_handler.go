package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/observability/metrics"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
)

var uploadContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type UploadHandler struct {
	sessionRepo repositories.SessionRepository
	extractor   services.TextExtractor
	store       services.ArtifactStore
	publisher   *events.Publisher
	maxFileSize int64
}

func NewUploadHandler(
	sessionRepo repositories.SessionRepository,
	extractor services.TextExtractor,
	store services.ArtifactStore,
	publisher *events.Publisher,
	maxFileSize int64,
) *UploadHandler {
	return &UploadHandler{
		sessionRepo: sessionRepo,
		extractor:   extractor,
		store:       store,
		publisher:   publisher,
		maxFileSize: maxFileSize,
	}
}

// HandleUpload handles POST /upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	resumeFile, err := c.FormFile("resumeFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Resume required",
		})
	}

	resumeExt := strings.ToLower(filepath.Ext(resumeFile.Filename))
	if _, ok := uploadContentTypes[resumeExt]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "PDF or DOCX only",
		})
	}

	if resumeFile.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	sessionID := uuid.New()
	ctx := c.UserContext()

	resumeData, err := readUploadedFile(resumeFile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read resume file",
		})
	}

	extraction, err := h.extractor.Extract(ctx, resumeData, resumeFile.Filename)
	metrics.DefaultMetrics.RecordUpload("resume", err, len(resumeData))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to extract text from resume: %v", err),
		})
	}

	// Keep the original document alongside the extraction so a future
	// re-extraction does not need a re-upload.
	originalKey := fmt.Sprintf("sessions/%s/uploads/%s", sessionID, filepath.Base(resumeFile.Filename))
	if _, err := h.store.SaveRaw(ctx, originalKey, resumeData, uploadContentTypes[resumeExt]); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store resume file",
		})
	}

	resumeArtifact := models.ResumeArtifact{
		Text:     extraction.Text,
		Sections: services.ParseResumeSections(extraction.Text),
		Metadata: models.ExtractionMetadata{
			Filename:    resumeFile.Filename,
			Pages:       extraction.PageCount,
			Method:      extraction.Method,
			ExtractedAt: time.Now(),
		},
	}

	resumeKey, err := h.store.SaveJSON(ctx, sessionID.String(), "resume", resumeArtifact)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save extracted resume text",
		})
	}

	filePaths := map[string]string{"extracted_resume_text": resumeKey}

	session := &models.InterviewSession{
		ID:              sessionID,
		Status:          models.SessionStatusUploaded,
		ResumeFilename:  resumeFile.Filename,
		ResumeArtifact:  resumeKey,
		DifficultyLevel: "baseline",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	// Job description is optional: a file takes priority over pasted text.
	jdKey, jdFilename, err := h.processJobDescription(c, sessionID.String())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to process job description: %v", err),
		})
	}
	if jdKey != "" {
		filePaths["extracted_jd_text"] = jdKey
		session.JDArtifact = &jdKey
		if jdFilename != "" {
			session.JDFilename = &jdFilename
		}
	}

	if err := h.sessionRepo.Create(session); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create interview session",
		})
	}

	_ = h.publisher.PublishSession(ctx, events.EventSessionCreated, sessionID.String(), map[string]interface{}{
		"resume_filename": resumeFile.Filename,
		"has_jd":          jdKey != "",
	})

	return c.JSON(models.UploadResponse{
		Message:   "Files processed successfully",
		SessionID: sessionID.String(),
		FilePaths: filePaths,
	})
}

// processJobDescription extracts the JD from an uploaded file or, failing
// that, from the jdText form field. Returns empty keys when neither is given.
func (h *UploadHandler) processJobDescription(c *fiber.Ctx, sessionID string) (key, filename string, err error) {
	ctx := c.UserContext()

	if jdFile, ferr := c.FormFile("jdFile"); ferr == nil && jdFile != nil && jdFile.Filename != "" {
		jdExt := strings.ToLower(filepath.Ext(jdFile.Filename))
		if _, ok := uploadContentTypes[jdExt]; !ok {
			return "", "", fmt.Errorf("unsupported job description format %q", jdExt)
		}
		if jdFile.Size > h.maxFileSize {
			return "", "", fmt.Errorf("job description file too large")
		}

		jdData, rerr := readUploadedFile(jdFile)
		if rerr != nil {
			return "", "", rerr
		}

		extraction, eerr := h.extractor.Extract(ctx, jdData, jdFile.Filename)
		metrics.DefaultMetrics.RecordUpload("jd", eerr, len(jdData))
		if eerr != nil {
			return "", "", eerr
		}

		artifact := models.JDArtifact{
			Text:     extraction.Text,
			Source:   "file",
			Filename: jdFile.Filename,
		}
		key, err = h.store.SaveJSON(ctx, sessionID, "jd", artifact)
		return key, jdFile.Filename, err
	}

	if jdText := strings.TrimSpace(c.FormValue("jdText")); jdText != "" {
		artifact := models.JDArtifact{
			Text:   jdText,
			Source: "text",
		}
		key, err = h.store.SaveJSON(ctx, sessionID, "jd", artifact)
		metrics.DefaultMetrics.RecordUpload("jd", err, len(jdText))
		return key, "", err
	}

	return "", "", nil
}

func readUploadedFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return data, nil
}
