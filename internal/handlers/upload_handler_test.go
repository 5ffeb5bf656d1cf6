package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/models"
	"ai-interviewer/internal/services"
)

func newUploadTestApp(extractor services.TextExtractor, store services.ArtifactStore, repo *stubSessionRepo, maxSize int64) *fiber.App {
	app := fiber.New()
	h := NewUploadHandler(repo, extractor, store, testPublisher(), maxSize)
	app.Post("/upload", h.HandleUpload)
	return app
}

func resumeExtractor(text string) *fakeExtractor {
	return &fakeExtractor{result: &services.ExtractionResult{Text: text, PageCount: 1, Method: "pdf_raw"}}
}

func TestHandleUpload_MissingResume(t *testing.T) {
	app := newUploadTestApp(resumeExtractor("text"), newMemStore(), newStubSessionRepo(), 1024)

	resp := doRequest(t, app, multipartRequest(t, "/upload", nil, nil))

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["error"] != "Resume required" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestHandleUpload_UnsupportedFormat(t *testing.T) {
	app := newUploadTestApp(resumeExtractor("text"), newMemStore(), newStubSessionRepo(), 1024)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.txt", content: []byte("plain text")},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["error"] != "PDF or DOCX only" {
		t.Errorf("unexpected error: %v", body["error"])
	}
}

func TestHandleUpload_FileTooLarge(t *testing.T) {
	app := newUploadTestApp(resumeExtractor("text"), newMemStore(), newStubSessionRepo(), 10)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.pdf", content: []byte(strings.Repeat("x", 100))},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	errMsg, _ := decodeBody(t, resp)["error"].(string)
	if !strings.Contains(errMsg, "too large") {
		t.Errorf("unexpected error: %q", errMsg)
	}
}

func TestHandleUpload_ExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("unreadable scan")}
	app := newUploadTestApp(extractor, newMemStore(), newStubSessionRepo(), 1024)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.pdf", content: []byte("%PDF-1.4")},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestHandleUpload_Success(t *testing.T) {
	store := newMemStore()
	repo := newStubSessionRepo()
	app := newUploadTestApp(resumeExtractor("SKILLS\nGo and Postgres"), store, repo, 1024)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.pdf", content: []byte("%PDF-1.4 content")},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Files processed successfully" {
		t.Errorf("unexpected message: %v", body["message"])
	}

	sessionID, _ := body["session_id"].(string)
	sid, err := uuid.Parse(sessionID)
	if err != nil {
		t.Fatalf("session_id is not a UUID: %v", body["session_id"])
	}

	filePaths, _ := body["file_paths"].(map[string]any)
	if filePaths["extracted_resume_text"] != "sessions/"+sessionID+"/resume.json" {
		t.Errorf("unexpected resume key: %v", filePaths["extracted_resume_text"])
	}
	if _, ok := filePaths["extracted_jd_text"]; ok {
		t.Error("expected no jd key without a job description")
	}

	sess, err := repo.FindByID(sid)
	if err != nil {
		t.Fatalf("session row not created: %v", err)
	}
	if sess.Status != models.SessionStatusUploaded {
		t.Errorf("expected uploaded status, got %s", sess.Status)
	}
	if sess.ResumeFilename != "resume.pdf" {
		t.Errorf("unexpected resume filename: %s", sess.ResumeFilename)
	}
	if sess.DifficultyLevel != "baseline" {
		t.Errorf("unexpected difficulty: %s", sess.DifficultyLevel)
	}

	// The original document is kept for future re-extraction.
	original, err := store.LoadRaw(context.Background(), "sessions/"+sessionID+"/uploads/resume.pdf")
	if err != nil {
		t.Fatalf("original upload not stored: %v", err)
	}
	if string(original) != "%PDF-1.4 content" {
		t.Error("stored original does not match upload")
	}

	var resume models.ResumeArtifact
	if err := store.LoadJSON(context.Background(), sessionID, "resume", &resume); err != nil {
		t.Fatalf("resume artifact not stored: %v", err)
	}
	if resume.Text != "SKILLS\nGo and Postgres" {
		t.Errorf("unexpected artifact text: %q", resume.Text)
	}
	if resume.Sections["skills"] != "Go and Postgres" {
		t.Errorf("expected parsed skills section, got %q", resume.Sections["skills"])
	}
	if resume.Metadata.Method != "pdf_raw" {
		t.Errorf("unexpected extraction method: %s", resume.Metadata.Method)
	}
}

func TestHandleUpload_WithPastedJD(t *testing.T) {
	store := newMemStore()
	repo := newStubSessionRepo()
	app := newUploadTestApp(resumeExtractor("resume text"), store, repo, 1024)

	req := multipartRequest(t, "/upload",
		map[string]string{"jdText": "Looking for a Go engineer"},
		[]formFile{{field: "resumeFile", name: "resume.pdf", content: []byte("%PDF")}},
	)
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	sessionID, _ := body["session_id"].(string)
	filePaths, _ := body["file_paths"].(map[string]any)
	if filePaths["extracted_jd_text"] != "sessions/"+sessionID+"/jd.json" {
		t.Errorf("unexpected jd key: %v", filePaths["extracted_jd_text"])
	}

	var jd models.JDArtifact
	if err := store.LoadJSON(context.Background(), sessionID, "jd", &jd); err != nil {
		t.Fatalf("jd artifact not stored: %v", err)
	}
	if jd.Source != "text" || jd.Text != "Looking for a Go engineer" {
		t.Errorf("unexpected jd artifact: %+v", jd)
	}

	sid, _ := uuid.Parse(sessionID)
	sess, _ := repo.FindByID(sid)
	if sess.JDArtifact == nil {
		t.Error("expected jd artifact key on session")
	}
	if sess.JDFilename != nil {
		t.Error("expected no jd filename for pasted text")
	}
}

func TestHandleUpload_WithJDFile(t *testing.T) {
	store := newMemStore()
	repo := newStubSessionRepo()
	app := newUploadTestApp(resumeExtractor("shared extraction"), store, repo, 1024)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.pdf", content: []byte("%PDF")},
		{field: "jdFile", name: "jd.docx", content: []byte("PK")},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	sessionID, _ := body["session_id"].(string)

	var jd models.JDArtifact
	if err := store.LoadJSON(context.Background(), sessionID, "jd", &jd); err != nil {
		t.Fatalf("jd artifact not stored: %v", err)
	}
	if jd.Source != "file" || jd.Filename != "jd.docx" {
		t.Errorf("unexpected jd artifact: %+v", jd)
	}

	sid, _ := uuid.Parse(sessionID)
	sess, _ := repo.FindByID(sid)
	if sess.JDFilename == nil || *sess.JDFilename != "jd.docx" {
		t.Error("expected jd filename on session")
	}
}

func TestHandleUpload_BadJDFormat(t *testing.T) {
	app := newUploadTestApp(resumeExtractor("resume"), newMemStore(), newStubSessionRepo(), 1024)

	req := multipartRequest(t, "/upload", nil, []formFile{
		{field: "resumeFile", name: "resume.pdf", content: []byte("%PDF")},
		{field: "jdFile", name: "jd.txt", content: []byte("plain")},
	})
	resp := doRequest(t, app, req)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	errMsg, _ := decodeBody(t, resp)["error"].(string)
	if !strings.Contains(errMsg, "job description") {
		t.Errorf("unexpected error: %q", errMsg)
	}
}
