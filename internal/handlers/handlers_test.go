package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-interviewer/internal/events"
	"ai-interviewer/internal/models"
	"ai-interviewer/internal/repositories"
	"ai-interviewer/internal/services"
	"ai-interviewer/internal/session"
)

// Shared fakes for handler tests. Kafka always runs in log-only mode here.

func testPublisher() *events.Publisher {
	return events.New(events.Config{Enabled: false})
}

// memStore is an in-memory ArtifactStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (m *memStore) SaveJSON(ctx context.Context, sessionID, kind string, v any) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	key := services.JSONArtifactKey(sessionID, kind)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *memStore) LoadJSON(ctx context.Context, sessionID, kind string, dest any) error {
	m.mu.Lock()
	data, ok := m.objects[services.JSONArtifactKey(sessionID, kind)]
	m.mu.Unlock()
	if !ok {
		return services.ErrArtifactNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *memStore) SaveRaw(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.mu.Lock()
	m.objects[key] = append([]byte(nil), data...)
	m.mu.Unlock()
	return key, nil
}

func (m *memStore) LoadRaw(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	data, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return nil, services.ErrArtifactNotFound
	}
	return data, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *memStore) seedJSON(t *testing.T, sessionID, kind string, v any) {
	t.Helper()
	if _, err := m.SaveJSON(context.Background(), sessionID, kind, v); err != nil {
		t.Fatalf("failed to seed %s artifact: %v", kind, err)
	}
}

type stubSessionRepo struct {
	sessions  map[uuid.UUID]*models.InterviewSession
	counts    map[uuid.UUID]int
	createErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{
		sessions: make(map[uuid.UUID]*models.InterviewSession),
		counts:   make(map[uuid.UUID]int),
	}
}

func (s *stubSessionRepo) Create(sess *models.InterviewSession) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *stubSessionRepo) FindByID(id uuid.UUID) (*models.InterviewSession, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

func (s *stubSessionRepo) UpdateStatus(id uuid.UUID, status models.SessionStatus) error {
	if sess, ok := s.sessions[id]; ok {
		sess.Status = status
	}
	return nil
}

func (s *stubSessionRepo) UpdateQuestionCount(id uuid.UUID, count int) error {
	s.counts[id] = count
	return nil
}

type stubQuestionRepo struct {
	rows    map[uuid.UUID][]models.Question
	deletes []uuid.UUID
}

func newStubQuestionRepo() *stubQuestionRepo {
	return &stubQuestionRepo{rows: make(map[uuid.UUID][]models.Question)}
}

func (s *stubQuestionRepo) CreateBatch(questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	sid := questions[0].SessionID
	s.rows[sid] = append(s.rows[sid], questions...)
	return nil
}

func (s *stubQuestionRepo) FindBySession(sessionID uuid.UUID) ([]models.Question, error) {
	return s.rows[sessionID], nil
}

func (s *stubQuestionRepo) FindBySessionAndNumber(sessionID uuid.UUID, number int) (*models.Question, error) {
	for i := range s.rows[sessionID] {
		if s.rows[sessionID][i].Number == number {
			return &s.rows[sessionID][i], nil
		}
	}
	return nil, errors.New("question not found")
}

func (s *stubQuestionRepo) UpdateAudio(id uuid.UUID, voiceID string, audioKey string) error {
	return nil
}

func (s *stubQuestionRepo) DeleteBySession(sessionID uuid.UUID) error {
	s.deletes = append(s.deletes, sessionID)
	delete(s.rows, sessionID)
	return nil
}

type stubAnalysisRepo struct {
	rows      []*models.AnswerAnalysis
	createErr error
}

func (s *stubAnalysisRepo) Create(analysis *models.AnswerAnalysis) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.rows = append(s.rows, analysis)
	return nil
}

func (s *stubAnalysisRepo) FindBySession(sessionID uuid.UUID) ([]models.AnswerAnalysis, error) {
	var out []models.AnswerAnalysis
	for _, row := range s.rows {
		if row.SessionID == sessionID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubAnalysisRepo) FindBySessionAndQuestion(sessionID uuid.UUID, number int) (*models.AnswerAnalysis, error) {
	for _, row := range s.rows {
		if row.SessionID == sessionID && row.QuestionNumber == number {
			return row, nil
		}
	}
	return nil, errors.New("analysis not found")
}

type stubReportRepo struct {
	reports   map[uuid.UUID]*models.Report
	createErr error
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: make(map[uuid.UUID]*models.Report)}
}

func (s *stubReportRepo) Create(report *models.Report) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.reports[report.ID] = report
	return nil
}

func (s *stubReportRepo) FindByID(id uuid.UUID) (*models.Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return nil, errors.New("report not found")
	}
	return report, nil
}

func (s *stubReportRepo) UpdateStatus(id uuid.UUID, status models.ReportStatus) error { return nil }

func (s *stubReportRepo) UpdateResult(id uuid.UUID, result *repositories.ReportUpdateData) error {
	return nil
}

func (s *stubReportRepo) UpdateError(id uuid.UUID, errorMsg string) error { return nil }

func (s *stubReportRepo) FindPendingJobs(limit int) ([]models.Report, error) { return nil, nil }

type fakeExtractor struct {
	result   *services.ExtractionResult
	err      error
	lastName string
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, filename string) (*services.ExtractionResult, error) {
	f.lastName = filename
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExtractor) SupportedExtensions() []string { return []string{".pdf", ".docx"} }

type fakeQuestionGen struct {
	questions  []models.GeneratedQuestion
	aiPowered  bool
	lastResume string
	lastJD     string
}

func (f *fakeQuestionGen) Generate(ctx context.Context, resumeText, jdText string) ([]models.GeneratedQuestion, bool) {
	f.lastResume = resumeText
	f.lastJD = jdText
	return f.questions, f.aiPowered
}

func (f *fakeQuestionGen) AIAvailable() bool { return f.aiPowered }

type fakeTTS struct {
	available bool
	audio     string
	voice     string
	voices    []models.Voice
	synthErr  error
	audioErr  error
}

func (f *fakeTTS) Available() bool { return f.available }

func (f *fakeTTS) SynthesizeBase64(ctx context.Context, text, voiceID string, useSSML bool) (string, error) {
	if f.synthErr != nil {
		return "", f.synthErr
	}
	return f.audio, nil
}

func (f *fakeTTS) QuestionAudio(ctx context.Context, sessionID string, questionID int, text, voiceID string) (string, string, error) {
	if f.audioErr != nil {
		return "", "", f.audioErr
	}
	return fmt.Sprintf("question_%d_%s.mp3", questionID, sessionID), f.audio, nil
}

func (f *fakeTTS) Voices(ctx context.Context) ([]models.Voice, error) { return f.voices, nil }

func (f *fakeTTS) InterviewVoice(ctx context.Context) string { return f.voice }

type fakeAnalyzer struct {
	evaluation   models.AnswerEvaluation
	aiPowered    bool
	lastQuestion string
	lastAnswer   string
	lastResume   string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, questionText, questionType, answer, resumeText string) (models.AnswerEvaluation, bool) {
	f.lastQuestion = questionText
	f.lastAnswer = answer
	f.lastResume = resumeText
	return f.evaluation, f.aiPowered
}

type fakeTranscriber struct {
	available bool
	name      string
	result    models.TranscriptionResponse
	calls     int
}

func (f *fakeTranscriber) Available() bool { return f.available }

func (f *fakeTranscriber) ProviderName() string { return f.name }

func (f *fakeTranscriber) TranscribeUpload(ctx context.Context, sessionID, filename string, audio []byte) models.TranscriptionResponse {
	f.calls++
	return f.result
}

type fakeWorker struct {
	enqueued []uuid.UUID
}

func (f *fakeWorker) Start(ctx context.Context) {}

func (f *fakeWorker) Stop() {}

func (f *fakeWorker) EnqueueJob(reportID uuid.UUID) {
	f.enqueued = append(f.enqueued, reportID)
}

type fakeSessionStore struct {
	mu      sync.Mutex
	states  map[string]*session.State
	saveErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{states: make(map[string]*session.State)}
}

func (f *fakeSessionStore) Save(ctx context.Context, state *session.State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	f.states[state.SessionID] = state
	f.mu.Unlock()
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, sessionID string) (*session.State, error) {
	f.mu.Lock()
	state, ok := f.states[sessionID]
	f.mu.Unlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	return state, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	delete(f.states, sessionID)
	f.mu.Unlock()
	return nil
}

func (f *fakeSessionStore) Close() error { return nil }

// Request helpers.

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return req
}

type formFile struct {
	field   string
	name    string
	content []byte
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", f.field, err)
		}
		if _, err := part.Write(f.content); err != nil {
			t.Fatalf("failed to write form file %s: %v", f.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, mw.FormDataContentType())
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}
