package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeEmbedder struct {
	embedding []float32
	err       error
	lastText  string
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.embedding, nil
}

// fakeBank records searches and returns canned matches.
type fakeBank struct {
	matches      []BankMatch
	rubricHits   []BankMatch
	searchErr    error
	lastType     string
	lastLimit    int
	searchCalls  int
	rubricCalls  int
	upsertedIDs  []string
	upsertedKind []string
}

func (f *fakeBank) InitCollection() error { return nil }

func (f *fakeBank) UpsertQuestion(ctx context.Context, questionID string, question BankQuestion, embedding []float32) error {
	f.upsertedIDs = append(f.upsertedIDs, questionID)
	f.upsertedKind = append(f.upsertedKind, question.Kind)
	return nil
}

func (f *fakeBank) SearchSimilar(ctx context.Context, queryEmbedding []float32, questionType string, limit int) ([]BankMatch, error) {
	f.searchCalls++
	f.lastType = questionType
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.matches, nil
}

func (f *fakeBank) SearchRubric(ctx context.Context, queryEmbedding []float32, limit int) ([]BankMatch, error) {
	f.rubricCalls++
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.rubricHits, nil
}

func (f *fakeBank) DeleteQuestion(ctx context.Context, questionID string) error { return nil }

func TestGenerate_FallbackWithoutGenerator(t *testing.T) {
	qg := NewQuestionGenerator(nil, nil, nil, 3)

	questions, aiPowered := qg.Generate(context.Background(), "An accountant with spreadsheet experience.", "")

	if aiPowered {
		t.Error("expected aiPowered=false without a generator")
	}
	// Base set plus the two closing behavioral questions; no tech keywords hit.
	if len(questions) != 6 {
		t.Fatalf("expected 6 fallback questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.ID != i+1 {
			t.Errorf("expected sequential IDs, question %d has ID %d", i, q.ID)
		}
		if q.Question == "" {
			t.Errorf("question %d has empty text", i)
		}
	}
}

func TestGenerate_FallbackKeywordGating(t *testing.T) {
	qg := NewQuestionGenerator(nil, nil, nil, 3)

	resume := "Software engineer working with Python on AWS."
	questions, _ := qg.Generate(context.Background(), resume, "")

	var hasDebugging, hasCloud bool
	for _, q := range questions {
		if q.Category == "debugging" {
			hasDebugging = true
		}
		if q.Category == "cloud" {
			hasCloud = true
		}
	}
	if !hasDebugging {
		t.Error("expected debugging question for a software resume")
	}
	if !hasCloud {
		t.Error("expected cloud question for an AWS resume")
	}
}

func TestGenerate_FallbackCapsAtMax(t *testing.T) {
	qg := NewQuestionGenerator(nil, nil, nil, 3)

	// Hits every keyword group.
	resume := "Software engineer: Python, AWS, machine learning, React frontend work."
	questions, _ := qg.Generate(context.Background(), resume, "")

	if len(questions) != maxQuestions {
		t.Errorf("expected cap of %d questions, got %d", maxQuestions, len(questions))
	}
	for i, q := range questions {
		if q.ID != i+1 {
			t.Errorf("expected IDs renumbered after capping, question %d has ID %d", i, q.ID)
		}
	}
}

func TestGenerate_AIPath(t *testing.T) {
	generator := &fakeGenerator{
		response: "```json\n[" +
			`{"question": "Explain goroutines.", "type": "Technical", "category": "concurrency", "difficulty": "medium"},` +
			`{"question": "Describe a conflict.", "type": "", "category": "", "difficulty": ""}` +
			"]\n```",
	}
	qg := NewQuestionGenerator(generator, nil, nil, 3)

	questions, aiPowered := qg.Generate(context.Background(), "Go developer", "")

	if !aiPowered {
		t.Fatal("expected aiPowered=true")
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	if questions[0].Type != "technical" {
		t.Errorf("expected type lowercased to 'technical', got %q", questions[0].Type)
	}
	if questions[1].Type != "general" {
		t.Errorf("expected empty type to default to 'general', got %q", questions[1].Type)
	}
	if questions[1].Category != "general" {
		t.Errorf("expected empty category to default to 'general', got %q", questions[1].Category)
	}
	if questions[1].Difficulty != "medium" {
		t.Errorf("expected empty difficulty to default to 'medium', got %q", questions[1].Difficulty)
	}
	if questions[0].ID != 1 || questions[1].ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d", questions[0].ID, questions[1].ID)
	}
}

func TestGenerate_AISkipsBlanksAndCaps(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(`{"question": "   ", "type": "technical"},`)
	for i := 0; i < 10; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"question": "Question number ` + string(rune('A'+i)) + `?", "type": "general"}`)
	}
	sb.WriteString("]")

	generator := &fakeGenerator{response: sb.String()}
	qg := NewQuestionGenerator(generator, nil, nil, 3)

	questions, aiPowered := qg.Generate(context.Background(), "resume", "")

	if !aiPowered {
		t.Fatal("expected AI path")
	}
	if len(questions) != maxQuestions {
		t.Errorf("expected cap of %d questions, got %d", maxQuestions, len(questions))
	}
	for _, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			t.Error("blank question survived filtering")
		}
	}
}

func TestGenerate_AIEmptyResponseFallsBack(t *testing.T) {
	generator := &fakeGenerator{response: "[]"}
	qg := NewQuestionGenerator(generator, nil, nil, 3)

	questions, aiPowered := qg.Generate(context.Background(), "resume text", "")

	if aiPowered {
		t.Error("expected fallback when the model returns no questions")
	}
	if len(questions) == 0 {
		t.Error("expected fallback questions")
	}
}

func TestGenerate_AIErrorFallsBack(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("rate limited")}
	qg := NewQuestionGenerator(generator, nil, nil, 3)

	questions, aiPowered := qg.Generate(context.Background(), "resume text", "")

	if aiPowered {
		t.Error("expected fallback on generator error")
	}
	if len(questions) == 0 {
		t.Error("expected fallback questions")
	}
}

func TestGenerate_BankContextFeedsPrompt(t *testing.T) {
	generator := &fakeGenerator{response: `[{"question": "Generated?", "type": "general"}]`}
	embedder := &fakeEmbedder{embedding: []float32{0.1, 0.2}}
	bank := &fakeBank{matches: []BankMatch{
		{BankQuestion: BankQuestion{Text: "How would you shard a database?", Type: "technical", Category: "system_design", Difficulty: "hard"}},
	}}

	qg := NewQuestionGenerator(generator, embedder, bank, 3)
	qg.Generate(context.Background(), "resume", "jd")

	if bank.searchCalls != 1 {
		t.Fatalf("expected 1 bank search, got %d", bank.searchCalls)
	}
	if bank.lastLimit != 5 {
		t.Errorf("expected search limit 5, got %d", bank.lastLimit)
	}
	if len(generator.prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(generator.prompts))
	}
	if !strings.Contains(generator.prompts[0], "How would you shard a database?") {
		t.Error("expected bank match in the generation prompt")
	}
}

func TestGenerate_BankFailureDegradesQuietly(t *testing.T) {
	generator := &fakeGenerator{response: `[{"question": "Generated?", "type": "general"}]`}
	embedder := &fakeEmbedder{embedding: []float32{0.1}}
	bank := &fakeBank{searchErr: errors.New("qdrant down")}

	qg := NewQuestionGenerator(generator, embedder, bank, 3)
	questions, aiPowered := qg.Generate(context.Background(), "resume", "")

	if !aiPowered {
		t.Error("expected AI generation to succeed despite bank failure")
	}
	if len(questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(questions))
	}
	if strings.Contains(generator.prompts[0], "QUESTION BANK") {
		t.Error("expected no bank section after search failure")
	}
}

func TestAIAvailable(t *testing.T) {
	if NewQuestionGenerator(nil, nil, nil, 3).AIAvailable() {
		t.Error("expected AIAvailable=false without a generator")
	}
	if !NewQuestionGenerator(&fakeGenerator{}, nil, nil, 3).AIAvailable() {
		t.Error("expected AIAvailable=true with a generator")
	}
}
