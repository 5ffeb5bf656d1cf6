package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Entry kinds stored in the bank collection. Questions ground the generation
// prompt, rubric chunks ground the report summary.
const (
	BankKindQuestion = "question"
	BankKindRubric   = "rubric"
)

// QuestionBank is the curated-question vector store. Matches feed the
// generation prompt as grounding examples; an unreachable bank is never
// fatal, generation just runs without them.
type QuestionBank interface {
	InitCollection() error
	UpsertQuestion(ctx context.Context, questionID string, question BankQuestion, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, questionType string, limit int) ([]BankMatch, error)
	SearchRubric(ctx context.Context, queryEmbedding []float32, limit int) ([]BankMatch, error)
	DeleteQuestion(ctx context.Context, questionID string) error
}

type BankQuestion struct {
	Kind       string // question or rubric, defaults to question
	Text       string
	Type       string
	Category   string
	Difficulty string
}

type BankMatch struct {
	ID    string
	Score float32
	BankQuestion
}

type questionBank struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQuestionBank(urlStr, apiKey, collectionName string) (QuestionBank, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &questionBank{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements QuestionBank.
func (q *questionBank) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Question bank collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertQuestion implements QuestionBank.
func (q *questionBank) UpsertQuestion(ctx context.Context, questionID string, question BankQuestion, embedding []float32) error {
	pointID := uuid.New()

	kind := question.Kind
	if kind == "" {
		kind = BankKindQuestion
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"question_id": questionID,
			"kind":        kind,
			"text":        question.Text,
			"qtype":       question.Type,
			"category":    question.Category,
			"difficulty":  question.Difficulty,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements QuestionBank. Only question entries match, so
// rubric chunks never show up as example questions.
func (q *questionBank) SearchSimilar(ctx context.Context, queryEmbedding []float32, questionType string, limit int) ([]BankMatch, error) {
	must := []*qdrant.Condition{
		qdrant.NewMatch("kind", BankKindQuestion),
	}
	if questionType != "" {
		must = append(must, qdrant.NewMatch("qtype", questionType))
	}

	return q.search(ctx, queryEmbedding, &qdrant.Filter{Must: must}, limit)
}

// SearchRubric implements QuestionBank.
func (q *questionBank) SearchRubric(ctx context.Context, queryEmbedding []float32, limit int) ([]BankMatch, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("kind", BankKindRubric),
		},
	}

	return q.search(ctx, queryEmbedding, filter, limit)
}

func (q *questionBank) search(ctx context.Context, queryEmbedding []float32, filter *qdrant.Filter, limit int) ([]BankMatch, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []BankMatch
	for _, point := range searchResult {
		payload := point.Payload

		result := BankMatch{
			Score: point.Score,
		}
		result.ID = payloadString(payload, "question_id")
		result.Kind = payloadString(payload, "kind")
		result.Text = payloadString(payload, "text")
		result.Type = payloadString(payload, "qtype")
		result.Category = payloadString(payload, "category")
		result.Difficulty = payloadString(payload, "difficulty")

		results = append(results, result)
	}

	return results, nil
}

// DeleteQuestion implements QuestionBank.
func (q *questionBank) DeleteQuestion(ctx context.Context, questionID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("question_id", questionID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if val, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return val.StringValue
		}
	}
	return ""
}
