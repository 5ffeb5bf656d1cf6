package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/services"
)

// extraQuestionsPath is an optional JSON file with additional questions to
// seed alongside the built-in set. Format: [{"question", "type", "category",
// "difficulty"}, ...].
const extraQuestionsPath = "./reference_docs/extra_questions.json"

func main() {
	log.Println("🚀 Seeding question bank...")

	// Load configuration
	cfg := config.Load()

	if cfg.LLM.GeminiAPIKey == "" {
		log.Fatalln("❌ GEMINI_API_KEY is required to embed the question bank")
	}

	// Initialize services
	embedder, err := services.NewGeminiService(cfg.LLM.GeminiAPIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	bank, err := services.NewQuestionBank(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := bank.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	ctx := context.Background()

	questions := seedQuestions()
	if extras, err := loadExtraQuestions(extraQuestionsPath); err != nil {
		log.Printf("⚠️  Skipping extra questions: %v", err)
	} else if len(extras) > 0 {
		log.Printf("📄 Loaded %d extra questions from %s", len(extras), extraQuestionsPath)
		questions = append(questions, extras...)
	}

	successCount := 0
	failCount := 0

	log.Printf("\n❓ Seeding %d interview questions...", len(questions))
	for i, q := range questions {
		embedding, err := embedder.GenerateEmbedding(ctx, q.Text)
		if err != nil {
			log.Printf("   ❌ Failed to embed question %d: %v", i+1, err)
			failCount++
			continue
		}

		questionID := fmt.Sprintf("question_%d", i+1)
		if err := bank.UpsertQuestion(ctx, questionID, q, embedding); err != nil {
			log.Printf("   ❌ Failed to store question %d: %v", i+1, err)
			failCount++
			continue
		}
		successCount++

		if (i+1)%5 == 0 || i == len(questions)-1 {
			log.Printf("   📊 Progress: %d/%d questions stored", i+1, len(questions))
		}
	}

	log.Println("\n📏 Seeding scoring rubric...")
	chunker := services.NewTextChunker()
	chunks := chunker.ChunkText(scoringRubric, 1000, 200)
	log.Printf("   ✂️  Created %d rubric chunks", len(chunks))

	for i, chunk := range chunks {
		embedding, err := embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			log.Printf("   ❌ Failed to embed rubric chunk %d: %v", i+1, err)
			failCount++
			continue
		}

		entry := services.BankQuestion{
			Kind:     services.BankKindRubric,
			Text:     chunk,
			Category: "scoring",
		}
		if err := bank.UpsertQuestion(ctx, fmt.Sprintf("rubric_chunk_%d", i), entry, embedding); err != nil {
			log.Printf("   ❌ Failed to store rubric chunk %d: %v", i+1, err)
			failCount++
			continue
		}
		successCount++
	}
	log.Printf("   ✅ Rubric chunks stored")

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Seeding Summary:")
	log.Printf("   ✅ Stored: %d entries", successCount)
	log.Printf("   ❌ Failed: %d entries", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Println("⚠️  Some entries failed to seed. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ Question bank seeded successfully!")
}

// seedQuestions is the built-in interview question set. Retrieval surfaces
// the closest of these as few-shot context during generation, so the spread
// across types and difficulties matters more than the count.
func seedQuestions() []services.BankQuestion {
	return []services.BankQuestion{
		{Text: "Tell me about yourself and your professional journey.", Type: "general", Category: "introduction", Difficulty: "easy"},
		{Text: "How do you stay updated with the latest technologies and industry trends?", Type: "general", Category: "learning", Difficulty: "easy"},
		{Text: "What motivates you in your work?", Type: "general", Category: "motivation", Difficulty: "easy"},
		{Text: "Where do you see your career in the next three years?", Type: "general", Category: "career_goals", Difficulty: "easy"},
		{Text: "Describe a challenging project you worked on and how you overcame obstacles.", Type: "behavioral", Category: "problem_solving", Difficulty: "medium"},
		{Text: "Tell me about a time when you had to learn a new technology quickly.", Type: "behavioral", Category: "adaptability", Difficulty: "medium"},
		{Text: "Describe a situation where you disagreed with a teammate and how you resolved it.", Type: "behavioral", Category: "conflict_resolution", Difficulty: "medium"},
		{Text: "Tell me about a time you missed a deadline. What happened and what did you change afterwards?", Type: "behavioral", Category: "accountability", Difficulty: "medium"},
		{Text: "Describe a time you received difficult feedback and how you responded to it.", Type: "behavioral", Category: "growth", Difficulty: "medium"},
		{Text: "Tell me about a project you led. How did you keep the team aligned?", Type: "behavioral", Category: "leadership", Difficulty: "hard"},
		{Text: "Walk me through your approach to debugging a complex software issue.", Type: "technical", Category: "debugging", Difficulty: "medium"},
		{Text: "Explain the difference between concurrency and parallelism with an example.", Type: "technical", Category: "fundamentals", Difficulty: "medium"},
		{Text: "What trade-offs do you weigh when choosing between SQL and NoSQL storage?", Type: "technical", Category: "databases", Difficulty: "medium"},
		{Text: "How do you approach testing a service with many external dependencies?", Type: "technical", Category: "testing", Difficulty: "medium"},
		{Text: "Describe your approach to designing a database schema for a new feature.", Type: "technical", Category: "data_modeling", Difficulty: "medium"},
		{Text: "How would you design a rate limiter for a public API?", Type: "technical", Category: "system_design", Difficulty: "hard"},
		{Text: "Explain how you would diagnose high latency in a production service.", Type: "technical", Category: "operations", Difficulty: "hard"},
		{Text: "You inherit a legacy codebase with no tests. What are your first steps?", Type: "technical", Category: "strategy", Difficulty: "hard"},
		{Text: "A production incident hits in the middle of a release. Walk me through your response.", Type: "behavioral", Category: "incident_response", Difficulty: "hard"},
	}
}

// loadExtraQuestions reads the optional extras file. A missing file is not an
// error, the built-in set is enough on its own.
func loadExtraQuestions(path string) ([]services.BankQuestion, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Question   string `json:"question"`
		Type       string `json:"type"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	questions := make([]services.BankQuestion, 0, len(raw))
	for _, q := range raw {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		questions = append(questions, services.BankQuestion{
			Kind:       services.BankKindQuestion,
			Text:       q.Question,
			Type:       q.Type,
			Category:   q.Category,
			Difficulty: q.Difficulty,
		})
	}
	return questions, nil
}

// scoringRubric is chunked and embedded so report building can ground the
// final summary in consistent standards. The bands match the recommendation
// thresholds used when no LLM is available.
const scoringRubric = `Interview Answer Scoring Rubric

Overall scale. Every answer is scored from 1 to 10. Scores of 9 to 10 mean the answer is complete, specific, and well structured, with concrete examples and measurable outcomes. Scores of 7 to 8 mean the answer covers the question well but misses some depth or specificity. Scores of 5 to 6 mean the answer is partially relevant or too generic to assess real experience. Scores below 5 mean the answer is off-topic, factually wrong, or too short to evaluate.

Technical accuracy. Technical answers are judged on correctness first. An answer that names the right concepts but explains them incorrectly scores lower than a narrower answer that is fully correct. Credit precise terminology, awareness of trade-offs, and honest acknowledgment of the limits of the candidate's experience. Penalize buzzword chains with no supporting detail.

Communication clarity. Strong answers have a visible structure: situation, action, result, or claim followed by evidence. Rambling answers that eventually reach a point score in the middle of the band. Answers that cannot be followed without re-reading score low regardless of technical content.

Relevance. The answer must address the question that was asked. A polished story about a different topic caps at 5. When a candidate reframes the question, credit the reframing only if they answer the original question as well.

Depth and examples. Specific beats general. A single concrete example with numbers, named tools, and a clear personal contribution outscores a list of abstract claims. Probe words like "we" without "I" suggest the candidate's own role is unclear, which lowers the depth score.

Red flags. Blaming teammates without self-reflection, inventing details under light probing, and dismissing the question as unimportant all cap the answer at 4 regardless of other qualities.

Hiring recommendation. Average scores of 8.5 and above map to Strong Hire. Averages from 7.0 to 8.4 map to Hire. Averages from 5.0 to 6.9 map to Maybe, meaning a follow-up round is warranted. Averages below 5.0 map to No Hire. Weigh technical accuracy and communication equally when the averages disagree.`
