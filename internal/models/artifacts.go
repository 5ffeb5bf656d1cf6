package models

import "time"

// Artifact payloads persisted in the artifact store under
// sessions/{session_id}/{kind}.json.

type ExtractionMetadata struct {
	Filename    string    `json:"filename"`
	Pages       int       `json:"pages"`
	Method      string    `json:"extraction_method"`
	ExtractedAt time.Time `json:"extracted_at"`
}

type ResumeArtifact struct {
	Text     string             `json:"text"`
	Sections map[string]string  `json:"sections"`
	Metadata ExtractionMetadata `json:"metadata"`
}

type JDArtifact struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Filename string `json:"filename,omitempty"`
}

type QuestionsArtifact struct {
	Questions   []QuestionPayload `json:"questions"`
	AIPowered   bool              `json:"ai_powered"`
	GeneratedAt time.Time         `json:"generated_at"`
}

type AnalysisArtifact struct {
	QuestionID int              `json:"question_id"`
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Analysis   AnswerEvaluation `json:"analysis"`
	AnalyzedAt time.Time        `json:"analyzed_at"`
}
