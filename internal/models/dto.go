package models

// GeneratedQuestion is a question as produced by the generator, before any
// audio enrichment.
type GeneratedQuestion struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Type       string `json:"type"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

// QuestionPayload is the wire/artifact representation of a question,
// including its synthesized audio when available.
type QuestionPayload struct {
	ID         int     `json:"id"`
	Question   string  `json:"question"`
	Type       string  `json:"type"`
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Audio      *string `json:"audio,omitempty"`
	HasAudio   bool    `json:"has_audio"`
	VoiceID    string  `json:"voice_id,omitempty"`
}

type AnswerEvaluation struct {
	Score             float64  `json:"score"`
	TechnicalAccuracy float64  `json:"technical_accuracy"`
	Communication     float64  `json:"communication"`
	Relevance         float64  `json:"relevance"`
	Feedback          string   `json:"feedback"`
	Strengths         []string `json:"strengths"`
	Improvements      []string `json:"improvements"`
}

type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

type UploadResponse struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id"`
	FilePaths map[string]string `json:"file_paths"`
}

type GenerateQuestionsRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type QuestionSummary struct {
	TotalQuestions int `json:"total_questions"`
	Technical      int `json:"technical"`
	Behavioral     int `json:"behavioral"`
	General        int `json:"general"`
}

type QuestionsResponse struct {
	Questions []QuestionPayload `json:"questions"`
	SessionID string            `json:"session_id"`
	Summary   QuestionSummary   `json:"summary"`
	Message   string            `json:"message"`
	AIPowered bool              `json:"ai_powered"`
}

type QuestionAudioResponse struct {
	QuestionID int     `json:"question_id"`
	Question   string  `json:"question"`
	Audio      *string `json:"audio,omitempty"`
	HasAudio   bool    `json:"has_audio"`
	Type       string  `json:"type"`
}

type VoicesResponse struct {
	Voices       []Voice `json:"voices"`
	CurrentVoice string  `json:"current_voice"`
	Message      string  `json:"message"`
}

type ReplayRequest struct {
	QuestionText string `json:"question_text" validate:"required"`
	VoiceID      string `json:"voice_id"`
	UseSSML      bool   `json:"use_ssml"`
}

type ReplayResponse struct {
	QuestionText string  `json:"question_text"`
	VoiceID      string  `json:"voice_id"`
	Audio        *string `json:"audio"`
	HasAudio     bool    `json:"has_audio"`
	UseSSML      bool    `json:"use_ssml"`
}

type AnalyzeAnswerRequest struct {
	SessionID  string `json:"session_id" validate:"required,uuid"`
	QuestionID int    `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

type TranscriptionResponse struct {
	Transcription string  `json:"transcription"`
	Confidence    float64 `json:"confidence"`
	Status        string  `json:"status"`
}

type InterviewSummaryResponse struct {
	SessionID         string             `json:"session_id"`
	TotalQuestions    int                `json:"total_questions"`
	AnsweredQuestions int                `json:"answered_questions"`
	QuestionsByType   map[string]int     `json:"questions_by_type"`
	AverageScore      float64            `json:"average_score"`
	Questions         []QuestionPayload  `json:"questions"`
	Analyses          []AnalysisArtifact `json:"analyses"`
}

type SpeechStartRequest struct {
	SessionID       string `json:"session_id" validate:"required"`
	DifficultyLevel string `json:"difficulty_level"`
}

type SpeechStartResponse struct {
	SessionID       string           `json:"session_id"`
	FirstQuestion   *QuestionPayload `json:"first_question"`
	AudioFile       *string          `json:"audio_file"`
	TotalQuestions  int              `json:"total_questions"`
	DifficultyLevel string           `json:"difficulty_level"`
	Instructions    string           `json:"instructions"`
}

type SpeechAnswerRequest struct {
	SessionID    string  `json:"session_id" validate:"required"`
	QuestionID   int     `json:"question_id" validate:"required"`
	Answer       string  `json:"answer" validate:"required"`
	ResponseTime float64 `json:"response_time"`
}

type SessionProgress struct {
	Completed    int     `json:"completed"`
	Total        int     `json:"total"`
	AverageScore float64 `json:"average_score"`
}

type AdaptiveFeedback struct {
	NextDifficulty   string `json:"next_difficulty"`
	PerformanceTrend string `json:"performance_trend"`
}

type SpeechAnswerResponse struct {
	Analysis        AnswerEvaluation `json:"analysis"`
	NextQuestion    *QuestionPayload `json:"next_question"`
	NextAudio       *string          `json:"next_audio"`
	IsComplete      bool             `json:"is_complete"`
	SessionProgress SessionProgress  `json:"session_progress"`
	Adaptive        AdaptiveFeedback `json:"adaptive_feedback"`
}

type ReportRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type ReportResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ReportResultResponse struct {
	ID           string      `json:"id"`
	Status       string      `json:"status"`
	Result       *ReportData `json:"result,omitempty"`
	ErrorMessage *string     `json:"error_message,omitempty"`
}

type ReportData struct {
	OverallScore       float64 `json:"overall_score"`
	TechnicalScore     float64 `json:"technical_score"`
	CommunicationScore float64 `json:"communication_score"`
	Recommendation     string  `json:"recommendation"`
	Summary            string  `json:"summary"`
	Strengths          string  `json:"strengths"`
	Improvements       string  `json:"improvements"`
}
