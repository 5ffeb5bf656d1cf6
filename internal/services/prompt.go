package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildQuestionPrompt creates the prompt for interview question generation.
// Resume and job description are truncated so the prompt stays inside the
// model's context window; bankContext carries similar curated questions and
// may be empty.
func (pb *PromptBuilder) BuildQuestionPrompt(resumeText, jdText, bankContext string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert HR interviewer. Generate relevant, insightful interview questions.\n\n")

	if jdText != "" {
		sb.WriteString("Based on the following resume and job description, generate 8 diverse interview questions that would effectively evaluate this candidate.\n\n")
	} else {
		sb.WriteString("Based on the following resume, generate 8 diverse interview questions that would effectively evaluate this candidate.\n\n")
	}

	sb.WriteString(fmt.Sprintf("RESUME:\n%s\n\n", truncateText(resumeText, 2000)))

	if jdText != "" {
		sb.WriteString(fmt.Sprintf("JOB DESCRIPTION:\n%s\n\n", truncateText(jdText, 1000)))
	}

	if bankContext != "" {
		sb.WriteString(fmt.Sprintf("SIMILAR QUESTIONS FROM OUR QUESTION BANK (style and difficulty reference, do not copy verbatim):\n%s\n\n", bankContext))
	}

	sb.WriteString(`Generate questions that cover:
1. Technical skills and experience (2-3 questions)
2. Behavioral/situational scenarios (2-3 questions)
3. Problem-solving and critical thinking (1-2 questions)
4. Cultural fit and motivation (1-2 questions)

Return ONLY a JSON array in this exact format:
[
  {
    "question": "Tell me about a challenging technical problem you solved recently.",
    "type": "technical",
    "category": "problem_solving",
    "difficulty": "medium"
  },
  {
    "question": "Describe a time when you had to work with a difficult team member.",
    "type": "behavioral",
    "category": "teamwork",
    "difficulty": "medium"
  }
]

Make questions specific to the candidate's background and the role requirements.`)

	return sb.String()
}

// BuildAnalysisPrompt creates the prompt for evaluating a single answer.
func (pb *PromptBuilder) BuildAnalysisPrompt(questionText, questionType, answer, resumeText string) string {
	return fmt.Sprintf(`You are an expert interview coach evaluating a candidate's answer in a mock interview.

QUESTION (%s):
%s

CANDIDATE'S ANSWER:
%s

CANDIDATE RESUME (context):
%s

Evaluate the answer on a 1-10 scale for each dimension.

Return your response in the following JSON format:
{
  "score": <overall score 1-10>,
  "technical_accuracy": <1-10>,
  "communication": <1-10>,
  "relevance": <1-10>,
  "feedback": "<direct, specific feedback in 2-4 sentences>",
  "strengths": ["<strength>", "<strength>"],
  "improvements": ["<concrete improvement>", "<concrete improvement>"]
}

Score strictly. Reserve 9-10 for answers with concrete examples and measurable outcomes.`,
		questionType, questionText, answer, truncateText(resumeText, 2000))
}

// BuildSummaryPrompt creates the prompt for the final session report.
// perQuestionFeedback is one line per answered question; rubricContext
// carries retrieved scoring guidance and may be empty.
func (pb *PromptBuilder) BuildSummaryPrompt(totalQuestions, answered int, avgScore, avgTechnical, avgCommunication float64, perQuestionFeedback, rubricContext string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert technical hiring manager writing the final assessment of a mock interview session.\n\n")

	sb.WriteString(fmt.Sprintf(`INTERVIEW RESULTS:
- Questions asked: %d
- Questions answered: %d
- Average score: %.1f / 10
- Average technical accuracy: %.1f / 10
- Average communication: %.1f / 10

PER-QUESTION FEEDBACK:
%s

`, totalQuestions, answered, avgScore, avgTechnical, avgCommunication, perQuestionFeedback))

	if rubricContext != "" {
		sb.WriteString(fmt.Sprintf("SCORING RUBRIC (apply these standards):\n%s\n\n", rubricContext))
	}

	sb.WriteString(`Return your response in the following JSON format:
{
  "summary": "<3-5 sentence overall assessment covering strengths and key gaps>",
  "recommendation": "<one of: Strong Hire, Hire, Maybe, No Hire>",
  "strengths": ["<strength>", "<strength>"],
  "improvements": ["<area for improvement>", "<area for improvement>"]
}

Be direct and actionable.`)

	return sb.String()
}

// FormatBankContext flattens question bank matches into a prompt block.
func FormatBankContext(results []BankMatch) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("%d. [%s/%s, %s] %s",
			i+1, result.Type, result.Category, result.Difficulty, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n")
}

// FormatRubricContext flattens rubric matches into a prompt block.
func FormatRubricContext(results []BankMatch) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for _, result := range results {
		parts = append(parts, "- "+strings.TrimSpace(result.Text))
	}

	return strings.Join(parts, "\n")
}

func truncateText(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}
