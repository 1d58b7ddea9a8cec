package models

import (
	"fmt"
	"strings"
)

// Difficulty is the requested question difficulty.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very-hard"
)

// ParseDifficulty normalizes s and falls back to medium when s is empty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DifficultyMedium, nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Language is the output language of the generated material.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageTamil   Language = "tamil"
)

// ParseLanguage normalizes s and falls back to english when s is empty.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LanguageEnglish, nil
	case LanguageEnglish, LanguageTamil:
		return l, nil
	default:
		return "", fmt.Errorf("unknown language %q", s)
	}
}

// StudyPoint is one detailed point extracted from study material.
type StudyPoint struct {
	Title          string `json:"title" firestore:"title"`
	Description    string `json:"description" firestore:"description"`
	Importance     string `json:"importance" firestore:"importance"` // high, medium, low
	TNPSCRelevance string `json:"tnpscRelevance,omitempty" firestore:"tnpscRelevance,omitempty"`
	TNPSCPriority  string `json:"tnpscPriority,omitempty" firestore:"tnpscPriority,omitempty"`
	MemoryTip      string `json:"memoryTip,omitempty" firestore:"memoryTip,omitempty"`
}

// AnalysisResult is the AI analysis of one image or a PDF (range).
type AnalysisResult struct {
	KeyPoints       []string     `json:"keyPoints"`
	Summary         string       `json:"summary"`
	TNPSCRelevance  string       `json:"tnpscRelevance"`
	StudyPoints     []StudyPoint `json:"studyPoints"`
	TNPSCCategories []string     `json:"tnpscCategories"`
	Language        Language     `json:"language,omitempty"`
	MainTopic       string       `json:"mainTopic,omitempty"`
	FileName        string       `json:"fileName,omitempty"`
}

// Question types produced by the generator.
const (
	QuestionTypeMCQ             = "mcq"
	QuestionTypeAssertionReason = "assertion_reason"
)

// Question is a single generated question.
type Question struct {
	Question    string   `json:"question" firestore:"question"`
	Options     []string `json:"options,omitempty" firestore:"options,omitempty"`
	Answer      string   `json:"answer" firestore:"answer"`
	Type        string   `json:"type" firestore:"type"`
	Difficulty  string   `json:"difficulty" firestore:"difficulty"`
	TNPSCGroup  string   `json:"tnpscGroup" firestore:"tnpscGroup"`
	Explanation string   `json:"explanation,omitempty" firestore:"explanation,omitempty"`
}

// QuestionResult is a generated question set.
type QuestionResult struct {
	Questions      []Question `json:"questions"`
	Summary        string     `json:"summary"`
	KeyPoints      []string   `json:"keyPoints"`
	Difficulty     string     `json:"difficulty"`
	TotalQuestions int        `json:"totalQuestions,omitempty"`
}

// PageAnalysis is the analysis of a single PDF page.
type PageAnalysis struct {
	PageNumber     int          `json:"pageNumber"`
	KeyPoints      []string     `json:"keyPoints"`
	StudyPoints    []StudyPoint `json:"studyPoints"`
	Summary        string       `json:"summary"`
	TNPSCRelevance string       `json:"tnpscRelevance"`
}

// ComprehensiveResult aggregates the analysis of every page of a PDF.
type ComprehensiveResult struct {
	PageAnalyses    []PageAnalysis `json:"pageAnalyses"`
	OverallSummary  string         `json:"overallSummary"`
	TotalKeyPoints  []string       `json:"totalKeyPoints"`
	TNPSCCategories []string       `json:"tnpscCategories"`
}

// UserAnswer is the option a user picked for a question.
type UserAnswer struct {
	QuestionIndex  int    `json:"questionIndex"`
	SelectedOption string `json:"selectedOption"`
}

// AnswerReview is a graded answer.
type AnswerReview struct {
	Question      Question `json:"question" firestore:"question"`
	UserAnswer    string   `json:"userAnswer" firestore:"userAnswer"`
	CorrectAnswer string   `json:"correctAnswer" firestore:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect" firestore:"isCorrect"`
	QuestionIndex int      `json:"questionIndex" firestore:"questionIndex"`
}

// QuizResult is the outcome of a finished quiz.
type QuizResult struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Percentage     int            `json:"percentage"`
	Difficulty     string         `json:"difficulty,omitempty"`
	Answers        []AnswerReview `json:"answers"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
