package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"studyassistant/internal/models"
)

// Kind selects which content shape a report lays out.
type Kind string

const (
	KindKeyPoints   Kind = "keypoints"
	KindAnalysis    Kind = "analysis"
	KindQuestions   Kind = "questions"
	KindQuizResults Kind = "quiz-results"
)

// ErrInvalidContent is returned when report content does not match its kind.
var ErrInvalidContent = errors.New("invalid report content")

// Document is everything needed to render one report.
type Document struct {
	Title     string
	Kind      Kind
	Analyses  []models.AnalysisResult
	Questions []models.Question
	Quiz      *models.QuizResult
}

// ParseKind validates a kind string.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindKeyPoints, KindAnalysis, KindQuestions, KindQuizResults:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown report type %q", ErrInvalidContent, s)
	}
}

// DecodeDocument builds a Document from the JSON content a client sends.
// Analyses may be an array or a single object; questions may be an array or
// a question set object.
func DecodeDocument(title string, kind Kind, content json.RawMessage) (Document, error) {
	doc := Document{Title: strings.TrimSpace(title), Kind: kind}
	if doc.Title == "" {
		return doc, fmt.Errorf("%w: title is required", ErrInvalidContent)
	}
	content = bytes.TrimSpace(content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		return doc, fmt.Errorf("%w: content is required", ErrInvalidContent)
	}
	isArray := content[0] == '['

	switch kind {
	case KindKeyPoints, KindAnalysis:
		if isArray {
			if err := json.Unmarshal(content, &doc.Analyses); err != nil {
				return doc, fmt.Errorf("%w: %v", ErrInvalidContent, err)
			}
			break
		}
		var one models.AnalysisResult
		if err := json.Unmarshal(content, &one); err != nil {
			return doc, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		doc.Analyses = []models.AnalysisResult{one}
	case KindQuestions:
		if isArray {
			if err := json.Unmarshal(content, &doc.Questions); err != nil {
				return doc, fmt.Errorf("%w: %v", ErrInvalidContent, err)
			}
			break
		}
		var set models.QuestionResult
		if err := json.Unmarshal(content, &set); err != nil {
			return doc, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		doc.Questions = set.Questions
	case KindQuizResults:
		if isArray {
			return doc, fmt.Errorf("%w: quiz results must be an object", ErrInvalidContent)
		}
		var res models.QuizResult
		if err := json.Unmarshal(content, &res); err != nil {
			return doc, fmt.Errorf("%w: %v", ErrInvalidContent, err)
		}
		doc.Quiz = &res
	default:
		return doc, fmt.Errorf("%w: unknown report type %q", ErrInvalidContent, kind)
	}
	return doc, nil
}

var unsafeFileChars = regexp.MustCompile(`(?i)[^a-z0-9]`)

// FileName turns a report title into the download file name.
func FileName(title string) string {
	return strings.ToLower(unsafeFileChars.ReplaceAllString(title, "_")) + ".pdf"
}
