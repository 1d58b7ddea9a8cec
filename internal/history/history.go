// Package history saves, lists and deletes a user's study sessions.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"studyassistant/internal/blob"
	"studyassistant/internal/models"
	"studyassistant/internal/report"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned for missing records and for records owned by another user.
	ErrNotFound = errors.New("history record not found")
	// ErrInvalid is returned when a record cannot be saved as given.
	ErrInvalid = errors.New("invalid history record")
	// ErrStorageDisabled is returned when files are attached but no file storage is configured.
	ErrStorageDisabled = errors.New("file storage is not configured")
)

// Type is the kind of study session a record holds.
type Type string

const (
	TypeAnalysis Type = "analysis"
	TypeQuiz     Type = "quiz"
)

// QuizData is the structured copy of a finished quiz.
type QuizData struct {
	Questions      []models.Question     `json:"questions"`
	Answers        []models.AnswerReview `json:"answers"`
	Score          int                   `json:"score"`
	TotalQuestions int                   `json:"totalQuestions"`
	Percentage     int                   `json:"percentage"`
	Difficulty     string                `json:"difficulty"`
}

// Record is one saved study session.
type Record struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"userId"`
	Timestamp      time.Time              `json:"timestamp"`
	Type           Type                   `json:"type"`
	FileName       string                 `json:"fileName,omitempty"`
	Difficulty     string                 `json:"difficulty"`
	Language       string                 `json:"language"`
	Score          *int                   `json:"score,omitempty"`
	TotalQuestions *int                   `json:"totalQuestions,omitempty"`
	Percentage     *int                   `json:"percentage,omitempty"`
	Data           json.RawMessage        `json:"data" swaggertype:"object"`
	FileURLs       []string               `json:"fileUrls"`
	AnalysisData   *models.AnalysisResult `json:"analysisData,omitempty"`
	QuizData       *QuizData              `json:"quizData,omitempty"`
}

// Store persists records. Get returns ErrNotFound for unknown ids and
// ListByUser returns the newest record first.
type Store interface {
	Create(ctx context.Context, rec *Record) (string, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
}

// Upload is a file attached to a record.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// SaveOptions carries the optional parts of a record.
type SaveOptions struct {
	FileName       string
	Difficulty     string
	Language       string
	Score          *int
	TotalQuestions *int
	Percentage     *int
	Files          []Upload
	QuizAnswers    []models.AnswerReview
}

// Service ties a record store to file storage.
type Service struct {
	store Store
	files blob.Storage
	now   func() time.Time
}

// NewService returns a Service. files may be nil when no file storage is
// configured; saving a record with files then fails.
func NewService(store Store, files blob.Storage) *Service {
	return &Service{store: store, files: files, now: time.Now}
}

// FileKey is the storage key of an uploaded study file.
func FileKey(userID string, at time.Time, name string) string {
	return fmt.Sprintf("study-files/%s/%d_%s", userID, at.UnixMilli(), name)
}

// Save uploads the attached files and stores a new record, returning its id.
// Any failure aborts the save; files uploaded before the failure are removed.
func (s *Service) Save(ctx context.Context, userID string, typ Type, data json.RawMessage, opts SaveOptions) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id is required", ErrInvalid)
	}
	if typ != TypeAnalysis && typ != TypeQuiz {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalid, typ)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return "", fmt.Errorf("%w: data must be valid JSON", ErrInvalid)
	}
	if len(opts.Files) > 0 && s.files == nil {
		return "", ErrStorageDisabled
	}

	rec := &Record{
		UserID:         userID,
		Type:           typ,
		FileName:       opts.FileName,
		Difficulty:     opts.Difficulty,
		Language:       opts.Language,
		Score:          opts.Score,
		TotalQuestions: opts.TotalQuestions,
		Percentage:     opts.Percentage,
		Data:           data,
		FileURLs:       []string{},
	}

	switch typ {
	case TypeAnalysis:
		rec.AnalysisData = analysisData(data, opts.FileName)
	case TypeQuiz:
		rec.QuizData = quizData(data, opts)
	}

	for _, f := range opts.Files {
		key := FileKey(userID, s.now(), f.Name)
		u, err := s.files.Upload(ctx, key, f.ContentType, f.Body)
		if err != nil {
			s.removeFiles(ctx, rec.FileURLs)
			return "", fmt.Errorf("failed to upload %s: %w", f.Name, err)
		}
		rec.FileURLs = append(rec.FileURLs, u)
	}

	rec.Timestamp = s.now()
	id, err := s.store.Create(ctx, rec)
	if err != nil {
		s.removeFiles(ctx, rec.FileURLs)
		return "", fmt.Errorf("failed to save study history: %w", err)
	}
	log.Info().Str("user_id", userID).Str("id", id).Str("type", string(typ)).Msg("study history saved")
	return id, nil
}

// analysisData takes the first analysis of an array payload.
func analysisData(data json.RawMessage, fileName string) *models.AnalysisResult {
	var list []models.AnalysisResult
	if err := json.Unmarshal(data, &list); err != nil || len(list) == 0 {
		return nil
	}
	first := list[0]
	a := &models.AnalysisResult{
		KeyPoints:       nonNil(first.KeyPoints),
		StudyPoints:     first.StudyPoints,
		Summary:         first.Summary,
		TNPSCRelevance:  first.TNPSCRelevance,
		TNPSCCategories: nonNil(first.TNPSCCategories),
		MainTopic:       first.MainTopic,
	}
	if a.StudyPoints == nil {
		a.StudyPoints = []models.StudyPoint{}
	}
	if a.MainTopic == "" {
		a.MainTopic = fileName
	}
	if a.MainTopic == "" {
		a.MainTopic = "Study Material"
	}
	return a
}

func quizData(data json.RawMessage, opts SaveOptions) *QuizData {
	q := &QuizData{
		Questions:  []models.Question{},
		Answers:    opts.QuizAnswers,
		Difficulty: opts.Difficulty,
	}
	var set struct {
		Questions []models.Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &set); err == nil && set.Questions != nil {
		q.Questions = set.Questions
	}
	if q.Answers == nil {
		q.Answers = []models.AnswerReview{}
	}
	if opts.Score != nil {
		q.Score = *opts.Score
	}
	if opts.TotalQuestions != nil {
		q.TotalQuestions = *opts.TotalQuestions
	}
	if opts.Percentage != nil {
		q.Percentage = *opts.Percentage
	}
	return q
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Record, error) {
	recs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch study history: %w", err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// Get returns a record owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// Delete removes a record and then its files. Failing to delete a file is
// only logged.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete study history: %w", err)
	}
	s.removeFiles(ctx, rec.FileURLs)
	return nil
}

func (s *Service) removeFiles(ctx context.Context, urls []string) {
	if s.files == nil {
		return
	}
	for _, u := range urls {
		if err := s.files.Delete(ctx, u); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("error deleting file from storage")
		}
	}
}

// ReportDocument builds the downloadable report of a record.
func ReportDocument(rec *Record) (report.Document, error) {
	date := rec.Timestamp.Local().Format(report.DateLayout)

	switch {
	case rec.Type == TypeQuiz && rec.QuizData != nil:
		qd := rec.QuizData
		return report.Document{
			Title: "Quiz Results - " + date,
			Kind:  report.KindQuizResults,
			Quiz: &models.QuizResult{
				Score:          qd.Score,
				TotalQuestions: qd.TotalQuestions,
				Percentage:     qd.Percentage,
				Difficulty:     qd.Difficulty,
				Answers:        qd.Answers,
			},
		}, nil
	case rec.Type == TypeAnalysis && rec.AnalysisData != nil:
		return report.Document{
			Title:    "Study Analysis - " + date,
			Kind:     report.KindAnalysis,
			Analyses: []models.AnalysisResult{*rec.AnalysisData},
		}, nil
	case rec.Type == TypeQuiz:
		return report.DecodeDocument("Quiz Results - "+date, report.KindQuizResults, rec.Data)
	default:
		return report.DecodeDocument("Study Analysis - "+date, report.KindAnalysis, rec.Data)
	}
}
