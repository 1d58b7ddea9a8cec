// Package study runs the analysis and question generation flows on top of
// the AI client.
package study

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"studyassistant/internal/gemini"
	"studyassistant/internal/models"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("document not found")
)

// Upload is a file received from a client.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Rejected names an upload that was not accepted and why.
type Rejected struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Options tunes the service.
type Options struct {
	Workers        int
	MaxUploadBytes int64
	DocumentTTL    time.Duration
}

// Service orchestrates uploads, the documents cache and AI calls.
type Service struct {
	ai   gemini.Analyzer
	opts Options
	docs *cache.Cache
}

// NewService returns a Service using ai for every model call.
func NewService(ai gemini.Analyzer, opts Options) *Service {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.DocumentTTL <= 0 {
		opts.DocumentTTL = 2 * time.Hour
	}
	return &Service{
		ai:   ai,
		opts: opts,
		docs: cache.New(opts.DocumentTTL, 10*time.Minute),
	}
}

// DetectType returns the upload's content type, sniffing the bytes when the
// client sent none or a generic one.
func DetectType(u Upload) string {
	ct := strings.ToLower(strings.TrimSpace(u.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(u.Data)
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
	}
	return ct
}

func isImage(ct string) bool { return strings.HasPrefix(ct, "image/") }
func isPDF(ct string) bool   { return ct == "application/pdf" }

// Accept splits uploads into accepted and rejected ones. Only images, and
// PDFs when allowPDF is set, within the size limit are accepted.
func (s *Service) Accept(files []Upload, allowPDF bool) ([]Upload, []Rejected) {
	var accepted []Upload
	rejected := []Rejected{}
	for _, f := range files {
		ct := DetectType(f)
		switch {
		case len(f.Data) == 0:
			rejected = append(rejected, Rejected{Name: f.Name, Reason: "file is empty"})
		case int64(len(f.Data)) > s.opts.MaxUploadBytes:
			rejected = append(rejected, Rejected{Name: f.Name, Reason: fmt.Sprintf("file exceeds %d bytes", s.opts.MaxUploadBytes)})
		case isImage(ct), allowPDF && isPDF(ct):
			f.ContentType = ct
			accepted = append(accepted, f)
		default:
			rejected = append(rejected, Rejected{Name: f.Name, Reason: "unsupported file type " + ct})
		}
	}
	return accepted, rejected
}

func toGeminiFile(u Upload) gemini.File {
	return gemini.File{Name: u.Name, MIMEType: u.ContentType, Data: u.Data}
}

// AnalyzeImages analyses every image on its own, keeping upload order.
func (s *Service) AnalyzeImages(ctx context.Context, files []Upload, lang models.Language) ([]models.AnalysisResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images to analyse", ErrUnsupportedFile)
	}
	for _, f := range files {
		if !isImage(DetectType(f)) {
			return nil, fmt.Errorf("%w: %s is not an image", ErrUnsupportedFile, f.Name)
		}
	}

	results := make([]models.AnalysisResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			res, err := s.ai.AnalyzeImage(gctx, toGeminiFile(f), lang)
			if err != nil {
				return fmt.Errorf("failed to analyse %s: %w", f.Name, err)
			}
			res.Language = lang
			res.FileName = f.Name
			res.MainTopic = mainTopic(res)
			results[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info().Int("images", len(files)).Str("language", string(lang)).Msg("images analysed")
	return results, nil
}

func mainTopic(res *models.AnalysisResult) string {
	if len(res.StudyPoints) > 0 && res.StudyPoints[0].Title != "" {
		return res.StudyPoints[0].Title
	}
	return "Study Material"
}

// GenerateQuestions writes a question set from analyses.
func (s *Service) GenerateQuestions(ctx context.Context, analyses []models.AnalysisResult, difficulty models.Difficulty, lang models.Language) (*models.QuestionResult, error) {
	if len(analyses) == 0 {
		return nil, fmt.Errorf("%w: at least one analysis is required", ErrInvalidInput)
	}
	res, err := s.ai.GenerateQuestions(ctx, analyses, difficulty, lang)
	if err != nil {
		return nil, err
	}
	if res.Difficulty == "" {
		res.Difficulty = string(difficulty)
	}
	res.TotalQuestions = len(res.Questions)
	return res, nil
}

// QuickQuiz analyses all images in one request and builds questions from
// that analysis.
func (s *Service) QuickQuiz(ctx context.Context, files []Upload, difficulty models.Difficulty, lang models.Language) (*models.QuestionResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images to analyse", ErrUnsupportedFile)
	}
	gfiles := make([]gemini.File, 0, len(files))
	for _, f := range files {
		if !isImage(DetectType(f)) {
			return nil, fmt.Errorf("%w: %s is not an image", ErrUnsupportedFile, f.Name)
		}
		gfiles = append(gfiles, toGeminiFile(f))
	}

	analysis, err := s.ai.AnalyzeImages(ctx, gfiles, lang)
	if err != nil {
		return nil, err
	}
	analysis.Language = lang
	analysis.MainTopic = mainTopic(analysis)
	return s.GenerateQuestions(ctx, []models.AnalysisResult{*analysis}, difficulty, lang)
}
