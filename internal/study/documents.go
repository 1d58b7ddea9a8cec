package study

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"studyassistant/internal/models"
	"studyassistant/internal/pdftext"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Document is an uploaded PDF kept in the documents cache.
type Document struct {
	ID         string `json:"documentId"`
	FileName   string `json:"fileName"`
	TotalPages int    `json:"totalPages"`
	OwnerID    string `json:"-"`
	FullText   string `json:"-"`

	mu    sync.Mutex
	pages map[int]models.PageAnalysis
}

// cachedPage returns an earlier analysis of page n.
func (d *Document) cachedPage(n int) (models.PageAnalysis, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pages[n]
	return p, ok
}

// storePage keeps the first analysis of a page and returns the kept one.
func (d *Document) storePage(p models.PageAnalysis) models.PageAnalysis {
	d.mu.Lock()
	defer d.mu.Unlock()
	if existing, ok := d.pages[p.PageNumber]; ok {
		return existing
	}
	d.pages[p.PageNumber] = p
	return p
}

// OpenDocument extracts the text of a PDF and caches it for later analysis.
func (s *Service) OpenDocument(ownerID string, file Upload) (*Document, error) {
	if !isPDF(DetectType(file)) {
		return nil, fmt.Errorf("%w: %s is not a PDF", ErrUnsupportedFile, file.Name)
	}
	if int64(len(file.Data)) > s.opts.MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidInput, file.Name, s.opts.MaxUploadBytes)
	}

	text, err := pdftext.ExtractBytes(file.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text could be extracted from %s", ErrInvalidInput, file.Name)
	}

	doc := &Document{
		ID:         uuid.NewString(),
		FileName:   file.Name,
		TotalPages: pdftext.FindTotalPages(text),
		OwnerID:    ownerID,
		FullText:   text,
		pages:      make(map[int]models.PageAnalysis),
	}
	s.docs.Set(doc.ID, doc, cache.DefaultExpiration)
	log.Info().Str("document_id", doc.ID).Str("file", doc.FileName).Int("pages", doc.TotalPages).Msg("document opened")
	return doc, nil
}

// Document returns a cached document owned by ownerID and extends its lifetime.
func (s *Service) Document(ownerID, id string) (*Document, error) {
	v, ok := s.docs.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	doc := v.(*Document)
	if doc.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	s.docs.Set(id, doc, cache.DefaultExpiration)
	return doc, nil
}

// CloseDocument drops a document from the cache.
func (s *Service) CloseDocument(ownerID, id string) error {
	if _, err := s.Document(ownerID, id); err != nil {
		return err
	}
	s.docs.Delete(id)
	return nil
}

func checkRange(doc *Document, start, end int) error {
	if start < 1 || end < start || end > doc.TotalPages {
		return fmt.Errorf("%w: page range %d-%d is outside 1-%d", ErrInvalidInput, start, end, doc.TotalPages)
	}
	return nil
}

// AnalyzeDocument analyses pages start..end, or the whole document when
// either bound is zero.
func (s *Service) AnalyzeDocument(ctx context.Context, ownerID, id string, start, end int, lang models.Language) (*models.AnalysisResult, error) {
	doc, err := s.Document(ownerID, id)
	if err != nil {
		return nil, err
	}

	text, topic := doc.FullText, doc.FileName
	if start > 0 && end > 0 {
		if err := checkRange(doc, start, end); err != nil {
			return nil, err
		}
		text = pdftext.ExtractPageRange(doc.FullText, start, end)
		if text == "" {
			return nil, fmt.Errorf("%w: no content found on pages %d-%d", ErrInvalidInput, start, end)
		}
		topic = fmt.Sprintf("%s (Pages %d-%d)", doc.FileName, start, end)
	}

	res, err := s.ai.AnalyzeContent(ctx, text, lang)
	if err != nil {
		return nil, err
	}
	res.Language = lang
	res.MainTopic = topic
	res.FileName = doc.FileName
	return res, nil
}

// AnalyzeDocumentPage analyses one page, reusing an earlier result.
func (s *Service) AnalyzeDocumentPage(ctx context.Context, ownerID, id string, page int, lang models.Language) (*models.PageAnalysis, error) {
	doc, err := s.Document(ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := checkRange(doc, page, page); err != nil {
		return nil, err
	}
	res, err := s.analyzePage(ctx, doc, page, lang)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) analyzePage(ctx context.Context, doc *Document, page int, lang models.Language) (models.PageAnalysis, error) {
	if cached, ok := doc.cachedPage(page); ok {
		return cached, nil
	}
	content := pdftext.PageContent(doc.FullText, page)
	if content == "" {
		return models.PageAnalysis{}, fmt.Errorf("%w: No content found on page %d", ErrInvalidInput, page)
	}
	res, err := s.ai.AnalyzePage(ctx, content, page, lang)
	if err != nil {
		return models.PageAnalysis{}, err
	}
	res.PageNumber = page
	return doc.storePage(*res), nil
}

// AnalyzeComprehensive analyses every page that has text, calling onPage as
// each page finishes, then summarises the whole document. onPage calls never
// overlap.
func (s *Service) AnalyzeComprehensive(ctx context.Context, ownerID, id string, lang models.Language, onPage func(models.PageAnalysis)) (*models.ComprehensiveResult, error) {
	doc, err := s.Document(ownerID, id)
	if err != nil {
		return nil, err
	}
	pageNumbers := pdftext.PageNumbers(doc.FullText)
	if len(pageNumbers) == 0 {
		return nil, fmt.Errorf("%w: document has no pages with text", ErrInvalidInput)
	}

	var (
		mu    sync.Mutex
		pages = make([]models.PageAnalysis, 0, len(pageNumbers))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for _, n := range lo.Uniq(pageNumbers) {
		n := n
		g.Go(func() error {
			res, err := s.analyzePage(gctx, doc, n, lang)
			if err != nil {
				return fmt.Errorf("page %d: %w", n, err)
			}
			mu.Lock()
			defer mu.Unlock()
			pages = append(pages, res)
			if onPage != nil {
				onPage(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	result := &models.ComprehensiveResult{
		PageAnalyses:    pages,
		TotalKeyPoints:  lo.FlatMap(pages, func(p models.PageAnalysis, _ int) []string { return p.KeyPoints }),
		TNPSCCategories: []string{},
	}

	summaries := lo.FilterMap(pages, func(p models.PageAnalysis, _ int) (string, bool) {
		return fmt.Sprintf("Page %d: %s", p.PageNumber, p.Summary), p.Summary != ""
	})
	overall, err := s.ai.AnalyzeContent(ctx, strings.Join(summaries, "\n"), lang)
	switch {
	case err == nil:
		result.OverallSummary = overall.Summary
		if overall.TNPSCCategories != nil {
			result.TNPSCCategories = overall.TNPSCCategories
		}
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		log.Warn().Err(err).Str("document_id", doc.ID).Msg("overall summary failed, joining page summaries")
		result.OverallSummary = strings.Join(summaries, "\n")
	}
	return result, nil
}

// GenerateQuestionsForRange analyses pages start..end and builds questions
// from that analysis.
func (s *Service) GenerateQuestionsForRange(ctx context.Context, ownerID, id string, start, end int, difficulty models.Difficulty, lang models.Language) (*models.QuestionResult, error) {
	analysis, err := s.AnalyzeDocument(ctx, ownerID, id, start, end, lang)
	if err != nil {
		return nil, err
	}
	return s.GenerateQuestions(ctx, []models.AnalysisResult{*analysis}, difficulty, lang)
}
