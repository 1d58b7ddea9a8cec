package study

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"studyassistant/internal/gemini"
	"studyassistant/internal/models"
	"studyassistant/internal/pdftext"

	"github.com/go-pdf/fpdf"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeAnalyzer struct {
	mu            sync.Mutex
	pageCalls     map[int]int
	contentInputs []string
	imageBatches  int
	failPage      int
	failOverall   bool
	inFlight      int32
	maxInFlight   int32
}

func newFake() *fakeAnalyzer { return &fakeAnalyzer{pageCalls: map[int]int{}} }

func (f *fakeAnalyzer) AnalyzeImage(_ context.Context, file gemini.File, _ models.Language) (*models.AnalysisResult, error) {
	if file.Name == "broken.png" {
		return nil, errors.New("model refused")
	}
	res := &models.AnalysisResult{Summary: "summary of " + file.Name, KeyPoints: []string{file.Name}}
	if file.Name != "plain.png" {
		res.StudyPoints = []models.StudyPoint{{Title: "Topic " + file.Name}}
	}
	return res, nil
}

func (f *fakeAnalyzer) AnalyzeImages(_ context.Context, files []gemini.File, _ models.Language) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.imageBatches++
	f.mu.Unlock()
	return &models.AnalysisResult{Summary: fmt.Sprintf("%d images", len(files)), StudyPoints: []models.StudyPoint{{Title: "Combined"}}}, nil
}

func (f *fakeAnalyzer) AnalyzeContent(_ context.Context, text string, _ models.Language) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.contentInputs = append(f.contentInputs, text)
	fail := f.failOverall && strings.HasPrefix(text, "Page ")
	f.mu.Unlock()
	if fail {
		return nil, errors.New("overall failed")
	}
	return &models.AnalysisResult{Summary: "overall", TNPSCCategories: []string{"History"}}, nil
}

func (f *fakeAnalyzer) AnalyzePage(_ context.Context, text string, page int, _ models.Language) (*models.PageAnalysis, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInFlight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInFlight, m, n) {
			break
		}
	}

	f.mu.Lock()
	f.pageCalls[page]++
	f.mu.Unlock()
	if page == f.failPage {
		return nil, errors.New("page failed")
	}
	return &models.PageAnalysis{
		KeyPoints: []string{fmt.Sprintf("p%d-a", page), fmt.Sprintf("p%d-b", page)},
		Summary:   fmt.Sprintf("summary %d", page),
	}, nil
}

func (f *fakeAnalyzer) GenerateQuestions(_ context.Context, analyses []models.AnalysisResult, d models.Difficulty, _ models.Language) (*models.QuestionResult, error) {
	return &models.QuestionResult{
		Questions: []models.Question{{Question: "Q1 " + analyses[0].MainTopic}, {Question: "Q2"}},
	}, nil
}

const docText = "--- Page 1 ---\nAlpha\n\n--- Page 2 ---\nBeta\n\n--- Page 4 ---\nDelta\n"

func putDoc(s *Service, owner string) *Document {
	doc := &Document{ID: "doc-1", FileName: "history.pdf", TotalPages: 4, OwnerID: owner, FullText: docText, pages: map[int]models.PageAnalysis{}}
	s.docs.Set(doc.ID, doc, cache.DefaultExpiration)
	return doc
}

func TestAccept(t *testing.T) {
	s := NewService(newFake(), Options{MaxUploadBytes: 20})
	accepted, rejected := s.Accept([]Upload{
		{Name: "a.png", ContentType: "image/png", Data: []byte("123")},
		{Name: "sniffed.png", Data: pngHeader},
		{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")},
		{Name: "big.png", ContentType: "image/png", Data: bytes.Repeat([]byte("x"), 21)},
		{Name: "empty.png", ContentType: "image/png"},
	}, false)

	names := func(us []Upload) []string {
		var out []string
		for _, u := range us {
			out = append(out, u.Name)
		}
		return out
	}
	assert.Equal(t, []string{"a.png", "sniffed.png"}, names(accepted))
	assert.Equal(t, "image/png", accepted[1].ContentType)
	require.Len(t, rejected, 4)
	assert.Equal(t, "doc.pdf", rejected[0].Name)
	assert.Contains(t, rejected[2].Reason, "exceeds")

	accepted, _ = s.Accept([]Upload{{Name: "doc.pdf", ContentType: "application/pdf; charset=binary", Data: []byte("%PDF")}}, true)
	assert.Len(t, accepted, 1)
}

func TestAnalyzeImages(t *testing.T) {
	s := NewService(newFake(), Options{Workers: 2})
	res, err := s.AnalyzeImages(context.Background(), []Upload{
		{Name: "one.png", ContentType: "image/png", Data: []byte{1}},
		{Name: "plain.png", ContentType: "image/png", Data: []byte{2}},
		{Name: "three.jpg", ContentType: "image/jpeg", Data: []byte{3}},
	}, models.LanguageTamil)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "one.png", res[0].FileName)
	assert.Equal(t, "Topic one.png", res[0].MainTopic)
	assert.Equal(t, "Study Material", res[1].MainTopic)
	assert.Equal(t, "three.jpg", res[2].FileName)
	assert.Equal(t, models.LanguageTamil, res[2].Language)
}

func TestAnalyzeImagesErrors(t *testing.T) {
	s := NewService(newFake(), Options{})
	ctx := context.Background()

	_, err := s.AnalyzeImages(ctx, nil, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	_, err = s.AnalyzeImages(ctx, []Upload{{Name: "x.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}}, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	_, err = s.AnalyzeImages(ctx, []Upload{{Name: "broken.png", ContentType: "image/png", Data: []byte{1}}}, models.LanguageEnglish)
	assert.ErrorContains(t, err, "broken.png")
}

func TestDocumentOwnership(t *testing.T) {
	s := NewService(newFake(), Options{})
	putDoc(s, "owner")

	_, err := s.Document("someone-else", "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Document("owner", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	doc, err := s.Document("owner", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "history.pdf", doc.FileName)

	require.NoError(t, s.CloseDocument("owner", "doc-1"))
	_, err = s.Document("owner", "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAnalyzeDocumentRange(t *testing.T) {
	fake := newFake()
	s := NewService(fake, Options{})
	putDoc(s, "")
	ctx := context.Background()

	res, err := s.AnalyzeDocument(ctx, "", "doc-1", 2, 4, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "history.pdf (Pages 2-4)", res.MainTopic)
	assert.Equal(t, "history.pdf", res.FileName)
	assert.Equal(t, "--- Page 2 ---\nBeta\n\n--- Page 4 ---\nDelta", fake.contentInputs[0])

	res, err = s.AnalyzeDocument(ctx, "", "doc-1", 0, 0, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "history.pdf", res.MainTopic)
	assert.Equal(t, docText, fake.contentInputs[1])

	_, err = s.AnalyzeDocument(ctx, "", "doc-1", 3, 9, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.AnalyzeDocument(ctx, "", "doc-1", 3, 3, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeDocumentPage(t *testing.T) {
	fake := newFake()
	s := NewService(fake, Options{})
	putDoc(s, "")
	ctx := context.Background()

	page, err := s.AnalyzeDocumentPage(ctx, "", "doc-1", 2, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 2, page.PageNumber)
	_, err = s.AnalyzeDocumentPage(ctx, "", "doc-1", 2, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.pageCalls[2])

	_, err = s.AnalyzeDocumentPage(ctx, "", "doc-1", 3, models.LanguageEnglish)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "No content found on page 3")

	_, err = s.AnalyzeDocumentPage(ctx, "", "doc-1", 5, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAnalyzeComprehensive(t *testing.T) {
	fake := newFake()
	s := NewService(fake, Options{Workers: 2})
	putDoc(s, "u")
	ctx := context.Background()

	_, err := s.AnalyzeDocumentPage(ctx, "u", "doc-1", 4, models.LanguageEnglish)
	require.NoError(t, err)

	var streamed []int
	res, err := s.AnalyzeComprehensive(ctx, "u", "doc-1", models.LanguageEnglish, func(p models.PageAnalysis) {
		streamed = append(streamed, p.PageNumber)
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int{1, 2, 4}, streamed)
	require.Len(t, res.PageAnalyses, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{res.PageAnalyses[0].PageNumber, res.PageAnalyses[1].PageNumber, res.PageAnalyses[2].PageNumber})
	assert.Equal(t, []string{"p1-a", "p1-b", "p2-a", "p2-b", "p4-a", "p4-b"}, res.TotalKeyPoints)
	assert.Equal(t, "overall", res.OverallSummary)
	assert.Equal(t, []string{"History"}, res.TNPSCCategories)
	assert.Equal(t, 1, fake.pageCalls[4], "cached page is not analysed again")
	assert.LessOrEqual(t, atomic.LoadInt32(&fake.maxInFlight), int32(2))

	overallInput := fake.contentInputs[len(fake.contentInputs)-1]
	assert.Equal(t, "Page 1: summary 1\nPage 2: summary 2\nPage 4: summary 4", overallInput)

	// A second run reuses every page.
	again, err := s.AnalyzeComprehensive(ctx, "u", "doc-1", models.LanguageEnglish, nil)
	require.NoError(t, err)
	assert.Len(t, again.PageAnalyses, 3)
	for _, n := range []int{1, 2, 4} {
		assert.Equal(t, 1, fake.pageCalls[n])
	}
}

func TestAnalyzeComprehensiveFailures(t *testing.T) {
	fake := newFake()
	fake.failPage = 2
	s := NewService(fake, Options{Workers: 3})
	putDoc(s, "")

	_, err := s.AnalyzeComprehensive(context.Background(), "", "doc-1", models.LanguageEnglish, nil)
	assert.ErrorContains(t, err, "page 2")

	fake = newFake()
	fake.failOverall = true
	s = NewService(fake, Options{Workers: 3})
	putDoc(s, "")
	res, err := s.AnalyzeComprehensive(context.Background(), "", "doc-1", models.LanguageEnglish, nil)
	require.NoError(t, err)
	assert.Contains(t, res.OverallSummary, "Page 4: summary 4")
	assert.Empty(t, res.TNPSCCategories)
}

func TestGenerateQuestions(t *testing.T) {
	s := NewService(newFake(), Options{})
	ctx := context.Background()

	_, err := s.GenerateQuestions(ctx, nil, models.DifficultyEasy, models.LanguageEnglish)
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := s.GenerateQuestions(ctx, []models.AnalysisResult{{MainTopic: "Sangam"}}, models.DifficultyVeryHard, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, "very-hard", res.Difficulty)
}

func TestGenerateQuestionsForRange(t *testing.T) {
	s := NewService(newFake(), Options{})
	putDoc(s, "")
	res, err := s.GenerateQuestionsForRange(context.Background(), "", "doc-1", 1, 2, models.DifficultyEasy, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "Q1 history.pdf (Pages 1-2)", res.Questions[0].Question)
}

func TestQuickQuiz(t *testing.T) {
	fake := newFake()
	s := NewService(fake, Options{})
	res, err := s.QuickQuiz(context.Background(), []Upload{
		{Name: "a.png", ContentType: "image/png", Data: []byte{1}},
		{Name: "b.png", ContentType: "image/png", Data: []byte{2}},
	}, models.DifficultyMedium, models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.imageBatches)
	assert.Equal(t, "Q1 Combined", res.Questions[0].Question)
	assert.Equal(t, 2, res.TotalQuestions)
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(20, 20, "Chola navy")
	pdf.AddPage()
	pdf.AddPage()
	pdf.Text(20, 20, "Pandya ports")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestOpenDocument(t *testing.T) {
	s := NewService(newFake(), Options{})
	doc, err := s.OpenDocument("u", Upload{Name: "ports.pdf", ContentType: "application/pdf", Data: samplePDF(t)})
	require.NoError(t, err)
	assert.Equal(t, 3, doc.TotalPages)
	assert.Equal(t, []int{1, 3}, pdftext.PageNumbers(doc.FullText))
	assert.Contains(t, pdftext.PageContent(doc.FullText, 3), "Pandya ports")

	cached, err := s.Document("u", doc.ID)
	require.NoError(t, err)
	assert.Same(t, doc, cached)

	_, err = s.OpenDocument("u", Upload{Name: "a.png", ContentType: "image/png", Data: pngHeader})
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	_, err = s.OpenDocument("u", Upload{Name: "fake.pdf", ContentType: "application/pdf", Data: []byte("%PDF-garbage")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
