package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studyassistant/internal/blob"
	"studyassistant/internal/models"
	"studyassistant/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisPayload = `[{"keyPoints":["Vijayanagara founded in 1336"],"summary":"Vijayanagara empire","tnpscRelevance":"Group 1","studyPoints":[{"title":"Harihara","description":"Founder","importance":"high"}],"tnpscCategories":["History"]},{"summary":"second"}]`

const quizPayload = `{"questions":[{"question":"Who founded Vijayanagara?","options":["Harihara","Krishnadevaraya"],"answer":"Harihara","type":"mcq"}],"summary":"s","keyPoints":[],"difficulty":"easy"}`

func intp(i int) *int { return &i }

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestService(files blob.Storage) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	svc := NewService(store, files)
	c := &clock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = c.now
	return svc, store
}

func TestSaveAnalysisBuildsAnalysisData(t *testing.T) {
	files := blob.NewMemory("https://files.test")
	svc, _ := newTestService(files)
	ctx := context.Background()

	id, err := svc.Save(ctx, "user-1", TypeAnalysis, json.RawMessage(analysisPayload), SaveOptions{
		FileName:   "notes.png",
		Difficulty: "medium",
		Language:   "english",
		Files:      []Upload{{Name: "notes.png", ContentType: "image/png", Body: strings.NewReader("png")}},
	})
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "user-1", id)
	require.NoError(t, err)
	require.NotNil(t, rec.AnalysisData)
	assert.Equal(t, "notes.png", rec.AnalysisData.MainTopic)
	assert.Equal(t, "Vijayanagara empire", rec.AnalysisData.Summary)
	assert.Nil(t, rec.QuizData)
	require.Len(t, rec.FileURLs, 1)
	assert.True(t, strings.HasPrefix(rec.FileURLs[0], "https://files.test/study-files/user-1/"))
	assert.True(t, strings.HasSuffix(rec.FileURLs[0], "_notes.png"))
	assert.Equal(t, 1, files.Len())
}

func TestSaveAnalysisDefaultsMainTopic(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	id, err := svc.Save(ctx, "u", TypeAnalysis, json.RawMessage(`[{"summary":"x"}]`), SaveOptions{})
	require.NoError(t, err)
	rec, err := svc.Get(ctx, "u", id)
	require.NoError(t, err)
	assert.Equal(t, "Study Material", rec.AnalysisData.MainTopic)
	assert.Equal(t, []string{}, rec.AnalysisData.KeyPoints)

	id, err = svc.Save(ctx, "u", TypeAnalysis, json.RawMessage(`{"summary":"not an array"}`), SaveOptions{})
	require.NoError(t, err)
	rec, err = svc.Get(ctx, "u", id)
	require.NoError(t, err)
	assert.Nil(t, rec.AnalysisData)
}

func TestSaveQuizBuildsQuizData(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	answers := []models.AnswerReview{{UserAnswer: "Harihara", CorrectAnswer: "Harihara", IsCorrect: true}}
	id, err := svc.Save(ctx, "u", TypeQuiz, json.RawMessage(quizPayload), SaveOptions{
		Difficulty: "easy", Language: "english",
		Score: intp(1), TotalQuestions: intp(1), Percentage: intp(100),
		QuizAnswers: answers,
	})
	require.NoError(t, err)

	rec, err := svc.Get(ctx, "u", id)
	require.NoError(t, err)
	require.NotNil(t, rec.QuizData)
	assert.Len(t, rec.QuizData.Questions, 1)
	assert.Equal(t, answers, rec.QuizData.Answers)
	assert.Equal(t, 100, rec.QuizData.Percentage)
	assert.Equal(t, "easy", rec.QuizData.Difficulty)
	assert.Equal(t, 1, *rec.Score)
}

func TestSaveValidation(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, "", TypeQuiz, json.RawMessage(`{}`), SaveOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Save(ctx, "u", Type("notes"), json.RawMessage(`{}`), SaveOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Save(ctx, "u", TypeQuiz, json.RawMessage(`{broken`), SaveOptions{})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.Save(ctx, "u", TypeQuiz, json.RawMessage(`{}`), SaveOptions{Files: []Upload{{Name: "a"}}})
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

type failingStorage struct {
	*blob.Memory
	failAfter int
	uploads   int
}

func (f *failingStorage) Upload(ctx context.Context, key, ct string, body io.Reader) (string, error) {
	f.uploads++
	if f.uploads > f.failAfter {
		return "", errors.New("bucket unavailable")
	}
	return f.Memory.Upload(ctx, key, ct, body)
}

func TestSaveAbortsAndCleansUpOnUploadFailure(t *testing.T) {
	files := &failingStorage{Memory: blob.NewMemory("https://files.test"), failAfter: 1}
	svc, store := newTestService(files)

	_, err := svc.Save(context.Background(), "u", TypeAnalysis, json.RawMessage(analysisPayload), SaveOptions{
		Files: []Upload{
			{Name: "a.png", Body: strings.NewReader("a")},
			{Name: "b.png", Body: strings.NewReader("b")},
		},
	})
	require.Error(t, err)
	assert.Zero(t, files.Len())
	recs, _ := store.ListByUser(context.Background(), "u")
	assert.Empty(t, recs)
}

func TestListNewestFirstAndScopedToUser(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, "u", TypeQuiz, json.RawMessage(quizPayload), SaveOptions{})
	require.NoError(t, err)
	second, err := svc.Save(ctx, "u", TypeAnalysis, json.RawMessage(analysisPayload), SaveOptions{})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "other", TypeQuiz, json.RawMessage(quizPayload), SaveOptions{})
	require.NoError(t, err)

	recs, err := svc.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, second, recs[0].ID)
	assert.Equal(t, first, recs[1].ID)

	empty, err := svc.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetAndDeleteAreOwnerScoped(t *testing.T) {
	files := blob.NewMemory("https://files.test")
	svc, _ := newTestService(files)
	ctx := context.Background()

	id, err := svc.Save(ctx, "owner", TypeAnalysis, json.RawMessage(analysisPayload), SaveOptions{
		Files: []Upload{{Name: "a.png", Body: strings.NewReader("a")}},
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", id), ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "owner", id))
	assert.Zero(t, files.Len())
	_, err = svc.Get(ctx, "owner", id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIgnoresFileErrors(t *testing.T) {
	files := blob.NewMemory("https://files.test")
	svc, store := newTestService(files)
	ctx := context.Background()

	id, err := store.Create(ctx, &Record{UserID: "u", Type: TypeQuiz, Data: json.RawMessage(`{}`), FileURLs: []string{"https://elsewhere/x.png"}})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "u", id))
}

func TestReportDocument(t *testing.T) {
	ts := time.Date(2025, 2, 3, 12, 0, 0, 0, time.Local)

	doc, err := ReportDocument(&Record{Type: TypeQuiz, Timestamp: ts, QuizData: &QuizData{Score: 3, TotalQuestions: 4, Percentage: 75, Difficulty: "hard"}})
	require.NoError(t, err)
	assert.Equal(t, "Quiz Results - 03/02/2025", doc.Title)
	assert.Equal(t, "Quiz Results - "+ts.Format(report.DateLayout), doc.Title)
	assert.Equal(t, report.KindQuizResults, doc.Kind)
	assert.Equal(t, 75, doc.Quiz.Percentage)

	doc, err = ReportDocument(&Record{Type: TypeAnalysis, Timestamp: ts, AnalysisData: &models.AnalysisResult{Summary: "s"}})
	require.NoError(t, err)
	assert.Equal(t, "Study Analysis - 03/02/2025", doc.Title)
	assert.Equal(t, report.KindAnalysis, doc.Kind)
	assert.Len(t, doc.Analyses, 1)

	doc, err = ReportDocument(&Record{Type: TypeAnalysis, Timestamp: ts, Data: json.RawMessage(analysisPayload)})
	require.NoError(t, err)
	assert.Len(t, doc.Analyses, 2)

	doc, err = ReportDocument(&Record{Type: TypeQuiz, Timestamp: ts, Data: json.RawMessage(`{"score":1,"totalQuestions":2,"percentage":50}`)})
	require.NoError(t, err)
	assert.Equal(t, 50, doc.Quiz.Percentage)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, nil)
	c := &clock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	svc.now = c.now

	quizID, err := svc.Save(ctx, "u", TypeQuiz, json.RawMessage(quizPayload), SaveOptions{
		Difficulty: "easy", Language: "tamil", Score: intp(1), TotalQuestions: intp(1), Percentage: intp(100),
	})
	require.NoError(t, err)
	analysisID, err := svc.Save(ctx, "u", TypeAnalysis, json.RawMessage(analysisPayload), SaveOptions{FileName: "f.pdf"})
	require.NoError(t, err)

	recs, err := svc.List(ctx, "u")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, analysisID, recs[0].ID)
	assert.Equal(t, quizID, recs[1].ID)

	quiz := recs[1]
	assert.Equal(t, "tamil", quiz.Language)
	assert.Equal(t, 100, *quiz.Percentage)
	require.NotNil(t, quiz.QuizData)
	assert.Len(t, quiz.QuizData.Questions, 1)
	assert.JSONEq(t, quizPayload, string(quiz.Data))
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 1, 0, time.UTC), quiz.Timestamp.UTC())

	analysis := recs[0]
	assert.Nil(t, analysis.Score)
	require.NotNil(t, analysis.AnalysisData)
	assert.Equal(t, "f.pdf", analysis.AnalysisData.MainTopic)
	assert.Equal(t, []string{}, analysis.FileURLs)

	require.NoError(t, svc.Delete(ctx, "u", quizID))
	_, err = store.Get(ctx, quizID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, quizID), ErrNotFound)
}

func TestFirestoreDocRoundTrip(t *testing.T) {
	rec := &Record{
		UserID:    "u",
		Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:      TypeQuiz,
		Score:     intp(2),
		Data:      json.RawMessage(quizPayload),
		QuizData:  &QuizData{Score: 2, TotalQuestions: 3, Percentage: 67},
	}
	doc, err := toFirestoreDoc(rec)
	require.NoError(t, err)
	assert.IsType(t, map[string]interface{}{}, doc.Data)
	assert.Equal(t, int64(2), *doc.Score)
	assert.Equal(t, []string{}, doc.FileURLs)
	assert.Nil(t, doc.AnalysisData)

	back, err := fromFirestoreDoc("abc", doc)
	require.NoError(t, err)
	assert.Equal(t, "abc", back.ID)
	assert.Equal(t, 2, *back.Score)
	assert.JSONEq(t, quizPayload, string(back.Data))
	assert.Equal(t, 67, back.QuizData.Percentage)
}

func TestFileKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "study-files/u1/1700000000123_scan.pdf", FileKey("u1", at, "scan.pdf"))
}
