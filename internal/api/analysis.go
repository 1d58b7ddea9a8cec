package api

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"studyassistant/internal/models"
	"studyassistant/internal/quiz"
	"studyassistant/internal/study"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AnalyzeResponse is the result of analysing uploaded images.
type AnalyzeResponse struct {
	Results  []models.AnalysisResult `json:"results"`
	Rejected []study.Rejected        `json:"rejected"`
}

// QuestionsRequest asks for questions built from earlier analyses.
type QuestionsRequest struct {
	Analyses   []models.AnalysisResult `json:"analyses"`
	Difficulty string                  `json:"difficulty"`
	Language   string                  `json:"language"`
}

// RangeRequest selects pages of an uploaded document. Zero bounds select the
// whole document.
type RangeRequest struct {
	StartPage  int    `json:"startPage"`
	EndPage    int    `json:"endPage"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language"`
}

// respondQuestions sends a question set, shuffled when ?shuffle=true.
func respondQuestions(c *gin.Context, res *models.QuestionResult) {
	if shuffle, _ := strconv.ParseBool(c.Query("shuffle")); shuffle {
		res.Questions = quiz.Shuffle(res.Questions, rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	c.JSON(http.StatusOK, res)
}

// acceptImages reads the uploaded images, answering the request itself when
// none of them can be used.
func (h *Handler) acceptImages(c *gin.Context, action string) ([]study.Upload, []study.Rejected, bool) {
	files, err := h.formFiles(c, "files")
	if err != nil {
		h.handleError(c, action, err)
		return nil, nil, false
	}
	accepted, rejected := h.Study.Accept(files, false)
	if len(accepted) == 0 {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"error":    action + ": no supported images were uploaded",
			"rejected": rejected,
		})
		return nil, nil, false
	}
	return accepted, rejected, true
}

// HandleAnalyze godoc
// @Summary      Extract key points from images
// @Description  Each image is analysed on its own. Unsupported files are listed in rejected.
// @Tags         analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        files     formData  file    true   "Images"
// @Param        language  formData  string  false  "english or tamil"
// @Success      200  {object}  AnalyzeResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      415  {object}  models.ErrorResponse
// @Router       /api/analyze [post]
func (h *Handler) HandleAnalyze(c *gin.Context) {
	const action = "Analyze Images"
	lang, err := parseLanguage(c.PostForm("language"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	accepted, rejected, ok := h.acceptImages(c, action)
	if !ok {
		return
	}

	results, err := h.Study.AnalyzeImages(c.Request.Context(), accepted, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusOK, AnalyzeResponse{Results: results, Rejected: rejected})
}

// HandleQuickQuiz godoc
// @Summary  Build a quiz straight from images
// @Tags     questions
// @Accept   multipart/form-data
// @Produce  json
// @Param    files       formData  file    true   "Images"
// @Param    difficulty  formData  string  false  "easy, medium, hard or very-hard"
// @Param    language    formData  string  false  "english or tamil"
// @Param    shuffle     query     bool    false  "Shuffle the questions"
// @Success  200  {object}  models.QuestionResult
// @Failure  400  {object}  models.ErrorResponse
// @Router   /api/quick-quiz [post]
func (h *Handler) HandleQuickQuiz(c *gin.Context) {
	const action = "Quick Quiz"
	lang, err := parseLanguage(c.PostForm("language"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	difficulty, err := parseDifficulty(c.PostForm("difficulty"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	accepted, _, ok := h.acceptImages(c, action)
	if !ok {
		return
	}

	res, err := h.Study.QuickQuiz(c.Request.Context(), accepted, difficulty, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	respondQuestions(c, res)
}

// HandleGenerateQuestions godoc
// @Summary  Generate questions from analyses
// @Tags     questions
// @Accept   json
// @Produce  json
// @Param    request  body   QuestionsRequest  true   "Analyses and options"
// @Param    shuffle  query  bool              false  "Shuffle the questions"
// @Success  200  {object}  models.QuestionResult
// @Failure  400  {object}  models.ErrorResponse
// @Router   /api/questions [post]
func (h *Handler) HandleGenerateQuestions(c *gin.Context) {
	const action = "Generate Questions"
	var req QuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, action, badRequest("invalid request body: %v", err))
		return
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		h.handleError(c, action, err)
		return
	}

	res, err := h.Study.GenerateQuestions(c.Request.Context(), req.Analyses, difficulty, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	respondQuestions(c, res)
}

// HandleUploadDocument godoc
// @Summary  Upload a PDF for page-wise analysis
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file  formData  file  true  "PDF"
// @Success  201  {object}  study.Document
// @Failure  400  {object}  models.ErrorResponse
// @Failure  415  {object}  models.ErrorResponse
// @Router   /api/documents [post]
func (h *Handler) HandleUploadDocument(c *gin.Context) {
	const action = "Upload Document"
	fh, err := c.FormFile("file")
	if err != nil {
		h.handleError(c, action, badRequest("a PDF must be uploaded in \"file\""))
		return
	}
	upload, err := readFile(fh, h.maxUploadBytes)
	if err != nil {
		h.handleError(c, action, err)
		return
	}

	doc, err := h.Study.OpenDocument(c.GetString(userIDKey), upload)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// HandleCloseDocument godoc
// @Summary  Forget an uploaded document
// @Tags     documents
// @Param    id  path  string  true  "Document ID"
// @Success  204
// @Failure  404  {object}  models.ErrorResponse
// @Router   /api/documents/{id} [delete]
func (h *Handler) HandleCloseDocument(c *gin.Context) {
	if err := h.Study.CloseDocument(c.GetString(userIDKey), c.Param("id")); err != nil {
		h.handleError(c, "Close Document", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindRange reads an optional RangeRequest body.
func bindRange(c *gin.Context) (RangeRequest, error) {
	var req RangeRequest
	if c.Request.ContentLength == 0 {
		return req, nil
	}
	// Chunked requests report an unknown length, so an empty body only
	// shows up as EOF.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, badRequest("invalid request body: %v", err)
	}
	return req, nil
}

// HandleAnalyzeDocument godoc
// @Summary  Analyse a page range of a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id       path  string        true   "Document ID"
// @Param    request  body  RangeRequest  false  "Pages and language"
// @Success  200  {object}  models.AnalysisResult
// @Failure  400  {object}  models.ErrorResponse
// @Failure  404  {object}  models.ErrorResponse
// @Router   /api/documents/{id}/analyze [post]
func (h *Handler) HandleAnalyzeDocument(c *gin.Context) {
	const action = "Analyze Document"
	req, err := bindRange(c)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		h.handleError(c, action, err)
		return
	}

	res, err := h.Study.AnalyzeDocument(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), req.StartPage, req.EndPage, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleAnalyzePage godoc
// @Summary  Analyse one page of a document
// @Tags     documents
// @Produce  json
// @Param    id        path   string  true   "Document ID"
// @Param    page      path   int     true   "Page number"
// @Param    language  query  string  false  "english or tamil"
// @Success  200  {object}  models.PageAnalysis
// @Failure  400  {object}  models.ErrorResponse
// @Failure  404  {object}  models.ErrorResponse
// @Router   /api/documents/{id}/pages/{page}/analyze [post]
func (h *Handler) HandleAnalyzePage(c *gin.Context) {
	const action = "Analyze Page"
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		h.handleError(c, action, badRequest("invalid page number %q", c.Param("page")))
		return
	}
	lang, err := parseLanguage(c.Query("language"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}

	res, err := h.Study.AnalyzeDocumentPage(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), page, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleComprehensive godoc
// @Summary  Analyse every page of a document
// @Tags     documents
// @Produce  json
// @Param    id        path   string  true   "Document ID"
// @Param    language  query  string  false  "english or tamil"
// @Success  200  {object}  models.ComprehensiveResult
// @Failure  404  {object}  models.ErrorResponse
// @Router   /api/documents/{id}/comprehensive [post]
func (h *Handler) HandleComprehensive(c *gin.Context) {
	const action = "Comprehensive Analysis"
	lang, err := parseLanguage(c.Query("language"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	docID := c.Param("id")
	res, err := h.Study.AnalyzeComprehensive(c.Request.Context(), c.GetString(userIDKey), docID, lang, func(p models.PageAnalysis) {
		log.Debug().Str("document_id", docID).Int("page", p.PageNumber).Msg("page analysed")
	})
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleDocumentQuestions godoc
// @Summary  Generate questions from a page range
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id       path  string        true  "Document ID"
// @Param    request  body   RangeRequest  true   "Pages, difficulty and language"
// @Param    shuffle  query  bool          false  "Shuffle the questions"
// @Success  200  {object}  models.QuestionResult
// @Failure  400  {object}  models.ErrorResponse
// @Failure  404  {object}  models.ErrorResponse
// @Router   /api/documents/{id}/questions [post]
func (h *Handler) HandleDocumentQuestions(c *gin.Context) {
	const action = "Document Questions"
	req, err := bindRange(c)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		h.handleError(c, action, err)
		return
	}

	res, err := h.Study.GenerateQuestionsForRange(c.Request.Context(), c.GetString(userIDKey), c.Param("id"), req.StartPage, req.EndPage, difficulty, lang)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	respondQuestions(c, res)
}
