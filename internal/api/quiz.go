package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"studyassistant/internal/history"
	"studyassistant/internal/models"
	"studyassistant/internal/quiz"
	"studyassistant/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GradeRequest is a finished quiz sent for grading.
type GradeRequest struct {
	Questions  []models.Question   `json:"questions"`
	Answers    []models.UserAnswer `json:"answers"`
	Difficulty string              `json:"difficulty"`
	Language   string              `json:"language"`
	FileName   string              `json:"fileName,omitempty"`
	Save       bool                `json:"save"`
}

// GradeResponse is the graded quiz.
type GradeResponse struct {
	Result    models.QuizResult `json:"result"`
	Feedback  string            `json:"feedback"`
	HistoryID string            `json:"historyId,omitempty"`
}

// ReportRequest asks for a PDF report of generated content.
type ReportRequest struct {
	Title   string          `json:"title"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content" swaggertype:"object"`
}

// HandleGradeQuiz godoc
// @Summary      Grade a quiz
// @Description  With save set, the quiz is stored in the caller's history.
// @Tags         quiz
// @Accept       json
// @Produce      json
// @Param        request  body  GradeRequest  true  "Questions and answers"
// @Success      200  {object}  GradeResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/quiz/grade [post]
func (h *Handler) HandleGradeQuiz(c *gin.Context) {
	const action = "Grade Quiz"
	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, action, badRequest("invalid request body: %v", err))
		return
	}
	if len(req.Questions) == 0 {
		h.handleError(c, action, badRequest("at least one question is required"))
		return
	}
	userID := c.GetString(userIDKey)
	if req.Save && userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required to save results"})
		return
	}

	result := quiz.Grade(req.Questions, req.Answers, req.Difficulty)
	resp := GradeResponse{Result: result, Feedback: quiz.Feedback(result.Percentage)}

	if req.Save {
		data, err := json.Marshal(gin.H{"questions": req.Questions, "answers": req.Answers})
		if err != nil {
			h.handleError(c, action, fmt.Errorf("failed to encode quiz: %w", err))
			return
		}
		fileName := req.FileName
		if fileName == "" {
			d := result.Difficulty
			if d == "" {
				d = string(models.DifficultyMedium)
			}
			fileName = "Quiz - " + strings.ToUpper(d)
		}
		id, err := h.History.Save(c.Request.Context(), userID, history.TypeQuiz, data, history.SaveOptions{
			FileName:       fileName,
			Difficulty:     result.Difficulty,
			Language:       req.Language,
			Score:          &result.Score,
			TotalQuestions: &result.TotalQuestions,
			Percentage:     &result.Percentage,
			QuizAnswers:    result.Answers,
		})
		if err != nil {
			h.handleError(c, action, err)
			return
		}
		resp.HistoryID = id
		log.Info().Str("user_id", userID).Str("history_id", id).Int("percentage", result.Percentage).Msg("quiz result saved")
	}
	c.JSON(http.StatusOK, resp)
}

// writePDF renders doc and sends it as a download.
func (h *Handler) writePDF(c *gin.Context, action string, doc report.Document) {
	var buf bytes.Buffer
	pages, err := h.Reports.Render(&buf, doc)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	log.Debug().Str("title", doc.Title).Str("kind", string(doc.Kind)).Int("pages", pages).Msg("report rendered")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(doc.Title)))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// HandleReport godoc
// @Summary      Render a PDF report
// @Description  type is one of keypoints, analysis, questions or quiz-results.
// @Tags         reports
// @Accept       json
// @Produce      application/pdf
// @Param        request  body  ReportRequest  true  "Report content"
// @Success      200  {file}    file
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/reports [post]
func (h *Handler) HandleReport(c *gin.Context) {
	const action = "Generate Report"
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, action, badRequest("invalid request body: %v", err))
		return
	}
	kind, err := report.ParseKind(req.Type)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	doc, err := report.DecodeDocument(req.Title, kind, req.Content)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	h.writePDF(c, action, doc)
}
