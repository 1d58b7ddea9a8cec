package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"studyassistant/internal/history"
	"studyassistant/internal/models"

	"github.com/gin-gonic/gin"
)

// SaveHistoryRequest is the record part of a history upload.
type SaveHistoryRequest struct {
	Type           history.Type          `json:"type"`
	Data           json.RawMessage       `json:"data" swaggertype:"object"`
	FileName       string                `json:"fileName,omitempty"`
	Difficulty     string                `json:"difficulty,omitempty"`
	Language       string                `json:"language,omitempty"`
	Score          *int                  `json:"score,omitempty"`
	TotalQuestions *int                  `json:"totalQuestions,omitempty"`
	Percentage     *int                  `json:"percentage,omitempty"`
	QuizAnswers    []models.AnswerReview `json:"quizAnswers,omitempty"`
}

// HandleListHistory godoc
// @Summary   List the caller's study history
// @Tags      history
// @Produce   json
// @Security  BearerAuth
// @Success   200  {array}   history.Record
// @Failure   401  {object}  models.ErrorResponse
// @Router    /api/history [get]
func (h *Handler) HandleListHistory(c *gin.Context) {
	recs, err := h.History.List(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.handleError(c, "List History", err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

// HandleSaveHistory godoc
// @Summary      Save a study session
// @Description  record is a JSON SaveHistoryRequest; files are stored alongside it.
// @Tags         history
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        record  formData  string  true   "SaveHistoryRequest JSON"
// @Param        files   formData  file    false  "Source files"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/history [post]
func (h *Handler) HandleSaveHistory(c *gin.Context) {
	const action = "Save History"
	form, err := c.MultipartForm()
	if err != nil {
		h.handleError(c, action, badRequest("failed to parse multipart form: %v", err))
		return
	}
	raw := form.Value["record"]
	if len(raw) == 0 {
		h.handleError(c, action, badRequest("record is required"))
		return
	}
	var req SaveHistoryRequest
	if err := json.Unmarshal([]byte(raw[0]), &req); err != nil {
		h.handleError(c, action, badRequest("invalid record: %v", err))
		return
	}

	var files []history.Upload
	for _, fh := range form.File["files"] {
		if fh.Size > h.maxUploadBytes {
			h.handleError(c, action, badRequest("%s exceeds %d bytes", fh.Filename, h.maxUploadBytes))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.handleError(c, action, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err))
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		files = append(files, history.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
	}

	id, err := h.History.Save(c.Request.Context(), c.GetString(userIDKey), req.Type, req.Data, history.SaveOptions{
		FileName:       req.FileName,
		Difficulty:     req.Difficulty,
		Language:       req.Language,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		Percentage:     req.Percentage,
		Files:          files,
		QuizAnswers:    req.QuizAnswers,
	})
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// HandleGetHistory godoc
// @Summary   Get one study session
// @Tags      history
// @Produce   json
// @Security  BearerAuth
// @Param     id  path  string  true  "Record ID"
// @Success   200  {object}  history.Record
// @Failure   404  {object}  models.ErrorResponse
// @Router    /api/history/{id} [get]
func (h *Handler) HandleGetHistory(c *gin.Context) {
	rec, err := h.History.Get(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.handleError(c, "Get History", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleDeleteHistory godoc
// @Summary   Delete a study session and its files
// @Tags      history
// @Security  BearerAuth
// @Param     id  path  string  true  "Record ID"
// @Success   204
// @Failure   404  {object}  models.ErrorResponse
// @Router    /api/history/{id} [delete]
func (h *Handler) HandleDeleteHistory(c *gin.Context) {
	if err := h.History.Delete(c.Request.Context(), c.GetString(userIDKey), c.Param("id")); err != nil {
		h.handleError(c, "Delete History", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleHistoryReport godoc
// @Summary   Download a study session as PDF
// @Tags      history
// @Produce   application/pdf
// @Security  BearerAuth
// @Param     id  path  string  true  "Record ID"
// @Success   200  {file}    file
// @Failure   404  {object}  models.ErrorResponse
// @Router    /api/history/{id}/report [get]
func (h *Handler) HandleHistoryReport(c *gin.Context) {
	const action = "History Report"
	rec, err := h.History.Get(c.Request.Context(), c.GetString(userIDKey), c.Param("id"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	doc, err := history.ReportDocument(rec)
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	h.writePDF(c, action, doc)
}
