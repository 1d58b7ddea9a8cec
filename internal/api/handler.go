package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"studyassistant/internal/gemini"
	"studyassistant/internal/history"
	"studyassistant/internal/models"
	"studyassistant/internal/notify"
	"studyassistant/internal/report"
	"studyassistant/internal/study"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errBadRequest = errors.New("bad request")

// Handler contains the API handlers dependencies
type Handler struct {
	Study    *study.Service
	History  *history.Service
	Reports  *report.Renderer
	Notifier *notify.Notifier

	maxUploadBytes int64
	upgrader       websocket.Upgrader
}

// NewHandler creates a new Handler. notifier may be nil.
func NewHandler(s *study.Service, h *history.Service, r *report.Renderer, notifier *notify.Notifier, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		Study:          s,
		History:        h,
		Reports:        r,
		Notifier:       notifier,
		maxUploadBytes: maxUploadBytes,
		upgrader:       websocket.Upgrader{CheckOrigin: originChecker("")},
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, study.ErrInvalidInput),
		errors.Is(err, history.ErrInvalid),
		errors.Is(err, report.ErrInvalidContent),
		errors.Is(err, gemini.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, study.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, study.ErrNotFound), errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, history.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err, notifies Discord about server-side failures and
// aborts the request with a JSON error.
func (h *Handler) handleError(c *gin.Context, action string, err error) {
	status := statusFor(err)
	userID := c.GetString(userIDKey)

	evt := log.Warn()
	if status >= http.StatusInternalServerError {
		evt = log.Error()
		h.Notifier.Notify(notify.ErrorEmbed(action, err, status, c.Request.URL.Path, userID))
	}
	evt.Err(err).Str("action", action).Int("status", status).Str("user_id", userID).Msg("request failed")

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: fmt.Sprintf("%s: %v", action, err)})
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func readFile(fh *multipart.FileHeader, limit int64) (study.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return study.Upload{}, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
	}
	defer f.Close()

	// One extra byte lets the size check see oversized files.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return study.Upload{}, fmt.Errorf("failed to read uploaded file %s: %w", fh.Filename, err)
	}
	return study.Upload{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// formFiles reads every file sent under field.
func (h *Handler) formFiles(c *gin.Context, field string) ([]study.Upload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, badRequest("failed to parse multipart form: %v", err)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, badRequest("no files uploaded in %q", field)
	}
	uploads := make([]study.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := readFile(fh, h.maxUploadBytes)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func parseLanguage(s string) (models.Language, error) {
	lang, err := models.ParseLanguage(s)
	if err != nil {
		return "", badRequest("%v", err)
	}
	return lang, nil
}

func parseDifficulty(s string) (models.Difficulty, error) {
	d, err := models.ParseDifficulty(s)
	if err != nil {
		return "", badRequest("%v", err)
	}
	return d, nil
}

// HandleHealth godoc
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /healthz [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
