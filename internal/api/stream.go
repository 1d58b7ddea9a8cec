package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"studyassistant/internal/models"
	"studyassistant/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

// Stream message types.
const (
	MessagePage   = "page"
	MessageResult = "result"
	MessageError  = "error"
)

// StreamMessage is one frame of the comprehensive analysis stream.
type StreamMessage struct {
	Type      string                      `json:"type"`
	Page      *models.PageAnalysis        `json:"page,omitempty"`
	Completed int                         `json:"completed,omitempty"`
	Result    *models.ComprehensiveResult `json:"result,omitempty"`
	Error     string                      `json:"error,omitempty"`
}

func originChecker(origin string) func(r *http.Request) bool {
	if origin == "" || origin == "*" {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || o == origin
	}
}

// HandleComprehensiveStream godoc
// @Summary      Stream a comprehensive analysis over a WebSocket
// @Description  Sends one "page" message per analysed page, then a "result" message, or an "error" message.
// @Description  The bearer token may be passed as the token query parameter.
// @Tags         documents
// @Param        id        path   string  true   "Document ID"
// @Param        language  query  string  false  "english or tamil"
// @Param        token     query  string  false  "Bearer token"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /ws/documents/{id}/comprehensive [get]
func (h *Handler) HandleComprehensiveStream(c *gin.Context) {
	const action = "Comprehensive Stream"
	lang, err := parseLanguage(c.Query("language"))
	if err != nil {
		h.handleError(c, action, err)
		return
	}
	userID, docID := c.GetString(userIDKey), c.Param("id")
	// Fail before the upgrade so the client sees a plain HTTP error.
	if _, err := h.Study.Document(userID, docID); err != nil {
		h.handleError(c, action, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("document_id", docID).Msg("failed to upgrade to WebSocket")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	// The client only ever closes; a read error means it has gone away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var (
		mu        sync.Mutex
		completed int
	)
	send := func(msg StreamMessage) error {
		mu.Lock()
		defer mu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	res, err := h.Study.AnalyzeComprehensive(ctx, userID, docID, lang, func(p models.PageAnalysis) {
		completed++
		if err := send(StreamMessage{Type: MessagePage, Page: &p, Completed: completed}); err != nil {
			log.Warn().Err(err).Str("document_id", docID).Msg("failed to stream page")
			cancel()
		}
	})
	if err != nil {
		if status := statusFor(err); ctx.Err() == nil && status >= http.StatusInternalServerError {
			h.Notifier.Notify(notify.ErrorEmbed(action, err, status, c.Request.URL.Path, userID))
		}
		log.Error().Err(err).Str("document_id", docID).Msg("comprehensive stream failed")
		_ = send(StreamMessage{Type: MessageError, Error: err.Error()})
	} else {
		_ = send(StreamMessage{Type: MessageResult, Result: res, Completed: completed})
	}

	mu.Lock()
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	mu.Unlock()
}
