package channels

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// chatFrame is one message exchanged over the web chat socket.
type chatFrame struct {
	Type  string `json:"type"`
	Body  string `json:"body"`
	Error string `json:"error,omitempty"`
}

const (
	frameQuestion = "question"
	frameAnswer   = "answer"
	frameError    = "error"
)

// WebChatHandler serves the browser chat channel over a websocket. Frames
// are synchronous: one question in, one answer out, in order.
type WebChatHandler struct {
	responder Responder
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewWebChatHandler creates the handler. allowAllOrigins relaxes the origin
// check for embedded widgets on third-party property sites.
func NewWebChatHandler(responder Responder, allowAllOrigins bool, logger *zap.Logger) *WebChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &WebChatHandler{
		responder: responder,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	if allowAllOrigins {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

// ServeHTTP upgrades the connection and runs the chat loop. The property id
// comes from the "property" query parameter; a missing id is rejected before
// the upgrade.
func (h *WebChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	propertyID := strings.TrimSpace(r.URL.Query().Get("property"))
	if propertyID == "" {
		http.Error(w, "missing property parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Each socket is one anonymous session with its own history window.
	sessionID := "webchat:" + uuid.NewString()
	h.logger.Info("web chat session opened", zap.String("property_id", propertyID))

	for {
		var frame chatFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("web chat session closed unexpectedly", zap.Error(err))
			}
			return
		}

		body := strings.TrimSpace(frame.Body)
		if frame.Type != frameQuestion || body == "" {
			h.writeFrame(conn, chatFrame{Type: frameError, Error: "expected a question frame with a body"})
			continue
		}

		answer := h.responder.Respond(r.Context(), InboundMessage{
			Channel:          ChannelWebChat,
			RawSenderID:      sessionID,
			NormalizedSender: sessionID,
			PropertyID:       propertyID,
			Body:             body,
		})

		if !h.writeFrame(conn, chatFrame{Type: frameAnswer, Body: answer}) {
			return
		}
	}
}

func (h *WebChatHandler) writeFrame(conn *websocket.Conn, frame chatFrame) bool {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug("web chat write failed", zap.Error(err))
		return false
	}
	return true
}
