package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fleetdispatch/fleetdispatch/internal/notification"
)

// sendBufferSize is the per-connection send buffer. Notifications beyond
// this while the client is slow are dropped by the hub.
const sendBufferSize = 64

// StreamHandler serves the live notification stream over websocket.
type StreamHandler struct {
	hub    *notification.Hub
	logger zerolog.Logger
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(hub *notification.Hub, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger.With().Str("component", "notification_stream").Logger(),
	}
}

// Serve handles GET /v1/notifications/stream - upgrade to websocket and
// push the caller's notifications as they are created. Must be mounted
// behind the auth middleware.
func (h *StreamHandler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket accept failed")
		return
	}

	client := notification.NewClient(uuid.New().String(), userID, sendBufferSize)
	h.hub.Register(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writeLoop(ctx, conn, client)

	h.readLoop(ctx, conn, client)
}

// readLoop drains incoming frames until the client disconnects. The
// stream is one-way; anything the client sends is discarded.
func (h *StreamHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *notification.Client) {
	defer func() {
		h.hub.Unregister(client)
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := conn.Read(ctx); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				h.logger.Debug().
					Str("client_id", client.ID).
					Err(err).
					Msg("websocket read error")
			}
			return
		}
	}
}

func (h *StreamHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *notification.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
