package notification

import (
	"sync"

	"github.com/rs/zerolog"
)

// Client is a single websocket connection owned by a user. Messages are
// delivered through the buffered Send channel; the connection's write
// loop drains it.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte
}

// NewClient creates a client with the given send buffer size.
func NewClient(id, userID string, bufferSize int) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Send:   make(chan []byte, bufferSize),
	}
}

// Hub fans notifications out to the websocket clients of each user.
// A user may have any number of concurrent connections.
type Hub struct {
	mu          sync.RWMutex
	userClients map[string]map[*Client]struct{}
	logger      zerolog.Logger
}

// NewHub creates a new hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		userClients: make(map[string]map[*Client]struct{}),
		logger:      logger.With().Str("component", "notification_hub").Logger(),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userClients[client.UserID] == nil {
		h.userClients[client.UserID] = make(map[*Client]struct{})
	}
	h.userClients[client.UserID][client] = struct{}{}

	h.logger.Debug().
		Str("client_id", client.ID).
		Str("user_id", client.UserID).
		Msg("client registered")
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.userClients[client.UserID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	if len(clients) == 0 {
		delete(h.userClients, client.UserID)
	}
	close(client.Send)

	h.logger.Debug().
		Str("client_id", client.ID).
		Str("user_id", client.UserID).
		Msg("client unregistered")
}

// Publish delivers a message to all of a user's connected clients.
// Clients with a full buffer are skipped rather than blocked on.
func (h *Hub) Publish(userID string, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userClients[userID] {
		select {
		case client.Send <- msg:
		default:
			h.logger.Debug().
				Str("client_id", client.ID).
				Msg("dropping message, client buffer full")
		}
	}
}

// ConnectionCount reports the number of connected clients for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// CloseAll unregisters every client. Called on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userClients {
		for client := range clients {
			close(client.Send)
		}
		delete(h.userClients, userID)
	}
}
