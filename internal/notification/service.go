package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository defines the interface for notification storage.
type Repository interface {
	// Add stores a new notification.
	Add(ctx context.Context, n *Notification) error

	// Get retrieves a notification by ID.
	Get(ctx context.Context, id string) (*Notification, error)

	// ListByUser retrieves a user's notifications, newest first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// CountUnread counts a user's unread notifications.
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead marks a single notification as read.
	MarkRead(ctx context.Context, userID, id string) error

	// MarkAllRead marks all of a user's notifications as read.
	MarkAllRead(ctx context.Context, userID string) error
}

// Service provides notification operations. If a Hub is configured,
// newly created notifications are also pushed to the user's connected
// websocket clients.
type Service struct {
	repo   Repository
	hub    *Hub
	logger zerolog.Logger
}

// NewService creates a new notification service. hub may be nil.
func NewService(repo Repository, hub *Hub, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hub:    hub,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Notify creates a notification for a user and pushes it to any
// connected clients.
func (s *Service) Notify(ctx context.Context, userID, message string) (*Notification, error) {
	n := &Notification{
		ID:        "ntf_" + uuid.New().String()[:22],
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Add(ctx, n); err != nil {
		return nil, fmt.Errorf("storing notification: %w", err)
	}

	s.push(n)
	return n, nil
}

// ListByUser retrieves a page of a user's notifications.
func (s *Service) ListByUser(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	return s.repo.ListByUser(ctx, userID, opts)
}

// CountUnread counts a user's unread notifications.
func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks a single notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks all of a user's notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// push serializes the notification and hands it to the hub. Delivery is
// best-effort: a full client buffer or missing hub never fails Notify.
func (s *Service) push(n *Notification) {
	if s.hub == nil {
		return
	}

	data, err := json.Marshal(streamMessage{
		Type:      "notification",
		ID:        n.ID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("marshaling notification for push")
		return
	}

	s.hub.Publish(n.UserID, data)
}

type streamMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}
