package handler

import (
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/notification"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notifications *notification.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /v1/notifications?page= - the caller's notifications,
// newest first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	page := pageParam(r)

	result, err := h.notifications.ListByUser(r.Context(), userID, notification.ListOptions{
		Page:     page,
		PageSize: notification.DefaultPageSize,
	})
	if err != nil {
		response.InternalError(w, r, "listing notifications failed")
		return
	}

	items := make([]models.Notification, 0, len(result.Items))
	for _, n := range result.Items {
		items = append(items, models.Notification{
			ID:        n.ID,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: models.Timestamp(n.CreatedAt),
		})
	}

	totalPages := (result.TotalItems + notification.DefaultPageSize - 1) / notification.DefaultPageSize

	response.JSON(w, r, http.StatusOK, models.PagedNotifications{
		Items: items,
		Meta: models.PagedResponseMeta{
			Page:       page,
			PageSize:   notification.DefaultPageSize,
			TotalItems: result.TotalItems,
			TotalPages: totalPages,
		},
	})
}

// UnreadCount handles GET /v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.CountUnread(r.Context(), GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w, r, "counting notifications failed")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead handles PUT /v1/notifications/{notificationId}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), GetUserID(r.Context()), urlParam(r, "notificationId"))
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			response.NotFound(w, r, "notification not found")
			return
		}
		response.InternalError(w, r, "marking notification read failed")
		return
	}

	response.NoContent(w, r)
}

// MarkAllRead handles PUT /v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context(), GetUserID(r.Context())); err != nil {
		response.InternalError(w, r, "marking notifications read failed")
		return
	}

	response.NoContent(w, r)
}
