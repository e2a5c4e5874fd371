// Package notification stores and delivers per-user notifications.
// Notifications are created by the event listener in response to fleet
// activity and can additionally be pushed to connected websocket clients
// through the Hub.
package notification

import (
	"errors"
	"time"
)

// Predefined errors.
var (
	ErrNotificationNotFound = errors.New("notification not found")
)

// DefaultPageSize is the number of notifications per page.
const DefaultPageSize = 10

// Notification is a message addressed to a single user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}

// ListOptions controls pagination. Page is 1-based.
type ListOptions struct {
	Page     int
	PageSize int
}

// ListResult is a page of notifications with the total count.
type ListResult struct {
	Items      []*Notification
	TotalItems int
}
