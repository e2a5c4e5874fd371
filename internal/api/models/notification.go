package models

// Notification is a user-facing event message.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt Timestamp `json:"createdAt"`
}

// PagedNotifications is a page of notifications.
type PagedNotifications struct {
	Items []Notification    `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
