package domain

import "time"

// NotificationType tags what a notification is about.
type NotificationType string

const (
	NotificationOrderCreated   NotificationType = "order_created"
	NotificationOrderStatus    NotificationType = "order_status"
	NotificationOrderCancelled NotificationType = "order_cancelled"
)

// Notification is a write-only record from the core's perspective: the core
// appends them, an external renderer polls and displays them.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
