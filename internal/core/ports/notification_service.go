package ports

import (
	"context"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
)

// NotificationInput is the DTO handed to the dispatcher by the core when an
// order event needs to reach a user.
type NotificationInput struct {
	UserID  string
	Type    domain.NotificationType
	Title   string
	Message string
}

// NotificationService appends and reads the notification records an external
// renderer polls.
type NotificationService interface {
	Create(ctx context.Context, in NotificationInput) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}
