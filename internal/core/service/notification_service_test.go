package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
)

func TestNotificationService_CreateAndList(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewNotificationService(st, discardLogger)
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u1", Type: domain.NotificationOrderCreated, Title: "first"})
	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u1", Type: domain.NotificationOrderStatus, Title: "second"})
	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u2", Type: domain.NotificationOrderStatus, Title: "other user"})

	got, err := svc.ListForUser(ctx, "u1", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications for u1, got %d", len(got))
	}
	// Newest first.
	if got[0].Title != "second" {
		t.Errorf("expected newest first, got %q", got[0].Title)
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewNotificationService(st, discardLogger)
	ctx := context.Background()

	n, _ := svc.Create(ctx, ports.NotificationInput{UserID: "u1", Type: domain.NotificationOrderStatus})

	if err := svc.MarkRead(ctx, "u1", n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unread, _ := svc.ListForUser(ctx, "u1", true)
	if len(unread) != 0 {
		t.Errorf("expected no unread notifications, got %d", len(unread))
	}

	// Another user cannot acknowledge someone else's notification.
	if err := svc.MarkRead(ctx, "u2", n.ID); !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	st, _ := newTestStore(t)
	svc := NewNotificationService(st, discardLogger)
	ctx := context.Background()

	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u1", Type: domain.NotificationOrderStatus})
	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u1", Type: domain.NotificationOrderStatus})
	_, _ = svc.Create(ctx, ports.NotificationInput{UserID: "u2", Type: domain.NotificationOrderStatus})

	if err := svc.MarkAllRead(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unread, _ := svc.ListForUser(ctx, "u1", true)
	if len(unread) != 0 {
		t.Errorf("expected no unread for u1, got %d", len(unread))
	}
	otherUnread, _ := svc.ListForUser(ctx, "u2", true)
	if len(otherUnread) != 1 {
		t.Errorf("u2's notifications must be untouched, got %d unread", len(otherUnread))
	}

	// Re-running with nothing unread is a no-op.
	if err := svc.MarkAllRead(ctx, "u1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
