package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/api/metrics"
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// NotificationService appends and reads notification records. The core only
// ever writes them; rendering is someone else's job.
type NotificationService struct {
	store *store.Store
	log   zerolog.Logger
}

func NewNotificationService(st *store.Store, log zerolog.Logger) *NotificationService {
	return &NotificationService{store: st, log: log}
}

func (s *NotificationService) Create(ctx context.Context, in ports.NotificationInput) (*domain.Notification, error) {
	var created domain.Notification
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		ns, err := tx.Notifications()
		if err != nil {
			return err
		}
		created = domain.Notification{
			ID:        tx.GenerateID(),
			UserID:    in.UserID,
			Type:      in.Type,
			Title:     in.Title,
			Message:   in.Message,
			CreatedAt: time.Now().UTC(),
		}
		return tx.SaveNotifications(append(ns, created))
	})
	if err != nil {
		return nil, err
	}

	metrics.NotificationsWrittenTotal.WithLabelValues(string(in.Type)).Inc()
	return &created, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.store.View(ctx, func(tx *store.Tx) error {
		ns, err := tx.Notifications()
		if err != nil {
			return err
		}
		for _, n := range ns {
			if n.UserID != userID {
				continue
			}
			if unreadOnly && n.IsRead {
				continue
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		ns, err := tx.Notifications()
		if err != nil {
			return err
		}
		for i := range ns {
			if ns[i].ID == notificationID && ns[i].UserID == userID {
				ns[i].IsRead = true
				return tx.SaveNotifications(ns)
			}
		}
		return domain.ErrNotificationNotFound
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.Update(ctx, func(tx *store.Tx) error {
		ns, err := tx.Notifications()
		if err != nil {
			return err
		}
		changed := false
		for i := range ns {
			if ns[i].UserID == userID && !ns[i].IsRead {
				ns[i].IsRead = true
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return tx.SaveNotifications(ns)
	})
}
