package notifications

import (
	"context"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

// Service owns the notification feed. Creation fans out a realtime event so
// connected clients refresh without polling.
type Service struct {
	repo   Repository
	events realtime.Publisher
}

func NewService(repo Repository, events realtime.Publisher) *Service {
	return &Service{repo: repo, events: events}
}

func (s *Service) Create(ctx context.Context, n *Notification) (string, error) {
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	id, err := s.repo.Create(ctx, n)
	if err != nil {
		return "", err
	}
	metrics.NotificationsEmitted.WithLabelValues(n.Type).Inc()
	if s.events != nil {
		s.events.Publish(realtime.UserTopic(n.UserID), realtime.Event{
			Type:   realtime.EventNotificationCreated,
			UserID: n.UserID,
			At:     n.CreatedAt,
		})
	}
	return id, nil
}

// Feed returns the user's notifications newest first plus the derived unread
// count.
func (s *Service) Feed(ctx context.Context, uid string) ([]*Notification, int, error) {
	list, err := s.repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, 0, err
	}
	return list, UnreadCount(list), nil
}

func (s *Service) MarkRead(ctx context.Context, uid, id string) error {
	return s.repo.MarkRead(ctx, uid, id)
}

func (s *Service) MarkAllRead(ctx context.Context, uid string) (int64, error) {
	return s.repo.MarkAllRead(ctx, uid)
}
