package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/notifications/domain"
)

type Store interface {
	Visible(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	States(ctx context.Context, userID string, ids []int64) (map[int64]domain.State, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID string, id int64) error
	Insert(ctx context.Context, in domain.NewNotification) (*domain.Notification, error)
}

// Publisher fans a stored notification out to live streams.
type Publisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Pusher delivers a notification to devices.
type Pusher interface {
	Send(ctx context.Context, n domain.Notification) error
}

type NotificationService struct {
	store     Store
	publisher Publisher
	pusher    Pusher
}

// NewNotificationService wires the store with optional fan-out. A nil
// publisher or pusher disables that channel.
func NewNotificationService(store Store, publisher Publisher, pusher Pusher) *NotificationService {
	return &NotificationService{store: store, publisher: publisher, pusher: pusher}
}

func (s *NotificationService) List(ctx context.Context, userID string) (domain.Inbox, error) {
	items, states, err := s.load(ctx, userID)
	if err != nil {
		return domain.Inbox{}, err
	}
	return domain.Merge(items, states), nil
}

func (s *NotificationService) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	items, states, err := s.load(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Summarize(items, states), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id int64) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID string, id int64) error {
	return s.store.Delete(ctx, userID, id)
}

// Create stores the notification, then publishes it and optionally pushes
// it. Fan-out failures are logged; the stored notification is returned
// regardless.
func (s *NotificationService) Create(ctx context.Context, in domain.NewNotification) (*domain.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Title == "" || in.Message == "" {
		return nil, fmt.Errorf("%w: title and message are required", domain.ErrInvalid)
	}
	if in.Audience == domain.AudienceUser && (in.AuthUserID == nil || strings.TrimSpace(*in.AuthUserID) == "") {
		return nil, fmt.Errorf("%w: auth_user_id is required for audience user", domain.ErrInvalid)
	}
	if in.Audience == domain.AudienceAll {
		in.AuthUserID = nil
	}

	n, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	log := logging.Op(ctx, "notifications.create").WithField("notification_id", n.ID)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, *n); err != nil {
			log.WithError(err).Warn("publish failed")
		}
	}
	if in.Push && s.pusher != nil {
		if err := s.pusher.Send(ctx, *n); err != nil {
			log.WithError(err).Warn("push failed")
		}
	}
	return n, nil
}

func (s *NotificationService) load(ctx context.Context, userID string) ([]domain.Notification, map[int64]domain.State, error) {
	items, err := s.store.Visible(ctx, userID, domain.ListLimit)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	states, err := s.store.States(ctx, userID, ids)
	if err != nil {
		// the list is still useful without read state
		logging.Op(ctx, "notifications.states").WithError(err).Warn("load states failed")
		states = map[int64]domain.State{}
	}
	return items, states, nil
}
