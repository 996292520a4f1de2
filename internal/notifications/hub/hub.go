// Package hub fans notifications out to connected clients through Redis
// Pub/Sub, so every API instance can serve any user's stream.
package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/notifications/domain"
	"github.com/redis/go-redis/v9"
)

const (
	channelAll        = "notifications:all"
	channelUserPrefix = "notifications:user:"
)

// Channel returns the channel a notification is published on.
func Channel(n domain.Notification) string {
	if n.Audience == domain.AudienceUser && n.AuthUserID != nil {
		return UserChannel(*n.AuthUserID)
	}
	return channelAll
}

func UserChannel(userID string) string {
	return channelUserPrefix + userID
}

type Hub struct {
	client *redis.Client
}

func New(client *redis.Client) *Hub {
	return &Hub{client: client}
}

func (h *Hub) Publish(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := h.client.Publish(ctx, Channel(n), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscription delivers the notifications addressed to one user.
type Subscription struct {
	ps *redis.PubSub
	C  <-chan domain.Notification
}

// Subscribe listens on the user's channel and the broadcast channel until
// ctx is done or Close is called.
func (h *Hub) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ps := h.client.Subscribe(ctx, UserChannel(userID), channelAll)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	out := make(chan domain.Notification, 16)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				logging.Op(ctx, "notifications.subscribe").WithError(err).
					WithField("channel", msg.Channel).Warn("drop malformed message")
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return &Subscription{ps: ps, C: out}, nil
}

func (s *Subscription) Close() error {
	return s.ps.Close()
}
