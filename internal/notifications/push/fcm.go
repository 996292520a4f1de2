// Package push sends notifications to mobile and web clients through
// Firebase Cloud Messaging topics.
package push

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/ekip-platform/ekip-api/internal/notifications/domain"
)

const topicAll = "all"

type sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCM struct {
	client sender
}

// NewFCM initialises the Firebase app from a service account file.
func NewFCM(ctx context.Context, credentialsPath string) (*FCM, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Messaging client: %w", err)
	}
	return &FCM{client: client}, nil
}

// Topic returns the FCM topic subscribed to by the notification's audience.
func Topic(n domain.Notification) string {
	if n.Audience == domain.AudienceUser && n.AuthUserID != nil {
		return "user_" + *n.AuthUserID
	}
	return topicAll
}

// Message builds the FCM payload for a notification.
func Message(n domain.Notification) *messaging.Message {
	data := map[string]string{
		"id":       strconv.FormatInt(n.ID, 10),
		"type":     n.Type,
		"category": n.Category,
	}
	if n.LinkURL != nil {
		data["link_url"] = *n.LinkURL
	}
	return &messaging.Message{
		Topic:        Topic(n),
		Notification: &messaging.Notification{Title: n.Title, Body: n.Message},
		Data:         data,
	}
}

func (f *FCM) Send(ctx context.Context, n domain.Notification) error {
	if _, err := f.client.Send(ctx, Message(n)); err != nil {
		return fmt.Errorf("fcm send to %s: %w", Topic(n), err)
	}
	return nil
}
