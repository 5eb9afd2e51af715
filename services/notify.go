package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"civicpulse/model"
)

// Notifier pushes status-change messages to citizens over FCM. A nil
// Notifier (no credentials configured) is valid and does nothing.
type Notifier struct {
	client *messaging.Client
	log    *zap.Logger
}

// NewNotifier initializes the FCM client from a service-account file.
// Returns (nil, nil) when credentialsPath is empty so callers can treat
// push as optional.
func NewNotifier(ctx context.Context, credentialsPath string, log *zap.Logger) (*Notifier, error) {
	if credentialsPath == "" {
		return nil, nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting messaging client: %w", err)
	}
	return &Notifier{client: client, log: log}, nil
}

// StatusChanged tells the report owner about a status transition. Failures
// are logged, never surfaced to the request that triggered them.
func (n *Notifier) StatusChanged(ctx context.Context, owner model.User, report model.Report, entry model.StatusUpdate) {
	if n == nil || owner.FCMToken == "" {
		return
	}
	msg := &messaging.Message{
		Token: owner.FCMToken,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("Report %q is now %s", report.Title, entry.Status),
			Body:  entry.Message,
		},
		Data: map[string]string{
			"reportId": report.ID.Hex(),
			"status":   string(entry.Status),
		},
	}
	if _, err := n.client.Send(ctx, msg); err != nil {
		n.log.Warn("fcm send failed",
			zap.String("reportId", report.ID.Hex()),
			zap.Error(err))
	}
}
