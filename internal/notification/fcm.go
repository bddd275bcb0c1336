package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/osse101/EcoRewards_Go/internal/logger"
	"github.com/osse101/EcoRewards_Go/internal/repository"
)

// MessagingClient is the subset of *messaging.Client used for delivery
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender pushes notifications through Firebase Cloud Messaging
type FCMSender struct {
	client MessagingClient
	tokens repository.DeviceTokenStore
}

// NewFCMSender creates a sender from a service account credentials file
func NewFCMSender(ctx context.Context, credentialsFile string, tokens repository.DeviceTokenStore) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}
	return NewFCMSenderWithClient(client, tokens), nil
}

// NewFCMSenderWithClient wraps an existing messaging client
func NewFCMSenderWithClient(client MessagingClient, tokens repository.DeviceTokenStore) *FCMSender {
	return &FCMSender{client: client, tokens: tokens}
}

// Send delivers to every registered device of userID one by one and reports
// whether at least one device accepted the message.
func (s *FCMSender) Send(ctx context.Context, userID, title, body string, data map[string]string) bool {
	log := logger.FromContext(ctx)

	tokens, err := s.tokens.TokensFor(ctx, userID)
	if err != nil {
		log.Warn(LogMsgTokenLookupFailed, "user_id", userID, "error", err)
		return false
	}
	if len(tokens) == 0 {
		log.Debug(LogMsgNoDeviceTokens, "user_id", userID)
		return false
	}

	sent := 0
	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
			Android: &messaging.AndroidConfig{
				Priority: androidPriorityHigh,
				Notification: &messaging.AndroidNotification{
					Sound: androidSoundDefault,
				},
			},
		}
		if _, err := s.client.Send(ctx, msg); err != nil {
			log.Warn(LogMsgPushFailed, "user_id", userID, "error", err)
			continue
		}
		sent++
	}

	log.Debug(LogMsgPushSent, "user_id", userID, "sent", sent, "failed", len(tokens)-sent)
	return sent > 0
}
