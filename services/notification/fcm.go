package notification

import (
	"context"
	"fmt"

	userRepo "fikerless/database/repository/user"
	"fikerless/utils"

	"firebase.google.com/go/v4/messaging"
)

// FCMSink is the production NotificationSink: it looks up the recipient's
// FCM token and sends one push through Firebase Cloud Messaging.
type FCMSink struct {
	Users userRepo.UserRepository
}

// NewFCMSink constructs an FCM-backed sink.
func NewFCMSink(users userRepo.UserRepository) (*FCMSink, error) {
	if users == nil {
		return nil, fmt.Errorf("notification sink initialization error: user repository is nil")
	}
	return &FCMSink{Users: users}, nil
}

// Send looks up the recipient's FCM token and delivers a push.
func (s *FCMSink) Send(ctx context.Context, recipientID, title, body, notifType string, data map[string]string) error {
	u, err := s.Users.GetByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("Send: could not find recipient %s: %w", recipientID, err)
	}
	if u.FCMToken == "" {
		return fmt.Errorf("Send: recipient %s has no FCM token", recipientID)
	}

	if data == nil {
		data = map[string]string{}
	}
	data["type"] = notifType
	if _, ok := data["role"]; !ok {
		data["role"] = u.Role
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("Send: failed to send FCM message: %w", err)
	}
	return nil
}
