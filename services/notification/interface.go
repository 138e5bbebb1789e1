package notification

import "context"

// NotificationSink delivers a push notification to one recipient. A send
// failure is non-fatal: callers must not retry synchronously.
type NotificationSink interface {
	Send(ctx context.Context, recipientID, title, body, notifType string, data map[string]string) error
}
