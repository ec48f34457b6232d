package notification

import "context"

// Service dispatches best-effort notifications. Queueing never blocks the
// caller's primary write; delivery failures are logged, not surfaced.
type Service interface {
	// Queue enqueues a notification for async persistence and push
	Queue(ctx context.Context, req CreateNotificationRequest) error

	// QueueBulk enqueues several notifications, logging per-item failures
	QueueBulk(ctx context.Context, reqs []CreateNotificationRequest) error

	// GetNotifications retrieves paginated notifications for a user
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]NotificationResponse, int, error)

	// MarkAsRead marks notifications as read
	MarkAsRead(ctx context.Context, userID string, ids []string) error

	// Stop flushes the queue and stops the workers
	Stop()
}
