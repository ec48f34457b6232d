package notification

import "context"

type Repository interface {
	// Create inserts one notification
	Create(ctx context.Context, n *Notification) error

	// CreateBatch inserts a batch of notifications in one round trip
	CreateBatch(ctx context.Context, notifications []*Notification) error

	// GetByUserID retrieves paginated notifications for a recipient
	GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*Notification, int, error)

	// MarkAsRead marks the given notifications as read for a recipient
	MarkAsRead(ctx context.Context, ids []string, userID string) error
}
