package audit

import "context"

type Repository interface {
	// Create persists one audit entry
	Create(ctx context.Context, entry Entry) error
}
