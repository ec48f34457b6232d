package attendance

import (
	"context"
	"time"
)

// Repository defines data access for attendance records.
type Repository interface {
	// Create inserts a new record. A unique-violation error from the
	// one-open-record-per-user-per-day index must be surfaced unwrapped
	// enough for the service to detect it.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByID retrieves a record by id
	GetByID(ctx context.Context, id string) (Record, error)

	// GetByUserAndDate retrieves the record for a user on a work day,
	// open or closed. Returns nil when none exists.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)

	// GetOpenSession retrieves the user's most recent open record across
	// any day, used both for check-out and the stale-session sweep.
	GetOpenSession(ctx context.Context, userID string) (*Record, error)

	// CloseSession sets the check-out fields of an open record. The update
	// is conditional on the record still being open; ok=false means another
	// writer closed it first.
	CloseSession(ctx context.Context, record Record) (ok bool, err error)

	// ListOpenBefore returns open records whose work day is before the
	// given day, for the missed-checkout sweep.
	ListOpenBefore(ctx context.Context, day time.Time) ([]Record, error)

	// List retrieves records with filters and pagination
	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)

	// ListByUser retrieves records for one user with filters and pagination
	ListByUser(ctx context.Context, userID string, filter RecordFilter) ([]Record, int64, error)
}
