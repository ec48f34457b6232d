package offpremises

import "context"

// Service orchestrates the off-premises exception workflow.
type Service interface {
	// Submit files a request and resolves its approving managers
	Submit(ctx context.Context, req SubmitRequest) (RequestResponse, error)

	// Decide approves or denies a pending request exactly once. Approval
	// creates an attendance record anchored at the submission time.
	Decide(ctx context.Context, req DecideRequest) (DecideResponse, error)

	// ListPending returns the caller's approval inbox
	ListPending(ctx context.Context) ([]RequestResponse, error)
}
