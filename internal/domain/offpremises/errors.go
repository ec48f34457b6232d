package offpremises

import "errors"

var (
	ErrRequestNotFound       = errors.New("off-premises request not found")
	ErrRequestAlreadyDecided = errors.New("off-premises request has already been decided")
	ErrNoApproverAvailable   = errors.New("no approving manager could be resolved for this request")
)
