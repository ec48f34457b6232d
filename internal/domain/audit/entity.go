// Package audit defines the content of per-transition audit entries. The
// durable audit trail is an external collaborator; this package fixes what
// must be captured and when.
package audit

import "time"

type Entry struct {
	ID        string
	UserID    string
	RecordID  *string
	Action    string
	FromState string
	ToState   string
	Details   map[string]interface{}
	CreatedAt time.Time
}

// Actions recorded by the attendance core.
const (
	ActionCheckIn            = "check_in"
	ActionCheckOut           = "check_out"
	ActionEmergencyCheckOut  = "emergency_check_out"
	ActionAutoCheckout       = "auto_checkout"
	ActionOffPremisesSubmit  = "offpremises_submit"
	ActionOffPremisesApprove = "offpremises_approve"
	ActionOffPremisesDeny    = "offpremises_deny"
	ActionDeviceConflict     = "device_conflict"
)
