package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeDeviceConflict      NotificationType = "device_conflict"
	TypeOffPremisesRequest  NotificationType = "offpremises_request"
	TypeOffPremisesApproved NotificationType = "offpremises_approved"
	TypeOffPremisesDenied   NotificationType = "offpremises_denied"
	TypeAutoCheckout        NotificationType = "auto_checkout"
	TypeEmergencyCheckout   NotificationType = "emergency_checkout"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
