package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveApproved  NotificationType = "leave_approved"
	TypeLeaveRejected  NotificationType = "leave_rejected"
	TypeLeaveCancelled NotificationType = "leave_cancelled"
)

// CategoryLeave groups every leave lifecycle notification.
const CategoryLeave = "LEAVE"

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	Category    string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
