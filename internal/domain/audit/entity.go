package audit

import "time"

type Action string

const (
	ActionLeaveApproved  Action = "LEAVE_APPROVED"
	ActionLeaveRejected  Action = "LEAVE_REJECTED"
	ActionLeaveCancelled Action = "LEAVE_CANCELLED"
)

const EntityLeaveRequest = "LEAVE_REQUEST"

// Entry is one immutable audit record.
type Entry struct {
	ID         string
	ActorID    string
	Action     Action
	EntityType string
	EntityID   string
	OldValue   *string
	NewValue   *string
	CreatedAt  time.Time
}

type Filter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}
