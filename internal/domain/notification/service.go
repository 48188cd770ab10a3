package notification

import (
	"context"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/sse"
)

// Service defines the notification service interface
type Service interface {
	// Notify queues a notification for async persistence and live delivery
	Notify(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkAsRead(ctx context.Context, recipientID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, recipientID string) error

	// SSE subscription
	Subscribe(recipientID string) (<-chan sse.Event, func())

	// Lifecycle
	Stop()
}
