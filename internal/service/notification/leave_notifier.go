package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/leave-ledger/internal/jobs"
)

// EmailEnqueuer hands a leave decision email to the background queue.
type EmailEnqueuer interface {
	EnqueueLeaveDecisionEmail(ctx context.Context, payload jobs.LeaveDecisionEmailPayload) error
}

// LeaveNotifier tells requesters about decisions on their leave requests.
// The e-mail path is optional and only used when both employees and mailer are set.
type LeaveNotifier struct {
	notifications notification.Service
	employees     employee.Repository
	mailer        EmailEnqueuer
	logger        *slog.Logger
}

func NewLeaveNotifier(notifications notification.Service, employees employee.Repository, mailer EmailEnqueuer, logger *slog.Logger) *LeaveNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveNotifier{
		notifications: notifications,
		employees:     employees,
		mailer:        mailer,
		logger:        logger,
	}
}

var _ leave.DecisionNotifier = (*LeaveNotifier)(nil)

func notificationType(status leave.Status) (notification.NotificationType, error) {
	switch status {
	case leave.StatusApproved:
		return notification.TypeLeaveApproved, nil
	case leave.StatusRejected:
		return notification.TypeLeaveRejected, nil
	case leave.StatusCancelled:
		return notification.TypeLeaveCancelled, nil
	case leave.StatusPending:
		return "", fmt.Errorf("no notification for status %s", status)
	default:
		panic(fmt.Sprintf("notification: unhandled leave status %q", status.String()))
	}
}

// DecisionMessage renders the in-app notification text of a decided request.
func DecisionMessage(req leave.LeaveRequest) (title, message string) {
	comments := "None"
	if c, ok := req.Comments(); ok && c != "" {
		comments = c
	}
	title = "Leave Request " + req.Status.String()
	message = fmt.Sprintf("Your leave request for %s to %s has been %s. Manager Comments: %s",
		req.StartDate.Format(holiday.DateLayout),
		req.EndDate.Format(holiday.DateLayout),
		strings.ToLower(req.Status.String()),
		comments,
	)
	return title, message
}

// NotifyLeaveDecision implements leave.DecisionNotifier.
func (n *LeaveNotifier) NotifyLeaveDecision(ctx context.Context, req leave.LeaveRequest) error {
	notifType, err := notificationType(req.Status)
	if err != nil {
		return err
	}

	title, message := DecisionMessage(req)
	notifyErr := n.notifications.Notify(ctx, notification.CreateNotificationRequest{
		RecipientID: req.EmployeeID,
		Category:    notification.CategoryLeave,
		Type:        notifType,
		Title:       title,
		Message:     message,
		Data: map[string]interface{}{
			"leave_request_id": req.ID,
			"status":           req.Status.String(),
		},
	})
	if notifyErr != nil {
		notifyErr = fmt.Errorf("queue notification: %w", notifyErr)
	}

	return errors.Join(notifyErr, n.enqueueEmail(ctx, req))
}

func (n *LeaveNotifier) enqueueEmail(ctx context.Context, req leave.LeaveRequest) error {
	if n.mailer == nil || n.employees == nil {
		return nil
	}

	emp, err := n.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return fmt.Errorf("load requester: %w", err)
	}
	if emp.Email == "" {
		n.logger.DebugContext(ctx, "requester has no email address", slog.String("employee_id", emp.ID))
		return nil
	}

	comments, _ := req.Comments()
	payload := jobs.LeaveDecisionEmailPayload{
		RequestID:     req.ID,
		To:            emp.Email,
		EmployeeName:  emp.FullName,
		LeaveTypeName: req.LeaveTypeName,
		StartDate:     req.StartDate.Format(holiday.DateLayout),
		EndDate:       req.EndDate.Format(holiday.DateLayout),
		TotalDays:     req.TotalDays,
		Status:        req.Status.String(),
		Comments:      comments,
	}
	if err := n.mailer.EnqueueLeaveDecisionEmail(ctx, payload); err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}
