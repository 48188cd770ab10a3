package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/email"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLeaveDecisionEmail mails a requester the outcome of their leave request.
	TaskLeaveDecisionEmail = "leave:decision-email"
)

// LeaveDecisionEmailPayload is the task body of TaskLeaveDecisionEmail.
type LeaveDecisionEmailPayload struct {
	RequestID     string `json:"request_id"`
	To            string `json:"to"`
	EmployeeName  string `json:"employee_name"`
	LeaveTypeName string `json:"leave_type_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalDays     int    `json:"total_days"`
	Status        string `json:"status"`
	Comments      string `json:"comments,omitempty"`
}

// NewLeaveDecisionEmailTask constructs an Asynq task.
func NewLeaveDecisionEmailTask(payload LeaveDecisionEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeaveDecisionEmail, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// LeaveDecisionEmailJob sends the mail described by a TaskLeaveDecisionEmail task.
type LeaveDecisionEmailJob struct {
	mailer email.EmailService
	logger *slog.Logger
}

func NewLeaveDecisionEmailJob(mailer email.EmailService, logger *slog.Logger) *LeaveDecisionEmailJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaveDecisionEmailJob{mailer: mailer, logger: logger}
}

// Handle processes TaskLeaveDecisionEmail tasks. Malformed payloads are not retried.
func (j *LeaveDecisionEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LeaveDecisionEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskLeaveDecisionEmail, err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("%s without recipient: %w", TaskLeaveDecisionEmail, asynq.SkipRetry)
	}

	err := j.mailer.SendLeaveDecision(payload.To, email.LeaveDecisionData{
		EmployeeName:  payload.EmployeeName,
		LeaveTypeName: payload.LeaveTypeName,
		StartDate:     payload.StartDate,
		EndDate:       payload.EndDate,
		TotalDays:     payload.TotalDays,
		Status:        payload.Status,
		Comments:      payload.Comments,
	})
	if err != nil {
		j.logger.WarnContext(ctx, "leave decision email failed",
			slog.String("request_id", payload.RequestID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}
