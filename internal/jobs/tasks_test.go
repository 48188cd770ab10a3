package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/email"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to   string
	data email.LeaveDecisionData
	err  error
}

func (m *fakeMailer) SendLeaveDecision(to string, data email.LeaveDecisionData) error {
	m.to, m.data = to, data
	return m.err
}

func TestNewLeaveDecisionEmailTask(t *testing.T) {
	task, err := NewLeaveDecisionEmailTask(LeaveDecisionEmailPayload{RequestID: "r1", To: "eli@example.com", Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, TaskLeaveDecisionEmail, task.Type())

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	assert.Equal(t, "eli@example.com", decoded["to"])
	assert.NotContains(t, decoded, "comments")
}

func TestLeaveDecisionEmailJobHandle(t *testing.T) {
	mailer := &fakeMailer{}
	job := NewLeaveDecisionEmailJob(mailer, nil)

	task, err := NewLeaveDecisionEmailTask(LeaveDecisionEmailPayload{
		RequestID:     "r1",
		To:            "eli@example.com",
		EmployeeName:  "Eli",
		LeaveTypeName: "Annual Leave",
		StartDate:     "2025-01-13",
		EndDate:       "2025-01-15",
		TotalDays:     3,
		Status:        "REJECTED",
		Comments:      "deadline",
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, "eli@example.com", mailer.to)
	assert.Equal(t, "REJECTED", mailer.data.Status)
	assert.Equal(t, "deadline", mailer.data.Comments)
	assert.Equal(t, 3, mailer.data.TotalDays)
}

func TestLeaveDecisionEmailJobSkipsBadPayload(t *testing.T) {
	job := NewLeaveDecisionEmailJob(&fakeMailer{}, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskLeaveDecisionEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	task, _ := NewLeaveDecisionEmailTask(LeaveDecisionEmailPayload{RequestID: "r1"})
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLeaveDecisionEmailJobRetriesSendFailure(t *testing.T) {
	boom := errors.New("smtp down")
	job := NewLeaveDecisionEmailJob(&fakeMailer{err: boom}, nil)

	task, _ := NewLeaveDecisionEmailTask(LeaveDecisionEmailPayload{To: "eli@example.com"})
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}
