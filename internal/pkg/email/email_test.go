package email

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/cmlabs-hris/leave-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.SMTPConfig, send sendFunc) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = 0
	return impl
}

func TestDecisionSubject(t *testing.T) {
	assert.Equal(t, "Leave Request Approved", DecisionSubject("APPROVED"))
	assert.Equal(t, "Leave Request Rejected", DecisionSubject("rejected"))
}

func TestSendLeaveDecision(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 2525, From: "hr@example.com", FromName: "HR"},
		func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
			gotAddr, gotTo, gotMsg = addr, to, string(msg)
			return nil
		})

	err := svc.SendLeaveDecision("eli@example.com", LeaveDecisionData{
		EmployeeName:  "Eli",
		LeaveTypeName: "Annual Leave",
		StartDate:     "2025-01-13",
		EndDate:       "2025-01-15",
		TotalDays:     3,
		Status:        "APPROVED",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, []string{"eli@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Leave Request Approved\r\n")
	assert.Contains(t, gotMsg, "has been <strong>approved</strong>")
	assert.Contains(t, gotMsg, "3 working days")
	assert.Contains(t, gotMsg, "Manager Comments: None")
}

func TestSendLeaveDecisionRetries(t *testing.T) {
	calls := 0
	svc := newTestService(t, config.SMTPConfig{Host: "smtp.example.com", Port: 25},
		func(string, smtp.Auth, string, []string, []byte) error {
			calls++
			return errors.New("421 service not available")
		})

	err := svc.SendLeaveDecision("eli@example.com", LeaveDecisionData{Status: "REJECTED", TotalDays: 1})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "after 3 attempts"))
	assert.Equal(t, maxRetries, calls)
}

func TestSendSkippedWithoutHost(t *testing.T) {
	svc := newTestService(t, config.SMTPConfig{}, func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	})

	assert.NoError(t, svc.SendLeaveDecision("eli@example.com", LeaveDecisionData{Status: "APPROVED"}))
}
