package leave

import (
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLeaveTypeID = "0191d5a0-0000-7000-8000-000000000001"

func TestApplyLeaveRequest_Validate(t *testing.T) {
	t.Run("valid request exposes parsed dates", func(t *testing.T) {
		req := ApplyLeaveRequest{LeaveTypeID: testLeaveTypeID, StartDate: "2025-03-03", EndDate: "2025-03-07", Reason: "family"}
		require.NoError(t, req.Validate())

		start, end := req.Dates()
		assert.Equal(t, date("2025-03-03"), start)
		assert.Equal(t, date("2025-03-07"), end)
	})

	t.Run("missing fields", func(t *testing.T) {
		req := ApplyLeaveRequest{}
		err := req.Validate()

		var errs validator.ValidationErrors
		require.True(t, errors.As(err, &errs))
		m := errs.ToMap()
		assert.Contains(t, m, "leave_type_id")
		assert.Contains(t, m, "start_date")
		assert.Contains(t, m, "end_date")
		assert.Contains(t, m, "reason")
	})

	t.Run("malformed date", func(t *testing.T) {
		req := ApplyLeaveRequest{LeaveTypeID: testLeaveTypeID, StartDate: "03/03/2025", EndDate: "2025-03-07", Reason: "x"}
		err := req.Validate()

		var errs validator.ValidationErrors
		require.True(t, errors.As(err, &errs))
		assert.Equal(t, "start_date must be in YYYY-MM-DD format", errs.ToMap()["start_date"])
	})

	t.Run("leave type id must be a uuid", func(t *testing.T) {
		req := ApplyLeaveRequest{LeaveTypeID: "annual", StartDate: "2025-03-03", EndDate: "2025-03-07", Reason: "x"}
		err := req.Validate()

		var errs validator.ValidationErrors
		require.True(t, errors.As(err, &errs))
		assert.Equal(t, "leave_type_id must be a valid UUID", errs.ToMap()["leave_type_id"])
	})

	t.Run("reason too long", func(t *testing.T) {
		req := ApplyLeaveRequest{LeaveTypeID: testLeaveTypeID, StartDate: "2025-03-03", EndDate: "2025-03-07", Reason: strings.Repeat("a", 1001)}
		assert.Error(t, req.Validate())
	})
}

func TestCreateLeaveTypeRequest_Validate(t *testing.T) {
	ok := CreateLeaveTypeRequest{Name: "Annual Leave", AnnualAllotment: 20}
	assert.NoError(t, ok.Validate())

	blank := CreateLeaveTypeRequest{Name: "   ", AnnualAllotment: 5}
	assert.Error(t, blank.Validate())

	negative := CreateLeaveTypeRequest{Name: "Sick", AnnualAllotment: -1}
	assert.Error(t, negative.Validate())
}

func TestSetLeaveTypeActiveRequest_Validate(t *testing.T) {
	var req SetLeaveTypeActiveRequest
	assert.Error(t, req.Validate())

	active := false
	req.IsActive = &active
	assert.NoError(t, req.Validate())
}
