package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/notification"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingIdentity):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrForbidden),
		errors.Is(err, auth.ErrManagerAccessRequired),
		errors.Is(err, auth.ErrAdminAccessRequired):
		Forbidden(w, err.Error())

	// Leave domain errors
	case errors.Is(err, leave.ErrInvalidInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrOverlappingLeave):
		Conflict(w, "Leave request overlaps an existing request")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrCannotCancel):
		Conflict(w, "Leave request cannot be cancelled")
	case errors.Is(err, leave.ErrLeaveTypeNameExists):
		Conflict(w, "Leave type name already exists")
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrHolidayDateExists):
		Conflict(w, "A holiday is already declared on this date")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")

	// Default, including leave.ErrStorage
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
