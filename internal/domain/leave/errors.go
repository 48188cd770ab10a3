package leave

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid leave input")
	ErrBackdateLimitExceeded = fmt.Errorf("%w: start date is more than %d days in the past", ErrInvalidInput, BackdateLimitDays)
	ErrInvalidDateRange      = fmt.Errorf("%w: end date is before start date", ErrInvalidInput)
	ErrNoWorkingDays         = fmt.Errorf("%w: date range contains no working days", ErrInvalidInput)

	ErrOverlappingLeave             = errors.New("leave request overlaps an existing pending or approved request")
	ErrInsufficientBalance          = errors.New("insufficient leave balance")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrCannotCancel                 = errors.New("leave request cannot be cancelled in its current status")

	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrBalanceNotFound      = errors.New("leave balance not found")
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeNameExists  = errors.New("leave type name already exists")

	ErrStorage = errors.New("leave storage failure")
)

// StorageError wraps an infrastructure failure raised while a leave operation ran.
// It matches ErrStorage under errors.Is and unwraps to the driver error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsBusinessError reports whether err is one of the expected rule outcomes
// rather than an infrastructure failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrOverlappingLeave,
		ErrInsufficientBalance,
		ErrLeaveRequestAlreadyProcessed,
		ErrCannotCancel,
		ErrLeaveRequestNotFound,
		ErrBalanceNotFound,
		ErrLeaveTypeNotFound,
		ErrLeaveTypeNameExists,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
