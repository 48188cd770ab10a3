package leave

import (
	"errors"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
)

// classify passes business outcomes through and wraps everything else in a
// *leave.StorageError tagged with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	switch {
	case leave.IsBusinessError(err),
		errors.Is(err, leave.ErrStorage),
		errors.Is(err, employee.ErrEmployeeNotFound),
		errors.As(err, &verrs):
		return err
	}
	return &leave.StorageError{Op: op, Err: err}
}
