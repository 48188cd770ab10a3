package leave

import (
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type ApplyLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required,uuid"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=1000"`

	startDate time.Time
	endDate   time.Time
}

func (r *ApplyLeaveRequest) Validate() error {
	errs := validator.Struct(r)

	if !validator.IsEmpty(r.StartDate) {
		d, ok := validator.IsValidDate(r.StartDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
		r.startDate = d
	}
	if !validator.IsEmpty(r.EndDate) {
		d, ok := validator.IsValidDate(r.EndDate)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
		r.endDate = d
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Dates returns the range decoded by Validate.
func (r *ApplyLeaveRequest) Dates() (start, end time.Time) {
	return r.startDate, r.endDate
}

// DecisionRequest carries the approver's comments on approve or reject.
type DecisionRequest struct {
	Comments string `json:"comments" validate:"max=1000"`
}

func (r *DecisionRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type InitializeBalancesRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Year       int    `json:"year" validate:"gte=2000,lte=2100"`
}

func (r *InitializeBalancesRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateLeaveTypeRequest struct {
	Name            string  `json:"name" validate:"required,max=100"`
	Description     *string `json:"description,omitempty" validate:"omitempty,max=255"`
	AnnualAllotment int     `json:"annual_allotment" validate:"gte=0,lte=365"`
	CarryForward    bool    `json:"carry_forward"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	errs := validator.Struct(r)

	if r.Name != "" && validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be blank",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SetLeaveTypeActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (r *SetLeaveTypeActiveRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ============= Response DTOs =============

type LeaveRequestResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employee_id"`
	EmployeeName     string     `json:"employee_name,omitempty"`
	LeaveTypeID      string     `json:"leave_type_id"`
	LeaveTypeName    string     `json:"leave_type_name,omitempty"`
	StartDate        string     `json:"start_date"`
	EndDate          string     `json:"end_date"`
	TotalDays        int        `json:"total_days"`
	Reason           string     `json:"reason"`
	Status           Status     `json:"status"`
	ApproverID       *string    `json:"approver_id"`
	ApproverComments *string    `json:"approver_comments"`
	AppliedAt        time.Time  `json:"applied_at"`
	ActionedAt       *time.Time `json:"actioned_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		LeaveTypeID:      r.LeaveTypeID,
		LeaveTypeName:    r.LeaveTypeName,
		StartDate:        r.StartDate.Format(dateLayout),
		EndDate:          r.EndDate.Format(dateLayout),
		TotalDays:        r.TotalDays,
		Reason:           r.Reason,
		Status:           r.Status,
		ApproverID:       r.ApproverID,
		ApproverComments: r.ApproverComments,
		AppliedAt:        r.AppliedAt,
		ActionedAt:       r.ActionedAt,
	}
}

func ToLeaveRequestResponses(reqs []LeaveRequest) []LeaveRequestResponse {
	out := make([]LeaveRequestResponse, len(reqs))
	for i, r := range reqs {
		out[i] = ToLeaveRequestResponse(r)
	}
	return out
}

type LeaveBalanceResponse struct {
	LeaveTypeID   string `json:"leave_type_id"`
	LeaveTypeName string `json:"leave_type_name"`
	Year          int    `json:"year"`
	TotalDays     int    `json:"total_days"`
	UsedDays      int    `json:"used_days"`
	RemainingDays int    `json:"remaining_days"`
}

func ToLeaveBalanceResponses(balances []LeaveBalance) []LeaveBalanceResponse {
	out := make([]LeaveBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = LeaveBalanceResponse{
			LeaveTypeID:   b.LeaveTypeID,
			LeaveTypeName: b.LeaveTypeName,
			Year:          b.Year,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			RemainingDays: b.RemainingDays(),
		}
	}
	return out
}

type LeaveTypeResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	AnnualAllotment int     `json:"annual_allotment"`
	CarryForward    bool    `json:"carry_forward"`
	IsActive        bool    `json:"is_active"`
}

func ToLeaveTypeResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:              lt.ID,
		Name:            lt.Name,
		Description:     lt.Description,
		AnnualAllotment: lt.AnnualAllotment,
		CarryForward:    lt.CarryForward,
		IsActive:        lt.IsActive,
	}
}

type WorkingDaysResponse struct {
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	WorkingDays int    `json:"working_days"`
}

type InitializeBalancesResponse struct {
	EmployeeID string `json:"employee_id"`
	Year       int    `json:"year"`
	Created    int    `json:"created"`
}
