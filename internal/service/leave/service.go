package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/metrics"
)

// LeaveServiceImpl drives the leave request lifecycle. It is the only caller of
// the ledger mutation methods.
type LeaveServiceImpl struct {
	uow        leave.UnitOfWork
	ledger     leave.BalanceLedger
	requests   leave.RequestStore
	leaveTypes leave.LeaveTypeRepository
	calendar   leave.HolidayCalendar

	notifier leave.DecisionNotifier
	auditor  leave.AuditSink
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*LeaveServiceImpl)

func WithNotifier(n leave.DecisionNotifier) Option {
	return func(s *LeaveServiceImpl) { s.notifier = n }
}

func WithAuditSink(a leave.AuditSink) Option {
	return func(s *LeaveServiceImpl) { s.auditor = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LeaveServiceImpl) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *LeaveServiceImpl) { s.logger = l }
}

// WithClock overrides the time source used for the backdate window and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *LeaveServiceImpl) { s.now = now }
}

func NewLeaveService(
	uow leave.UnitOfWork,
	ledger leave.BalanceLedger,
	requests leave.RequestStore,
	leaveTypes leave.LeaveTypeRepository,
	calendar leave.HolidayCalendar,
	opts ...Option,
) leave.LeaveService {
	s := &LeaveServiceImpl{
		uow:        uow,
		ledger:     ledger,
		requests:   requests,
		leaveTypes: leaveTypes,
		calendar:   calendar,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ApplyLeave(ctx context.Context, actor auth.Actor, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	request, err := s.applyLeave(ctx, actor, req)
	if err != nil {
		s.metrics.ObserveApplication(outcome(err))
		return leave.LeaveRequest{}, err
	}
	s.metrics.ObserveApplication("created")
	return request, nil
}

func (s *LeaveServiceImpl) applyLeave(ctx context.Context, actor auth.Actor, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	start, end := req.Dates()

	today := dateOnly(s.now().UTC())
	if start.Before(today.AddDate(0, 0, -leave.BackdateLimitDays)) {
		return leave.LeaveRequest{}, leave.ErrBackdateLimitExceeded
	}
	if end.Before(start) {
		return leave.LeaveRequest{}, leave.ErrInvalidDateRange
	}

	totalDays, err := s.workingDays(ctx, start, end)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if totalDays == 0 {
		return leave.LeaveRequest{}, leave.ErrNoWorkingDays
	}

	request := leave.LeaveRequest{
		EmployeeID:  actor.EmployeeID,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		TotalDays:   totalDays,
		Reason:      req.Reason,
		Status:      leave.StatusPending,
	}
	// The overlap check and the insert must see the same state.
	err = s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.requests.LockEmployee(ctx, actor.EmployeeID); err != nil {
			return classify("lock employee", err)
		}

		overlap, err := s.requests.HasOverlap(ctx, actor.EmployeeID, start, end)
		if err != nil {
			return classify("check overlap", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		// Advisory only; DeductBalance at approval is authoritative.
		remaining := 0
		balance, err := s.ledger.GetBalance(ctx, actor.EmployeeID, req.LeaveTypeID, start.Year())
		switch {
		case err == nil:
			remaining = balance.RemainingDays()
		case errors.Is(err, leave.ErrBalanceNotFound):
		default:
			return classify("get balance", err)
		}
		if remaining < totalDays {
			return leave.ErrInsufficientBalance
		}

		if err := s.requests.Create(ctx, &request); err != nil {
			return classify("create leave request", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	s.logger.InfoContext(ctx, "leave request created",
		slog.String("request_id", request.ID),
		slog.String("employee_id", request.EmployeeID),
		slog.Int("total_days", request.TotalDays),
	)
	return request, nil
}

// ApproveLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveLeave(ctx context.Context, actor auth.Actor, requestID, comments string) (leave.LeaveRequest, error) {
	var approved leave.LeaveRequest
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return classify("get leave request", err)
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		ok, err := s.ledger.DeductBalance(ctx, request.EmployeeID, request.LeaveTypeID, request.BalanceYear(), request.TotalDays)
		if err != nil {
			s.metrics.ObserveLedger("deduct", "error")
			return classify("deduct balance", err)
		}
		if !ok {
			s.metrics.ObserveLedger("deduct", "insufficient")
			return leave.ErrInsufficientBalance
		}
		s.metrics.ObserveLedger("deduct", "ok")

		approved, err = s.transition(ctx, request, leave.StatusApproved, &actor.EmployeeID, optional(comments))
		return err
	})
	if err != nil {
		err = classify("approve leave", err)
		s.metrics.ObserveDecision(leave.StatusApproved.String(), outcome(err))
		return leave.LeaveRequest{}, err
	}
	s.metrics.ObserveDecision(leave.StatusApproved.String(), "ok")

	s.afterCommit(ctx, actor, approved, leave.StatusPending, true)
	return approved, nil
}

// RejectLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeave(ctx context.Context, actor auth.Actor, requestID, comments string) (leave.LeaveRequest, error) {
	var rejected leave.LeaveRequest
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return classify("get leave request", err)
		}
		if request.Status != leave.StatusPending {
			return leave.ErrLeaveRequestAlreadyProcessed
		}

		rejected, err = s.transition(ctx, request, leave.StatusRejected, &actor.EmployeeID, optional(comments))
		return err
	})
	if err != nil {
		err = classify("reject leave", err)
		s.metrics.ObserveDecision(leave.StatusRejected.String(), outcome(err))
		return leave.LeaveRequest{}, err
	}
	s.metrics.ObserveDecision(leave.StatusRejected.String(), "ok")

	s.afterCommit(ctx, actor, rejected, leave.StatusPending, true)
	return rejected, nil
}

// CancelLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) CancelLeave(ctx context.Context, actor auth.Actor, requestID string) (leave.LeaveRequest, error) {
	var (
		cancelled leave.LeaveRequest
		previous  leave.Status
	)
	err := s.uow.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return classify("get leave request", err)
		}
		previous = request.Status

		switch request.Status {
		case leave.StatusPending:
		case leave.StatusApproved:
			err := s.ledger.CreditBalance(ctx, request.EmployeeID, request.LeaveTypeID, request.BalanceYear(), request.TotalDays)
			if err != nil {
				s.metrics.ObserveLedger("credit", "error")
				return classify("credit balance", err)
			}
			s.metrics.ObserveLedger("credit", "ok")
		case leave.StatusRejected, leave.StatusCancelled:
			return leave.ErrCannotCancel
		default:
			panic(fmt.Sprintf("leave: unhandled status %q", request.Status.String()))
		}

		// The approver fields keep whoever last decided the request.
		cancelled, err = s.transition(ctx, request, leave.StatusCancelled, nil, nil)
		return err
	})
	if err != nil {
		err = classify("cancel leave", err)
		s.metrics.ObserveDecision(leave.StatusCancelled.String(), outcome(err))
		return leave.LeaveRequest{}, err
	}
	s.metrics.ObserveDecision(leave.StatusCancelled.String(), "ok")

	s.afterCommit(ctx, actor, cancelled, previous, actor.EmployeeID != cancelled.EmployeeID)
	return cancelled, nil
}

// transition applies the guarded status change and returns the request as written.
func (s *LeaveServiceImpl) transition(ctx context.Context, request leave.LeaveRequest, to leave.Status, approverID, comments *string) (leave.LeaveRequest, error) {
	if !request.Status.CanTransitionTo(to) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	at := s.now().UTC()
	ok, err := s.requests.Transition(ctx, leave.Transition{
		RequestID:  request.ID,
		From:       request.Status,
		To:         to,
		ApproverID: approverID,
		Comments:   comments,
		At:         at,
	})
	if err != nil {
		return leave.LeaveRequest{}, classify("transition leave request", err)
	}
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	request.Status = to
	if approverID != nil {
		request.ApproverID = approverID
	}
	if comments != nil {
		request.ApproverComments = comments
	}
	request.ActionedAt = &at
	request.UpdatedAt = at
	return request, nil
}

// afterCommit emits the audit entry and, when notify is set, the requester
// notification. Failures are logged and never returned.
func (s *LeaveServiceImpl) afterCommit(ctx context.Context, actor auth.Actor, request leave.LeaveRequest, from leave.Status, notify bool) {
	ctx = context.WithoutCancel(ctx)

	if s.auditor != nil {
		oldValue := "Status : " + from.String()
		newValue := "Status : " + request.Status.String()
		if comments, ok := request.Comments(); ok && request.Status != leave.StatusCancelled {
			newValue += " | Comments : " + comments
		}
		entry := audit.Entry{
			ActorID:    actor.EmployeeID,
			Action:     auditAction(request.Status),
			EntityType: audit.EntityLeaveRequest,
			EntityID:   request.ID,
			OldValue:   &oldValue,
			NewValue:   &newValue,
		}
		if err := s.auditor.Record(ctx, entry); err != nil {
			s.metrics.ObserveSideEffectFailure("audit")
			s.logger.WarnContext(ctx, "audit logging failed",
				slog.String("request_id", request.ID),
				slog.Any("error", err),
			)
		}
	}

	if notify && s.notifier != nil {
		if err := s.notifier.NotifyLeaveDecision(ctx, request); err != nil {
			s.metrics.ObserveSideEffectFailure("notification")
			s.logger.WarnContext(ctx, "leave notification failed",
				slog.String("request_id", request.ID),
				slog.Any("error", err),
			)
		}
	}
}

func auditAction(status leave.Status) audit.Action {
	switch status {
	case leave.StatusApproved:
		return audit.ActionLeaveApproved
	case leave.StatusRejected:
		return audit.ActionLeaveRejected
	case leave.StatusCancelled:
		return audit.ActionLeaveCancelled
	case leave.StatusPending:
		panic("leave: pending is not an audited decision")
	default:
		panic(fmt.Sprintf("leave: unhandled status %q", status.String()))
	}
}

// PreviewWorkingDays implements leave.LeaveService.
func (s *LeaveServiceImpl) PreviewWorkingDays(ctx context.Context, start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, leave.ErrInvalidDateRange
	}
	return s.workingDays(ctx, start, end)
}

// workingDays uses the start year's holidays for the whole range.
func (s *LeaveServiceImpl) workingDays(ctx context.Context, start, end time.Time) (int, error) {
	holidays, err := s.calendar.HolidaysForYear(ctx, start.Year())
	if err != nil {
		return 0, classify("load holidays", err)
	}
	return CalculateWorkingDays(start, end, holidays), nil
}

// InitializeBalances implements leave.LeaveService.
func (s *LeaveServiceImpl) InitializeBalances(ctx context.Context, employeeID string, year int) (int, error) {
	created, err := s.ledger.InitializeBalances(ctx, employeeID, year)
	if err != nil {
		s.metrics.ObserveLedger("initialize", "error")
		return 0, classify("initialize balances", err)
	}
	s.metrics.ObserveLedger("initialize", "ok")
	return created, nil
}

// GetBalances implements leave.LeaveService. Buckets are created on first access.
func (s *LeaveServiceImpl) GetBalances(ctx context.Context, employeeID string, year int) ([]leave.LeaveBalance, error) {
	balances, err := s.ledger.GetBalances(ctx, employeeID, year)
	if err != nil {
		return nil, classify("get balances", err)
	}
	if len(balances) > 0 {
		return balances, nil
	}

	created, err := s.InitializeBalances(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	if created == 0 {
		return balances, nil
	}

	balances, err = s.ledger.GetBalances(ctx, employeeID, year)
	if err != nil {
		return nil, classify("get balances", err)
	}
	return balances, nil
}

// GetRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetRequest(ctx context.Context, requestID string) (leave.LeaveRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, classify("get leave request", err)
	}
	return request, nil
}

// ListEmployeeRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListEmployeeRequests(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	requests, err := s.requests.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, classify("list employee requests", err)
	}
	return requests, nil
}

// ListTeamRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListTeamRequests(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	requests, err := s.requests.ListByManager(ctx, managerID)
	if err != nil {
		return nil, classify("list team requests", err)
	}
	return requests, nil
}

// ListPendingRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListPendingRequests(ctx context.Context, managerID string) ([]leave.LeaveRequest, error) {
	requests, err := s.requests.ListPendingByManager(ctx, managerID)
	if err != nil {
		return nil, classify("list pending requests", err)
	}
	return requests, nil
}

// ListLeaveTypes implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveTypes(ctx context.Context, activeOnly bool) ([]leave.LeaveType, error) {
	types, err := s.leaveTypes.List(ctx, activeOnly)
	if err != nil {
		return nil, classify("list leave types", err)
	}
	return types, nil
}

// CreateLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveType, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveType{}, err
	}

	lt := leave.LeaveType{
		Name:            req.Name,
		Description:     req.Description,
		AnnualAllotment: req.AnnualAllotment,
		CarryForward:    req.CarryForward,
		IsActive:        true,
	}
	if err := s.leaveTypes.Create(ctx, &lt); err != nil {
		return leave.LeaveType{}, classify("create leave type", err)
	}
	return lt, nil
}

// SetLeaveTypeActive implements leave.LeaveService.
func (s *LeaveServiceImpl) SetLeaveTypeActive(ctx context.Context, id string, active bool) error {
	if err := s.leaveTypes.SetActive(ctx, id, active); err != nil {
		return classify("set leave type active", err)
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func outcome(err error) string {
	switch {
	case errors.Is(err, leave.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, leave.ErrOverlappingLeave):
		return "overlap"
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed), errors.Is(err, leave.ErrCannotCancel):
		return "conflict"
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		return "not_found"
	case errors.Is(err, leave.ErrStorage):
		return "error"
	default:
		return "invalid"
	}
}
