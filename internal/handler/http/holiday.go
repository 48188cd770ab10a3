package http

import (
	"context"
	"net/http"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
)

// HolidayService is the part of the calendar the HTTP layer uses.
type HolidayService interface {
	ListHolidays(ctx context.Context, year int) ([]holiday.Holiday, error)
	UpcomingHolidays(ctx context.Context, from time.Time, limit int) ([]holiday.Holiday, error)
	CreateHoliday(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.Holiday, error)
	DeleteHoliday(ctx context.Context, id string) error
}

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Upcoming(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	calendar HolidayService
	now      func() time.Time
}

func NewHolidayHandler(calendar HolidayService) HolidayHandler {
	return &holidayHandlerImpl{
		calendar: calendar,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func toHolidayResponses(hs []holiday.Holiday) []holiday.HolidayResponse {
	out := make([]holiday.HolidayResponse, len(hs))
	for i, h := range hs {
		out[i] = holiday.ToResponse(h)
	}
	return out
}

// List returns the holidays of ?year= (default current year)
func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r, h.now())
	if !ok {
		return
	}

	holidays, err := h.calendar.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, toHolidayResponses(holidays))
}

func (h *holidayHandlerImpl) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 10)

	holidays, err := h.calendar.UpcomingHolidays(r.Context(), h.now(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, toHolidayResponses(holidays))
}

func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateHolidayRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := h.calendar.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", holiday.ToResponse(created))
}

func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", holiday.ErrHolidayNotFound)
	if !ok {
		return
	}
	if err := h.calendar.DeleteHoliday(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
