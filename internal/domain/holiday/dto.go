package holiday

import (
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Date        string  `json:"date" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsOptional  bool    `json:"is_optional"`

	date time.Time
}

func (r *CreateHolidayRequest) Validate() error {
	errs := validator.Struct(r)

	if !validator.IsEmpty(r.Date) {
		d, ok := validator.IsValidDate(r.Date)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
		r.date = d
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParsedDate returns the date decoded by Validate.
func (r *CreateHolidayRequest) ParsedDate() time.Time {
	return r.date
}

type HolidayResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	Description *string `json:"description,omitempty"`
	IsOptional  bool    `json:"is_optional"`
}

func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:          h.ID,
		Name:        h.Name,
		Date:        h.Date.Format(DateLayout),
		Description: h.Description,
		IsOptional:  h.IsOptional,
	}
}
