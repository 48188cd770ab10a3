package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.Repository {
	return &holidayRepositoryImpl{db: db}
}

// Create implements holiday.Repository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h *holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate holiday id: %w", err)
	}
	h.ID = id.String()
	h.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO holidays (id, name, holiday_date, description, is_optional, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := q.Exec(ctx, query, h.ID, h.Name, h.Date, h.Description, h.IsOptional, h.CreatedAt); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return holiday.ErrHolidayDateExists
		}
		return fmt.Errorf("failed to create holiday: %w", err)
	}

	return nil
}

// Delete implements holiday.Repository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM holidays
		WHERE id = $1
		RETURNING id, name, holiday_date, description, is_optional, created_at
	`

	var h holiday.Holiday
	err := q.QueryRow(ctx, query, id).Scan(&h.ID, &h.Name, &h.Date, &h.Description, &h.IsOptional, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to delete holiday: %w", err)
	}

	return h, nil
}

// GetByYear implements holiday.Repository.
func (r *holidayRepositoryImpl) GetByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	return r.query(ctx, `
		SELECT id, name, holiday_date, description, is_optional, created_at
		FROM holidays
		WHERE holiday_date >= $1 AND holiday_date < $2
		ORDER BY holiday_date
	`, from, to)
}

// GetUpcoming implements holiday.Repository.
func (r *holidayRepositoryImpl) GetUpcoming(ctx context.Context, from time.Time, limit int) ([]holiday.Holiday, error) {
	return r.query(ctx, `
		SELECT id, name, holiday_date, description, is_optional, created_at
		FROM holidays
		WHERE holiday_date >= $1
		ORDER BY holiday_date
		LIMIT $2
	`, from, limit)
}

func (r *holidayRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]holiday.Holiday, 0)
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date, &h.Description, &h.IsOptional, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
