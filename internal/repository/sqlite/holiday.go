package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/google/uuid"
)

type holidayRepository struct {
	db *sql.DB
}

func NewHolidayRepository(db *sql.DB) holiday.Repository {
	return &holidayRepository{db: db}
}

const holidaySelect = `SELECT id, name, holiday_date, description, is_optional, created_at FROM holidays`

func scanHoliday(row rowScanner) (holiday.Holiday, error) {
	var (
		h    holiday.Holiday
		date string
	)
	if err := row.Scan(&h.ID, &h.Name, &date, &h.Description, &h.IsOptional, &h.CreatedAt); err != nil {
		return holiday.Holiday{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return holiday.Holiday{}, fmt.Errorf("invalid holiday_date %q: %w", date, err)
	}
	h.Date = d
	return h, nil
}

// Create implements holiday.Repository.
func (r *holidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate holiday id: %w", err)
	}
	h.ID = id.String()
	h.CreatedAt = time.Now().UTC()

	_, err = q.ExecContext(ctx, `
		INSERT INTO holidays (id, name, holiday_date, description, is_optional, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.ID, h.Name, formatDate(h.Date), h.Description, h.IsOptional, h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.ErrHolidayDateExists
		}
		return fmt.Errorf("failed to create holiday: %w", err)
	}

	return nil
}

// Delete implements holiday.Repository.
func (r *holidayRepository) Delete(ctx context.Context, id string) (holiday.Holiday, error) {
	var deleted holiday.Holiday
	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		h, err := scanHoliday(q.QueryRowContext(ctx, holidaySelect+" WHERE id = ?", id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return holiday.ErrHolidayNotFound
			}
			return fmt.Errorf("failed to get holiday: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete holiday: %w", err)
		}
		deleted = h
		return nil
	})
	return deleted, err
}

// GetByYear implements holiday.Repository.
func (r *holidayRepository) GetByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return r.query(ctx, holidaySelect+` WHERE holiday_date >= ? AND holiday_date < ? ORDER BY holiday_date`,
		formatDate(from), formatDate(from.AddDate(1, 0, 0)))
}

// GetUpcoming implements holiday.Repository.
func (r *holidayRepository) GetUpcoming(ctx context.Context, from time.Time, limit int) ([]holiday.Holiday, error) {
	return r.query(ctx, holidaySelect+` WHERE holiday_date >= ? ORDER BY holiday_date LIMIT ?`, formatDate(from), limit)
}

func (r *holidayRepository) query(ctx context.Context, query string, args ...interface{}) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	holidays := make([]holiday.Holiday, 0)
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}

	return holidays, rows.Err()
}
