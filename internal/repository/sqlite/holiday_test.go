package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolidayRepository(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := sqlite.NewHolidayRepository(f.db)

	desc := "observed nationally"
	newYear := &holiday.Holiday{Name: "New Year", Date: date(2025, time.January, 1), Description: &desc}
	founders := &holiday.Holiday{Name: "Founders Day", Date: date(2025, time.March, 14), IsOptional: true}
	nextYear := &holiday.Holiday{Name: "New Year", Date: date(2026, time.January, 1)}
	for _, h := range []*holiday.Holiday{founders, newYear, nextYear} {
		require.NoError(t, repo.Create(ctx, h))
		assert.NotEmpty(t, h.ID)
	}

	t.Run("duplicate date", func(t *testing.T) {
		err := repo.Create(ctx, &holiday.Holiday{Name: "Again", Date: date(2025, time.January, 1)})
		assert.ErrorIs(t, err, holiday.ErrHolidayDateExists)
	})

	t.Run("by year", func(t *testing.T) {
		list, err := repo.GetByYear(ctx, 2025)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "New Year", list[0].Name)
		require.NotNil(t, list[0].Description)
		assert.Equal(t, desc, *list[0].Description)
		assert.True(t, list[1].IsOptional)
	})

	t.Run("upcoming", func(t *testing.T) {
		list, err := repo.GetUpcoming(ctx, date(2025, time.February, 1), 5)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, date(2025, time.March, 14), list[0].Date)
		assert.Equal(t, date(2026, time.January, 1), list[1].Date)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, founders.ID)
		require.NoError(t, err)
		assert.Equal(t, 2025, deleted.Year())

		_, err = repo.Delete(ctx, founders.ID)
		assert.ErrorIs(t, err, holiday.ErrHolidayNotFound)
	})
}
