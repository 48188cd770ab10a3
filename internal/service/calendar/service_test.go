package calendar

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu       sync.Mutex
	holidays []holiday.Holiday
	calls    atomic.Int32
	delay    time.Duration
	err      error
}

func (r *fakeRepo) Create(_ context.Context, h *holiday.Holiday) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.holidays {
		if existing.Date.Equal(h.Date) {
			return holiday.ErrHolidayDateExists
		}
	}
	h.ID = h.Date.Format(holiday.DateLayout)
	r.holidays = append(r.holidays, *h)
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) (holiday.Holiday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, h := range r.holidays {
		if h.ID == id {
			r.holidays = append(r.holidays[:i], r.holidays[i+1:]...)
			return h, nil
		}
	}
	return holiday.Holiday{}, holiday.ErrHolidayNotFound
}

func (r *fakeRepo) GetByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	r.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	var out []holiday.Holiday
	for _, h := range r.holidays {
		if h.Year() == year {
			out = append(out, h)
		}
	}
	r.mu.Unlock()
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return out, nil
}

func (r *fakeRepo) GetUpcoming(_ context.Context, from time.Time, limit int) ([]holiday.Holiday, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []holiday.Holiday
	for _, h := range r.holidays {
		if !h.Date.Before(from) && len(out) < limit {
			out = append(out, h)
		}
	}
	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, repo *fakeRepo) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(repo, client, time.Minute, nil, nil), mr
}

func TestHolidaysForYearCaches(t *testing.T) {
	repo := &fakeRepo{holidays: []holiday.Holiday{
		{ID: "ny", Name: "New Year", Date: day(2025, time.January, 1)},
		{ID: "xmas", Name: "Christmas", Date: day(2025, time.December, 25)},
		{ID: "ny26", Name: "New Year", Date: day(2026, time.January, 1)},
	}}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	set, err := svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, set.Contains(day(2025, time.January, 1)))
	assert.True(t, set.Contains(day(2025, time.December, 25)))
	assert.False(t, set.Contains(day(2026, time.January, 1)))
	assert.True(t, mr.Exists(cacheKey(2025)))

	_, err = svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.EqualValues(t, 1, repo.calls.Load())
	assert.Equal(t, time.Minute, mr.TTL(cacheKey(2025)))
}

func TestHolidaysForYearCollapsesConcurrentMisses(t *testing.T) {
	repo := &fakeRepo{delay: 50 * time.Millisecond}
	svc := NewService(repo, nil, 0, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HolidaysForYear(context.Background(), 2025)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Less(t, repo.calls.Load(), int32(8))
}

func TestHolidaysForYearWithoutRedis(t *testing.T) {
	repo := &fakeRepo{holidays: []holiday.Holiday{{ID: "ny", Date: day(2025, time.January, 1)}}}
	svc := NewService(repo, nil, 0, nil, nil)

	for i := 0; i < 2; i++ {
		set, err := svc.HolidaysForYear(context.Background(), 2025)
		require.NoError(t, err)
		assert.Len(t, set, 1)
	}
	assert.EqualValues(t, 2, repo.calls.Load())
}

func TestHolidaysForYearRepositoryError(t *testing.T) {
	boom := errors.New("connection reset")
	svc, mr := newTestService(t, &fakeRepo{err: boom})

	_, err := svc.HolidaysForYear(context.Background(), 2025)
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(cacheKey(2025)))
}

func TestHolidaysForYearIgnoresCorruptEntry(t *testing.T) {
	repo := &fakeRepo{holidays: []holiday.Holiday{{ID: "ny", Date: day(2025, time.January, 1)}}}
	svc, mr := newTestService(t, repo)
	require.NoError(t, mr.Set(cacheKey(2025), "not-json"))

	set, err := svc.HolidaysForYear(context.Background(), 2025)
	require.NoError(t, err)
	assert.True(t, set.Contains(day(2025, time.January, 1)))
}

func TestCreateAndDeleteInvalidateYear(t *testing.T) {
	repo := &fakeRepo{}
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	set, err := svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, set)
	require.True(t, mr.Exists(cacheKey(2025)))

	created, err := svc.CreateHoliday(ctx, holiday.CreateHolidayRequest{Name: "Founders Day", Date: "2025-03-14"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey(2025)))

	set, err = svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, set.Contains(day(2025, time.March, 14)))

	_, err = svc.CreateHoliday(ctx, holiday.CreateHolidayRequest{Name: "Again", Date: "2025-03-14"})
	assert.ErrorIs(t, err, holiday.ErrHolidayDateExists)

	require.NoError(t, svc.DeleteHoliday(ctx, created.ID))
	assert.False(t, mr.Exists(cacheKey(2025)))
	set, err = svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, set)

	assert.ErrorIs(t, svc.DeleteHoliday(ctx, "missing"), holiday.ErrHolidayNotFound)
}

func TestHolidaysForYearFillIgnoresCallerCancellation(t *testing.T) {
	repo := &fakeRepo{holidays: []holiday.Holiday{{ID: "ny", Date: day(2025, time.January, 1)}}}
	svc, mr := newTestService(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, set.Contains(day(2025, time.January, 1)))
	assert.True(t, mr.Exists(cacheKey(2025)))
}

func TestCreateHolidayDuringFillIsVisibleToLaterReads(t *testing.T) {
	repo := &fakeRepo{delay: 50 * time.Millisecond}
	svc := NewService(repo, nil, 0, nil, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.HolidaysForYear(ctx, 2025)
		assert.NoError(t, err)
	}()
	time.Sleep(10 * time.Millisecond)

	_, err := svc.CreateHoliday(ctx, holiday.CreateHolidayRequest{Name: "Founders Day", Date: "2025-03-14"})
	require.NoError(t, err)

	set, err := svc.HolidaysForYear(ctx, 2025)
	require.NoError(t, err)
	assert.True(t, set.Contains(day(2025, time.March, 14)))
	<-done
}

func TestCreateHolidayValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, 0, nil, nil)

	_, err := svc.CreateHoliday(context.Background(), holiday.CreateHolidayRequest{Name: "Bad", Date: "14/03/2025"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, holiday.ErrHolidayDateExists)
}

func TestUpcomingHolidays(t *testing.T) {
	repo := &fakeRepo{holidays: []holiday.Holiday{
		{ID: "a", Date: day(2025, time.January, 1)},
		{ID: "b", Date: day(2025, time.May, 1)},
		{ID: "c", Date: day(2025, time.August, 17)},
	}}
	svc := NewService(repo, nil, 0, nil, nil)

	got, err := svc.UpcomingHolidays(context.Background(), day(2025, time.February, 1), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	got, err = svc.UpcomingHolidays(context.Background(), day(2025, time.February, 1), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
