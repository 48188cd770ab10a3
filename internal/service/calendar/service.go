package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix     = "leave-ledger:holidays:"
	defaultCacheTTL    = 6 * time.Hour
	defaultUpcomingCap = 10
)

// Service answers holiday lookups for the leave workflow and manages the calendar.
// Per-year date lists are cached in Redis when a client is configured.
type Service struct {
	repo    holiday.Repository
	redis   *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(repo holiday.Repository, client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		redis:   client,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func cacheKey(year int) string {
	return cacheKeyPrefix + strconv.Itoa(year)
}

// HolidaysForYear returns the declared holidays of year as a lookup set.
func (s *Service) HolidaysForYear(ctx context.Context, year int) (holiday.Set, error) {
	if dates, ok := s.cached(ctx, year); ok {
		s.metrics.ObserveHolidayCache("hit")
		return toSet(dates), nil
	}
	s.metrics.ObserveHolidayCache("miss")

	// The shared fill outlives any single caller's cancellation.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(cacheKey(year), func() (interface{}, error) {
		holidays, err := s.repo.GetByYear(fillCtx, year)
		if err != nil {
			return nil, err
		}
		dates := make([]string, 0, len(holidays))
		for _, h := range holidays {
			dates = append(dates, h.Date.Format(holiday.DateLayout))
		}
		s.store(fillCtx, year, dates)
		return dates, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays for %d: %w", year, err)
	}

	return toSet(v.([]string)), nil
}

func (s *Service) cached(ctx context.Context, year int) ([]string, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, cacheKey(year)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "holiday cache read failed", slog.Int("year", year), slog.Any("error", err))
		}
		return nil, false
	}
	var dates []string
	if err := json.Unmarshal(raw, &dates); err != nil {
		s.logger.WarnContext(ctx, "holiday cache entry corrupt", slog.Int("year", year), slog.Any("error", err))
		return nil, false
	}
	return dates, true
}

func (s *Service) store(ctx context.Context, year int, dates []string) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(dates)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(year), raw, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "holiday cache write failed", slog.Int("year", year), slog.Any("error", err))
	}
}

func (s *Service) invalidate(ctx context.Context, year int) {
	// Callers arriving after a write must not join a fill that read the old calendar.
	s.group.Forget(cacheKey(year))
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(year)).Err(); err != nil {
		s.logger.WarnContext(ctx, "holiday cache invalidation failed", slog.Int("year", year), slog.Any("error", err))
	}
}

func toSet(dates []string) holiday.Set {
	set := make(holiday.Set, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// ListHolidays returns the holidays of year ordered by date.
func (s *Service) ListHolidays(ctx context.Context, year int) ([]holiday.Holiday, error) {
	holidays, err := s.repo.GetByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// UpcomingHolidays returns up to limit holidays on or after from.
func (s *Service) UpcomingHolidays(ctx context.Context, from time.Time, limit int) ([]holiday.Holiday, error) {
	if limit <= 0 {
		limit = defaultUpcomingCap
	}
	holidays, err := s.repo.GetUpcoming(ctx, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming holidays: %w", err)
	}
	return holidays, nil
}

// CreateHoliday declares a new holiday and drops the cached set of its year.
func (s *Service) CreateHoliday(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.Holiday, error) {
	if err := req.Validate(); err != nil {
		return holiday.Holiday{}, err
	}

	h := holiday.Holiday{
		Name:        req.Name,
		Date:        req.ParsedDate(),
		Description: req.Description,
		IsOptional:  req.IsOptional,
	}
	if err := s.repo.Create(ctx, &h); err != nil {
		return holiday.Holiday{}, err
	}

	s.invalidate(ctx, h.Year())
	return h, nil
}

// DeleteHoliday removes a holiday and drops the cached set of its year.
func (s *Service) DeleteHoliday(ctx context.Context, id string) error {
	h, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.invalidate(ctx, h.Year())
	return nil
}
