package holiday

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id string) (Holiday, error)
	GetByYear(ctx context.Context, year int) ([]Holiday, error)
	GetUpcoming(ctx context.Context, from time.Time, limit int) ([]Holiday, error)
}
