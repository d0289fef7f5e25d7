package analytics

import (
	"context"
	"time"

	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

type Repository interface {
	Funnel(ctx context.Context, from, to, now time.Time) (domain.FunnelCounts, error)
	StatusSummary(ctx context.Context, from, to time.Time) ([]repository.StatusRow, error)
}
