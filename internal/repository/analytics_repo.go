package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"beautycrm/internal/domain"
)

// AnalyticsRepository runs the reporting queries with sqlx; they are plain
// aggregates and do not map onto gorm models.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

const funnelQuery = `
SELECT
	(SELECT COUNT(*) FROM clients c
		WHERE c.created_at >= ? AND c.created_at < ?) AS visitor,
	(SELECT COUNT(*) FROM clients c
		WHERE c.created_at >= ? AND c.created_at < ?
		AND c.phone IS NOT NULL AND c.phone <> '') AS engaged,
	(SELECT COUNT(DISTINCT b.client_id) FROM bookings b
		WHERE b.client_id IS NOT NULL AND b.datetime >= ? AND b.datetime < ?) AS started_booking,
	(SELECT COUNT(DISTINCT b.client_id) FROM bookings b
		WHERE b.client_id IS NOT NULL AND b.datetime >= ? AND b.datetime < ?
		AND b.status IN ('confirmed', 'completed')) AS booked,
	(SELECT COUNT(DISTINCT b.client_id) FROM bookings b
		WHERE b.client_id IS NOT NULL AND b.datetime >= ? AND b.datetime < ?
		AND b.status = 'completed') AS completed,
	(SELECT COUNT(*) FROM bookings b
		WHERE b.status = 'confirmed' AND b.datetime < ?
		AND b.datetime >= ? AND b.datetime < ?) AS no_show
`

// Funnel counts each stage within [from, to).
func (r *AnalyticsRepository) Funnel(ctx context.Context, from, to, now time.Time) (domain.FunnelCounts, error) {
	from, to, now = from.UTC(), to.UTC(), now.UTC()

	var out domain.FunnelCounts
	err := r.db.GetContext(ctx, &out, r.db.Rebind(funnelQuery),
		from, to,
		from, to,
		from, to,
		from, to,
		from, to,
		now, from, to,
	)
	if err != nil {
		return out, fmt.Errorf("funnel query: %w", err)
	}
	return out, nil
}

type StatusRow struct {
	Status  string  `db:"status" json:"status"`
	Count   int64   `db:"count" json:"count"`
	Revenue float64 `db:"revenue" json:"revenue"`
}

const statusSummaryQuery = `
SELECT status, COUNT(*) AS count, COALESCE(SUM(revenue), 0) AS revenue
FROM bookings
WHERE datetime >= ? AND datetime < ?
GROUP BY status
ORDER BY status
`

func (r *AnalyticsRepository) StatusSummary(ctx context.Context, from, to time.Time) ([]StatusRow, error) {
	var out []StatusRow
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(statusSummaryQuery), from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("status summary query: %w", err)
	}
	return out, nil
}
