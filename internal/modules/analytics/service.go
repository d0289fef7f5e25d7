package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"beautycrm/internal/cache"
	"beautycrm/internal/domain"
)

const (
	dateLayout   = "2006-01-02"
	defaultDays  = 30
	funnelTTL    = 60 * time.Second
	funnelPrefix = "analytics:funnel:"
)

type Service struct {
	repo  Repository
	cache cache.Cache
	loc   *time.Location
	now   func() time.Time
}

func NewService(repo Repository, c cache.Cache, loc *time.Location) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, cache: c, loc: loc, now: time.Now}
}

// Funnel reports the client funnel for the inclusive date range, defaulting
// to the last 30 days.
func (s *Service) Funnel(ctx context.Context, q RangeQuery) (*FunnelReport, error) {
	from, to, err := s.parseRange(q)
	if err != nil {
		return nil, err
	}
	key := funnelPrefix + from.Format(dateLayout) + ":" + to.Format(dateLayout)

	var cached FunnelReport
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	counts, err := s.repo.Funnel(ctx, from, to, s.now())
	if err != nil {
		return nil, err
	}
	report := &FunnelReport{
		From:   from.Format(dateLayout),
		To:     to.AddDate(0, 0, -1).Format(dateLayout),
		Stages: BuildStages(counts),
		NoShow: counts.NoShow,
	}
	if err := s.cache.Set(ctx, key, report, funnelTTL); err != nil {
		zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return report, nil
}

func (s *Service) Summary(ctx context.Context, q RangeQuery) (*SummaryReport, error) {
	from, to, err := s.parseRange(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.StatusSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &SummaryReport{
		From:     from.Format(dateLayout),
		To:       to.AddDate(0, 0, -1).Format(dateLayout),
		Statuses: rows,
	}
	for _, r := range rows {
		report.TotalBookings += r.Count
		if r.Status == string(domain.BookingCompleted) {
			report.CompletedRevenue += r.Revenue
		}
	}
	return report, nil
}

// BuildStages turns raw counts into ordered stages with conversion ratios.
// A stage after an empty one converts at 0.
func BuildStages(c domain.FunnelCounts) []StageCount {
	out := make([]StageCount, 0, len(domain.FunnelStages))
	visitors := c.Get(domain.StageVisitor)
	var prev int64
	for i, st := range domain.FunnelStages {
		n := c.Get(st)
		sc := StageCount{Stage: st, Count: n}
		if i == 0 {
			if n > 0 {
				sc.Conversion, sc.OfVisitors = 100, 100
			}
		} else {
			sc.Conversion = percent(n, prev)
			sc.OfVisitors = percent(n, visitors)
		}
		out = append(out, sc)
		prev = n
	}
	return out
}

func percent(n, base int64) float64 {
	if base <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(base)*1000) / 10
}

// parseRange returns [from, to) where to is the day after q.To.
func (s *Service) parseRange(q RangeQuery) (time.Time, time.Time, error) {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	to := today.AddDate(0, 0, 1)
	if q.To != "" {
		d, err := time.ParseInLocation(dateLayout, q.To, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidRange)
		}
		to = d.AddDate(0, 0, 1)
	}
	from := to.AddDate(0, 0, -defaultDays)
	if q.From != "" {
		d, err := time.ParseInLocation(dateLayout, q.From, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidRange)
		}
		from = d
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	return from, to, nil
}
