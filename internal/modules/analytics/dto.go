package analytics

import (
	"beautycrm/internal/domain"
	"beautycrm/internal/repository"
)

type RangeQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// StageCount is one funnel step. Conversion is relative to the previous
// stage, OfVisitors to the first one; both are percentages rounded to one
// decimal.
type StageCount struct {
	Stage      domain.FunnelStage `json:"stage"`
	Count      int64              `json:"count"`
	Conversion float64            `json:"conversion"`
	OfVisitors float64            `json:"of_visitors"`
}

type FunnelReport struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Stages []StageCount `json:"stages"`
	NoShow int64        `json:"no_show"`
}

type SummaryReport struct {
	From             string                 `json:"from"`
	To               string                 `json:"to"`
	Statuses         []repository.StatusRow `json:"statuses"`
	TotalBookings    int64                  `json:"total_bookings"`
	CompletedRevenue float64                `json:"completed_revenue"`
}
