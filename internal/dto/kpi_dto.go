package dto

import "time"

// KPIRequest defines the inputs for a KPI summary.
type KPIRequest struct {
	TimeRange string `query:"time_range" validate:"omitempty,oneof=today this_week this_month last_month this_year all_time"`
	Search    string `query:"search"`
	Category  string `query:"category"`
	Status    string `query:"status" validate:"omitempty,oneof=Draft Published Archived"`
	Role      string `query:"role" validate:"omitempty,oneof=user editor admin"`
}

// KPIBucket is one chronological point in the KPI series.
type KPIBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// KPIResponse summarises counts for the current window against the previous
// window of equal length.
type KPIResponse struct {
	TimeRange     string           `json:"time_range"`
	Total         int64            `json:"total"`
	Previous      int64            `json:"previous"`
	ChangePercent float64          `json:"change_percent"`
	Breakdown     map[string]int64 `json:"breakdown"`
	Series        []KPIBucket      `json:"series"`
	WindowStart   time.Time        `json:"window_start"`
	WindowEnd     time.Time        `json:"window_end"`
	GeneratedAt   time.Time        `json:"generated_at"`
	CacheHit      bool             `json:"cache_hit"`
}
