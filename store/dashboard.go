package store

import "time"

// DashboardSnapshot holds raw aggregates for the admin dashboard, as
// produced by a single driver pass over the users/message tables.
// Derived values (percentages, ratios) are computed by the stats layer.
type DashboardSnapshot struct {
	TotalUsers     int64
	ActiveUsers7d  int64
	ActiveUsers30d int64

	TotalMessages int64
	Messages7d    int64
	Messages30d   int64

	PremiumUsers    int64
	UsersByLanguage map[string]int64

	AvgMessageLength  float64
	FirstMessageAt    time.Time
	LastMessageAt     time.Time
	UserMessages      int64
	AssistantMessages int64
}
