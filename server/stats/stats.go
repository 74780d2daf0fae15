// Package stats provides the dashboard read model over the bot's
// users/message tables.
package stats

import (
	"context"
	"time"
)

// OverviewStats is the headline usage block.
type OverviewStats struct {
	TotalUsers     int64 `json:"total_users"`
	ActiveUsers7d  int64 `json:"active_users_7d"`
	ActiveUsers30d int64 `json:"active_users_30d"`
	TotalMessages  int64 `json:"total_messages"`
	Messages7d     int64 `json:"messages_7d"`
	Messages30d    int64 `json:"messages_30d"`
}

// UserStats breaks the audience down by premium status and language.
type UserStats struct {
	PremiumCount      int64            `json:"premium_count"`
	PremiumPercentage float64          `json:"premium_percentage"`
	RegularCount      int64            `json:"regular_count"`
	ByLanguage        map[string]int64 `json:"by_language"`
}

// MessageStats describes the message traffic.
type MessageStats struct {
	AvgLength            float64   `json:"avg_length"`
	FirstMessageDate     time.Time `json:"first_message_date"`
	LastMessageDate      time.Time `json:"last_message_date"`
	UserToAssistantRatio float64   `json:"user_to_assistant_ratio"`
}

// MetadataStats records how and when the stats were produced.
type MetadataStats struct {
	GeneratedAt time.Time `json:"generated_at"`
	IsMock      bool      `json:"is_mock"`
}

// DashboardStats is the root payload served to the dashboard.
type DashboardStats struct {
	Overview OverviewStats `json:"overview"`
	Users    UserStats     `json:"users"`
	Messages MessageStats  `json:"messages"`
	Metadata MetadataStats `json:"metadata"`
}

// Collector produces dashboard statistics. Implementations: real (database
// aggregation) and mock (fixed numbers for development without data).
type Collector interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}
