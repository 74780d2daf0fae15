package stats

import (
	"context"
	"time"
)

// MockCollector serves fixed, plausible numbers so the dashboard can be
// developed against an empty database.
type MockCollector struct{}

func NewMockCollector() *MockCollector {
	return &MockCollector{}
}

func (*MockCollector) GetDashboardStats(_ context.Context) (*DashboardStats, error) {
	now := time.Now()
	return &DashboardStats{
		Overview: OverviewStats{
			TotalUsers:     1250,
			ActiveUsers7d:  342,
			ActiveUsers30d: 876,
			TotalMessages:  45230,
			Messages7d:     3420,
			Messages30d:    12840,
		},
		Users: UserStats{
			PremiumCount:      187,
			PremiumPercentage: 14.96,
			RegularCount:      1063,
			ByLanguage: map[string]int64{
				"ru": 820,
				"en": 310,
				"de": 75,
				"es": 45,
			},
		},
		Messages: MessageStats{
			AvgLength:            156.4,
			FirstMessageDate:     now.AddDate(0, -6, 0),
			LastMessageDate:      now,
			UserToAssistantRatio: 1.05,
		},
		Metadata: MetadataStats{
			GeneratedAt: now,
			IsMock:      true,
		},
	}, nil
}
