package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/adminparrot/adminparrot/store"
)

// RealCollector aggregates dashboard statistics from the database.
type RealCollector struct {
	store *store.Store
}

func NewRealCollector(st *store.Store) *RealCollector {
	return &RealCollector{store: st}
}

func (c *RealCollector) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	snapshot, err := c.store.DashboardSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect dashboard snapshot: %w", err)
	}

	premiumPercentage := 0.0
	if snapshot.TotalUsers > 0 {
		premiumPercentage = float64(snapshot.PremiumUsers) / float64(snapshot.TotalUsers) * 100
	}

	ratio := 0.0
	if snapshot.AssistantMessages > 0 {
		ratio = float64(snapshot.UserMessages) / float64(snapshot.AssistantMessages)
	}

	return &DashboardStats{
		Overview: OverviewStats{
			TotalUsers:     snapshot.TotalUsers,
			ActiveUsers7d:  snapshot.ActiveUsers7d,
			ActiveUsers30d: snapshot.ActiveUsers30d,
			TotalMessages:  snapshot.TotalMessages,
			Messages7d:     snapshot.Messages7d,
			Messages30d:    snapshot.Messages30d,
		},
		Users: UserStats{
			PremiumCount:      snapshot.PremiumUsers,
			PremiumPercentage: premiumPercentage,
			RegularCount:      snapshot.TotalUsers - snapshot.PremiumUsers,
			ByLanguage:        snapshot.UsersByLanguage,
		},
		Messages: MessageStats{
			AvgLength:            snapshot.AvgMessageLength,
			FirstMessageDate:     snapshot.FirstMessageAt,
			LastMessageDate:      snapshot.LastMessageAt,
			UserToAssistantRatio: ratio,
		},
		Metadata: MetadataStats{
			GeneratedAt: time.Now(),
			IsMock:      false,
		},
	}, nil
}
