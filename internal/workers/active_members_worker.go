package workers

import (
	"context"
	"time"

	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
)

// ActiveMembersRefresher keeps the per-group active member gauge in
// step with the database.
func ActiveMembersRefresher(ctx context.Context, interval time.Duration, repo *repositories.RankingRepository, metricsReg *metrics.MetricsRegistry) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refreshActiveMembers(ctx, repo, metricsReg)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshActiveMembers(ctx, repo, metricsReg)
		}
	}
}

func refreshActiveMembers(ctx context.Context, repo *repositories.RankingRepository, metricsReg *metrics.MetricsRegistry) {
	groupIDs, err := repo.ListKnownGroupIDs(ctx)
	if err != nil {
		logging.Warn("Failed to list groups for gauge refresh", "error", err.Error())
		return
	}

	for _, groupID := range groupIDs {
		count, err := repo.GetActiveMemberCount(ctx, groupID)
		if err != nil {
			logging.Warn("Failed to count active members", "group", groupID, "error", err.Error())
			continue
		}
		metricsReg.ActiveMembers.WithLabelValues(groupID).Set(float64(count))
	}
}
