package workers

import (
	"context"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/ratewindow"
)

// InitWorkers starts the background loops. Each runs until the process
// exits; they hold no state the handlers depend on.
func InitWorkers(
	floodWindow *ratewindow.Window,
	spamWindow *ratewindow.Window,
	rankingRepo *repositories.RankingRepository,
	metricsReg *metrics.MetricsRegistry,
) {
	go WindowSweeper(context.Background(), constants.WindowSweepInterval, floodWindow, spamWindow)
	go ActiveMembersRefresher(context.Background(), constants.ActiveMembersRefresh, rankingRepo, metricsReg)
}
