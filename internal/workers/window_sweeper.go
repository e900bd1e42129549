package workers

import (
	"context"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/ratewindow"
)

// WindowSweeper evicts idle sender entries from the in-memory rate
// windows so they do not grow with every sender ever seen.
func WindowSweeper(ctx context.Context, interval time.Duration, windows ...*ratewindow.Window) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			evicted := 0
			for _, w := range windows {
				evicted += w.Sweep(now, constants.WindowIdleEviction)
			}
			if evicted > 0 {
				logging.Debug("Rate window sweep completed", "evicted", evicted)
			}
		}
	}
}
