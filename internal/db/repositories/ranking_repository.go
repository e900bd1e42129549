package repositories

import (
	"context"
	"fmt"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/models/dtos"

	"github.com/jmoiron/sqlx"
)

// RankingRepository runs the read-only aggregate queries (leaderboard,
// group totals) straight over sqlx; they never go through the ORM.
type RankingRepository struct {
	db *sqlx.DB
}

func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db}
}

func (r *RankingRepository) GetRanking(ctx context.Context, groupID string, limit int) ([]dtos.RankingEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	entries := []dtos.RankingEntry{}
	err := r.db.SelectContext(ctx, &entries, constants.GetGroupRanking, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ranking: %w", err)
	}
	return entries, nil
}

func (r *RankingRepository) GetGroupStats(ctx context.Context, groupID string) (*dtos.GroupStats, error) {
	var stats dtos.GroupStats
	err := r.db.GetContext(ctx, &stats, constants.GetGroupStats, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group stats: %w", err)
	}
	return &stats, nil
}

func (r *RankingRepository) ListKnownGroupIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, constants.ListKnownGroupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list group ids: %w", err)
	}
	return ids, nil
}

func (r *RankingRepository) GetActiveMemberCount(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, constants.GetActiveMemberCount, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active members: %w", err)
	}
	return count, nil
}
