package repositories

import (
	"context"
	"errors"
	"fmt"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/models/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// GetByID retrieves a group by its normalized identifier.
func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (*entities.Group, error) {
	var group entities.Group

	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		First(&group).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constants.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to fetch group: %w", err)
	}

	return &group, nil
}

// GetOrDefault returns the stored group or a default-configured one
// when the group has never been configured. The default is not
// persisted; first explicit configuration creates the row.
func (r *GroupRepository) GetOrDefault(ctx context.Context, groupID string) (*entities.Group, error) {
	group, err := r.GetByID(ctx, groupID)
	if err == nil {
		return group, nil
	}
	if errors.Is(err, constants.ErrGroupNotFound) {
		return &entities.Group{
			GroupID:       groupID,
			PointsEnabled: true,
			Config: entities.GroupConfig{
				AntiSpam: entities.AntiSpamConfig{
					WindowSeconds: constants.DefaultSpamWindowSeconds,
					Threshold:     constants.DefaultSpamThreshold,
				},
			},
		}, nil
	}
	return nil, err
}

// Upsert creates or fully replaces a group row.
func (r *GroupRepository) Upsert(ctx context.Context, group *entities.Group) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			UpdateAll: true,
		}).
		Create(group).Error
	if err != nil {
		return fmt.Errorf("failed to upsert group: %w", err)
	}
	return nil
}
