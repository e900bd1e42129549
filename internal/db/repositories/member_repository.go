package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/models/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberRepository is the document-store surface for member records.
// All writes are single-row; counter mutations use column arithmetic so
// concurrent increments are never lost.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetByKey retrieves a member by its canonical key.
func (r *MemberRepository) GetByKey(ctx context.Context, groupID, key string) (*entities.Member, error) {
	var member entities.Member

	err := r.db.WithContext(ctx).
		Where("group_id = ? AND member_key = ?", groupID, key).
		First(&member).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constants.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member: %w", err)
	}

	return &member, nil
}

// GetByToken retrieves a member by its stored ephemeral token: exact
// match first, then a match on the token's digit portion regardless of
// the transport suffix it was stored with.
func (r *MemberRepository) GetByToken(ctx context.Context, groupID, token, tokenDigits string) (*entities.Member, error) {
	var member entities.Member

	err := r.db.WithContext(ctx).
		Where("group_id = ? AND ephemeral_token = ?", groupID, token).
		First(&member).Error
	if err == nil {
		return &member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch member by token: %w", err)
	}

	if tokenDigits == "" {
		return nil, constants.ErrMemberNotFound
	}

	err = r.db.WithContext(ctx).
		Where("group_id = ? AND (ephemeral_token = ? OR ephemeral_token LIKE ?)",
			groupID, tokenDigits, tokenDigits+"@%").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, constants.ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to fetch member by token digits: %w", err)
	}

	return &member, nil
}

// Create inserts a new member. Returns created=false when another
// writer won the race for the same key; callers re-read in that case.
func (r *MemberRepository) Create(ctx context.Context, member *entities.Member) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "member_key"}},
			DoNothing: true,
		}).
		Create(member)

	if res.Error != nil {
		return false, fmt.Errorf("failed to create member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// AttachToken persists a newly-learned ephemeral token onto an existing
// record (the anti-duplication merge of a token sighting onto a
// phone-keyed member).
func (r *MemberRepository) AttachToken(ctx context.Context, groupID, key, token string) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		UpdateColumns(map[string]interface{}{
			"ephemeral_token": token,
			"updated_at":      time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to attach token: %w", err)
	}
	return nil
}

// RecordActivity atomically bumps the toward-next-point counter and the
// lifetime message counter, and stamps last activity.
func (r *MemberRepository) RecordActivity(ctx context.Context, groupID, key string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		UpdateColumns(map[string]interface{}{
			"messages_for_next_point": gorm.Expr("messages_for_next_point + 1"),
			"messages_total":          gorm.Expr("messages_total + 1"),
			"last_message_at":         at,
			"updated_at":              at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// CounterValue re-reads the toward-next-point counter after an
// increment.
func (r *MemberRepository) CounterValue(ctx context.Context, groupID, key string) (int, error) {
	var counter int
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Select("messages_for_next_point").
		Where("group_id = ? AND member_key = ?", groupID, key).
		Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return counter, nil
}

// AwardPoint atomically adds one point and consumes the counter.
func (r *MemberRepository) AwardPoint(ctx context.Context, groupID, key string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		UpdateColumns(map[string]interface{}{
			"points":                  gorm.Expr("points + 1"),
			"messages_for_next_point": 0,
			"updated_at":              at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to award point: %w", err)
	}
	return nil
}

// SpendPoints atomically deducts a redemption from the member's
// balance. Returns spent=false when the balance is insufficient; the
// guard and the deduction happen in one statement so concurrent
// redemptions cannot overdraw.
func (r *MemberRepository) SpendPoints(ctx context.Context, groupID, key string, amount int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ? AND points >= ?", groupID, key, amount).
		UpdateColumns(map[string]interface{}{
			"points":     gorm.Expr("points - ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to spend points: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RaiseLevel sets current_level, but never downward; administrative
// resets go through ResetAccrual instead.
func (r *MemberRepository) RaiseLevel(ctx context.Context, groupID, key string, level int) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ? AND current_level < ?", groupID, key, level).
		UpdateColumn("current_level", level).Error
	if err != nil {
		return fmt.Errorf("failed to raise level: %w", err)
	}
	return nil
}

// UpdateStats overwrites the aggregate stats blob (last-write-wins by
// design; the blob is informational).
func (r *MemberRepository) UpdateStats(ctx context.Context, groupID, key string, stats entities.MemberStats) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		Update("stats", stats).Error
	if err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}
	return nil
}

// SetMembership flips membership on join/leave. Departures soft-delete:
// the row and its history stay for audit.
func (r *MemberRepository) SetMembership(ctx context.Context, groupID, key string, isMember bool, at time.Time) error {
	cols := map[string]interface{}{
		"is_member":  isMember,
		"updated_at": at,
	}
	if isMember {
		cols["joined_at"] = at
		cols["left_at"] = nil
	} else {
		cols["left_at"] = at
	}

	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		UpdateColumns(cols).Error
	if err != nil {
		return fmt.Errorf("failed to set membership: %w", err)
	}
	return nil
}

// AppendWarnEvent appends one typed event to the moderation log and
// adjusts the warning counter for WARN/UNWARN actions.
func (r *MemberRepository) AppendWarnEvent(ctx context.Context, member *entities.Member, event entities.WarnEvent) error {
	member.WarnHistory = append(member.WarnHistory, event)

	cols := map[string]interface{}{
		"warn_history": member.WarnHistory,
		"updated_at":   time.Now().UTC(),
	}
	switch event.Action {
	case constants.WarnActionWarn:
		cols["warnings"] = gorm.Expr("warnings + 1")
	case constants.WarnActionUnwarn:
		cols["warnings"] = gorm.Expr("CASE WHEN warnings > 0 THEN warnings - 1 ELSE 0 END")
	}

	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", member.GroupID, member.MemberKey).
		UpdateColumns(cols).Error
	if err != nil {
		return fmt.Errorf("failed to append warn event: %w", err)
	}
	return nil
}

// ResetAccrual is the explicit administrative reset: points, counter
// and level go back to their initial state.
func (r *MemberRepository) ResetAccrual(ctx context.Context, groupID, key string) error {
	err := r.db.WithContext(ctx).
		Model(&entities.Member{}).
		Where("group_id = ? AND member_key = ?", groupID, key).
		UpdateColumns(map[string]interface{}{
			"points":                  0,
			"messages_for_next_point": 0,
			"current_level":           1,
			"updated_at":              time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to reset accrual: %w", err)
	}
	return nil
}

// ListByGroup returns every member row of a group, departed ones
// included.
func (r *MemberRepository) ListByGroup(ctx context.Context, groupID string) ([]entities.Member, error) {
	var members []entities.Member
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("member_key").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Save persists a full member record (merge-repair path).
func (r *MemberRepository) Save(ctx context.Context, member *entities.Member) error {
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return fmt.Errorf("failed to save member: %w", err)
	}
	return nil
}

// Delete removes a member row. Only the duplicate-repair operation uses
// this, after folding the row's counters into the canonical record.
func (r *MemberRepository) Delete(ctx context.Context, groupID, key string) error {
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND member_key = ?", groupID, key).
		Delete(&entities.Member{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
