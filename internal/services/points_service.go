package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/dtos"
	"communa/tribune/internal/models/entities"
	"communa/tribune/internal/ratewindow"

	"golang.org/x/time/rate"
)

// PointsService drives the per-member accrual state machine: message
// counter, point awards, level-ups, guarded by the flood window and a
// per-member minimum award interval.
type PointsService struct {
	resolver *MemberResolver
	members  *repositories.MemberRepository
	groups   *repositories.GroupRepository
	flood    *ratewindow.Window
	metrics  *metrics.MetricsRegistry

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

func NewPointsService(
	resolver *MemberResolver,
	members *repositories.MemberRepository,
	groups *repositories.GroupRepository,
	flood *ratewindow.Window,
	metricsReg *metrics.MetricsRegistry,
) *PointsService {
	return &PointsService{
		resolver: resolver,
		members:  members,
		groups:   groups,
		flood:    flood,
		metrics:  metricsReg,
		limiters: make(map[string]*rate.Limiter),
	}
}

// awardLimiter returns the per-member limiter enforcing the minimum
// interval between two point awards. Process-local: limits simply
// reset on restart, an accepted trade-off.
func (svc *PointsService) awardLimiter(memberKey string) *rate.Limiter {
	svc.limitersMu.Lock()
	defer svc.limitersMu.Unlock()

	if limiter, exists := svc.limiters[memberKey]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(constants.PointAwardMinInterval), 1)
	svc.limiters[memberKey] = limiter
	return limiter
}

// EffectiveThreshold resolves the messages-per-point threshold with
// precedence: group column override, nested config override, global
// default.
func EffectiveThreshold(group *entities.Group) int {
	if group != nil {
		if group.MessagesPerPoint > 0 {
			return group.MessagesPerPoint
		}
		if group.Config.Points.MessagesPerPoint > 0 {
			return group.Config.Points.MessagesPerPoint
		}
	}
	return constants.DefaultMessagesPerPoint
}

// Redeem spends points from a member's balance (prize draws, perks)
// and books the amount into the lifetime-spent counter. The current
// level is untouched: levels track lifetime accrual, not balance.
func (svc *PointsService) Redeem(ctx context.Context, groupID, key string, amount int) (*entities.Member, error) {
	if amount <= 0 {
		return nil, constants.ErrInsufficientPoints
	}
	groupID = identity.NormalizeGroupID(groupID)

	spent, err := svc.members.SpendPoints(ctx, groupID, key, amount)
	if err != nil {
		return nil, constants.NewStorageError("spendPoints", groupID, key, err)
	}
	if !spent {
		// Either the member does not exist or the balance is short;
		// disambiguate for the caller.
		if _, err := svc.members.GetByKey(ctx, groupID, key); err != nil {
			return nil, err
		}
		return nil, constants.ErrInsufficientPoints
	}

	member, err := svc.members.GetByKey(ctx, groupID, key)
	if err != nil {
		return nil, constants.NewStorageError("getByKey", groupID, key, err)
	}

	member.Stats.LifetimePointsSpent += amount
	if err := svc.members.UpdateStats(ctx, groupID, key, member.Stats); err != nil {
		logging.Warn("Points: failed to book redemption into stats",
			"group", groupID, "key", key, "error", err.Error())
	}

	logging.Info("Points redeemed", "group", groupID, "key", key, "amount", amount)
	return member, nil
}

// advanceStreak folds one counted message into the member's daily
// streak counters, keyed on UTC calendar-day transitions of
// last_message_at. Returns true when the stats blob changed.
func advanceStreak(member *entities.Member, now time.Time) bool {
	today := now.UTC()

	if member.LastMessageAt == nil {
		member.Stats.CurrentStreakDays = 1
		if member.Stats.BestStreakDays < 1 {
			member.Stats.BestStreakDays = 1
		}
		return true
	}

	last := member.LastMessageAt.UTC()
	if sameCalendarDay(last, today) {
		return false
	}
	if sameCalendarDay(last.AddDate(0, 0, 1), today) {
		member.Stats.CurrentStreakDays++
	} else {
		member.Stats.CurrentStreakDays = 1
	}
	if member.Stats.CurrentStreakDays > member.Stats.BestStreakDays {
		member.Stats.BestStreakDays = member.Stats.CurrentStreakDays
	}
	return true
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// ProcessMessage runs one message through the accrual state machine and
// returns the outcome, or nil when the message does not qualify
// (points disabled, flood-suppressed, sender not a member) or when a
// storage failure was logged and swallowed. Engagement tracking must
// never block message delivery, so this function does not return
// errors.
func (svc *PointsService) ProcessMessage(ctx context.Context, groupID string, rawIdentifier interface{}, hints *ResolveHints, eligible bool) *dtos.PointsOutcome {
	if !eligible {
		return nil
	}
	groupID = identity.NormalizeGroupID(groupID)

	group, err := svc.groups.GetOrDefault(ctx, groupID)
	if err != nil {
		logging.Error("Points: failed to load group config", "group", groupID, "error", err.Error())
		return nil
	}
	if !group.PointsEnabled {
		return nil
	}

	member, err := svc.resolver.GetOrCreate(ctx, groupID, rawIdentifier, hints)
	if err != nil {
		logging.Error("Points: member resolution failed", "group", groupID, "error", err.Error())
		return nil
	}
	if !member.IsMember {
		return nil
	}
	// Guard against malformed transport echoes where the sender
	// collapses into the group's own id.
	if member.MemberKey == groupID {
		return nil
	}

	now := time.Now()

	// Flood check: the message is still recorded into the window, but a
	// burst at or above the threshold earns nothing.
	if svc.flood.Record(member.MemberKey, now) >= constants.FloodThreshold {
		svc.metrics.FloodSuppressionsTotal.Inc()
		return nil
	}

	// Streak accounting keys on the pre-update last_message_at, so it
	// runs before RecordActivity stamps the new one.
	if advanceStreak(member, now) {
		if err := svc.members.UpdateStats(ctx, groupID, member.MemberKey, member.Stats); err != nil {
			logging.Warn("Points: failed to update streak stats",
				"group", groupID, "key", member.MemberKey, "error", err.Error())
		}
	}

	if err := svc.members.RecordActivity(ctx, groupID, member.MemberKey, now.UTC()); err != nil {
		logging.Error("Points: failed to record activity",
			"group", groupID, "key", member.MemberKey, "error", err.Error())
		return nil
	}

	counter, err := svc.members.CounterValue(ctx, groupID, member.MemberKey)
	if err != nil {
		logging.Error("Points: failed to read counter",
			"group", groupID, "key", member.MemberKey, "error", err.Error())
		return nil
	}

	threshold := EffectiveThreshold(group)
	if counter < threshold {
		return &dtos.PointsOutcome{
			PointsAdded:          false,
			MessagesForNextPoint: counter,
			MessagesNeeded:       threshold - counter,
		}
	}

	// Threshold reached: the award is still subject to the per-member
	// minimum interval. A denied award is deferred, not lost; the
	// counter stays unconsumed and the next message retries.
	if !svc.awardLimiter(member.MemberKey).AllowN(now, 1) {
		svc.metrics.AwardsRateLimitedTotal.Inc()
		return &dtos.PointsOutcome{
			PointsAdded:          false,
			RateLimited:          true,
			MessagesForNextPoint: counter,
			MessagesNeeded:       0,
		}
	}

	if err := svc.members.AwardPoint(ctx, groupID, member.MemberKey, now.UTC()); err != nil {
		logging.Error("Points: failed to award point",
			"group", groupID, "key", member.MemberKey, "error", err.Error())
		return nil
	}
	svc.metrics.PointsAwardedTotal.Inc()

	awarded, err := svc.members.GetByKey(ctx, groupID, member.MemberKey)
	if err != nil {
		logging.Error("Points: failed to re-read member after award",
			"group", groupID, "key", member.MemberKey, "error", err.Error())
		return nil
	}

	awarded.Stats.LifetimePointsEarned++
	if err := svc.members.UpdateStats(ctx, groupID, awarded.MemberKey, awarded.Stats); err != nil {
		logging.Warn("Points: failed to update stats blob",
			"group", groupID, "key", awarded.MemberKey, "error", err.Error())
	}

	outcome := &dtos.PointsOutcome{
		PointsAdded:          true,
		NewPoints:            awarded.Points,
		MessagesForNextPoint: 0,
		MessagesNeeded:       threshold,
		Message:              fmt.Sprintf("+1 point! Total: %d", awarded.Points),
	}

	if change := CheckLevelUp(awarded.Points-1, awarded.Points, group.Config.Levels); change != nil {
		if err := svc.members.RaiseLevel(ctx, groupID, awarded.MemberKey, change.NewLevel.Level); err != nil {
			logging.Error("Points: failed to persist level up",
				"group", groupID, "key", awarded.MemberKey, "error", err.Error())
		} else {
			svc.metrics.LevelUpsTotal.Inc()
			outcome.LevelUp = &dtos.LevelUp{OldLevel: change.OldLevel, NewLevel: change.NewLevel}
			outcome.Message = fmt.Sprintf("+1 point! Total: %d. Leveled up to %s (level %d)",
				awarded.Points, change.NewLevel.Name, change.NewLevel.Level)
		}
	}

	return outcome
}
