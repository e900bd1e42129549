package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/entities"
	"communa/tribune/internal/ratewindow"

	"gorm.io/gorm"
)

func newTestPointsService(t *testing.T, db *gorm.DB) *PointsService {
	memberRepo := repositories.NewMemberRepository(db)
	groupRepo := repositories.NewGroupRepository(db)
	resolver := newTestResolver(t, db, &mockRosterProvider{})
	flood := ratewindow.New(ratewindow.Config{
		Width: constants.FloodWindowWidth,
		Cap:   constants.FloodWindowCap,
	})
	return NewPointsService(resolver, memberRepo, groupRepo, flood, metrics.Default())
}

func seedGroup(t *testing.T, db *gorm.DB, group entities.Group) {
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
}

func TestProcessMessage_AccruesBelowThreshold(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 3})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	outcome := svc.ProcessMessage(ctx, "group1@g.us", "5511999887766@s.whatsapp.net", nil, true)
	if outcome == nil {
		t.Fatal("expected an outcome for the first message")
	}
	if outcome.PointsAdded {
		t.Fatal("one message must not award a point at threshold 3")
	}
	if outcome.MessagesForNextPoint != 1 || outcome.MessagesNeeded != 2 {
		t.Fatalf("unexpected counters: %+v", outcome)
	}
}

func TestProcessMessage_AwardsAtThreshold(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 3})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	last := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true)
	last = svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true)
	last = svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true)

	if last == nil || !last.PointsAdded {
		t.Fatalf("third message should award a point, got %+v", last)
	}
	if last.NewPoints != 1 {
		t.Fatalf("expected 1 point, got %d", last.NewPoints)
	}

	var member entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&member).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if member.Points != 1 || member.MessagesForNextPoint != 0 {
		t.Fatalf("counter not consumed: %+v", member)
	}
}

func TestProcessMessage_FloodSuppression(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 100})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	var suppressed int
	for i := 0; i < 6; i++ {
		if outcome := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true); outcome == nil {
			suppressed++
		}
	}
	if suppressed != 2 {
		t.Fatalf("expected messages 5 and 6 of the burst suppressed, got %d", suppressed)
	}

	var member entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&member).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if member.MessagesForNextPoint != 4 {
		t.Fatalf("suppressed messages must not progress the counter, got %d", member.MessagesForNextPoint)
	}
}

func TestProcessMessage_RateLimitedAwardDeferred(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 1})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	first := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true)
	if first == nil || !first.PointsAdded {
		t.Fatalf("first threshold hit should award, got %+v", first)
	}

	// Second award attempt inside the minimum interval: deferred, not
	// lost. Counter stays unconsumed.
	second := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true)
	if second == nil {
		t.Fatal("rate-limited attempt must still return an outcome")
	}
	if second.PointsAdded || !second.RateLimited {
		t.Fatalf("expected a rate-limited deferral, got %+v", second)
	}

	var member entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&member).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if member.Points != 1 {
		t.Fatalf("only one point may be awarded within the interval, got %d", member.Points)
	}
	if member.MessagesForNextPoint != 1 {
		t.Fatalf("deferred award must keep the counter, got %d", member.MessagesForNextPoint)
	}
}

func TestProcessMessage_LevelUp(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{
		GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 1,
		Config: entities.GroupConfig{
			Levels: []entities.Level{
				{Level: 1, Name: "Newbie", MinPoints: 0, MaxPoints: 0},
				{Level: 2, Name: "Pro", MinPoints: 1, MaxPoints: -1},
			},
		},
	})
	svc := newTestPointsService(t, db)

	outcome := svc.ProcessMessage(context.Background(), "group1", "5511999887766@s.whatsapp.net", nil, true)
	if outcome == nil || !outcome.PointsAdded {
		t.Fatalf("expected an award, got %+v", outcome)
	}
	if outcome.LevelUp == nil || outcome.LevelUp.NewLevel.Level != 2 {
		t.Fatalf("expected level up to 2, got %+v", outcome.LevelUp)
	}

	var member entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&member).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if member.CurrentLevel != 2 {
		t.Fatalf("level not persisted, got %d", member.CurrentLevel)
	}
}

func TestProcessMessage_DisabledAndIneligible(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: false})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	if outcome := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true); outcome != nil {
		t.Fatalf("disabled group must yield nil, got %+v", outcome)
	}
	if outcome := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, false); outcome != nil {
		t.Fatalf("ineligible message must yield nil, got %+v", outcome)
	}
}

func TestEffectiveThreshold_Precedence(t *testing.T) {
	if got := EffectiveThreshold(nil); got != constants.DefaultMessagesPerPoint {
		t.Fatalf("nil group should use the default, got %d", got)
	}

	group := &entities.Group{}
	if got := EffectiveThreshold(group); got != constants.DefaultMessagesPerPoint {
		t.Fatalf("unset group should use the default, got %d", got)
	}

	group.Config.Points.MessagesPerPoint = 7
	if got := EffectiveThreshold(group); got != 7 {
		t.Fatalf("nested override should win over the default, got %d", got)
	}

	group.MessagesPerPoint = 4
	if got := EffectiveThreshold(group); got != 4 {
		t.Fatalf("flat override should win over the nested one, got %d", got)
	}
}

func TestAdvanceStreak(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	threeDaysAgo := now.AddDate(0, 0, -3)

	// First ever message starts the streak.
	m := &entities.Member{}
	if !advanceStreak(m, now) {
		t.Fatal("first message must change the stats blob")
	}
	if m.Stats.CurrentStreakDays != 1 || m.Stats.BestStreakDays != 1 {
		t.Fatalf("unexpected initial streak: %+v", m.Stats)
	}

	// Second message the same day is a no-op.
	m.LastMessageAt = &now
	if advanceStreak(m, now.Add(time.Hour)) {
		t.Fatal("same-day message must not change the streak")
	}

	// A message on the next calendar day extends the streak.
	m = &entities.Member{
		LastMessageAt: &yesterday,
		Stats:         entities.MemberStats{CurrentStreakDays: 3, BestStreakDays: 3},
	}
	if !advanceStreak(m, now) {
		t.Fatal("day transition must change the stats blob")
	}
	if m.Stats.CurrentStreakDays != 4 || m.Stats.BestStreakDays != 4 {
		t.Fatalf("consecutive day not counted: %+v", m.Stats)
	}

	// A gap resets the current streak but keeps the best.
	m = &entities.Member{
		LastMessageAt: &threeDaysAgo,
		Stats:         entities.MemberStats{CurrentStreakDays: 5, BestStreakDays: 6},
	}
	advanceStreak(m, now)
	if m.Stats.CurrentStreakDays != 1 || m.Stats.BestStreakDays != 6 {
		t.Fatalf("gap handling wrong: %+v", m.Stats)
	}
}

func TestProcessMessage_StartsStreak(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 10})
	svc := newTestPointsService(t, db)

	if outcome := svc.ProcessMessage(context.Background(), "group1", "5511999887766@s.whatsapp.net", nil, true); outcome == nil {
		t.Fatal("expected an outcome")
	}

	var member entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&member).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if member.Stats.CurrentStreakDays != 1 || member.Stats.BestStreakDays != 1 {
		t.Fatalf("first message must persist a 1-day streak, got %+v", member.Stats)
	}
}

func TestRedeem(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := db.Create(&entities.Member{
		GroupID: "group1", MemberKey: "5511999887766",
		PhoneResolved: true, IsMember: true, Points: 5, CurrentLevel: 1,
		WarnHistory: []entities.WarnEvent{}, CreatedAt: now, JoinedAt: now,
	}).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	member, err := svc.Redeem(ctx, "group1", "5511999887766", 3)
	if err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if member.Points != 2 {
		t.Fatalf("expected balance 2 after redemption, got %d", member.Points)
	}
	if member.Stats.LifetimePointsSpent != 3 {
		t.Fatalf("spent counter not booked: %+v", member.Stats)
	}

	if _, err := svc.Redeem(ctx, "group1", "5511999887766", 10); !errors.Is(err, constants.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if _, err := svc.Redeem(ctx, "group1", "nobody99", 1); !errors.Is(err, constants.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	var after entities.Member
	if err := db.Where("group_id = ? AND member_key = ?", "group1", "5511999887766").First(&after).Error; err != nil {
		t.Fatalf("member missing: %v", err)
	}
	if after.Points != 2 {
		t.Fatalf("failed redemption must not touch the balance, got %d", after.Points)
	}
}

func TestProcessMessage_FourMessagesOverTime(t *testing.T) {
	db := setupTestDB(t)
	seedGroup(t, db, entities.Group{GroupID: "group1", PointsEnabled: true, MessagesPerPoint: 100})
	svc := newTestPointsService(t, db)
	ctx := context.Background()

	// Spread below the flood threshold: all messages accrue.
	for i := 0; i < 4; i++ {
		if outcome := svc.ProcessMessage(ctx, "group1", "5511999887766@s.whatsapp.net", nil, true); outcome == nil {
			t.Fatalf("message %d unexpectedly suppressed", i+1)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
