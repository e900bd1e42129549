package identity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"communa/tribune/internal/common"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/dtos"
)

// Mock roster provider
type mockRosterProvider struct {
	calls        int64
	participants []dtos.Participant
	err          error
}

func (m *mockRosterProvider) GetGroupParticipants(ctx context.Context, groupID string) ([]dtos.Participant, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.participants, nil
}

func newTestResolver(roster RosterProvider, ttl time.Duration) *Resolver {
	cache := common.NewCacheService(ttl, ttl)
	return NewResolver(cache, roster, ttl, metrics.Default())
}

func TestResolver_ExactAddressMatch(t *testing.T) {
	roster := &mockRosterProvider{
		participants: []dtos.Participant{
			{ID: "99887766554433@lid", Phone: "5511999887766@s.whatsapp.net"},
			{ID: "5521888776655@s.whatsapp.net"},
		},
	}
	r := newTestResolver(roster, time.Minute)

	phone := r.Resolve(context.Background(), "12036304111@g.us", "99887766554433:4@lid")
	if phone != "5511999887766" {
		t.Fatalf("expected resolved phone, got %q", phone)
	}
}

func TestResolver_DigitPrefixMatch(t *testing.T) {
	roster := &mockRosterProvider{
		participants: []dtos.Participant{
			{ID: "5511999887766@s.whatsapp.net"},
		},
	}
	r := newTestResolver(roster, time.Minute)

	// Token digits share a prefix with the participant phone.
	phone := r.Resolve(context.Background(), "group1", "5511999887766001@lid")
	if phone != "5511999887766" {
		t.Fatalf("expected prefix-matched phone, got %q", phone)
	}
}

func TestResolver_CachesHits(t *testing.T) {
	roster := &mockRosterProvider{
		participants: []dtos.Participant{
			{ID: "99887766554433@lid", Phone: "5511999887766"},
		},
	}
	r := newTestResolver(roster, time.Minute)

	for i := 0; i < 3; i++ {
		if phone := r.Resolve(context.Background(), "group1", "99887766554433@lid"); phone != "5511999887766" {
			t.Fatalf("resolve %d failed, got %q", i, phone)
		}
	}
	if n := atomic.LoadInt64(&roster.calls); n != 1 {
		t.Fatalf("expected a single roster fetch, got %d", n)
	}
}

func TestResolver_TTLExpiryForcesReResolve(t *testing.T) {
	roster := &mockRosterProvider{
		participants: []dtos.Participant{
			{ID: "99887766554433@lid", Phone: "5511999887766"},
		},
	}
	r := newTestResolver(roster, 30*time.Millisecond)

	r.Resolve(context.Background(), "group1", "99887766554433@lid")
	time.Sleep(60 * time.Millisecond)
	r.Resolve(context.Background(), "group1", "99887766554433@lid")

	if n := atomic.LoadInt64(&roster.calls); n != 2 {
		t.Fatalf("expected re-resolution after TTL, got %d fetches", n)
	}
}

func TestResolver_FailureNotCached(t *testing.T) {
	roster := &mockRosterProvider{err: errors.New("gateway unavailable")}
	r := newTestResolver(roster, time.Minute)

	if phone := r.Resolve(context.Background(), "group1", "99887766554433@lid"); phone != "" {
		t.Fatalf("expected unresolved, got %q", phone)
	}

	// Gateway recovers; next resolve must retry instead of serving a
	// cached failure.
	roster.err = nil
	roster.participants = []dtos.Participant{{ID: "99887766554433@lid", Phone: "5511999887766"}}
	if phone := r.Resolve(context.Background(), "group1", "99887766554433@lid"); phone != "5511999887766" {
		t.Fatalf("expected resolution after recovery, got %q", phone)
	}
}

func TestResolver_NonTokenInput(t *testing.T) {
	roster := &mockRosterProvider{}
	r := newTestResolver(roster, time.Minute)

	if phone := r.Resolve(context.Background(), "group1", "5511999887766@s.whatsapp.net"); phone != "" {
		t.Fatalf("non-token input must not resolve, got %q", phone)
	}
	if n := atomic.LoadInt64(&roster.calls); n != 0 {
		t.Fatalf("non-token input must not hit the roster, got %d fetches", n)
	}
}
