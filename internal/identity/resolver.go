package identity

import (
	"context"
	"strings"
	"time"

	"communa/tribune/internal/common"
	"communa/tribune/internal/constants"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/dtos"

	"golang.org/x/sync/singleflight"
)

// RosterProvider fetches the current participant list of a group from
// the messaging gateway. Implementations must be read-only and
// idempotent; the resolver treats every failure as "unresolved".
type RosterProvider interface {
	GetGroupParticipants(ctx context.Context, groupID string) ([]dtos.Participant, error)
}

// Resolver maps ephemeral linked-device tokens to phones, best effort.
// Hits are cached per (group, token) for the configured TTL; failures
// are never cached. Concurrent misses for the same key collapse into a
// single roster fetch.
type Resolver struct {
	cache   common.CacheInterface
	roster  RosterProvider
	ttl     time.Duration
	metrics *metrics.MetricsRegistry
	group   singleflight.Group
}

func NewResolver(cache common.CacheInterface, roster RosterProvider, ttl time.Duration, metricsReg *metrics.MetricsRegistry) *Resolver {
	if ttl <= 0 {
		ttl = constants.ResolutionCacheTTL
	}
	return &Resolver{
		cache:   cache,
		roster:  roster,
		ttl:     ttl,
		metrics: metricsReg,
	}
}

// Resolve returns the phone behind token in groupID, or "" when it
// cannot be determined. Empty is an expected outcome, not an error:
// callers proceed with the token as the identity.
func (r *Resolver) Resolve(ctx context.Context, groupID, token string) string {
	token = NormalizeToken(token)
	if token == "" {
		return ""
	}
	groupID = NormalizeGroupID(groupID)

	key := string(constants.CachePrefixResolution) + groupID + ":" + token
	if val, found := r.cache.Get(key); found {
		if phone, ok := val.(string); ok && phone != "" {
			return phone
		}
	}

	phone, err, _ := r.group.Do(key, func() (interface{}, error) {
		return r.resolveFromRoster(ctx, groupID, token), nil
	})
	if err != nil {
		return ""
	}

	resolved := phone.(string)
	if resolved != "" {
		r.cache.Set(key, resolved, r.ttl)
		r.metrics.ResolutionHitsTotal.Inc()
	} else {
		r.metrics.ResolutionMissesTotal.Inc()
	}
	return resolved
}

func (r *Resolver) resolveFromRoster(ctx context.Context, groupID, token string) string {
	ctx, cancel := context.WithTimeout(ctx, r.ttl)
	defer cancel()

	participants, err := r.roster.GetGroupParticipants(ctx, groupID)
	if err != nil {
		logging.Warn("Roster fetch failed, token stays unresolved",
			"group", groupID, "error", err.Error())
		return ""
	}

	tokenDigits := TokenDigits(token)

	// First pass: a participant listed under this exact address whose
	// entry also carries a resolvable phone.
	for _, p := range participants {
		if NormalizeToken(p.ID) == token {
			if phone := NormalizePhone(p.Phone); phone != "" {
				return phone
			}
		}
	}

	// Second pass: digit-prefix match between the token's numeric
	// portion and a participant phone.
	if tokenDigits != "" {
		for _, p := range participants {
			phone := NormalizePhone(p.Phone)
			if phone == "" {
				phone = NormalizePhone(p.ID)
			}
			if phone == "" {
				continue
			}
			if strings.HasPrefix(phone, tokenDigits) || strings.HasPrefix(tokenDigits, phone) {
				return phone
			}
		}
	}

	return ""
}
