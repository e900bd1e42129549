package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"communa/tribune/internal/constants"
	"communa/tribune/internal/db/repositories"
	"communa/tribune/internal/identity"
	"communa/tribune/internal/logging"
	"communa/tribune/internal/metrics"
	"communa/tribune/internal/models/dtos"
	"communa/tribune/internal/models/entities"
)

// ResolveHints carries identity side-channel information the transport
// sometimes delivers alongside an event (a phone the message metadata
// revealed, a display name).
type ResolveHints struct {
	Phone       string
	DisplayName string
	IsAdmin     bool
}

// MemberResolver finds or creates the single persistent member record
// for a real person, whichever identifier shape their message arrived
// under.
type MemberResolver struct {
	members  *repositories.MemberRepository
	resolver *identity.Resolver
	metrics  *metrics.MetricsRegistry
}

func NewMemberResolver(members *repositories.MemberRepository, resolver *identity.Resolver, metricsReg *metrics.MetricsRegistry) *MemberResolver {
	return &MemberResolver{
		members:  members,
		resolver: resolver,
		metrics:  metricsReg,
	}
}

// GetOrCreate resolves rawIdentifier to the member record for groupID,
// creating it if absent and merging a newly-learned token onto an
// existing phone-keyed record. At most one document write per call;
// re-invoking with the same inputs after commit performs no further
// writes. Storage failures propagate as *constants.StorageError.
func (svc *MemberResolver) GetOrCreate(ctx context.Context, groupID string, rawIdentifier interface{}, hints *ResolveHints) (*entities.Member, error) {
	groupID = identity.NormalizeGroupID(groupID)

	var phone, token string
	switch kind, value := identity.Classify(rawIdentifier); kind {
	case identity.KindPhone:
		phone = value
	case identity.KindEphemeralToken:
		token = value
	}

	if phone == "" && hints != nil {
		phone = identity.NormalizePhone(hints.Phone)
	}

	// Lookup by phone first: the durable key wins.
	if phone != "" {
		member, err := svc.members.GetByKey(ctx, groupID, phone)
		if err == nil {
			// A token sighted alongside a known phone attaches to the
			// existing record so later token-only messages find it.
			if token != "" && member.EphemeralToken != token {
				if err := svc.members.AttachToken(ctx, groupID, phone, token); err != nil {
					return nil, constants.NewStorageError("attachToken", groupID, phone, err)
				}
				member.EphemeralToken = token
			}
			return member, nil
		}
		if !errors.Is(err, constants.ErrMemberNotFound) {
			return nil, constants.NewStorageError("getByKey", groupID, phone, err)
		}
	}

	// Then by stored token, exact and suffix-agnostic.
	if token != "" {
		member, err := svc.members.GetByToken(ctx, groupID, token, identity.TokenDigits(token))
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, constants.ErrMemberNotFound) {
			return nil, constants.NewStorageError("getByToken", groupID, token, err)
		}
	}

	// Nothing found: build the best available key.
	key := phone
	resolved := phone != ""
	if key == "" && token != "" {
		if resolvedPhone := svc.resolver.Resolve(ctx, groupID, token); resolvedPhone != "" {
			key = resolvedPhone
			resolved = true
		} else {
			// Last resort: the token's digit portion, explicitly flagged
			// as an unresolved identity.
			key = identity.TokenDigits(token)
		}
	}
	if len(key) < constants.MinMemberKeyLength {
		return nil, constants.ErrInvalidIdentity
	}

	// Optimistic dedup: another in-flight call may have created the
	// record between our lookups and now.
	if member, err := svc.members.GetByKey(ctx, groupID, key); err == nil {
		if token != "" && member.EphemeralToken != token {
			if err := svc.members.AttachToken(ctx, groupID, key, token); err != nil {
				return nil, constants.NewStorageError("attachToken", groupID, key, err)
			}
			member.EphemeralToken = token
		}
		return member, nil
	} else if !errors.Is(err, constants.ErrMemberNotFound) {
		return nil, constants.NewStorageError("getByKey", groupID, key, err)
	}

	now := time.Now().UTC()
	member := &entities.Member{
		GroupID:        groupID,
		MemberKey:      key,
		PhoneResolved:  resolved,
		EphemeralToken: token,
		IsMember:       true,
		CurrentLevel:   1,
		WarnHistory:    []entities.WarnEvent{},
		CreatedAt:      now,
		JoinedAt:       now,
	}
	if hints != nil {
		member.DisplayName = hints.DisplayName
		member.IsAdmin = hints.IsAdmin
	}

	created, err := svc.members.Create(ctx, member)
	if err != nil {
		return nil, constants.NewStorageError("create", groupID, key, err)
	}
	if !created {
		// Lost the create race; the winner's record is authoritative.
		existing, err := svc.members.GetByKey(ctx, groupID, key)
		if err != nil {
			return nil, constants.NewStorageError("getByKey", groupID, key, err)
		}
		if token != "" && existing.EphemeralToken != token {
			if err := svc.members.AttachToken(ctx, groupID, key, token); err != nil {
				return nil, constants.NewStorageError("attachToken", groupID, key, err)
			}
			existing.EphemeralToken = token
		}
		return existing, nil
	}

	svc.metrics.MembersCreatedTotal.Inc()
	logging.Info("Created member record",
		"group", groupID, "key", key, "phoneResolved", resolved)
	return member, nil
}

// MergeDuplicates is the idempotent administrative repair for the rare
// case where a person ended up with both a token-derived record and a
// phone-keyed one. Counters and history fold into the resolved record;
// the duplicate row is removed.
func (svc *MemberResolver) MergeDuplicates(ctx context.Context, groupID string) (*dtos.MergeReport, error) {
	groupID = identity.NormalizeGroupID(groupID)

	members, err := svc.members.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, constants.NewStorageError("listByGroup", groupID, "", err)
	}

	report := &dtos.MergeReport{Scanned: len(members)}

	for i := range members {
		dup := &members[i]
		if dup.PhoneResolved {
			continue
		}

		canonical := findCanonical(dup, members)
		if canonical == nil {
			continue
		}

		canonical.Points += dup.Points
		canonical.MessagesForNextPoint += dup.MessagesForNextPoint
		canonical.MessagesTotal += dup.MessagesTotal
		canonical.Warnings += dup.Warnings
		canonical.WarnHistory = append(canonical.WarnHistory, dup.WarnHistory...)
		canonical.Stats.LifetimePointsEarned += dup.Stats.LifetimePointsEarned
		canonical.Stats.LifetimePointsSpent += dup.Stats.LifetimePointsSpent
		if dup.EphemeralToken != "" {
			canonical.EphemeralToken = dup.EphemeralToken
		}
		if level := LevelFor(canonical.Points, nil); level.Level > canonical.CurrentLevel {
			canonical.CurrentLevel = level.Level
		}

		if err := svc.members.Save(ctx, canonical); err != nil {
			return report, constants.NewStorageError("save", groupID, canonical.MemberKey, err)
		}
		if err := svc.members.Delete(ctx, groupID, dup.MemberKey); err != nil {
			return report, constants.NewStorageError("delete", groupID, dup.MemberKey, err)
		}

		logging.Info("Merged duplicate member record",
			"group", groupID, "duplicate", dup.MemberKey, "canonical", canonical.MemberKey)
		report.Merged++
	}

	return report, nil
}

// findCanonical locates the phone-resolved record that belongs to the
// same person as the token-derived duplicate.
func findCanonical(dup *entities.Member, members []entities.Member) *entities.Member {
	for i := range members {
		c := &members[i]
		if !c.PhoneResolved || c.MemberKey == dup.MemberKey {
			continue
		}
		if dup.EphemeralToken != "" && c.EphemeralToken == dup.EphemeralToken {
			return c
		}
		if strings.HasPrefix(c.MemberKey, dup.MemberKey) {
			return c
		}
		if c.EphemeralToken != "" && identity.TokenDigits(c.EphemeralToken) == dup.MemberKey {
			return c
		}
	}
	return nil
}
