package constants

import "time"

type (
	CachePrefix string
	EventType   string
	WarnAction  string
)

const (
	CachePrefixResolution CachePrefix = "RESOLVE_"
	CachePrefixRoster     CachePrefix = "ROSTER_"

	EventTypeMessage EventType = "message"
	EventTypeJoin    EventType = "join"
	EventTypeLeave   EventType = "leave"

	WarnActionWarn   WarnAction = "WARN"
	WarnActionUnwarn WarnAction = "UNWARN"
	WarnActionKick   WarnAction = "KICK"
	WarnActionExit   WarnAction = "EXIT"
)

// Engagement defaults; group config overrides these per group.
const (
	DefaultMessagesPerPoint = 10

	// A member key shorter than this cannot be a phone or a usable
	// token fallback and is rejected outright.
	MinMemberKeyLength = 5

	ResolutionCacheTTL   = 5 * time.Minute
	ResolutionSweepEvery = 5 * time.Minute

	FloodWindowWidth = 1 * time.Second
	FloodWindowCap   = 20
	FloodThreshold   = 5

	DefaultSpamWindowSeconds = 10
	DefaultSpamThreshold     = 5
	WindowIdleEviction       = 5 * time.Minute

	WindowSweepInterval  = 5 * time.Minute
	ActiveMembersRefresh = 1 * time.Minute

	// Minimum interval between two point awards to the same member.
	PointAwardMinInterval = 1 * time.Second
)
