package dtos

import "communa/tribune/internal/models/entities"

// PointsOutcome is the result of running one message through the points
// engine. A nil outcome means the message did not qualify (suppressed,
// not a member, or a storage failure that was logged and swallowed).
type PointsOutcome struct {
	PointsAdded          bool   `json:"pointsAdded"`
	RateLimited          bool   `json:"rateLimited,omitempty"`
	NewPoints            int    `json:"newPoints,omitempty"`
	MessagesForNextPoint int    `json:"messagesForNextPoint"`
	MessagesNeeded       int    `json:"messagesNeeded"`
	LevelUp              *LevelUp `json:"levelUp,omitempty"`
	Message              string `json:"message,omitempty"`
}

// LevelUp describes a level transition caused by a point award.
type LevelUp struct {
	OldLevel entities.Level `json:"oldLevel"`
	NewLevel entities.Level `json:"newLevel"`
}

// ViolationResult is the outcome of one moderation detector pass.
// Violation=false is the normal, expected result and never an error.
type ViolationResult struct {
	Violation bool   `json:"violation"`
	Type      string `json:"type,omitempty"`
	Action    string `json:"action,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// NoViolation is the neutral detector outcome.
var NoViolation = ViolationResult{Violation: false}
