package dtos

import "time"

// APIResponse is the uniform HTTP envelope.
type APIResponse[T any] struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// EventOutcome is the webhook reply: what, if anything, the bot front
// end should surface for this event.
type EventOutcome struct {
	Handled    bool             `json:"handled"`
	Violation  *ViolationResult `json:"violation,omitempty"`
	Points     *PointsOutcome   `json:"points,omitempty"`
	MemberKey  string           `json:"memberKey,omitempty"`
	IsNewEntry bool             `json:"isNewEntry,omitempty"`
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	MemberKey     string `db:"member_key" json:"memberKey"`
	DisplayName   string `db:"display_name" json:"displayName,omitempty"`
	Points        int    `db:"points" json:"points"`
	CurrentLevel  int    `db:"current_level" json:"currentLevel"`
	MessagesTotal int    `db:"messages_total" json:"messagesTotal"`
}

// GroupStats aggregates one group's engagement counters.
type GroupStats struct {
	ActiveMembers int `db:"active_members" json:"activeMembers"`
	TotalMembers  int `db:"total_members" json:"totalMembers"`
	TotalPoints   int `db:"total_points" json:"totalPoints"`
	TotalMessages int `db:"total_messages" json:"totalMessages"`
}

// Participant is one roster entry returned by the messaging gateway.
type Participant struct {
	ID      string `json:"id"`
	Phone   string `json:"phone,omitempty"`
	Name    string `json:"name,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// MergeReport summarizes one duplicate-repair run.
type MergeReport struct {
	Scanned int `json:"scanned"`
	Merged  int `json:"merged"`
}
