package entities

import (
	"time"

	"communa/tribune/internal/constants"
)

// Member is the single persistent record for one real person in one
// group, regardless of which identifier shape their messages arrive
// under. MemberKey is the canonical phone once known; for identities
// whose token never resolved it is the digit portion of the token and
// PhoneResolved stays false.
type Member struct {
	GroupID   string `gorm:"column:group_id;primaryKey" json:"groupId"`
	MemberKey string `gorm:"column:member_key;primaryKey" json:"memberKey"`

	// PhoneResolved distinguishes a real phone key from a token-derived
	// fallback key so the two identity spaces are never conflated.
	PhoneResolved bool `gorm:"column:phone_resolved;default:false" json:"phoneResolved"`

	// EphemeralToken is the last-seen linked-device address for this
	// person; stored once learned so later sightings skip the roster.
	EphemeralToken string `gorm:"column:ephemeral_token;index" json:"ephemeralToken,omitempty"`

	DisplayName string `gorm:"column:display_name" json:"displayName,omitempty"`
	IsMember    bool   `gorm:"column:is_member;default:true" json:"isMember"`
	IsAdmin     bool   `gorm:"column:is_admin;default:false" json:"isAdmin"`

	Points               int `gorm:"column:points;not null;default:0" json:"points"`
	MessagesForNextPoint int `gorm:"column:messages_for_next_point;not null;default:0" json:"messagesForNextPoint"`
	CurrentLevel         int `gorm:"column:current_level;not null;default:1" json:"currentLevel"`
	MessagesTotal        int `gorm:"column:messages_total;not null;default:0" json:"messagesTotal"`

	Warnings    int         `gorm:"column:warnings;not null;default:0" json:"warnings"`
	WarnHistory []WarnEvent `gorm:"column:warn_history;serializer:json" json:"warnHistory"`

	Stats MemberStats `gorm:"column:stats;serializer:json" json:"stats"`

	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	JoinedAt      time.Time  `gorm:"column:joined_at" json:"joinedAt"`
	LastMessageAt *time.Time `gorm:"column:last_message_at" json:"lastMessageAt,omitempty"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	LeftAt        *time.Time `gorm:"column:left_at" json:"leftAt,omitempty"`
}

// TableName specifies the table name for GORM
func (Member) TableName() string {
	return "members"
}

// WarnEvent is one entry of the append-only moderation log.
type WarnEvent struct {
	ID        string               `json:"id"`
	Action    constants.WarnAction `json:"action"`
	Actor     string               `json:"actor"`
	Reason    string               `json:"reason,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// MemberStats holds lifetime aggregate counters. These ride along as a
// JSON blob; they are informational and tolerate last-write-wins.
type MemberStats struct {
	LifetimePointsEarned int `json:"lifetimePointsEarned"`
	LifetimePointsSpent  int `json:"lifetimePointsSpent"`
	BestStreakDays       int `json:"bestStreakDays"`
	CurrentStreakDays    int `json:"currentStreakDays"`
}
