package entities

import "time"

// Group holds per-group configuration and aggregate state. GroupID is
// the normalized group identifier (transport suffixes stripped).
type Group struct {
	GroupID string `gorm:"column:group_id;primaryKey" json:"groupId"`
	Name    string `gorm:"column:name" json:"name"`

	PointsEnabled bool `gorm:"column:points_enabled;default:true" json:"pointsEnabled"`

	// MessagesPerPoint is the flat group override; 0 means unset. The
	// nested Config.Points override and the global default sit below it
	// in precedence.
	MessagesPerPoint int `gorm:"column:messages_per_point;not null;default:0" json:"messagesPerPoint"`

	Config GroupConfig `gorm:"column:config;serializer:json" json:"config"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Group) TableName() string {
	return "groups"
}

// GroupConfig is the nested, JSON-stored group configuration.
type GroupConfig struct {
	Points    PointsConfig     `json:"points"`
	AntiSpam  AntiSpamConfig   `json:"antiSpam"`
	Words     BannedWordConfig `json:"bannedWords"`
	AntiLink  AntiLinkConfig   `json:"antiLink"`
	Levels    []Level          `json:"levels,omitempty"`
	WelcomeOn bool             `json:"welcomeOn"`
}

type PointsConfig struct {
	MessagesPerPoint int `json:"messagesPerPoint"`
}

type AntiSpamConfig struct {
	Enabled       bool `json:"enabled"`
	WindowSeconds int  `json:"windowSeconds"`
	Threshold     int  `json:"threshold"`
}

type BannedWordConfig struct {
	Enabled bool     `json:"enabled"`
	Words   []string `json:"words,omitempty"`
}

type AntiLinkConfig struct {
	Enabled        bool     `json:"enabled"`
	AllowedDomains []string `json:"allowedDomains,omitempty"`
}
