package dtos

import "encoding/json"

// GatewayEvent is one inbound event from the messaging gateway webhook.
// Sender is kept raw because the transport encodes participant
// addresses in several shapes (string, {user,server} pair, nested id
// wrapper); the identity layer classifies it.
type GatewayEvent struct {
	Type      string          `json:"type"`
	GroupID   string          `json:"groupId"`
	Sender    json.RawMessage `json:"sender"`
	SenderAlt string          `json:"senderAlt,omitempty"`
	PushName  string          `json:"pushName,omitempty"`
	Text      string          `json:"text,omitempty"`
	IsCommand bool            `json:"isCommand,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// SenderValue decodes the raw sender field into the loose shape the
// identity layer accepts. Undecodable senders come back as nil.
func (e *GatewayEvent) SenderValue() interface{} {
	if len(e.Sender) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(e.Sender, &v); err != nil {
		return nil
	}
	return v
}

// WarnRequest is the admin moderation request body.
type WarnRequest struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// RedeemRequest spends points from a member's balance.
type RedeemRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason,omitempty"`
}

// GroupConfigPatch carries partial group config updates. Nil fields are
// left untouched.
type GroupConfigPatch struct {
	Name             *string  `json:"name,omitempty"`
	PointsEnabled    *bool    `json:"pointsEnabled,omitempty"`
	MessagesPerPoint *int     `json:"messagesPerPoint,omitempty"`
	AntiSpamEnabled  *bool    `json:"antiSpamEnabled,omitempty"`
	SpamWindowSecs   *int     `json:"spamWindowSeconds,omitempty"`
	SpamThreshold    *int     `json:"spamThreshold,omitempty"`
	BannedWords      []string `json:"bannedWords,omitempty"`
	WordsEnabled     *bool    `json:"bannedWordsEnabled,omitempty"`
	AntiLinkEnabled  *bool    `json:"antiLinkEnabled,omitempty"`
	AllowedDomains   []string `json:"allowedDomains,omitempty"`
}
