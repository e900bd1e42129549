package identity

import (
	"fmt"
	"strings"
)

// IdentifierKind classifies a raw participant identifier after
// normalization. All downstream code only ever sees these two concrete
// shapes (plus Unknown for garbage input).
type IdentifierKind int

const (
	KindUnknown IdentifierKind = iota
	KindPhone
	KindEphemeralToken
)

const (
	phoneSuffix     = "@s.whatsapp.net"
	ephemeralSuffix = "@lid"
	groupSuffix     = "@g.us"
	broadcastSuffix = "@broadcast"

	minPhoneDigits = 8
)

// ExtractIdentifier pulls a flat string out of any reasonable encoding of
// a participant address: a plain string, a {user, server} pair, a nested
// id wrapper, or anything implementing fmt.Stringer. It does not judge
// what kind of identifier the string is. Returns "" for anything it
// cannot read.
func ExtractIdentifier(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		// {user: "1234", server: "lid"} style structured address
		user, uok := v["user"].(string)
		server, sok := v["server"].(string)
		if uok && user != "" {
			if sok && server != "" {
				return user + "@" + server
			}
			return user
		}
		// nested {id: ...} wrapper
		if id, ok := v["id"]; ok {
			return ExtractIdentifier(id)
		}
		if id, ok := v["_serialized"]; ok {
			return ExtractIdentifier(id)
		}
		return ""
	case fmt.Stringer:
		s := strings.TrimSpace(v.String())
		// A generic placeholder stringification carries no identity.
		if strings.HasPrefix(s, "[object") {
			return ""
		}
		return s
	default:
		return ""
	}
}

// NormalizePhone converts a raw identifier into a canonical digit-only
// phone string. Returns "" when the identifier denotes an ephemeral
// linked-device token, or when no plausible phone can be read out of it.
// Total: never panics, any unrecognized shape maps to "".
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "[object") {
		return ""
	}

	// Linked-device addresses carry no readable phone number.
	if strings.HasSuffix(s, ephemeralSuffix) {
		return ""
	}

	if at := strings.Index(s, "@"); at >= 0 {
		s = s[:at]
	}
	// Drop a device-instance suffix (id:device).
	if colon := strings.Index(s, ":"); colon >= 0 {
		s = s[:colon]
	}

	digits := digitsOnly(s)
	if len(digits) < minPhoneDigits {
		return ""
	}
	return digits
}

// NormalizeToken canonicalizes an ephemeral linked-device address:
// device-instance suffix stripped, always carrying the @lid marker.
// Returns "" if the input is not an ephemeral token.
func NormalizeToken(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, ephemeralSuffix) {
		return ""
	}
	user := strings.TrimSuffix(s, ephemeralSuffix)
	if colon := strings.Index(user, ":"); colon >= 0 {
		user = user[:colon]
	}
	if user == "" {
		return ""
	}
	return user + ephemeralSuffix
}

// TokenDigits returns the numeric portion of an ephemeral token, used
// for roster prefix matching and as the last-resort member key when
// resolution permanently fails.
func TokenDigits(token string) string {
	user := strings.TrimSuffix(token, ephemeralSuffix)
	if colon := strings.Index(user, ":"); colon >= 0 {
		user = user[:colon]
	}
	return digitsOnly(user)
}

// Classify normalizes a raw identifier into one of the two canonical
// shapes. The returned value is the canonical phone digit string for
// KindPhone, the canonical token string for KindEphemeralToken, and ""
// for KindUnknown.
func Classify(raw interface{}) (IdentifierKind, string) {
	s := ExtractIdentifier(raw)
	if s == "" {
		return KindUnknown, ""
	}
	if token := NormalizeToken(s); token != "" {
		return KindEphemeralToken, token
	}
	if phone := NormalizePhone(s); phone != "" {
		return KindPhone, phone
	}
	return KindUnknown, ""
}

// NormalizeGroupID strips every transport-specific group/broadcast
// suffix, leaving the bare group identifier.
func NormalizeGroupID(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, groupSuffix)
	s = strings.TrimSuffix(s, broadcastSuffix)
	s = strings.TrimSuffix(s, phoneSuffix)
	return s
}

// GroupIDToJID renders a bare group identifier back into the transport's
// addressable form. NormalizeGroupID(GroupIDToJID(x)) round-trips for any
// normalized x.
func GroupIDToJID(groupID string) string {
	if groupID == "" {
		return ""
	}
	if strings.HasSuffix(groupID, groupSuffix) {
		return groupID
	}
	return groupID + groupSuffix
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
