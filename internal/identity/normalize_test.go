package identity

import (
	"regexp"
	"testing"
)

var phonePattern = regexp.MustCompile(`^\d{8,}$`)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits", "5511999887766", "5511999887766"},
		{"with plus and symbols", "+55 (11) 99988-7766", "5511999887766"},
		{"jid form", "5511999887766@s.whatsapp.net", "5511999887766"},
		{"device suffix", "5511999887766:12@s.whatsapp.net", "5511999887766"},
		{"ephemeral token", "123456789012345@lid", ""},
		{"ephemeral with device", "123456789012345:3@lid", ""},
		{"too short", "1234567", ""},
		{"empty", "", ""},
		{"object placeholder", "[object Object]", ""},
		{"letters only", "not-a-phone", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePhone(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if got != "" && !phonePattern.MatchString(got) {
				t.Fatalf("NormalizePhone(%q) = %q does not match ^\\d{8,}$", tc.in, got)
			}
		})
	}
}

func TestExtractIdentifier_Shapes(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"string", " 5511999887766@s.whatsapp.net ", "5511999887766@s.whatsapp.net"},
		{"user server pair", map[string]interface{}{"user": "99887766554433", "server": "lid"}, "99887766554433@lid"},
		{"user only", map[string]interface{}{"user": "5511999887766"}, "5511999887766"},
		{"nested id", map[string]interface{}{"id": "5511999887766@s.whatsapp.net"}, "5511999887766@s.whatsapp.net"},
		{"serialized wrapper", map[string]interface{}{"_serialized": "5511999887766@s.whatsapp.net"}, "5511999887766@s.whatsapp.net"},
		{"unparseable map", map[string]interface{}{"foo": 1}, ""},
		{"number", 42, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractIdentifier(tc.in); got != tc.want {
				t.Fatalf("ExtractIdentifier(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	kind, val := Classify("5511999887766@s.whatsapp.net")
	if kind != KindPhone || val != "5511999887766" {
		t.Fatalf("expected phone classification, got kind=%v val=%q", kind, val)
	}

	kind, val = Classify("99887766554433:7@lid")
	if kind != KindEphemeralToken || val != "99887766554433@lid" {
		t.Fatalf("expected canonical token, got kind=%v val=%q", kind, val)
	}

	kind, val = Classify(map[string]interface{}{"user": "99887766554433", "server": "lid"})
	if kind != KindEphemeralToken || val != "99887766554433@lid" {
		t.Fatalf("expected token from structured address, got kind=%v val=%q", kind, val)
	}

	kind, _ = Classify("garbage")
	if kind != KindUnknown {
		t.Fatalf("expected unknown classification, got %v", kind)
	}
}

func TestNormalizeGroupID_RoundTrip(t *testing.T) {
	inputs := []string{
		"120363041234567890@g.us",
		"120363041234567890",
		"status@broadcast",
	}

	for _, in := range inputs {
		norm := NormalizeGroupID(in)
		if norm == "" {
			continue
		}
		again := NormalizeGroupID(GroupIDToJID(norm))
		if again != norm {
			t.Fatalf("round trip failed for %q: %q != %q", in, again, norm)
		}
	}
}

func TestTokenDigits(t *testing.T) {
	if got := TokenDigits("99887766554433:2@lid"); got != "99887766554433" {
		t.Fatalf("TokenDigits = %q", got)
	}
}
