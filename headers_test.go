package web2pdf

import (
	"errors"
	"testing"
)

func TestParseHeader(t *testing.T) {
	tests := []struct {
		entry     string
		wantName  string
		wantValue string
	}{
		{"Authorization: Bearer abc", "Authorization", "Bearer abc"},
		{"X-Empty:", "X-Empty", ""},
		{"Cookie: a=1; b=2", "Cookie", "a=1; b=2"},
		{"Spaced :  padded value  ", "Spaced", "padded value"},
	}
	for _, tt := range tests {
		name, value, err := ParseHeader(tt.entry)
		if err != nil {
			t.Errorf("ParseHeader(%q): %v", tt.entry, err)
			continue
		}
		if name != tt.wantName || value != tt.wantValue {
			t.Errorf("ParseHeader(%q) = (%q, %q), want (%q, %q)",
				tt.entry, name, value, tt.wantName, tt.wantValue)
		}
	}
}

func TestParseHeader_Malformed(t *testing.T) {
	for _, entry := range []string{"no-colon", "", ": value-without-name"} {
		_, _, err := ParseHeader(entry)
		if err == nil {
			t.Errorf("ParseHeader(%q) should fail", entry)
			continue
		}
		var mhe *MalformedHeaderError
		if !errors.As(err, &mhe) {
			t.Errorf("ParseHeader(%q) err = %T, want *MalformedHeaderError", entry, err)
		}
	}
}

func TestMergeDefaultHeaders_FillsMissing(t *testing.T) {
	merged := mergeDefaultHeaders(map[string]string{"X-Custom": "1"})

	if merged["User-Agent"] != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want default", merged["User-Agent"])
	}
	if merged["Accept-Language"] != DefaultAcceptLanguage {
		t.Errorf("Accept-Language = %q, want default", merged["Accept-Language"])
	}
	if merged["X-Custom"] != "1" {
		t.Errorf("X-Custom = %q, want 1", merged["X-Custom"])
	}
}

func TestMergeDefaultHeaders_UserWins(t *testing.T) {
	// A user-supplied header beats the default even when the name differs
	// in case.
	merged := mergeDefaultHeaders(map[string]string{
		"user-agent":      "custom-agent/1.0",
		"Accept-Language": "fr-FR",
	})

	if got := merged["user-agent"]; got != "custom-agent/1.0" {
		t.Errorf("user-agent = %q, want custom-agent/1.0", got)
	}
	if _, stillThere := merged["User-Agent"]; stillThere {
		t.Error("default User-Agent key should be replaced, not duplicated")
	}
	if merged["Accept-Language"] != "fr-FR" {
		t.Errorf("Accept-Language = %q, want fr-FR", merged["Accept-Language"])
	}
	if len(merged) != 2 {
		t.Errorf("merged has %d entries, want 2: %v", len(merged), merged)
	}
}

func TestSplitAgentHeaders(t *testing.T) {
	ua, lang, rest := splitAgentHeaders(map[string]string{
		"User-Agent":      "agent/1.0",
		"accept-language": "de-DE",
		"X-Other":         "kept",
	})

	if ua != "agent/1.0" {
		t.Errorf("userAgent = %q", ua)
	}
	if lang != "de-DE" {
		t.Errorf("acceptLanguage = %q", lang)
	}
	if len(rest) != 1 || rest["X-Other"] != "kept" {
		t.Errorf("rest = %v, want only X-Other", rest)
	}
}
