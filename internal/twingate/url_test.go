package twingate

import "testing"

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{
			name:     "plain url",
			text:     "Please visit https://auth.example.com/login to continue",
			expected: "https://auth.example.com/login",
			found:    true,
		},
		{
			name:     "first of multiple urls wins",
			text:     "Multiple URLs: https://first.com and https://second.com",
			expected: "https://first.com",
			found:    true,
		},
		{
			name:     "trailing period trimmed",
			text:     "Visit https://example.com.",
			expected: "https://example.com",
			found:    true,
		},
		{
			name:     "trailing bracket and comma trimmed",
			text:     "(see https://example.com/a),",
			expected: "https://example.com/a",
			found:    true,
		},
		{
			name:     "http accepted",
			text:     "go to http://example.com now",
			expected: "http://example.com",
			found:    true,
		},
		{
			name:  "truncated fragment rejected",
			text:  "output mentions http:// only",
			found: false,
		},
		{
			name:  "too short after trimming rejected",
			text:  "see https://a. for details",
			found: false,
		},
		{
			name:  "no url",
			text:  "nothing to see here",
			found: false,
		},
		{
			name:     "url on later line",
			text:     "line one\nline two has https://example.com/ok here",
			expected: "https://example.com/ok",
			found:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractURL(tt.text)
			if ok != tt.found {
				t.Fatalf("ExtractURL(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if ok && got != tt.expected {
				t.Errorf("ExtractURL(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractURLNear(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		patterns []string
		expected string
		found    bool
	}{
		{
			name:     "pattern anchored",
			text:     "To sign in, visit: https://auth.example.com/device",
			patterns: []string{"visit:"},
			expected: "https://auth.example.com/device",
			found:    true,
		},
		{
			name:     "pattern is case insensitive",
			text:     "VISIT: https://auth.example.com/device",
			patterns: []string{"visit:"},
			expected: "https://auth.example.com/device",
			found:    true,
		},
		{
			name:     "first pattern takes priority",
			text:     "go to: https://second.example.com visit: https://first.example.com",
			patterns: []string{"visit:", "go to:"},
			expected: "https://first.example.com",
			found:    true,
		},
		{
			name:     "falls back to unconstrained scan",
			text:     "Authentication required. URL: https://example.com",
			patterns: []string{"visit:", "go to:"},
			expected: "https://example.com",
			found:    true,
		},
		{
			name:     "pattern without url falls back on same line",
			text:     "visit: the office, or use https://fallback.example.com",
			patterns: []string{"visit:"},
			expected: "https://fallback.example.com",
			found:    true,
		},
		{
			name:     "nothing anywhere",
			text:     "visit: the front desk",
			patterns: []string{"visit:"},
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractURLNear(tt.text, tt.patterns)
			if ok != tt.found {
				t.Fatalf("ExtractURLNear(%q) found = %v, want %v", tt.text, ok, tt.found)
			}
			if ok && got != tt.expected {
				t.Errorf("ExtractURLNear(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
