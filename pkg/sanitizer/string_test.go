package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing spaces", "  covered spot  ", "covered spot"},
		{"internal whitespace collapsed", "near   the \t entrance", "near the entrance"},
		{"newlines collapsed", "first\nfloor", "first floor"},
		{"already normalized", "level two", "level two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.expected {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeSlotNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"lowercase", "a12", "A12"},
		{"spaces become dashes", " a 12 ", "A-12"},
		{"special characters stripped", "b#01!", "B-01"},
		{"repeated separators collapsed", "c--09", "C-09"},
		{"leading separators trimmed", "-d04-", "D04"},
		{"idempotent", "A-12", "A-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeSlotNumber(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeSlotNumber(%q) = %q, want %q", tt.input, got, tt.expected)
			}

			if again := SanitizeSlotNumber(got); again != got {
				t.Errorf("SanitizeSlotNumber is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
