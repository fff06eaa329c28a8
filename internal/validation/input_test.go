package validation

import (
	"strings"
	"testing"
)

func TestSanitizeTerm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "love", "love"},
		{"keeps surrounding spaces", "  love ", "  love "},
		{"control characters", "a\tb\nc\x00", "a b c "},
		{"unicode", "café", "café"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeTerm(tt.input); got != tt.want {
				t.Errorf("SanitizeTerm(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	long := strings.Repeat("é", MaxTermLength+10)
	if got := []rune(SanitizeTerm(long)); len(got) != MaxTermLength {
		t.Errorf("SanitizeTerm kept %d runes, want %d", len(got), MaxTermLength)
	}
}

func TestParsePostID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" #7 ", 7, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePostID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePostID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePostID(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
		}
	}
}
