package validation

import (
	"net"
	"strings"
	"testing"
)

func TestNewBaseURLValidator(t *testing.T) {
	v := NewBaseURLValidator(false)
	if v.AllowLocal {
		t.Error("Expected AllowLocal to be false")
	}
	if v.MaxLength != 2048 {
		t.Errorf("Expected MaxLength to be 2048, got %d", v.MaxLength)
	}
}

func TestValidateAndNormalize(t *testing.T) {
	v := NewBaseURLValidator(false)

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{
			name:        "empty URL",
			input:       "   ",
			shouldError: true,
			errorMsg:    "cannot be empty",
		},
		{
			name:     "public host",
			input:    "https://dummyjson.com",
			expected: "https://dummyjson.com",
		},
		{
			name:     "missing scheme defaults to https",
			input:    "dummyjson.com",
			expected: "https://dummyjson.com",
		},
		{
			name:     "trailing slash stripped",
			input:    "https://api.example.org/v1/",
			expected: "https://api.example.org/v1",
		},
		{
			name:        "ftp scheme",
			input:       "ftp://dummyjson.com",
			shouldError: true,
			errorMsg:    "http or https",
		},
		{
			name:        "query string",
			input:       "https://dummyjson.com?limit=5",
			shouldError: true,
			errorMsg:    "query or fragment",
		},
		{
			name:        "credentials",
			input:       "https://user:pw@dummyjson.com",
			shouldError: true,
			errorMsg:    "credentials",
		},
		{
			name:        "traversal",
			input:       "https://dummyjson.com/a/../b",
			shouldError: true,
			errorMsg:    "traversal",
		},
		{
			name:        "localhost blocked",
			input:       "http://localhost:8080",
			shouldError: true,
			errorMsg:    "allow_local",
		},
		{
			name:        "private IP blocked",
			input:       "http://192.168.1.10",
			shouldError: true,
			errorMsg:    "allow_local",
		},
		{
			name:        "invalid characters",
			input:       "https://dummy<json>.com",
			shouldError: true,
			errorMsg:    "invalid characters",
		},
		{
			name:        "unroutable",
			input:       "http://0.0.0.0",
			shouldError: true,
			errorMsg:    "unroutable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error containing %q, got %q", tt.errorMsg, got)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ValidateAndNormalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateAndNormalizeAllowLocal(t *testing.T) {
	v := NewBaseURLValidator(true)

	for _, input := range []string{
		"http://localhost:8080",
		"http://127.0.0.1:3000/api",
		"http://10.0.0.5",
		"http://[::1]:9000",
	} {
		if _, err := v.ValidateAndNormalize(input); err != nil {
			t.Errorf("ValidateAndNormalize(%q) with AllowLocal: %v", input, err)
		}
	}
}

func TestIsLocalhost(t *testing.T) {
	tests := map[string]bool{
		"localhost":     true,
		"LOCALHOST":     true,
		"api.localhost": true,
		"127.0.0.1":     true,
		"127.1.2.3":     true,
		"::1":           true,
		"dummyjson.com": false,
	}
	for host, want := range tests {
		if got := isLocalhost(host); got != want {
			t.Errorf("isLocalhost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"10.1.2.3":    true,
		"172.16.0.1":  true,
		"192.168.0.1": true,
		"169.254.1.1": true,
		"fd00::1":     true,
		"fe80::1":     true,
		"8.8.8.8":     false,
		"2001:db8::1": false,
	}
	for addr, want := range tests {
		if got := isPrivateIP(net.ParseIP(addr)); got != want {
			t.Errorf("isPrivateIP(%s) = %v, want %v", addr, got, want)
		}
	}
}
