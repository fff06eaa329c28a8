package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// BaseURLValidator checks the API base URL taken from config or flags.
type BaseURLValidator struct {
	// AllowLocal permits localhost and private network hosts
	AllowLocal bool
	MaxLength  int
}

func NewBaseURLValidator(allowLocal bool) *BaseURLValidator {
	return &BaseURLValidator{
		AllowLocal: allowLocal,
		MaxLength:  2048,
	}
}

// ValidateAndNormalize returns the base URL with a scheme, without a
// trailing slash, query or fragment.
func (v *BaseURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("base URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fmt.Errorf("base URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("base URL contains invalid characters")
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("base URL must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("base URL must have a hostname")
	}
	if parsed.User != nil {
		return "", fmt.Errorf("credentials are not allowed in the base URL")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("base URL must not carry a query or fragment")
	}
	if strings.Contains(parsed.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in base URL path")
	}

	if err := v.validateHost(parsed.Host); err != nil {
		return "", err
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	return parsed.String(), nil
}

func (v *BaseURLValidator) validateHost(host string) error {
	hostname := strings.Trim(host, "[]")
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	if hostname == "0.0.0.0" || hostname == "255.255.255.255" {
		return fmt.Errorf("unroutable host %q", hostname)
	}

	if v.AllowLocal {
		return nil
	}

	if isLocalhost(hostname) {
		return fmt.Errorf("localhost base URLs require api.allow_local")
	}
	if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("private network base URLs require api.allow_local")
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "::1" ||
		strings.HasSuffix(hostname, ".localhost") ||
		strings.HasPrefix(hostname, "127.")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
