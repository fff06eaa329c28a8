package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxTermLength caps search and find input, in runes.
const MaxTermLength = 256

// SanitizeTerm replaces control characters with spaces and caps the length.
// Surrounding whitespace is kept; callers trim where it matters.
func SanitizeTerm(input string) string {
	var b strings.Builder
	n := 0
	for _, r := range input {
		if n == MaxTermLength {
			break
		}
		if unicode.IsControl(r) {
			r = ' '
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// ParsePostID parses a positive post id typed by the user. A leading '#'
// is accepted.
func ParsePostID(input string) (int, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "#")
	if input == "" {
		return 0, fmt.Errorf("post id cannot be empty")
	}
	id, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("post id must be a number: %q", input)
	}
	if id <= 0 {
		return 0, fmt.Errorf("post id must be positive, got %d", id)
	}
	return id, nil
}
