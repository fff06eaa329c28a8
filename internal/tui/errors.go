package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/skim/internal/api"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// describeErr turns fetch errors into short status-line text.
func describeErr(err error) string {
	var se *api.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case 404:
			return "not found"
		case 429:
			if se.RetryAfter > 0 {
				return fmt.Sprintf("rate limited, retry in %s", se.RetryAfter)
			}
			return "rate limited"
		}
	}
	return err.Error()
}
