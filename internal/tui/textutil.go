package tui

import (
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// truncateEnd shortens s to at most limit cells, appending an ellipsis
// if truncation occurs. ANSI sequences are not counted.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if ansi.PrintableRuneWidth(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return truncate.StringWithTail(s, uint(limit), "…")
}

// truncateMiddle keeps both ends of s around a single ellipsis. Used for
// base URLs where host and path both matter.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left <= 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// wrapText wraps plain text at width, leaving it alone for tiny widths.
func wrapText(s string, width int) string {
	if width < 10 {
		return s
	}
	return wordwrap.String(s, width)
}
