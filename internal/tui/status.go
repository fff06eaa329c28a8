package tui

import (
	"fmt"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingPosts = "Loading posts…"
	MsgLoadingPost  = "Loading post…"
	MsgRefreshing   = "Refreshing…"
	MsgNoResults    = "No results"
	MsgNoPosts      = "no posts found"
	MsgCopied       = "Copied post to clipboard"
	MsgAllLoaded    = "All posts loaded"
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

// MsgFeedSummary is the left part of the posts status line.
func MsgFeedSummary(filter string, loaded, total int) string {
	return fmt.Sprintf("%s • %d of %d", filter, loaded, total)
}

func MsgMode(infinite bool, theme string) string {
	mode := "manual"
	if infinite {
		mode = "infinite"
	}
	return fmt.Sprintf("%s • %s", mode, theme)
}

func MsgLoadMoreHint(key string, remaining int) string {
	return fmt.Sprintf("%s: load %d more", key, remaining)
}

func MsgPostOpened(id int, title string) string {
	return fmt.Sprintf("#%d %s", id, title)
}
