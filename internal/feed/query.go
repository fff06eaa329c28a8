package feed

import (
	"strings"

	"github.com/pders01/skim/internal/api"
)

// Filter is the effective query. Two filters are equal iff both fields
// match; every change of filter starts a new epoch.
type Filter struct {
	SearchText string
	Tag        string
}

func (f Filter) Query() api.Query {
	return api.Query{Search: f.SearchText, Tag: f.Tag}
}

// Searching reports whether the search endpoint will be used.
func (f Filter) Searching() bool {
	return strings.TrimSpace(f.SearchText) != ""
}

// Describe is a short human label for status lines.
func (f Filter) Describe() string {
	switch {
	case f.Searching():
		return "search: " + strings.TrimSpace(f.SearchText)
	case f.Tag != "":
		return "tag: " + f.Tag
	default:
		return "all posts"
	}
}

// withTag applies tag selection. Choosing the active tag again clears it.
func (f Filter) withTag(tag string) Filter {
	if f.Tag == tag {
		f.Tag = ""
	} else {
		f.Tag = tag
	}
	return f
}
