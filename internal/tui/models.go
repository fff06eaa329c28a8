package tui

import (
	"fmt"
	"strings"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/search"
)

type View int

const (
	ViewPosts View = iota
	ViewTags
	ViewDetail
	ViewFind
	ViewGoto
)

func (v View) String() string {
	switch v {
	case ViewPosts:
		return "posts"
	case ViewTags:
		return "tags"
	case ViewDetail:
		return "detail"
	case ViewFind:
		return "find"
	case ViewGoto:
		return "goto"
	default:
		return "unknown"
	}
}

type postItem struct {
	post       api.Post
	visited    bool
	previewLen int
}

func (i postItem) Title() string {
	if i.visited {
		return ReadItemStyle.Render("• " + i.post.Title)
	}
	return PostTitleStyle.Render(i.post.Title)
}

func (i postItem) Description() string {
	preview := truncateEnd(strings.Join(strings.Fields(i.post.Body), " "), i.previewLen)
	meta := fmt.Sprintf("#%d • ♥ %d • %d views", i.post.ID, i.post.Reactions.Likes, i.post.Views)
	if len(i.post.Tags) > 0 {
		meta += " • " + strings.Join(i.post.Tags, ", ")
	}
	if preview == "" {
		return TimeStyle.Render(meta)
	}
	return renderMuted(preview) + TimeStyle.Render(" • "+meta)
}

func (i postItem) FilterValue() string { return i.post.Title }

// tagItem is a row in the tag picker. The empty tag means "all tags".
type tagItem struct {
	tag    string
	active bool
}

func (i tagItem) Title() string {
	name := i.tag
	if name == "" {
		name = "all tags"
	}
	if i.active {
		return SelectedItemStyle.Render("✓ " + name)
	}
	return name
}

func (i tagItem) Description() string {
	if i.active {
		return renderMuted("current filter, select again to clear")
	}
	return ""
}

func (i tagItem) FilterValue() string { return i.tag }

type findItem struct {
	result *search.Result
}

func (i findItem) Title() string {
	return PostTitleStyle.Render(i.result.Post.Title)
}

func (i findItem) Description() string {
	var parts []string
	for _, m := range i.result.Matches {
		parts = append(parts, m.Field)
	}
	where := "match"
	if len(parts) > 0 {
		where = "in " + strings.Join(parts, ", ")
	}
	snippet := ""
	for _, m := range i.result.Matches {
		if m.Field == "body" {
			snippet = " • " + truncateEnd(m.Text, 60)
		}
	}
	return renderMuted(fmt.Sprintf("#%d • %s%s", i.result.Post.ID, where, snippet))
}

func (i findItem) FilterValue() string { return i.result.Post.Title }

type detailRenderedMsg struct {
	postID  int
	content string
}

type visitsLoadedMsg struct {
	ids map[int]bool
}

type visitRecordedMsg struct {
	postID int
}

type statusMsg struct {
	text string
	kind StatusKind
}

type errorMsg struct {
	err error
}
