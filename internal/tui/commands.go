package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/debuglog"
)

// postMarkdown lays a post out for glamour.
func postMarkdown(p api.Post) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "*#%d • user %d • %d views • ♥ %d • ✗ %d*\n\n",
		p.ID, p.UserID, p.Views, p.Reactions.Likes, p.Reactions.Dislikes)

	if len(p.Tags) > 0 {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = "`" + t + "`"
		}
		b.WriteString("**Tags:** " + strings.Join(tags, " ") + "\n\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(p.Body)
	b.WriteString("\n")
	return b.String()
}

func (a *App) renderPost(p api.Post) tea.Cmd {
	a.rendering = true
	r, rerr := a.getRenderer()
	width := a.width

	return func() tea.Msg {
		if rerr != nil {
			return detailRenderedMsg{
				postID:  p.ID,
				content: wrapText(p.Title+"\n\n"+p.Body, width-4) + "\n\n" + wrapErr("renderer", rerr).Error(),
			}
		}

		rendered, err := r.Render(postMarkdown(p))
		if err != nil {
			// fall back to plain text so the pane never stays in the loading state
			return detailRenderedMsg{
				postID:  p.ID,
				content: wrapText(p.Title+"\n\n"+p.Body, width-4),
			}
		}
		return detailRenderedMsg{postID: p.ID, content: rendered}
	}
}

func (a *App) recordVisit(p api.Post) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		if err := store.RecordVisit(p.ID, p.Title, time.Now()); err != nil {
			debuglog.Warnf("recording visit for post %d: %v", p.ID, err)
			return nil
		}
		return visitRecordedMsg{postID: p.ID}
	}
}

func (a *App) loadVisited() tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		ids, err := store.VisitedIDs()
		if err != nil {
			return errorMsg{err: wrapErr("loading history", err)}
		}
		return visitsLoadedMsg{ids: ids}
	}
}

func (a *App) copyPost(p api.Post) tea.Cmd {
	text := p.Title + "\n\n" + p.Body
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errorMsg{err: wrapErr("copy", err)}
		}
		return statusMsg{text: MsgCopied, kind: StatusSuccess}
	}
}

// find runs a query against the index of loaded posts. The index is only
// touched from Update, so this runs inline rather than in a command.
func (a *App) find(query string) {
	a.findQuery = query
	if err := a.finder.Sync(a.controller.Epoch(), a.controller.Items()); err != nil {
		a.setStatus(wrapErr("find index", err).Error(), StatusError)
		return
	}

	results, err := a.finder.Find(query, 50)
	if err != nil {
		a.setStatus(wrapErr("find", err).Error(), StatusError)
		return
	}

	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = findItem{result: r}
	}
	a.findList.SetItems(items)
	a.findList.ResetSelected()

	switch {
	case len(strings.TrimSpace(query)) == 0:
		a.clearStatus()
	case len(results) == 0:
		a.setStatus(MsgNoResults, StatusInfo)
	default:
		a.setStatus(MsgResultsCount(len(results)), StatusInfo)
	}
}
