package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/search"
	"github.com/pders01/skim/internal/validation"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

// bind turns a configured binding into the key string Bubble Tea reports.
// Quit and back are plain keys; everything else takes the modifier.
func (kh *KeyHandler) bind(key string) string {
	b := kh.config.Keys.Bindings
	if key == b.Quit || key == b.Back || strings.Contains(key, "+") {
		return key
	}
	return kh.modifierKey + key
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	kh.app.clearStatus()

	if kh.isInTextInputMode() {
		// modifier shortcuts keep working while typing
		if strings.HasPrefix(key, kh.modifierKey) {
			if model, cmd, handled := kh.handleCustomKeys(key); handled {
				return model, cmd
			}
		}
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewPosts:
		return kh.app.searchInput.Focused()
	case ViewFind:
		return kh.app.findInput.Focused()
	case ViewGoto:
		return kh.app.gotoInput.Focused()
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return kh.app, kh.app.quit()
	case kh.config.Keys.Bindings.Back:
		if kh.app.view == ViewPosts {
			kh.app.searchInput.Blur()
			return kh.app, nil
		}
		return kh.navigateBack()
	case "enter":
		return kh.handleTextInputEnter()
	case "tab", "down":
		switch kh.app.view {
		case ViewPosts:
			kh.app.searchInput.Blur()
			return kh.app, nil
		case ViewFind:
			if len(kh.app.findList.Items()) > 0 {
				kh.app.findInput.Blur()
				kh.app.findList.Select(0)
			}
			return kh.app, nil
		}
		return kh.delegateToTextInput(msg)
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) handleTextInputEnter() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewPosts:
		kh.app.searchInput.Blur()
		return kh.app, nil

	case ViewFind:
		if items := kh.app.findList.Items(); len(items) > 0 {
			if i, ok := items[0].(findItem); ok {
				return kh.openPost(i.result.Post.ID, ViewFind)
			}
		}
		return kh.app, nil

	case ViewGoto:
		id, err := validation.ParsePostID(kh.app.gotoInput.Value())
		if err != nil {
			kh.app.setStatus(err.Error(), StatusError)
			return kh.app, nil
		}
		kh.app.gotoInput.Blur()
		kh.app.view = ViewDetail
		kh.app.previousView = ViewPosts
		return kh.app, kh.app.selection.SelectByID(id)

	default:
		return kh.app, nil
	}
}

// delegateToTextInput passes the key to the focused input and forwards
// changed values to the matching debouncer.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewPosts:
		prev := kh.app.searchInput.Value()
		kh.app.searchInput, cmd = kh.app.searchInput.Update(msg)
		if val := kh.app.searchInput.Value(); val != prev {
			return kh.app, tea.Batch(cmd, kh.app.controller.SetSearchText(validation.SanitizeTerm(val)))
		}
		return kh.app, cmd

	case ViewFind:
		prev := kh.app.findInput.Value()
		kh.app.findInput, cmd = kh.app.findInput.Update(msg)
		if val := kh.app.findInput.Value(); val != prev {
			return kh.app, tea.Batch(cmd, kh.app.findDebounce.Observe(validation.SanitizeTerm(val)))
		}
		return kh.app, cmd

	case ViewGoto:
		kh.app.gotoInput, cmd = kh.app.gotoInput.Update(msg)
		return kh.app, cmd

	default:
		return kh.app, nil
	}
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	b := kh.config.Keys.Bindings
	app := kh.app

	switch key {
	case "ctrl+c", b.Quit:
		return app, app.quit(), true
	case b.Back:
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.bind(b.Search), "/":
		app.view = ViewPosts
		app.selection.Clear()
		app.searchInput.Focus()
		return app, nil, true
	case kh.bind(b.Tags):
		model, cmd := kh.openTagPicker()
		return model, cmd, true
	case kh.bind(b.Find):
		model, cmd := kh.enterFindMode()
		return model, cmd, true
	case kh.bind(b.GotoPost):
		app.previousView = app.view
		app.view = ViewGoto
		app.gotoInput.Reset()
		app.gotoInput.Focus()
		return app, nil, true
	case kh.bind(b.Theme):
		theme := app.prefs.ToggleTheme()
		app.applyTheme()
		app.setStatus("theme: "+theme, StatusInfo)
		if sel := app.selection.Selected(); sel != nil && app.view == ViewDetail {
			return app, app.renderPost(*sel), true
		}
		return app, nil, true
	case kh.bind(b.InfiniteScroll):
		if app.prefs.ToggleInfiniteScroll() {
			app.setStatus("infinite scroll on", StatusInfo)
		} else {
			app.setStatus("infinite scroll off", StatusInfo)
		}
		return app, nil, true
	case kh.bind(b.Refresh):
		app.setStatus(MsgRefreshing, StatusInfo)
		return app, app.controller.Refresh(), true
	case kh.bind(b.LoadMore):
		if !app.controller.HasMore() && app.controller.ItemCount() > 0 {
			app.setStatus(MsgAllLoaded, StatusWarn)
			return app, nil, true
		}
		return app, app.controller.LoadMore(), true
	}

	if app.view == ViewDetail && key == kh.bind(b.Copy) {
		if sel := app.selection.Selected(); sel != nil {
			return app, app.copyPost(*sel), true
		}
		return app, nil, true
	}

	return app, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	app := kh.app

	switch app.view {
	case ViewPosts:
		app.postList, cmd = app.postList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.postList.SelectedItem().(postItem); ok {
				return kh.openPost(i.post.ID, ViewPosts)
			}
		}
		return app, cmd

	case ViewTags:
		app.tagList, cmd = app.tagList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.tagList.SelectedItem().(tagItem); ok {
				return kh.chooseTag(i)
			}
		}
		return app, cmd

	case ViewFind:
		switch msg.String() {
		case "tab", "shift+tab":
			app.findInput.Focus()
			return app, nil
		case "up":
			if app.findList.Index() == 0 {
				app.findInput.Focus()
				return app, nil
			}
		}
		app.findList, cmd = app.findList.Update(msg)
		if msg.String() == "enter" {
			if i, ok := app.findList.SelectedItem().(findItem); ok {
				return kh.openPost(i.result.Post.ID, ViewFind)
			}
		}
		return app, cmd

	case ViewDetail:
		app.viewport, cmd = app.viewport.Update(msg)
		return app, cmd

	default:
		return app, nil
	}
}

// openPost selects a loaded post and shows it. The post is looked up by id
// so a find result from an older epoch is never shown.
func (kh *KeyHandler) openPost(id int, from View) (tea.Model, tea.Cmd) {
	app := kh.app
	for _, p := range app.controller.Items() {
		if p.ID != id {
			continue
		}
		app.selection.Select(p)
		app.previousView = from
		app.view = ViewDetail
		app.viewport.SetContent("")
		return app, tea.Batch(app.renderPost(p), app.recordVisit(p))
	}
	return app, nil
}

func (kh *KeyHandler) openTagPicker() (tea.Model, tea.Cmd) {
	app := kh.app
	active := app.controller.Filter().Tag

	var tags []string
	title := "› tags"
	if sel := app.selection.Selected(); app.view == ViewDetail && sel != nil {
		tags = sel.Tags
		title = "› tags of #" + fmt.Sprint(sel.ID)
	} else {
		tags = app.controller.UniqueTags()
	}

	items := []list.Item{tagItem{tag: "", active: active == ""}}
	for _, t := range tags {
		items = append(items, tagItem{tag: t, active: t == active})
	}
	app.tagList.Title = title
	app.tagList.SetItems(items)
	app.tagList.ResetSelected()

	app.previousView = app.view
	app.view = ViewTags
	return app, nil
}

func (kh *KeyHandler) chooseTag(i tagItem) (tea.Model, tea.Cmd) {
	app := kh.app
	app.view = ViewPosts
	app.selection.Clear()
	if i.tag == "" {
		return app, app.controller.ClearTag()
	}
	return app, app.controller.SetTag(i.tag)
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	app := kh.app

	switch app.view {
	case ViewDetail:
		app.selection.Clear()
		app.rendering = false
		app.view = app.previousView
		if app.view == ViewFind {
			app.findInput.Blur()
		}
		if app.view == ViewDetail || app.view == ViewGoto {
			app.view = ViewPosts
		}
		return app, nil

	case ViewTags:
		app.view = app.previousView
		if app.view == ViewTags || app.view == ViewGoto {
			app.view = ViewPosts
		}
		return app, nil

	case ViewGoto:
		app.gotoInput.Blur()
		app.view = app.previousView
		if app.view == ViewGoto {
			app.view = ViewPosts
		}
		return app, nil

	case ViewFind:
		app.view = ViewPosts
		app.findDebounce.Cancel()
		app.findInput.Reset()
		app.findInput.Blur()
		app.findQuery = ""
		app.findList.SetItems([]list.Item{})
		return app, nil

	case ViewPosts:
		// clear the search first, then the tag
		if app.searchInput.Value() != "" {
			app.searchInput.Reset()
			return app, app.controller.SetSearchText("")
		}
		return app, app.controller.ClearTag()

	default:
		return app, nil
	}
}

// enterFindMode transitions to the find view over the loaded posts.
func (kh *KeyHandler) enterFindMode() (tea.Model, tea.Cmd) {
	app := kh.app
	app.previousView = app.view
	app.view = ViewFind
	app.findInput.Reset()
	app.findInput.Focus()
	app.findQuery = ""
	app.findList.SetItems([]list.Item{})

	if err := app.finder.Sync(app.controller.Epoch(), app.controller.Items()); err != nil {
		app.setStatus(wrapErr("find index", err).Error(), StatusError)
		return app, nil
	}

	engineName := fmt.Sprintf("%T", app.finder)
	if ds, ok := app.finder.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			app.setStatus(fmt.Sprintf("find: %s • idx: %d", engineName, n), StatusInfo)
			return app, nil
		}
	}
	app.setStatus("find: "+engineName, StatusInfo)
	return app, nil
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	b := kh.config.Keys.Bindings

	switch kh.app.view {
	case ViewPosts:
		if kh.app.searchInput.Focused() {
			return []string{"enter: done", b.Back + ": leave search"}
		}
		help := []string{
			"enter: open",
			kh.bind(b.Search) + ": search",
			kh.bind(b.Tags) + ": tags",
			kh.bind(b.Find) + ": find",
			kh.bind(b.GotoPost) + ": go to",
		}
		if !kh.app.prefs.InfiniteScroll() {
			help = append(help, kh.bind(b.LoadMore)+": more")
		}
		return append(help, kh.bind(b.InfiniteScroll)+": scroll mode", kh.bind(b.Theme)+": theme")

	case ViewDetail:
		return []string{kh.bind(b.Copy) + ": copy", kh.bind(b.Tags) + ": tags", b.Back + ": back"}

	case ViewTags:
		return []string{"enter: toggle", b.Back + ": back"}

	case ViewFind:
		return []string{"enter: open", b.Back + ": back"}

	case ViewGoto:
		return []string{"enter: open", b.Back + ": cancel"}

	default:
		return []string{}
	}
}
