package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/debuglog"
	"github.com/pders01/skim/internal/feed"
	"github.com/pders01/skim/internal/prefs"
	"github.com/pders01/skim/internal/search"
	"github.com/pders01/skim/internal/storage"
)

type App struct {
	config       *config.Config
	store        *storage.Store
	prefs        *prefs.Store
	controller   *feed.Controller
	selection    *feed.Selection
	trigger      *feed.Trigger
	finder       search.Searcher
	findDebounce *feed.Debouncer[string]
	keyHandler   *KeyHandler

	postList    list.Model
	tagList     list.Model
	findList    list.Model
	searchInput textinput.Model
	findInput   textinput.Model
	gotoInput   textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view         View
	previousView View
	visited      map[int]bool
	shownEpoch   uint64
	shownCount   int
	findQuery    string
	rendering    bool // detail pane waiting for glamour
	spinning     bool

	status     string
	statusKind StatusKind

	width  int
	height int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	rendererTheme   string
}

// NewApp wires the feed controller to the UI. store may be nil, in which
// case visit history is disabled.
func NewApp(cfg *config.Config, source feed.Source, store *storage.Store, p *prefs.Store) *App {
	if p == nil {
		p = prefs.New(nil)
	}

	postList := newList("› posts")
	tagList := newList("› tags")
	tagList.SetShowHelp(true)
	findList := newList("› find in loaded posts")

	si := textinput.New()
	si.Placeholder = "Search posts..."
	si.Prompt = "/ "
	si.CharLimit = 256

	fi := textinput.New()
	fi.Placeholder = "Find in loaded posts..."
	fi.CharLimit = 256

	gi := textinput.New()
	gi.Placeholder = "Post id, e.g. 42"
	gi.CharLimit = 12

	for _, in := range []*textinput.Model{&si, &fi, &gi} {
		in.Cursor.SetMode(cursor.CursorStatic)
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	app := &App{
		config: cfg,
		store:  store,
		prefs:  p,
		controller: feed.NewController(source, feed.Options{
			PageSize:      cfg.Feed.PageSize,
			DebounceDelay: cfg.Feed.DebounceDelay,
			Timeout:       cfg.API.HTTPTimeout,
		}),
		selection:    feed.NewSelection(source, cfg.API.HTTPTimeout),
		trigger:      feed.NewTrigger(cfg.Feed.VisibilityThreshold, cfg.Feed.PrefetchMargin),
		finder:       search.New(),
		findDebounce: feed.NewDebouncer[string](cfg.Feed.DebounceDelay),
		postList:     postList,
		tagList:      tagList,
		findList:     findList,
		searchInput:  si,
		findInput:    fi,
		gotoInput:    gi,
		viewport:     viewport.New(0, 0),
		spinner:      sp,
		view:         ViewPosts,
		previousView: ViewPosts,
		visited:      make(map[int]bool),
	}

	app.keyHandler = NewKeyHandler(app, cfg)
	app.applyTheme()

	return app
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.controller.Init(),
		a.loadVisited(),
		a.startSpinner(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmds = append(cmds, a.resize(msg.Width, msg.Height))

	case tea.KeyMsg:
		_, cmd := a.keyHandler.HandleKey(msg)
		cmds = append(cmds, cmd)

	case feed.PostMsg:
		if a.selection.Update(msg) {
			cmds = append(cmds, a.onPostLoaded())
		}

	case detailRenderedMsg:
		if sel := a.selection.Selected(); sel != nil && sel.ID == msg.postID {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.rendering = false
		}

	case visitsLoadedMsg:
		for id := range msg.ids {
			a.visited[id] = true
		}
		a.refreshPostItems()

	case visitRecordedMsg:
		a.visited[msg.postID] = true
		a.refreshPostItems()

	case statusMsg:
		a.setStatus(msg.text, msg.kind)

	case errorMsg:
		a.setStatus(describeErr(msg.err), StatusError)

	case spinner.TickMsg:
		cmds = append(cmds, a.tickSpinner(msg))

	default:
		if term, ok := a.findDebounce.Handle(msg); ok {
			a.find(term)
		} else {
			cmds = append(cmds, a.controller.Update(msg))
		}
	}

	a.syncPosts()
	cmds = append(cmds, a.autoLoad(), a.startSpinner())
	return a, tea.Batch(cmds...)
}

// syncPosts mirrors the controller's items into the list when the epoch
// or item count changed.
func (a *App) syncPosts() {
	count := a.controller.ItemCount()
	epoch := a.controller.Epoch()
	if epoch == a.shownEpoch && count == a.shownCount {
		return
	}

	newEpoch := epoch != a.shownEpoch
	a.shownEpoch, a.shownCount = epoch, count

	a.postList.Title = "› posts • " + a.controller.Filter().Describe()
	a.refreshPostItems()
	if newEpoch {
		a.postList.ResetSelected()
	}

	if a.view == ViewFind && strings.TrimSpace(a.findQuery) != "" {
		a.find(a.findQuery)
	}
}

func (a *App) refreshPostItems() {
	posts := a.controller.Items()
	items := make([]list.Item, len(posts))
	for i, p := range posts {
		items[i] = postItem{
			post:       p,
			visited:    a.visited[p.ID],
			previewLen: a.config.UI.Post.MaxPreviewLength,
		}
	}
	a.postList.SetItems(items)
}

// autoLoad feeds the visible page of the post list to the infinite-scroll
// trigger. Other views hide the list, so the sentinel cannot be visible.
func (a *App) autoLoad() tea.Cmd {
	vp := feed.Viewport{}
	if a.view == ViewPosts {
		start, _ := a.postList.Paginator.GetSliceBounds(a.controller.ItemCount())
		vp = feed.Viewport{Offset: start, Height: a.postList.Paginator.PerPage}
	}
	return a.controller.AutoLoad(a.trigger, a.prefs.InfiniteScroll(), vp)
}

func (a *App) onPostLoaded() tea.Cmd {
	if err := a.selection.Err(); err != "" {
		return nil
	}
	sel := a.selection.Selected()
	if sel == nil || a.view != ViewDetail {
		return nil
	}
	return tea.Batch(a.renderPost(*sel), a.recordVisit(*sel))
}

// quit stops the debouncers so no emission reaches a closed controller.
func (a *App) quit() tea.Cmd {
	a.controller.Close()
	a.findDebounce.Stop()
	if err := a.finder.Close(); err != nil {
		debuglog.Warnf("closing find index: %v", err)
	}
	return tea.Quit
}

func (a *App) busy() bool {
	return a.controller.Loading() || a.selection.Loading() || a.rendering
}

func (a *App) startSpinner() tea.Cmd {
	if a.spinning || !a.busy() {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) tickSpinner(msg spinner.TickMsg) tea.Cmd {
	if !a.busy() {
		a.spinning = false
		return nil
	}
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return cmd
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusKind = StatusInfo
}

func (a *App) resize(width, height int) tea.Cmd {
	a.width = width
	a.height = height

	// search frame on top, separator and status line below
	a.postList.SetSize(width, max(height-5, 3))
	a.tagList.SetSize(width, max(height-2, 3))
	a.findList.SetSize(width, max(height-7, 3))
	a.viewport.Width = width
	a.viewport.Height = max(height-2, 1)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = max(width-4, 1)
	}
	a.searchInput.Width = inputWidth
	a.findInput.Width = inputWidth
	a.gotoInput.Width = min(inputWidth, 24)

	if a.view == ViewDetail {
		if sel := a.selection.Selected(); sel != nil {
			return a.renderPost(*sel)
		}
	}
	return nil
}

func (a *App) theme() string {
	return a.prefs.Theme()
}

func (a *App) applyTheme() {
	if a.theme() == prefs.ThemeDark {
		ApplyPalette(a.config.UI.Dark)
	} else {
		ApplyPalette(a.config.UI.Light)
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	post := a.config.UI.Post
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > post.WordWrapMaxWidth {
		wordWrapWidth = post.WordWrapMaxWidth
	}
	if wordWrapWidth < post.WordWrapMinWidth {
		wordWrapWidth = post.WordWrapMinWidth
	}
	if a.width < 50 {
		wordWrapWidth = max(a.width-4, 20)
	}

	theme := a.theme()
	if a.glamourRenderer == nil || a.rendererTheme != theme || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
		a.rendererTheme = theme
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) View() string {
	bodyHeight := max(a.height-2, 1)

	var content string
	switch a.view {
	case ViewPosts:
		content = a.postsView(bodyHeight)
	case ViewTags:
		content = a.tagList.View()
	case ViewDetail:
		content = a.detailView(bodyHeight)
	case ViewFind:
		content = a.findView()
	case ViewGoto:
		content = a.gotoView(bodyHeight)
	}

	content = ContentWrapper(a.width, bodyHeight).Render(content)
	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 0)))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) postsView(height int) string {
	search := renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width)
	bodyHeight := max(height-3, 1)

	var body string
	switch {
	case a.controller.ItemCount() == 0 && a.controller.Loading():
		body = renderCentered(a.width, bodyHeight, a.spinner.View()+" "+renderMuted(MsgLoadingPosts))
	case a.controller.ItemCount() == 0:
		msg := GetEmptyMessage(a.controller.Filter().Describe())
		if err := a.controller.Err(); err != "" {
			msg = lipgloss.JoinVertical(lipgloss.Center, ErrorMessageStyle.Render("✗ "+err), "", msg)
		}
		body = renderCentered(a.width, bodyHeight, msg)
	default:
		body = a.postList.View()
	}

	return lipgloss.JoinVertical(lipgloss.Top, search, body)
}

func (a *App) detailView(height int) string {
	sel := a.selection.Selected()
	switch {
	case sel == nil && a.selection.Loading():
		return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted(MsgLoadingPost))
	case sel == nil && a.selection.Err() != "":
		return renderCentered(a.width, height, lipgloss.JoinVertical(lipgloss.Center,
			ErrorMessageStyle.Render("✗ "+a.selection.Err()),
			"",
			renderHelp("esc: back"),
		))
	case sel == nil:
		return renderCentered(a.width, height, renderMuted("nothing selected"))
	case a.rendering:
		return renderCentered(a.width, height, a.spinner.View()+" "+renderMuted(MsgLoadingPost))
	}
	return a.viewport.View()
}

func (a *App) findView() string {
	header := renderHeader("› find in loaded posts", MsgResultsCount(len(a.findList.Items())), a.width)

	help := "Type to find • Tab/↓: results • Esc: back"
	if !a.findInput.Focused() {
		help = "↑↓: navigate • Enter: open • Tab: find box • Esc: back"
	}

	return lipgloss.JoinVertical(
		lipgloss.Top,
		header,
		renderInputFrame(a.findInput.View(), a.findInput.Focused(), a.findInput.Width),
		renderHelp(help),
		a.findList.View(),
	)
}

func (a *App) gotoView(height int) string {
	return renderCentered(a.width, height, lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("› go to post"),
		"",
		renderInputFrame(a.gotoInput.View(), true, a.gotoInput.Width),
		"",
		renderHelp("Enter: open • Esc: cancel"),
		renderMuted("from "+truncateMiddle(a.config.API.BaseURL, max(a.width-10, 20))),
	))
}

func (a *App) statusBar() string {
	line := a.statusText()
	if help := a.keyHandler.GetHelpForCurrentView(); len(help) > 0 {
		line += "  " + renderMuted(strings.Join(help, " • "))
	}
	return StatusBarStyle.Width(a.width).Render(truncateEnd(line, max(a.width-2, 0)))
}

func (a *App) statusText() string {
	if a.status != "" {
		return StatusStyle(a.statusKind).Render(a.status)
	}

	switch a.view {
	case ViewDetail:
		if err := a.selection.Err(); err != "" {
			return StatusErrorStyle.Render("✗ " + err)
		}
		if a.selection.Loading() || a.rendering {
			return a.spinner.View() + " " + MsgLoadingPost
		}
		if sel := a.selection.Selected(); sel != nil {
			return MsgPostOpened(sel.ID, sel.Title)
		}
		return ""

	case ViewPosts, ViewTags:
		if err := a.controller.Err(); err != "" {
			return StatusErrorStyle.Render("✗ " + err)
		}
		if a.controller.Loading() {
			return a.spinner.View() + " " + MsgLoadingPosts
		}
		if a.controller.SearchPending() {
			return renderMuted("searching…")
		}

		loaded := a.controller.ItemCount()
		parts := []string{
			MsgFeedSummary(a.controller.Filter().Describe(), loaded, a.controller.Total()),
			MsgMode(a.prefs.InfiniteScroll(), a.theme()),
		}
		switch {
		case a.controller.HasMore() && !a.prefs.InfiniteScroll():
			parts = append(parts, MsgLoadMoreHint(a.keyHandler.bind(a.config.Keys.Bindings.LoadMore), a.controller.Total()-loaded))
		case !a.controller.HasMore() && loaded > 0:
			parts = append(parts, MsgAllLoaded)
		}
		return strings.Join(parts, " • ")
	}
	return ""
}
