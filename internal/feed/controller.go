// Package feed turns filter changes and scroll position into an ordered
// sequence of paged fetches.
//
// All Controller, Selection and Trigger methods run on the Bubble Tea
// Update goroutine. Fetches happen inside the returned tea.Cmd closures,
// which capture the epoch, offset and query by value and report back with
// PageMsg or PostMsg. A PageMsg whose epoch is no longer current is
// dropped without touching state.
package feed

import (
	"context"
	"slices"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/debuglog"
)

// Source is the remote post API. *api.Client satisfies it.
type Source interface {
	FetchPage(ctx context.Context, q api.Query, p api.Page) (*api.PageResult, error)
	FetchPost(ctx context.Context, id int) (*api.Post, error)
}

// PageMsg reports the outcome of one page fetch.
type PageMsg struct {
	Epoch  uint64
	Offset int
	Result *api.PageResult
	Err    error
}

type Options struct {
	PageSize      int
	DebounceDelay time.Duration
	// Timeout bounds each request; zero means no extra deadline.
	Timeout time.Duration
}

type Controller struct {
	source   Source
	limit    int
	timeout  time.Duration
	debounce *Debouncer[string]

	rawSearch string
	filter    Filter
	epoch     uint64
	page      PaginationState
	closed    bool

	log *debuglog.FieldLogger
}

func NewController(source Source, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Controller{
		source:   source,
		limit:    opts.PageSize,
		timeout:  opts.Timeout,
		debounce: NewDebouncer[string](opts.DebounceDelay),
		page:     newPagination(),
		log:      debuglog.WithFields(map[string]any{"component": "feed"}),
	}
}

// Init starts the first epoch with the empty filter.
func (c *Controller) Init() tea.Cmd {
	return c.startEpoch()
}

// SetSearchText records the raw input. The filter only changes once the
// input has been quiet for the debounce delay.
func (c *Controller) SetSearchText(s string) tea.Cmd {
	if c.closed {
		return nil
	}
	c.rawSearch = s
	return c.debounce.Observe(s)
}

// SetTag selects tag, or clears it when tag is already selected. Tag
// changes are not debounced.
func (c *Controller) SetTag(tag string) tea.Cmd {
	return c.applyFilter(c.filter.withTag(tag))
}

func (c *Controller) ClearTag() tea.Cmd {
	if c.filter.Tag == "" {
		return nil
	}
	return c.SetTag(c.filter.Tag)
}

// LoadMore fetches the next page. It is a no-op before Init, and unless
// more results exist and no fetch is in flight.
func (c *Controller) LoadMore() tea.Cmd {
	if !c.CanLoadMore() {
		return nil
	}
	return c.fetch(c.page.NextOffset)
}

// Refresh reloads from offset zero under a new epoch so that nothing in
// flight can land on the refreshed list.
func (c *Controller) Refresh() tea.Cmd {
	return c.startEpoch()
}

// Update consumes debounce emissions and page results.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}

	if term, ok := c.debounce.Handle(msg); ok {
		next := c.filter
		next.SearchText = term
		return c.applyFilter(next)
	}

	if m, ok := msg.(PageMsg); ok {
		c.applyPage(m)
	}
	return nil
}

// Close stops the debouncer; later messages are ignored.
func (c *Controller) Close() {
	c.debounce.Stop()
	c.closed = true
}

func (c *Controller) applyFilter(next Filter) tea.Cmd {
	if c.closed || next == c.filter {
		return nil
	}
	c.filter = next
	return c.startEpoch()
}

func (c *Controller) startEpoch() tea.Cmd {
	if c.closed {
		return nil
	}
	c.epoch++
	c.page.reset()
	c.log.With("epoch", c.epoch, "search", c.filter.SearchText, "tag", c.filter.Tag).Debugf("new epoch")
	return c.fetch(0)
}

func (c *Controller) fetch(offset int) tea.Cmd {
	c.page.begin()

	var (
		source  = c.source
		timeout = c.timeout
		epoch   = c.epoch
		query   = c.filter.Query()
		page    = api.Page{Offset: offset, Limit: c.limit}
	)

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		result, err := source.FetchPage(ctx, query, page)
		return PageMsg{Epoch: epoch, Offset: offset, Result: result, Err: err}
	}
}

func (c *Controller) applyPage(m PageMsg) {
	log := c.log.With("epoch", m.Epoch, "offset", m.Offset)

	if m.Epoch != c.epoch {
		log.With("current", c.epoch).Debugf("discarding stale page")
		return
	}

	if m.Err != nil {
		log.Warnf("page fetch failed: %v", m.Err)
		c.page.fail(m.Err)
		return
	}
	if m.Result == nil {
		m.Result = &api.PageResult{}
	}

	c.page.merge(m.Offset, c.limit, m.Result)
	log.With("items", len(c.page.Items), "total", c.page.Total).Debugf("page merged")
}

// Items returns a copy of the posts loaded in the current epoch.
func (c *Controller) Items() []api.Post {
	return slices.Clone(c.page.Items)
}

func (c *Controller) CanLoadMore() bool {
	return !c.closed && c.epoch > 0 && c.page.CanLoadMore()
}

func (c *Controller) ItemCount() int        { return len(c.page.Items) }
func (c *Controller) Loading() bool         { return c.page.Loading }
func (c *Controller) HasMore() bool         { return c.page.HasMore }
func (c *Controller) Err() string           { return c.page.Err }
func (c *Controller) Total() int            { return c.page.Total }
func (c *Controller) NextOffset() int       { return c.page.NextOffset }
func (c *Controller) Epoch() uint64         { return c.epoch }
func (c *Controller) Filter() Filter        { return c.filter }
func (c *Controller) RawSearchText() string { return c.rawSearch }
func (c *Controller) PageSize() int         { return c.limit }

// SearchPending reports whether typed input has not yet reached the filter.
func (c *Controller) SearchPending() bool { return c.debounce.Pending() }

// State returns a copy of the pagination state.
func (c *Controller) State() PaginationState {
	s := c.page
	s.Items = slices.Clone(c.page.Items)
	return s
}

// UniqueTags returns the sorted distinct tags of the loaded posts.
func (c *Controller) UniqueTags() []string {
	seen := make(map[string]struct{})
	for _, p := range c.page.Items {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
