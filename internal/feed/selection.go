package feed

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/debuglog"
)

// PostMsg reports the outcome of a fetch-by-id.
type PostMsg struct {
	Seq  uint64
	ID   int
	Post *api.Post
	Err  error
}

// Selection is the currently opened post. It has its own loading and error
// state and is never touched by filter or pagination changes.
type Selection struct {
	source  Source
	timeout time.Duration

	seq      uint64
	selected *api.Post
	loading  bool
	err      string

	log *debuglog.FieldLogger
}

func NewSelection(source Source, timeout time.Duration) *Selection {
	return &Selection{
		source:  source,
		timeout: timeout,
		log:     debuglog.WithFields(map[string]any{"component": "selection"}),
	}
}

// Select opens an already loaded post. Any fetch in flight is superseded.
func (s *Selection) Select(post api.Post) {
	s.seq++
	s.selected = &post
	s.loading = false
	s.err = ""
}

// SelectByID fetches a post by id. The current selection stays visible
// until the response arrives.
func (s *Selection) SelectByID(id int) tea.Cmd {
	s.seq++
	s.loading = true
	s.err = ""

	var (
		source  = s.source
		timeout = s.timeout
		seq     = s.seq
	)
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		post, err := source.FetchPost(ctx, id)
		return PostMsg{Seq: seq, ID: id, Post: post, Err: err}
	}
}

func (s *Selection) Clear() {
	s.seq++
	s.selected = nil
	s.loading = false
	s.err = ""
}

// Update applies a PostMsg and reports whether it was current.
func (s *Selection) Update(msg tea.Msg) bool {
	m, ok := msg.(PostMsg)
	if !ok {
		return false
	}
	if m.Seq != s.seq {
		s.log.With("id", m.ID, "seq", m.Seq, "current", s.seq).Debugf("discarding stale post")
		return false
	}

	s.loading = false
	if m.Err != nil {
		s.err = m.Err.Error()
		s.log.With("id", m.ID).Warnf("post fetch failed: %v", m.Err)
		return true
	}
	if m.Post != nil {
		post := *m.Post
		s.selected = &post
	}
	return true
}

func (s *Selection) Selected() *api.Post { return s.selected }
func (s *Selection) Loading() bool       { return s.loading }
func (s *Selection) Err() string         { return s.err }
