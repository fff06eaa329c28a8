package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/prefs"
	"github.com/pders01/skim/internal/storage"
)

var testTags = []string{"history", "love", "crime"}

type fakeSource struct {
	mu      sync.Mutex
	total   int
	failAt  map[int]error
	offsets []int
	queries []api.Query
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{total: total, failAt: make(map[int]error)}
}

func testPost(id int) api.Post {
	tag := testTags[(id-1)%len(testTags)]
	return api.Post{
		ID:     id,
		Title:  fmt.Sprintf("Post about %s number %d", tag, id),
		Body:   fmt.Sprintf("Body text for post %d.", id),
		Tags:   []string{tag},
		Views:  id * 10,
		UserID: id%5 + 1,
	}
}

func (f *fakeSource) FetchPage(_ context.Context, q api.Query, p api.Page) (*api.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.offsets = append(f.offsets, p.Offset)
	f.queries = append(f.queries, q)
	if err, ok := f.failAt[p.Offset]; ok {
		delete(f.failAt, p.Offset)
		return nil, err
	}

	res := &api.PageResult{Total: f.total, Skip: p.Offset, Limit: p.Limit, Posts: []api.Post{}}
	for id := p.Offset + 1; id <= p.Offset+p.Limit && id <= f.total; id++ {
		res.Posts = append(res.Posts, testPost(id))
	}
	return res, nil
}

func (f *fakeSource) FetchPost(_ context.Context, id int) (*api.Post, error) {
	if id < 1 || id > f.total {
		return nil, &api.StatusError{StatusCode: 404, URL: fmt.Sprintf("/posts/%d", id)}
	}
	p := testPost(id)
	return &p, nil
}

func (f *fakeSource) fetchedOffsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.offsets...)
}

func (f *fakeSource) lastQuery() api.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func newTestApp(t *testing.T, total int) (*App, *fakeSource) {
	t.Helper()
	src := newFakeSource(total)
	return NewApp(config.TestConfig(), src, nil, prefs.New(nil)), src
}

func newTestAppWithStore(t *testing.T, total int) (*App, *storage.Store) {
	t.Helper()
	st, err := storage.NewStore(filepath.Join(t.TempDir(), "skim.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewApp(config.TestConfig(), newFakeSource(total), st, prefs.New(st)), st
}

// drain runs cmd and everything it leads to, feeding each message back into
// the app. Spinner ticks are dropped so the loop settles.
func drain(t *testing.T, a *App, cmds ...tea.Cmd) {
	t.Helper()
	queue := append([]tea.Cmd(nil), cmds...)
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 500, "command loop did not settle")

		cmd := queue[0]
		queue = queue[1:]
		if cmd == nil {
			continue
		}

		switch msg := cmd().(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := a.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(a *App, msg tea.KeyMsg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

func typed(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, total int) (*App, *fakeSource) {
	t.Helper()
	a, src := newTestApp(t, total)
	drain(t, a, a.Init())
	return a, src
}

func postIDs(a *App) []int {
	var out []int
	for _, it := range a.postList.Items() {
		out = append(out, it.(postItem).post.ID)
	}
	return out
}
