package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/api"
)

// fakeSource serves a fixed number of posts per query. Tags are assigned
// round-robin from tags.
type fakeSource struct {
	mu      sync.Mutex
	total   int
	tags    []string
	failAt  map[int]error
	pages   []api.Query
	offsets []int
	posts   map[int]api.Post
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{
		total:  total,
		tags:   []string{"history", "love", "crime"},
		failAt: make(map[int]error),
		posts:  make(map[int]api.Post),
	}
}

func (f *fakeSource) FetchPage(_ context.Context, q api.Query, p api.Page) (*api.PageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pages = append(f.pages, q)
	f.offsets = append(f.offsets, p.Offset)
	if err, ok := f.failAt[p.Offset]; ok {
		delete(f.failAt, p.Offset)
		return nil, err
	}

	result := &api.PageResult{Total: f.total, Skip: p.Offset, Limit: p.Limit, Posts: []api.Post{}}
	for i := p.Offset; i < p.Offset+p.Limit && i < f.total; i++ {
		result.Posts = append(result.Posts, api.Post{
			ID:    i + 1,
			Title: fmt.Sprintf("%s|%s #%d", q.Search, q.Tag, i+1),
			Tags:  []string{f.tags[i%len(f.tags)]},
		})
	}
	return result, nil
}

func (f *fakeSource) FetchPost(_ context.Context, id int) (*api.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.posts[id]; ok {
		return &p, nil
	}
	return nil, errors.New("HTTP error: 404")
}

func (f *fakeSource) queries() []api.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Query(nil), f.pages...)
}

// run executes cmd and feeds the result back into the controller.
func run(c *Controller, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return c.Update(cmd())
}

func ids(posts []api.Post) []int {
	out := make([]int, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func seq(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// blockingSource waits until the request context ends.
type blockingSource struct{}

func (blockingSource) FetchPage(ctx context.Context, _ api.Query, _ api.Page) (*api.PageResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingSource) FetchPost(ctx context.Context, _ int) (*api.Post, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
