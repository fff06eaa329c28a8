package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/feed"
	"github.com/pders01/skim/internal/prefs"
	"github.com/pders01/skim/internal/storage"
)

var tags = []string{"history", "love", "crime", "fiction"}

// postServer serves a fixed set of posts with the list, search, tag and
// item endpoints of the default profile.
type postServer struct {
	mu       sync.Mutex
	posts    []api.Post
	requests []string
}

func newPostServer(n int) *postServer {
	s := &postServer{}
	for id := 1; id <= n; id++ {
		tag := tags[(id-1)%len(tags)]
		s.posts = append(s.posts, api.Post{
			ID:     id,
			Title:  fmt.Sprintf("A %s story, part %d", tag, id),
			Body:   fmt.Sprintf("Post %d talks about %s.", id, tag),
			Tags:   []string{tag},
			Views:  id * 7,
			UserID: id%9 + 1,
		})
	}
	return s
}

func (s *postServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.RequestURI())
	s.mu.Unlock()

	path := r.URL.Path
	var matches []api.Post
	switch {
	case path == "/posts":
		matches = s.posts
	case path == "/posts/search":
		q := strings.ToLower(r.URL.Query().Get("q"))
		for _, p := range s.posts {
			if strings.Contains(strings.ToLower(p.Title+" "+p.Body), q) {
				matches = append(matches, p)
			}
		}
	case strings.HasPrefix(path, "/posts/tag/"):
		tag := strings.TrimPrefix(path, "/posts/tag/")
		for _, p := range s.posts {
			if p.Tags[0] == tag {
				matches = append(matches, p)
			}
		}
	case strings.HasPrefix(path, "/posts/"):
		id, err := strconv.Atoi(strings.TrimPrefix(path, "/posts/"))
		if err != nil || id < 1 || id > len(s.posts) {
			http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(s.posts[id-1])
		return
	default:
		http.NotFound(w, r)
		return
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page := []api.Post{}
	for i := skip; i < len(matches) && i < skip+limit; i++ {
		page = append(page, matches[i])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(api.PageResult{Posts: page, Total: len(matches), Skip: skip, Limit: limit})
}

func (s *postServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func setupTestEnvironment(t *testing.T, n int) (*postServer, *api.Client, *storage.Store) {
	t.Helper()
	srv := newPostServer(n)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = ts.URL
	client, err := api.NewClient(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "test.db"), time.Second)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return srv, client, store
}

// run executes cmd and feeds every resulting message back through update
// until nothing is left to do.
func run(update func(tea.Msg) tea.Cmd, cmds ...tea.Cmd) {
	for len(cmds) > 0 {
		cmd := cmds[0]
		cmds = cmds[1:]
		if cmd == nil {
			continue
		}
		switch msg := cmd().(type) {
		case nil:
		case tea.BatchMsg:
			cmds = append(cmds, msg...)
		default:
			cmds = append(cmds, update(msg))
		}
	}
}

func TestIntegration_PagesThroughAllPosts(t *testing.T) {
	srv, client, _ := setupTestEnvironment(t, 25)
	c := feed.NewController(client, feed.Options{PageSize: 10, DebounceDelay: 5 * time.Millisecond})

	run(c.Update, c.Init())
	for c.CanLoadMore() {
		run(c.Update, c.LoadMore())
	}

	if c.Err() != "" {
		t.Fatalf("Unexpected error: %s", c.Err())
	}
	if len(c.Items()) != 25 {
		t.Fatalf("Expected 25 posts, got %d", len(c.Items()))
	}
	for i, p := range c.Items() {
		if p.ID != i+1 {
			t.Fatalf("Post %d out of order: got id %d", i, p.ID)
		}
	}
	if got := srv.requestCount(); got != 3 {
		t.Errorf("Expected 3 page requests, got %d", got)
	}
}

func TestIntegration_SearchAndTagFilters(t *testing.T) {
	_, client, _ := setupTestEnvironment(t, 40)
	c := feed.NewController(client, feed.Options{PageSize: 10, DebounceDelay: 5 * time.Millisecond})
	run(c.Update, c.Init())

	run(c.Update, c.SetTag("crime"))
	if c.Total() != 10 {
		t.Errorf("Expected 10 crime posts, got %d", c.Total())
	}
	for _, p := range c.Items() {
		if p.Tags[0] != "crime" {
			t.Errorf("Post %d does not carry the crime tag", p.ID)
		}
	}

	run(c.Update, c.SetSearchText("part 1"))
	if c.Filter().SearchText != "part 1" {
		t.Fatalf("Search text not applied: %+v", c.Filter())
	}
	// search takes precedence over the tag on the wire
	if c.Total() != 11 {
		t.Errorf("Expected 11 matches for 'part 1', got %d", c.Total())
	}
}

func TestIntegration_StaleResponsesAreDropped(t *testing.T) {
	_, client, _ := setupTestEnvironment(t, 30)
	c := feed.NewController(client, feed.Options{PageSize: 10, DebounceDelay: 5 * time.Millisecond})

	stale := c.Init()
	fresh := c.SetTag("love")

	run(c.Update, fresh)
	run(c.Update, stale)

	for _, p := range c.Items() {
		if p.Tags[0] != "love" {
			t.Fatalf("Stale page leaked post %d into the love filter", p.ID)
		}
	}
}

func TestIntegration_SelectAndRecordVisit(t *testing.T) {
	_, client, store := setupTestEnvironment(t, 12)
	sel := feed.NewSelection(client, 5*time.Second)

	run(func(msg tea.Msg) tea.Cmd {
		sel.Update(msg)
		return nil
	}, sel.SelectByID(7))

	p := sel.Selected()
	if p == nil {
		t.Fatalf("Post not selected, err: %s", sel.Err())
	}
	if p.ID != 7 {
		t.Errorf("Expected post 7, got %d", p.ID)
	}

	if err := store.RecordVisit(p.ID, p.Title, time.Now()); err != nil {
		t.Fatalf("Failed to record visit: %v", err)
	}
	visited, err := store.VisitedIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !visited[7] {
		t.Error("Expected post 7 to be marked visited")
	}

	run(func(msg tea.Msg) tea.Cmd {
		sel.Update(msg)
		return nil
	}, sel.SelectByID(99))
	if !strings.Contains(sel.Err(), "404") {
		t.Errorf("Expected a 404 error, got %q", sel.Err())
	}
}

func TestIntegration_PreferencesPersist(t *testing.T) {
	_, _, store := setupTestEnvironment(t, 1)

	p := prefs.New(store)
	if err := p.SetTheme(prefs.ThemeDark); err != nil {
		t.Fatal(err)
	}
	if p.ToggleInfiniteScroll() {
		t.Fatal("Expected infinite scroll to toggle off")
	}

	reopened := prefs.New(store)
	if reopened.Theme() != prefs.ThemeDark {
		t.Errorf("Theme not persisted: %s", reopened.Theme())
	}
	if reopened.InfiniteScroll() {
		t.Error("Infinite scroll setting not persisted")
	}
}
