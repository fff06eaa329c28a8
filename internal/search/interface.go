package search

import "github.com/pders01/skim/internal/api"

// Searcher finds posts among those currently loaded in the feed.
type Searcher interface {
	// Sync makes the index match posts. A new epoch replaces the whole
	// index; the same epoch only adds posts not seen yet.
	Sync(epoch uint64, posts []api.Post) error
	Find(query string, limit int) ([]*Result, error)
	Close() error
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// Result is one matching post.
type Result struct {
	Post    api.Post
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "body", "tags"
	Text   string
	Weight float64
}

// MinQueryLength is the shortest query that is searched at all.
const MinQueryLength = 2

// New returns the bleve-backed searcher, or the in-process scorer when the
// index cannot be created.
func New() Searcher {
	if b, err := NewBleveEngine(); err == nil {
		return b
	}
	return NewEngine()
}
