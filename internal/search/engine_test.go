package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/skim/internal/api"
)

func samplePosts() []api.Post {
	return []api.Post{
		{ID: 1, Title: "Love in the time of code", Tags: []string{"love", "fiction"}, Body: "A long story about programmers."},
		{ID: 2, Title: "History of Rome", Tags: []string{"history"}, Body: "Empires rise and fall."},
		{ID: 3, Title: "Crime scene", Tags: []string{"crime"}, Body: "Nobody loved the detective."},
	}
}

func resultIDs(results []*Result) []int {
	out := make([]int, 0, len(results))
	for _, r := range results {
		out = append(out, r.Post.ID)
	}
	return out
}

func TestEngineFindMinLength(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Sync(1, samplePosts()))

	for _, q := range []string{"", "a", "   "} {
		res, err := e.Find(q, 10)
		assert.NoError(t, err)
		assert.Empty(t, res, "query %q", q)
	}
}

func TestEngineFindRanksTitleFirst(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Sync(1, samplePosts()))

	res, err := e.Find("love", 10)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, resultIDs(res))
	assert.Greater(t, res[0].Score, res[1].Score)

	fields := make([]string, 0, len(res[0].Matches))
	for _, m := range res[0].Matches {
		fields = append(fields, m.Field)
	}
	assert.Equal(t, []string{"title", "tags"}, fields)
}

func TestEngineFindLimit(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.Sync(1, samplePosts()))

	res, err := e.Find("love", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resultIDs(res))
}

func TestEngineSyncByEpoch(t *testing.T) {
	e := NewEngine()
	posts := samplePosts()

	require.NoError(t, e.Sync(1, posts[:2]))
	require.NoError(t, e.Sync(1, posts))
	n, _ := e.DocCount()
	assert.Equal(t, 3, n, "same epoch only adds new posts")

	require.NoError(t, e.Sync(2, posts[2:]))
	n, _ = e.DocCount()
	assert.Equal(t, 1, n, "a new epoch starts over")

	res, err := e.Find("rome", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"a 4 go", []string{"4", "go"}},
		{"", nil},
		{"Café-au-lait", []string{"café", "au", "lait"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenize(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello…", truncate("hello world", 6))
	assert.Equal(t, "…", truncate("hello", 1))
}

func TestScoreField(t *testing.T) {
	assert.Zero(t, scoreField("", []string{"go"}, 1))
	assert.Zero(t, scoreField("nothing here", []string{"go"}, 1))

	exact := scoreField("go is fun", []string{"go"}, 1)
	partial := scoreField("going places", []string{"go"}, 1)
	assert.Greater(t, exact, partial)
	assert.InDelta(t, exact*2, scoreField("go is fun", []string{"go"}, 2), 1e-9)
}

func TestFindBestSnippet(t *testing.T) {
	assert.Empty(t, findBestSnippet("", []string{"x"}, 40))
	assert.Equal(t, "short text", findBestSnippet("short text", []string{"text"}, 160))

	body := "one two three four five six seven eight nine ten eleven twelve target thirteen"
	snippet := findBestSnippet(body, []string{"target"}, 16)
	assert.Contains(t, snippet, "target")
}
