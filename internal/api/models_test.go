package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionsDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Reactions
	}{
		{"object", `{"likes":5,"dislikes":2}`, Reactions{Likes: 5, Dislikes: 2}},
		{"legacy integer", `7`, Reactions{Likes: 7}},
		{"null", `null`, Reactions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var post Post
			require.NoError(t, json.Unmarshal([]byte(`{"id":1,"reactions":`+tt.raw+`}`), &post))
			assert.Equal(t, tt.want, post.Reactions)
		})
	}
}

func TestReactionsDecodingRejectsGarbage(t *testing.T) {
	var post Post
	assert.Error(t, json.Unmarshal([]byte(`{"reactions":"lots"}`), &post))
}

func TestPageResultDecoding(t *testing.T) {
	raw := `{"posts":[{"id":1,"title":"a","tags":["x","y"],"userId":9}],"total":251,"skip":0,"limit":10}`

	var page PageResult
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	assert.Equal(t, 251, page.Total)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, 9, page.Posts[0].UserID)
	assert.Equal(t, []string{"x", "y"}, page.Posts[0].Tags)
}
