package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	Reactions Reactions `json:"reactions"`
	Views     int       `json:"views"`
	UserID    int       `json:"userId"`
}

type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// UnmarshalJSON also accepts the older shape where reactions is a single
// integer; it is read as likes.
func (r *Reactions) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Reactions{}
		return nil
	}

	if data[0] != '{' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decoding reactions: %w", err)
		}
		*r = Reactions{Likes: n}
		return nil
	}

	type plain Reactions
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding reactions: %w", err)
	}
	*r = Reactions(p)
	return nil
}

// PageResult is one page of a list, search or tag response.
type PageResult struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// Query is the effective filter a page is fetched for.
type Query struct {
	Search string
	Tag    string
}

type Page struct {
	Offset int
	Limit  int
}
