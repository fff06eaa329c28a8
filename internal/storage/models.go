package storage

import (
	"time"
)

// Visit records that a post's detail view was opened.
type Visit struct {
	PostID    int       `json:"post_id"`
	Title     string    `json:"title"`
	VisitedAt time.Time `json:"visited_at"`
	Count     int       `json:"count"`
}
