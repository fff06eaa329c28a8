// Package api talks to the remote post service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pders01/skim/internal/api/endpoints"
	"github.com/pders01/skim/internal/config"
	"github.com/pders01/skim/internal/debuglog"
	"github.com/pders01/skim/internal/validation"
)

// maxBodyBytes bounds how much of a response is decoded.
const maxBodyBytes = 8 << 20

// StatusError is returned for responses with status >= 400.
type StatusError struct {
	StatusCode int
	URL        string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}

type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	profile   endpoints.Profile
	group     singleflight.Group
	log       *debuglog.FieldLogger
}

// NewClient validates the configured base URL and resolves the endpoint
// profile. profilePaths are optional user profile files.
func NewClient(cfg *config.Config, profilePaths ...string) (*Client, error) {
	base, err := validation.NewBaseURLValidator(cfg.API.AllowLocal).ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api base URL: %w", err)
	}

	registry, err := endpoints.NewRegistry(profilePaths...)
	if err != nil {
		return nil, err
	}
	profile, err := registry.Get(cfg.API.Profile)
	if err != nil {
		return nil, err
	}

	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   base,
		userAgent: cfg.API.UserAgent,
		profile:   profile,
		log:       debuglog.WithFields(map[string]any{"component": "api"}),
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPage fetches one page for q. The endpoint is chosen by the query:
// search term, then tag, then the plain list.
func (c *Client) FetchPage(ctx context.Context, q Query, p Page) (*PageResult, error) {
	target, kind := c.profile.PageURL(c.baseURL, q.Search, q.Tag, p.Offset, p.Limit)

	var result PageResult
	if err := c.getJSON(ctx, target, &result); err != nil {
		return nil, fmt.Errorf("fetching %s page at offset %d: %w", kind, p.Offset, err)
	}
	if result.Posts == nil {
		result.Posts = []Post{}
	}
	return &result, nil
}

// FetchPost fetches a single post. Concurrent calls for the same id share
// one request. The shared request is bounded by the client timeout, not by
// any one caller's context; each caller stops waiting when its own ctx is
// done.
func (c *Client) FetchPost(ctx context.Context, id int) (*Post, error) {
	shareCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(strconv.Itoa(id), func() (any, error) {
		var post Post
		if err := c.getJSON(shareCtx, c.profile.ItemURL(c.baseURL, id), &post); err != nil {
			return nil, err
		}
		return &post, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetching post %d: %w", id, ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, fmt.Errorf("fetching post %d: %w", id, res.Err)
	}
	if res.Shared {
		c.log.Debugf("post %d request shared", id)
	}

	post := *res.Val.(*Post)
	return &post, nil
}

func (c *Client) getJSON(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With("request_id", requestID, "url", target)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.With("status", resp.StatusCode, "elapsed", time.Since(start)).Debugf("response")

	if resp.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{
			StatusCode: resp.StatusCode,
			URL:        target,
			RetryAfter: retryAfter(resp),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
