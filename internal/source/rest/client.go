// Package rest reads the job collection through the hosted store's
// PostgREST-style HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/source"
)

const (
	defaultTable   = "jobs"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Config locates the collection.
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// Client implements source.Fetcher with one GET per call and no retries.
type Client struct {
	baseURL string
	apiKey  string
	table   string
	http    *http.Client
}

// StatusError reports a non-2xx answer from the store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("job source returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("job source returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match source.ErrUpstream.
func (e *StatusError) Unwrap() error {
	return source.ErrUpstream
}

// New builds a Client. A nil httpClient gets one with cfg.Timeout.
func New(cfg Config, httpClient *http.Client) *Client {
	if cfg.Table == "" {
		cfg.Table = defaultTable
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		table:   cfg.Table,
		http:    httpClient,
	}
}

// Configured reports whether both endpoint and key are present.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// Fetch issues one GET against the collection.
func (c *Client) Fetch(ctx context.Context, q source.Query) ([]mission.Job, error) {
	if !c.Configured() {
		return nil, source.ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.collectionURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.table, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var jobs []mission.Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode %s: %w", c.table, err)
	}
	return jobs, nil
}

func (c *Client) collectionURL(q source.Query) string {
	params := url.Values{}
	selectExpr := "*"
	if len(q.Columns) > 0 {
		selectExpr = strings.Join(q.Columns, ",")
	}
	params.Set("select", selectExpr)
	if q.OrderBy != "" {
		dir := "asc"
		if q.Descending {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	return c.baseURL + "/rest/v1/" + url.PathEscape(c.table) + "?" + params.Encode()
}
