// Package analyzer pulls analyzed songs from a remote audio-analysis service.
package analyzer

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/musicmatch/internal/domain"
	"github.com/timmy/musicmatch/internal/source"
)

const tracksPath = "/v1/tracks"

// Config holds configuration for the analyzer client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	Catalog    string // optional catalog name passed to the service
}

// Client implements source.Source against the analyzer's paginated track listing.
type Client struct {
	client  *resty.Client
	catalog string
}

type trackRecord struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Artist      string                `json:"artist"`
	Album       string                `json:"album"`
	ImageURL    string                `json:"image_url"`
	PreviewURL  string                `json:"preview_url"`
	ExternalURL string                `json:"external_url"`
	DurationMs  int                   `json:"duration_ms"`
	Features    domain.RawDescriptors `json:"features"`
}

type tracksResponse struct {
	Tracks     []trackRecord `json:"tracks"`
	NextCursor string        `json:"next_cursor"`
	Error      string        `json:"error,omitempty"`
}

// NewClient creates an analyzer client. Server errors and 429s are retried.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{client: client, catalog: cfg.Catalog}
}

// GetSourceID returns the source identifier with an "analyzer:" prefix.
func (c *Client) GetSourceID() string {
	if c.catalog == "" {
		return "analyzer"
	}
	return "analyzer:" + c.catalog
}

// GetDisplayName returns a display name for the analyzer source.
func (c *Client) GetDisplayName() string {
	if c.catalog == "" {
		return "Analyzer"
	}
	return fmt.Sprintf("Analyzer (%s)", c.catalog)
}

// FetchBatch requests one page of analyzed tracks. Records without an ID or title are dropped.
func (c *Client) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.SongItem, string, error) {
	req := c.client.R().SetContext(ctx)
	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if c.catalog != "" {
		req.SetQueryParam("catalog", c.catalog)
	}

	var resp tracksResponse
	httpResp, err := req.SetResult(&resp).SetError(&resp).Get(tracksPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to call analyzer: %w", err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		if resp.Error != "" {
			return nil, "", fmt.Errorf("analyzer error: %s", resp.Error)
		}
		return nil, "", fmt.Errorf("analyzer error: status %d", httpResp.StatusCode())
	}

	items := make([]source.SongItem, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		if t.ID == "" || t.Title == "" {
			continue
		}
		items = append(items, source.SongItem{
			SourceID:    t.ID,
			Title:       t.Title,
			Artist:      t.Artist,
			Album:       t.Album,
			ImageURL:    t.ImageURL,
			PreviewURL:  t.PreviewURL,
			ExternalURL: t.ExternalURL,
			DurationMs:  t.DurationMs,
			Descriptors: t.Features,
		})
	}
	return items, resp.NextCursor, nil
}
