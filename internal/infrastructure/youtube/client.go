// Package youtube fetches playlist items from the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

var (
	// ErrTransport is returned when the request never produced a response.
	ErrTransport = errors.New("youtube request failed")

	// ErrUnexpectedStatus is returned for any non-200 HTTP status.
	ErrUnexpectedStatus = errors.New("youtube returned unexpected status")

	// ErrMalformedResponse is returned when the body is empty or not valid JSON.
	ErrMalformedResponse = errors.New("youtube returned a malformed response")

	// ErrNoItems is returned when the response carries no items.
	ErrNoItems = errors.New("youtube returned no playlist items")
)

// ClientConfig holds configuration for the YouTube client.
type ClientConfig struct {
	BaseURL   string        // API root; paths such as youtube/v3/playlistItems are resolved against it
	Timeout   time.Duration // Whole-request timeout including the body read
	UserAgent string        // Appended to the library's own User-Agent
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   "https://youtube.googleapis.com/",
		Timeout:   15 * time.Second,
		UserAgent: "ytslider/1.0 (+https://github.com/hszk-dev/ytslider)",
	}
}

// Client wraps the YouTube API service.
// The API key is supplied per call because the key may differ per request.
type Client struct {
	service *yt.Service
}

// NewClient creates a new YouTube API client.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	opts := []option.ClientOption{
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}

	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	// option.WithUserAgent is ignored alongside a custom HTTP client; the
	// generated calls append this field to the library's own agent instead.
	service.UserAgent = cfg.UserAgent

	return &Client{service: service}, nil
}

// FetchPlaylistItems issues a single playlistItems.list request for the
// snippet part. It never retries.
func (c *Client) FetchPlaylistItems(ctx context.Context, playlistID string, maxResults int, apiKey string) (*yt.PlaylistItemListResponse, error) {
	call := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(int64(maxResults)).
		Context(ctx)
	call.Header().Set("Accept", "application/json")

	resp, err := call.Do(googleapi.QueryParameter("key", apiKey))
	if err != nil {
		return nil, classify(err)
	}
	if resp.HTTPStatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.HTTPStatusCode)
	}
	if len(resp.Items) == 0 {
		return nil, ErrNoItems
	}

	return resp, nil
}

// classify maps library errors onto the package sentinels. Request URLs are
// never included since they carry the API key.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, apiErr.Code)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %s: %w", ErrTransport, urlErr.Op, urlErr.Err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
}
