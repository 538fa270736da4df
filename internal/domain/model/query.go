package model

import (
	"fmt"
	"time"
)

// PlaylistQuery is the validated input of a single playlist fetch.
type PlaylistQuery struct {
	PlaylistID       string
	MaxResults       int
	ThumbnailQuality ThumbnailQuality
	CacheTTL         time.Duration
	APIKey           string
}

// Validate returns the first reason the query cannot reach the cache or the API.
func (q PlaylistQuery) Validate() error {
	if err := ValidatePlaylistID(q.PlaylistID); err != nil {
		return err
	}
	return ValidateAPIKey(q.APIKey)
}

// CacheTTLSeconds returns the TTL as whole seconds.
func (q PlaylistQuery) CacheTTLSeconds() int {
	return int(q.CacheTTL / time.Second)
}

// String omits the API key so queries can be logged safely.
func (q PlaylistQuery) String() string {
	return fmt.Sprintf("PlaylistQuery{playlist=%s max=%d quality=%s ttl=%s}",
		q.PlaylistID, q.MaxResults, q.ThumbnailQuality, q.CacheTTL)
}
