package model

import (
	"errors"
	"regexp"
	"time"
)

const (
	// CacheKeyPrefix namespaces every playlist cache entry so the whole set can be
	// purged by prefix without touching unrelated keys.
	CacheKeyPrefix = "ytslider:playlist:"

	MinMaxResults = 1
	MaxMaxResults = 50

	MinCacheTTL = 300 * time.Second
	MaxCacheTTL = 604800 * time.Second
)

var (
	playlistIDPattern = regexp.MustCompile(`^PL[A-Za-z0-9_-]{32}$`)
	apiKeyPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{39}$`)
	videoIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

var (
	ErrInvalidPlaylistID = errors.New("invalid playlist ID format")
	ErrMissingPlaylistID = errors.New("playlist ID is required")
	ErrInvalidAPIKey     = errors.New("invalid YouTube API key format")
	ErrMissingAPIKey     = errors.New("YouTube API key is required")
)

// ValidatePlaylistID reports whether id looks like a YouTube playlist ID.
func ValidatePlaylistID(id string) error {
	if id == "" {
		return ErrMissingPlaylistID
	}
	if !playlistIDPattern.MatchString(id) {
		return ErrInvalidPlaylistID
	}
	return nil
}

// ValidateAPIKey reports whether key has the shape of a YouTube Data API key.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrMissingAPIKey
	}
	if !apiKeyPattern.MatchString(key) {
		return ErrInvalidAPIKey
	}
	return nil
}

// IsValidVideoID reports whether id is an 11 character YouTube video ID.
func IsValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// ThumbnailQuality names one of the thumbnail resolutions YouTube offers.
type ThumbnailQuality string

const (
	ThumbnailDefault  ThumbnailQuality = "default"
	ThumbnailMedium   ThumbnailQuality = "medium"
	ThumbnailHigh     ThumbnailQuality = "high"
	ThumbnailStandard ThumbnailQuality = "standard"
	ThumbnailMaxres   ThumbnailQuality = "maxres"
)

func (q ThumbnailQuality) IsValid() bool {
	switch q {
	case ThumbnailDefault, ThumbnailMedium, ThumbnailHigh, ThumbnailStandard, ThumbnailMaxres:
		return true
	default:
		return false
	}
}

func (q ThumbnailQuality) String() string {
	return string(q)
}

// ParseThumbnailQuality returns the matching quality, or medium for anything unknown.
func ParseThumbnailQuality(s string) ThumbnailQuality {
	q := ThumbnailQuality(s)
	if !q.IsValid() {
		return ThumbnailMedium
	}
	return q
}

// PlayMode controls what the slider does when a card is clicked.
type PlayMode string

const (
	PlayInline   PlayMode = "inline"
	PlayPopup    PlayMode = "popup"
	PlayRedirect PlayMode = "redirect"
)

func (m PlayMode) IsValid() bool {
	switch m {
	case PlayInline, PlayPopup, PlayRedirect:
		return true
	default:
		return false
	}
}

func (m PlayMode) String() string {
	return string(m)
}

// ParsePlayMode returns the matching mode, or inline for anything unknown.
func ParsePlayMode(s string) PlayMode {
	m := PlayMode(s)
	if !m.IsValid() {
		return PlayInline
	}
	return m
}

// ClampMaxResults bounds n to the range the playlistItems endpoint accepts.
func ClampMaxResults(n int) int {
	return clampInt(n, MinMaxResults, MaxMaxResults)
}

// ClampCacheTTL bounds a TTL expressed in seconds.
func ClampCacheTTL(seconds int) int {
	return clampInt(seconds, int(MinCacheTTL/time.Second), int(MaxCacheTTL/time.Second))
}

func clampInt(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
