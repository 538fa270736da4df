package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hszk-dev/ytslider/internal/domain/model"
)

// Params holds the flat request parameters of one slider render.
type Params map[string]string

// Get returns the trimmed value of name. Blank values count as absent.
func (p Params) Get(name string) (string, bool) {
	v, ok := p[name]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// first returns the value of the first name present.
func (p Params) first(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := p.Get(name); ok {
			return v, true
		}
	}
	return "", false
}

// ResolvedConfig is the effective configuration of one render.
type ResolvedConfig struct {
	Query    model.PlaylistQuery
	PlayMode model.PlayMode
	Layout   model.Layout

	invalid error
}

// Valid reports whether the playlist ID and API key passed validation.
func (r ResolvedConfig) Valid() bool {
	return r.invalid == nil
}

// Err returns nil for a valid configuration, else an error wrapping
// ErrInvalidConfig and the validation reason.
func (r ResolvedConfig) Err() error {
	if r.invalid == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, r.invalid)
}

// ResolveQuery merges request params over the stored defaults.
// A well-formed request value wins, else the stored default is used. Numbers
// are clamped into range and unknown enum values fall back to medium/inline.
func ResolveQuery(params Params, defaults model.DefaultsConfig) ResolvedConfig {
	d := defaults.Sanitized()

	maxResults := model.ClampMaxResults(intParam(params, d.MaxVideos, "max", "max_videos"))
	ttlSeconds := model.ClampCacheTTL(intParam(params, d.CacheTTLSeconds, "cache_ttl"))

	quality := d.ThumbnailQuality
	if raw, ok := params.Get("thumb_quality"); ok {
		quality = model.ParseThumbnailQuality(raw)
	}

	playMode := d.PlayMode
	if raw, ok := params.Get("play"); ok {
		playMode = model.ParsePlayMode(raw)
	}

	playlistID, _ := params.first("playlist", "playlist_id")

	apiKey := d.APIKey
	if raw, ok := params.Get("api_key"); ok {
		apiKey = raw
	}

	query := model.PlaylistQuery{
		PlaylistID:       playlistID,
		MaxResults:       maxResults,
		ThumbnailQuality: quality,
		CacheTTL:         time.Duration(ttlSeconds) * time.Second,
		APIKey:           apiKey,
	}

	return ResolvedConfig{
		Query:    query,
		PlayMode: playMode,
		Layout:   d.Layout.Override(params.Get).Sanitized(),
		invalid:  query.Validate(),
	}
}

// intParam returns the first parseable integer among names, else def.
func intParam(params Params, def int, names ...string) int {
	raw, ok := params.first(names...)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
