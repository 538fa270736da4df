package model

import "time"

// Hardcoded fallbacks used when neither the request nor the stored defaults
// provide a value.
const (
	DefaultMaxVideos       = 20
	DefaultCacheTTLSeconds = 86400
)

// DefaultsConfig is the deployment-wide record of fallback slider settings.
type DefaultsConfig struct {
	MaxVideos        int
	PlayMode         PlayMode
	CacheTTLSeconds  int
	ThumbnailQuality ThumbnailQuality
	APIKey           string
	Layout           Layout
	UpdatedAt        time.Time
}

// NewDefaultsConfig returns the values written on first start.
func NewDefaultsConfig() DefaultsConfig {
	return DefaultsConfig{
		MaxVideos:        DefaultMaxVideos,
		PlayMode:         PlayInline,
		CacheTTLSeconds:  DefaultCacheTTLSeconds,
		ThumbnailQuality: ThumbnailMedium,
		Layout:           DefaultLayout(),
	}
}

// Sanitized clamps every field into its allowed range. The API key is kept
// as-is; it is validated on its own save path.
func (d DefaultsConfig) Sanitized() DefaultsConfig {
	out := d
	out.MaxVideos = ClampMaxResults(d.MaxVideos)
	out.CacheTTLSeconds = ClampCacheTTL(d.CacheTTLSeconds)
	out.PlayMode = ParsePlayMode(string(d.PlayMode))
	out.ThumbnailQuality = ParseThumbnailQuality(string(d.ThumbnailQuality))
	out.Layout = d.Layout.Sanitized()
	return out
}

// HasAPIKey reports whether a syntactically valid key is stored.
func (d DefaultsConfig) HasAPIKey() bool {
	return ValidateAPIKey(d.APIKey) == nil
}
