package model

import "maps"

// Thumbnails maps each quality tier returned by the API to its image URL.
type Thumbnails map[ThumbnailQuality]string

// thumbnailFallback is tried in order after the requested quality.
var thumbnailFallback = []ThumbnailQuality{ThumbnailMedium, ThumbnailHigh, ThumbnailDefault}

// Select returns the URL for the requested quality, falling back to medium,
// high and default. Returns an empty string when none is present.
func (t Thumbnails) Select(requested ThumbnailQuality) string {
	if url := t[requested]; url != "" {
		return url
	}
	for _, q := range thumbnailFallback {
		if url := t[q]; url != "" {
			return url
		}
	}
	return ""
}

// VideoRecord is a validated playlist entry ready for display.
type VideoRecord struct {
	VideoID      string
	Title        string
	Description  string
	ThumbnailURL string
	Thumbnails   Thumbnails
	PublishedAt  string
}

// WithThumbnailQuality returns a copy whose ThumbnailURL is chosen for q.
// Records without the full tier set keep their current URL.
func (v VideoRecord) WithThumbnailQuality(q ThumbnailQuality) VideoRecord {
	out := v
	out.Thumbnails = maps.Clone(v.Thumbnails)
	if len(v.Thumbnails) > 0 {
		out.ThumbnailURL = v.Thumbnails.Select(q)
	}
	return out
}

// CloneRecords deep-copies records so callers never share cache-owned data.
func CloneRecords(records []VideoRecord) []VideoRecord {
	if records == nil {
		return nil
	}
	out := make([]VideoRecord, len(records))
	for i, r := range records {
		out[i] = r
		out[i].Thumbnails = maps.Clone(r.Thumbnails)
	}
	return out
}
