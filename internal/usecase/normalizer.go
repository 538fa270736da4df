package usecase

import (
	"net/url"
	"regexp"
	"strings"

	"google.golang.org/api/youtube/v3"

	"github.com/hszk-dev/ytslider/internal/domain/model"
)

// descriptionWordLimit is the number of words kept in a description.
const descriptionWordLimit = 20

const ellipsis = "…"

var (
	scriptOrStyle = regexp.MustCompile(`(?is)<script\b.*?</script\s*>|<style\b.*?</style\s*>`)
	htmlTag       = regexp.MustCompile(`(?s)<[^>]*>`)
)

// NormalizePlaylistItems turns a playlistItems response into display records.
// Items without a snippet or with an invalid video ID are skipped; the API
// order of the remaining items is preserved. The result is never nil.
func NormalizePlaylistItems(resp *youtube.PlaylistItemListResponse, quality model.ThumbnailQuality) []model.VideoRecord {
	records := make([]model.VideoRecord, 0)
	if resp == nil {
		return records
	}

	for _, item := range resp.Items {
		if item == nil || item.Snippet == nil || item.Snippet.ResourceId == nil {
			continue
		}
		snippet := item.Snippet

		videoID := strings.TrimSpace(snippet.ResourceId.VideoId)
		if !model.IsValidVideoID(videoID) {
			continue
		}

		thumbs := thumbnailTiers(snippet.Thumbnails)
		records = append(records, model.VideoRecord{
			VideoID:      videoID,
			Title:        PlainText(snippet.Title),
			Description:  TrimWords(PlainText(snippet.Description), descriptionWordLimit),
			ThumbnailURL: thumbs.Select(quality),
			Thumbnails:   thumbs,
			PublishedAt:  PlainText(snippet.PublishedAt),
		})
	}

	return records
}

// thumbnailTiers collects every tier with a usable URL. Tiers whose URL is
// not absolute http(s) are left out, so fallback moves on to the next tier.
func thumbnailTiers(details *youtube.ThumbnailDetails) model.Thumbnails {
	if details == nil {
		return nil
	}

	tiers := []struct {
		quality model.ThumbnailQuality
		thumb   *youtube.Thumbnail
	}{
		{model.ThumbnailDefault, details.Default},
		{model.ThumbnailMedium, details.Medium},
		{model.ThumbnailHigh, details.High},
		{model.ThumbnailStandard, details.Standard},
		{model.ThumbnailMaxres, details.Maxres},
	}

	out := make(model.Thumbnails, len(tiers))
	for _, t := range tiers {
		if t.thumb == nil {
			continue
		}
		if u := SafeURL(t.thumb.Url); u != "" {
			out[t.quality] = u
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SafeURL returns raw when it is an absolute http or https URL with a host,
// else an empty string.
func SafeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, " \t\r\n\"'<>") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw
	default:
		return ""
	}
}

// PlainText strips markup and collapses every whitespace run to one space.
func PlainText(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = scriptOrStyle.ReplaceAllString(s, "")
	s = htmlTag.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// TrimWords keeps the first limit words of s and appends an ellipsis when
// anything was cut.
func TrimWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + ellipsis
}
