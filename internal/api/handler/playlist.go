package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hszk-dev/ytslider/internal/api/middleware"
	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/domain/repository"
	"github.com/hszk-dev/ytslider/internal/usecase"
)

type VideoResponse struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublishedAt  string `json:"published_at,omitempty"`
}

type PlaylistVideosResponse struct {
	PlaylistID       string          `json:"playlist_id"`
	PlayMode         string          `json:"play_mode"`
	ThumbnailQuality string          `json:"thumb_quality"`
	Layout           LayoutBody      `json:"layout"`
	Videos           []VideoResponse `json:"videos"`
}

type SnapshotResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// PlaylistHandler serves slider content for a playlist.
type PlaylistHandler struct {
	defaults       usecase.DefaultsService
	playlists      usecase.PlaylistService
	warm           usecase.WarmService
	snapshotExpiry time.Duration
	logger         *slog.Logger
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(
	defaults usecase.DefaultsService,
	playlists usecase.PlaylistService,
	warm usecase.WarmService,
	snapshotExpiry time.Duration,
	logger *slog.Logger,
) *PlaylistHandler {
	return &PlaylistHandler{
		defaults:       defaults,
		playlists:      playlists,
		warm:           warm,
		snapshotExpiry: snapshotExpiry,
		logger:         logger,
	}
}

// GetVideos handles GET /v1/playlists/{playlistID}/videos
func (h *PlaylistHandler) GetVideos(w http.ResponseWriter, r *http.Request) {
	resolved, ok := h.resolve(w, r)
	if !ok {
		return
	}

	records, err := h.playlists.GetVideos(r.Context(), resolved.Query)
	if err != nil {
		h.handlePipelineError(w, r, resolved.Query, err)
		return
	}

	videos := make([]VideoResponse, len(records))
	for i, rec := range records {
		videos[i] = VideoResponse{
			VideoID:      rec.VideoID,
			Title:        rec.Title,
			Description:  rec.Description,
			ThumbnailURL: rec.ThumbnailURL,
			PublishedAt:  rec.PublishedAt,
		}
	}

	JSON(w, http.StatusOK, PlaylistVideosResponse{
		PlaylistID:       resolved.Query.PlaylistID,
		PlayMode:         resolved.PlayMode.String(),
		ThumbnailQuality: resolved.Query.ThumbnailQuality.String(),
		Layout:           toLayoutBody(resolved.Layout),
		Videos:           videos,
	})
}

// GetSnapshot handles GET /v1/playlists/{playlistID}/snapshot
func (h *PlaylistHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	resolved, ok := h.resolve(w, r)
	if !ok {
		return
	}

	url, err := h.warm.SnapshotURL(r.Context(), resolved.Query)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			Error(w, http.StatusNotFound, "snapshot_not_found", "No snapshot has been published for this playlist yet.")
			return
		}
		h.logger.Error("failed to get snapshot URL",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("playlist_id", resolved.Query.PlaylistID),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	JSON(w, http.StatusOK, SnapshotResponse{
		URL:       url,
		ExpiresIn: int(h.snapshotExpiry.Seconds()),
	})
}

// resolve merges the request over the stored defaults. It writes the error
// response itself and returns false when the request cannot proceed.
func (h *PlaylistHandler) resolve(w http.ResponseWriter, r *http.Request) (usecase.ResolvedConfig, bool) {
	defaults, err := h.defaults.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load defaults",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return usecase.ResolvedConfig{}, false
	}

	resolved := usecase.ResolveQuery(playlistParams(r), defaults)
	if !resolved.Valid() {
		h.handlePipelineError(w, r, resolved.Query, resolved.Err())
		return usecase.ResolvedConfig{}, false
	}
	return resolved, true
}

func (h *PlaylistHandler) handlePipelineError(w http.ResponseWriter, r *http.Request, q model.PlaylistQuery, err error) {
	kind := usecase.Kind(err)

	var status int
	var detail string
	switch kind {
	case usecase.KindInvalidConfig:
		status = http.StatusBadRequest
		detail = invalidConfigDetail(err)
	case usecase.KindFetchFailure:
		status = http.StatusBadGateway
		detail = "Could not fetch the playlist from YouTube: " + err.Error()
	case usecase.KindEmptyResult:
		status = http.StatusNotFound
		detail = "The playlist has no displayable videos."
	default:
		status = http.StatusInternalServerError
		detail = err.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Warn("playlist request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("playlist_id", q.PlaylistID),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}

	message := genericMessage
	if middleware.IsAdmin(r.Context()) {
		message = detail
	}
	Error(w, status, string(kind), message)
}

func invalidConfigDetail(err error) string {
	switch {
	case errors.Is(err, model.ErrMissingPlaylistID):
		return "No playlist ID was given."
	case errors.Is(err, model.ErrInvalidPlaylistID):
		return "The playlist ID is not valid."
	case errors.Is(err, model.ErrMissingAPIKey):
		return "No YouTube API key is configured."
	case errors.Is(err, model.ErrInvalidAPIKey):
		return "The YouTube API key is not valid."
	default:
		return err.Error()
	}
}

// playlistParams flattens the query string and puts the path playlist ID
// ahead of any query alias.
func playlistParams(r *http.Request) usecase.Params {
	query := r.URL.Query()
	params := make(usecase.Params, len(query)+1)
	for name, values := range query {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}
	if id := chi.URLParam(r, "playlistID"); id != "" {
		params["playlist"] = id
	}
	return params
}
