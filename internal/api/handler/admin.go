package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hszk-dev/ytslider/internal/api/middleware"
	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/usecase"
)

// maxBodyBytes caps admin request bodies.
const maxBodyBytes = 64 << 10

type LayoutBody struct {
	MaxWidth                 int    `json:"max_width"`
	ThumbHeight              int    `json:"thumb_height"`
	ColsDesktop              int    `json:"cols_desktop"`
	ColsTablet               int    `json:"cols_tablet"`
	ColsMobile               int    `json:"cols_mobile"`
	Gap                      int    `json:"gap"`
	CenterOnClick            bool   `json:"center_on_click"`
	BorderRadius             int    `json:"border_radius"`
	TitleColor               string `json:"title_color"`
	TitleHoverColor          string `json:"title_hover_color"`
	ControlsSpacing          int    `json:"controls_spacing"`
	ControlsSpacingTablet    int    `json:"controls_spacing_tablet"`
	ControlsSpacingMobile    int    `json:"controls_spacing_mobile"`
	ControlsBottomSpacing    int    `json:"controls_bottom_spacing"`
	ArrowBorderRadius        int    `json:"arrow_border_radius"`
	ArrowPadding             int    `json:"arrow_padding"`
	ArrowWidth               int    `json:"arrow_width"`
	ArrowHeight              int    `json:"arrow_height"`
	ArrowBgColor             string `json:"arrow_bg_color"`
	ArrowHoverBgColor        string `json:"arrow_hover_bg_color"`
	ArrowIconColor           string `json:"arrow_icon_color"`
	ArrowIconSize            int    `json:"arrow_icon_size"`
	PaginationDotColor       string `json:"pagination_dot_color"`
	PaginationActiveDotColor string `json:"pagination_active_dot_color"`
}

func toLayoutBody(l model.Layout) LayoutBody {
	return LayoutBody(l)
}

// DefaultsBody is both the GET response and the PUT request of the defaults
// route. A PUT is applied over the current values, so omitted fields keep them.
type DefaultsBody struct {
	MaxVideos        int        `json:"max_videos"`
	PlayMode         string     `json:"play"`
	CacheTTLSeconds  int        `json:"cache_ttl"`
	ThumbnailQuality string     `json:"thumb_quality"`
	Layout           LayoutBody `json:"layout"`
	HasAPIKey        bool       `json:"has_api_key"`
	UpdatedAt        string     `json:"updated_at,omitempty"`
}

func toDefaultsBody(d model.DefaultsConfig) DefaultsBody {
	body := DefaultsBody{
		MaxVideos:        d.MaxVideos,
		PlayMode:         d.PlayMode.String(),
		CacheTTLSeconds:  d.CacheTTLSeconds,
		ThumbnailQuality: d.ThumbnailQuality.String(),
		Layout:           toLayoutBody(d.Layout),
		HasAPIKey:        d.HasAPIKey(),
	}
	if !d.UpdatedAt.IsZero() {
		body.UpdatedAt = d.UpdatedAt.Format(time.RFC3339)
	}
	return body
}

func (b DefaultsBody) toModel() model.DefaultsConfig {
	return model.DefaultsConfig{
		MaxVideos:        b.MaxVideos,
		PlayMode:         model.PlayMode(b.PlayMode),
		CacheTTLSeconds:  b.CacheTTLSeconds,
		ThumbnailQuality: model.ThumbnailQuality(b.ThumbnailQuality),
		Layout:           model.Layout(b.Layout),
	}
}

type APIKeyRequest struct {
	APIKey string `json:"api_key"`
}

type PurgeResponse struct {
	Purged int `json:"purged"`
}

type WarmResponse struct {
	TaskID string `json:"task_id"`
}

// AdminHandler serves the admin routes. Authentication happens in middleware.
type AdminHandler struct {
	defaults  usecase.DefaultsService
	playlists usecase.PlaylistService
	warm      usecase.WarmService
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	defaults usecase.DefaultsService,
	playlists usecase.PlaylistService,
	warm usecase.WarmService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		defaults:  defaults,
		playlists: playlists,
		warm:      warm,
		logger:    logger,
	}
}

// GetDefaults handles GET /v1/admin/defaults
func (h *AdminHandler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	d, err := h.defaults.Get(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to load defaults", err)
		return
	}
	JSON(w, http.StatusOK, toDefaultsBody(d))
}

// PutDefaults handles PUT /v1/admin/defaults
func (h *AdminHandler) PutDefaults(w http.ResponseWriter, r *http.Request) {
	current, err := h.defaults.Get(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to load defaults", err)
		return
	}

	body := toDefaultsBody(current)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	saved, err := h.defaults.Save(r.Context(), body.toModel())
	if err != nil {
		h.internalError(w, r, "failed to save defaults", err)
		return
	}

	JSON(w, http.StatusOK, toDefaultsBody(saved))
}

// PutAPIKey handles PUT /v1/admin/api-key
func (h *AdminHandler) PutAPIKey(w http.ResponseWriter, r *http.Request) {
	var req APIKeyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.defaults.SaveAPIKey(r.Context(), req.APIKey); err != nil {
		if errors.Is(err, model.ErrInvalidAPIKey) {
			Error(w, http.StatusBadRequest, "invalid_api_key", "API key must be 39 characters of letters, digits, '-' or '_'")
			return
		}
		h.internalError(w, r, "failed to save API key", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PurgeCache handles POST /v1/admin/cache/purge
func (h *AdminHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.playlists.PurgeCache(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to purge cache", err)
		return
	}

	h.logger.Info("playlist cache purged",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.Int("purged", n),
	)
	JSON(w, http.StatusOK, PurgeResponse{Purged: n})
}

// Warm handles POST /v1/admin/playlists/warm
// The body is a flat object of slider params, e.g. {"playlist": "PL...", "max": 10}.
func (h *AdminHandler) Warm(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	params := make(usecase.Params, len(raw))
	for name, v := range raw {
		switch v := v.(type) {
		case string:
			params[name] = v
		case json.Number, bool:
			params[name] = fmt.Sprint(v)
		}
	}

	taskID, err := h.warm.Enqueue(r.Context(), params)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidConfig) {
			Error(w, http.StatusBadRequest, string(usecase.KindInvalidConfig), invalidConfigDetail(err))
			return
		}
		h.internalError(w, r, "failed to enqueue warm task", err)
		return
	}

	JSON(w, http.StatusAccepted, WarmResponse{TaskID: taskID.String()})
}

func (h *AdminHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("error", err.Error()),
	)
	Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
