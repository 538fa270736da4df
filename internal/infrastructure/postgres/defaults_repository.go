package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// defaultsRowID is the primary key of the single defaults row.
const defaultsRowID = 1

// DefaultsRepository implements repository.DefaultsRepository using PostgreSQL.
// The tunable settings live in one jsonb document; the API key has its own column
// so it never appears in the settings payload.
type DefaultsRepository struct {
	db DBTX
}

// NewDefaultsRepository creates a new DefaultsRepository instance.
func NewDefaultsRepository(db DBTX) *DefaultsRepository {
	return &DefaultsRepository{db: db}
}

// EnsureSchema creates the defaults table if it does not exist.
func (r *DefaultsRepository) EnsureSchema(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS slider_defaults (
			id         SMALLINT PRIMARY KEY,
			settings   JSONB NOT NULL,
			api_key    TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create slider_defaults table: %w", err)
	}
	return nil
}

// Get returns the stored defaults. Settings missing from the stored document
// keep their hardcoded values.
func (r *DefaultsRepository) Get(ctx context.Context) (*model.DefaultsConfig, error) {
	const query = `
		SELECT settings, api_key, updated_at
		FROM slider_defaults
		WHERE id = $1
	`

	var (
		settings  []byte
		apiKey    string
		updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, query, defaultsRowID).Scan(&settings, &apiKey, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrDefaultsNotFound
		}
		return nil, fmt.Errorf("failed to get defaults: %w", err)
	}

	doc := toSettingsJSON(model.NewDefaultsConfig())
	if err := json.Unmarshal(settings, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode defaults: %w", err)
	}

	d := doc.toModel()
	d.APIKey = apiKey
	d.UpdatedAt = updatedAt
	return &d, nil
}

// Save upserts the defaults row.
func (r *DefaultsRepository) Save(ctx context.Context, defaults *model.DefaultsConfig) error {
	const query = `
		INSERT INTO slider_defaults (id, settings, api_key, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET settings = EXCLUDED.settings, api_key = EXCLUDED.api_key, updated_at = EXCLUDED.updated_at
	`

	settings, err := json.Marshal(toSettingsJSON(*defaults))
	if err != nil {
		return fmt.Errorf("failed to encode defaults: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, defaultsRowID, settings, defaults.APIKey, defaults.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save defaults: %w", err)
	}
	return nil
}

// CreateIfMissing inserts defaults only when the row does not exist yet.
func (r *DefaultsRepository) CreateIfMissing(ctx context.Context, defaults *model.DefaultsConfig) (bool, error) {
	const query = `
		INSERT INTO slider_defaults (id, settings, api_key, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	settings, err := json.Marshal(toSettingsJSON(*defaults))
	if err != nil {
		return false, fmt.Errorf("failed to encode defaults: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, defaultsRowID, settings, defaults.APIKey, defaults.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create defaults: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// settingsJSON is the stored shape of the defaults document.
type settingsJSON struct {
	MaxVideos        int        `json:"max_videos"`
	PlayMode         string     `json:"play"`
	CacheTTLSeconds  int        `json:"cache_ttl"`
	ThumbnailQuality string     `json:"thumb_quality"`
	Layout           layoutJSON `json:"layout"`
}

type layoutJSON struct {
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

func toSettingsJSON(d model.DefaultsConfig) settingsJSON {
	return settingsJSON{
		MaxVideos:        d.MaxVideos,
		PlayMode:         d.PlayMode.String(),
		CacheTTLSeconds:  d.CacheTTLSeconds,
		ThumbnailQuality: d.ThumbnailQuality.String(),
		Layout:           layoutJSON(d.Layout),
	}
}

func (s settingsJSON) toModel() model.DefaultsConfig {
	return model.DefaultsConfig{
		MaxVideos:        s.MaxVideos,
		PlayMode:         model.PlayMode(s.PlayMode),
		CacheTTLSeconds:  s.CacheTTLSeconds,
		ThumbnailQuality: model.ThumbnailQuality(s.ThumbnailQuality),
		Layout:           model.Layout(s.Layout),
	}
}

// Compile-time verification that DefaultsRepository implements repository.DefaultsRepository.
var _ repository.DefaultsRepository = (*DefaultsRepository)(nil)
