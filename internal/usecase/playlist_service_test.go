package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/api/youtube/v3"

	"github.com/hszk-dev/ytslider/internal/domain/model"
	"github.com/hszk-dev/ytslider/internal/infrastructure/metrics"
)

func TestPlaylistService_GetVideos_CacheMiss(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			if playlistID != testPlaylistID || maxResults != 5 || apiKey != testAPIKey {
				t.Errorf("unexpected fetch args: %s %d %s", playlistID, maxResults, apiKey)
			}
			return playlistResponse(3), nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())
	q := validQuery()

	got, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if f.fetchCount.Load() != 1 {
		t.Errorf("fetch count = %d, want 1", f.fetchCount.Load())
	}

	key := CacheKeyFor(q)
	cached, ok := c.entry(key)
	if !ok || len(cached) != 3 {
		t.Errorf("cache entry = %v, want 3 records", cached)
	}
	if c.ttls[key] != time.Hour {
		t.Errorf("ttl = %v, want 1h", c.ttls[key])
	}
}

func TestPlaylistService_GetVideos_CacheHit(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())
	q := validQuery()

	_ = c.Set(context.Background(), CacheKeyFor(q), testRecords(2), time.Hour)
	c.setCount.Store(0)

	got, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if f.fetchCount.Load() != 0 {
		t.Errorf("fetch count = %d, want 0 on cache hit", f.fetchCount.Load())
	}
	if c.setCount.Load() != 0 {
		t.Errorf("set count = %d, want 0 on cache hit", c.setCount.Load())
	}
}

func TestPlaylistService_GetVideos_RoundTrip(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			return playlistResponse(4), nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())
	q := validQuery()

	first, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("first GetVideos failed: %v", err)
	}
	second, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("second GetVideos failed: %v", err)
	}

	if f.fetchCount.Load() != 1 {
		t.Errorf("fetch count = %d, want 1", f.fetchCount.Load())
	}
	if len(first) != len(second) {
		t.Fatalf("len mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].VideoID != second[i].VideoID || first[i].ThumbnailURL != second[i].ThumbnailURL {
			t.Errorf("[%d] cached record differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestPlaylistService_GetVideos_ReselectsThumbnailOnHit(t *testing.T) {
	c := newMockPlaylistCache()
	svc := NewPlaylistService(c, &mockPlaylistFetcher{}, DefaultPlaylistServiceConfig())

	q := validQuery()
	_ = c.Set(context.Background(), CacheKeyFor(q), testRecords(1), time.Hour)

	q.ThumbnailQuality = model.ThumbnailHigh
	got, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}

	want := "https://i.ytimg.com/vi/" + videoID(0) + "/hqdefault.jpg"
	if got[0].ThumbnailURL != want {
		t.Errorf("ThumbnailURL = %q, want %q", got[0].ThumbnailURL, want)
	}

	cached, _ := c.entry(CacheKeyFor(q))
	if cached[0].ThumbnailURL == want {
		t.Error("cache entry was mutated by the re-selection")
	}
}

func TestPlaylistService_GetVideos_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		query func() model.PlaylistQuery
	}{
		{"bad playlist", func() model.PlaylistQuery { q := validQuery(); q.PlaylistID = "not-a-playlist"; return q }},
		{"missing playlist", func() model.PlaylistQuery { q := validQuery(); q.PlaylistID = ""; return q }},
		{"missing api key", func() model.PlaylistQuery { q := validQuery(); q.APIKey = ""; return q }},
		{"bad api key", func() model.PlaylistQuery { q := validQuery(); q.APIKey = "nope"; return q }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockPlaylistCache()
			f := &mockPlaylistFetcher{}
			svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())

			_, err := svc.GetVideos(context.Background(), tt.query())
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
			if c.getCount.Load() != 0 || c.setCount.Load() != 0 || f.fetchCount.Load() != 0 {
				t.Errorf("unexpected interactions: get=%d set=%d fetch=%d",
					c.getCount.Load(), c.setCount.Load(), f.fetchCount.Load())
			}
		})
	}
}

func TestPlaylistService_GetVideos_FetchFailure(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			return nil, errors.New("status 403")
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())

	_, err := svc.GetVideos(context.Background(), validQuery())
	if !errors.Is(err, ErrFetchFailure) {
		t.Errorf("error = %v, want ErrFetchFailure", err)
	}
	if Kind(err) != KindFetchFailure {
		t.Errorf("Kind = %v, want fetch_failure", Kind(err))
	}
	if c.setCount.Load() != 0 {
		t.Error("failed fetch must not be cached")
	}
}

func TestPlaylistService_GetVideos_EmptyResultNotCached(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			return &youtube.PlaylistItemListResponse{
				Items: []*youtube.PlaylistItem{playlistItem("bad-id", "x", "")},
			}, nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())

	_, err := svc.GetVideos(context.Background(), validQuery())
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("error = %v, want ErrEmptyResult", err)
	}
	if c.setCount.Load() != 0 {
		t.Error("empty result must not be cached")
	}

	// The next call must try the API again.
	_, _ = svc.GetVideos(context.Background(), validQuery())
	if f.fetchCount.Load() != 2 {
		t.Errorf("fetch count = %d, want 2", f.fetchCount.Load())
	}
}

func TestPlaylistService_GetVideos_PartiallyInvalidItems(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			resp := playlistResponse(3)
			resp.Items[1].Snippet.ResourceId = nil
			return resp, nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())
	q := validQuery()

	got, err := svc.GetVideos(context.Background(), q)
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	cached, _ := c.entry(CacheKeyFor(q))
	if len(cached) != 2 {
		t.Errorf("cached len = %d, want 2", len(cached))
	}
}

func TestPlaylistService_GetVideos_CacheErrorsAreNotFatal(t *testing.T) {
	c := newMockPlaylistCache()
	c.getFn = func(ctx context.Context, key string) ([]model.VideoRecord, error) {
		return nil, errors.New("connection refused")
	}
	c.setFn = func(ctx context.Context, key string, records []model.VideoRecord, ttl time.Duration) error {
		return errors.New("connection refused")
	}
	f := &mockPlaylistFetcher{}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())

	got, err := svc.GetVideos(context.Background(), validQuery())
	if err != nil {
		t.Fatalf("GetVideos failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
	if f.fetchCount.Load() != 1 {
		t.Errorf("fetch count = %d, want 1", f.fetchCount.Load())
	}
}

// Five items, maxres requested but absent: records use the medium tier and a
// second identical render is served from cache.
func TestPlaylistService_GetVideos_EndToEnd(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			return playlistResponse(5), nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())

	resolved := ResolveQuery(Params{
		"playlist":      testPlaylistID,
		"max":           "5",
		"thumb_quality": "maxres",
		"cache_ttl":     "600",
	}, storedDefaults())
	if err := resolved.Err(); err != nil {
		t.Fatalf("ResolveQuery: %v", err)
	}

	for round := range 2 {
		got, err := svc.GetVideos(context.Background(), resolved.Query)
		if err != nil {
			t.Fatalf("round %d: GetVideos failed: %v", round, err)
		}
		if len(got) != 5 {
			t.Fatalf("round %d: len = %d, want 5", round, len(got))
		}
		for i, r := range got {
			want := "https://i.ytimg.com/vi/" + videoID(i) + "/mqdefault.jpg"
			if r.ThumbnailURL != want {
				t.Errorf("round %d [%d]: ThumbnailURL = %q, want %q", round, i, r.ThumbnailURL, want)
			}
		}
	}

	if f.fetchCount.Load() != 1 {
		t.Errorf("fetch count = %d, want 1", f.fetchCount.Load())
	}
	key := DeriveCacheKey(testPlaylistID, 5, 600)
	if c.ttls[key] != 600*time.Second {
		t.Errorf("ttl = %v, want 600s", c.ttls[key])
	}
}

func TestPlaylistService_GetVideos_Coalesced(t *testing.T) {
	c := newMockPlaylistCache()
	release := make(chan struct{})
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			<-release
			return playlistResponse(2), nil
		},
	}
	svc := NewPlaylistService(c, f, PlaylistServiceConfig{CoalesceFetches: true})

	const concurrent = 10
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	errs := make(chan error, concurrent)
	started.Add(concurrent)
	for range concurrent {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			_, err := svc.GetVideos(context.Background(), validQuery())
			errs <- err
		}()
	}

	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("GetVideos failed: %v", err)
		}
	}
	if n := f.fetchCount.Load(); n != 1 {
		t.Errorf("fetch count = %d, want 1 with coalescing", n)
	}
}

func TestPlaylistService_Refresh(t *testing.T) {
	c := newMockPlaylistCache()
	f := &mockPlaylistFetcher{
		fetchFn: func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
			return playlistResponse(3), nil
		},
	}
	svc := NewPlaylistService(c, f, DefaultPlaylistServiceConfig())
	q := validQuery()

	_ = c.Set(context.Background(), CacheKeyFor(q), testRecords(1), time.Hour)

	got, err := svc.Refresh(context.Background(), q)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if c.getCount.Load() != 0 {
		t.Error("Refresh must not read the cache")
	}
	if cached, _ := c.entry(CacheKeyFor(q)); len(cached) != 3 {
		t.Errorf("cache entry len = %d, want 3 after refresh", len(cached))
	}

	if _, err := svc.Refresh(context.Background(), model.PlaylistQuery{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Refresh(invalid) error = %v, want ErrInvalidConfig", err)
	}
}

func TestPlaylistService_PurgeCache(t *testing.T) {
	c := newMockPlaylistCache()
	var gotPrefix string
	c.purgeFn = func(ctx context.Context, prefix string) (int, error) {
		gotPrefix = prefix
		return 7, nil
	}
	svc := NewPlaylistService(c, &mockPlaylistFetcher{}, DefaultPlaylistServiceConfig())

	n, err := svc.PurgeCache(context.Background())
	if err != nil {
		t.Fatalf("PurgeCache failed: %v", err)
	}
	if n != 7 {
		t.Errorf("deleted = %d, want 7", n)
	}
	if gotPrefix != model.CacheKeyPrefix {
		t.Errorf("prefix = %q, want %q", gotPrefix, model.CacheKeyPrefix)
	}

	c.purgeFn = func(ctx context.Context, prefix string) (int, error) {
		return 0, errors.New("redis down")
	}
	if _, err := svc.PurgeCache(context.Background()); err == nil {
		t.Error("expected purge error to propagate")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want ResultKind
	}{
		{nil, KindSuccess},
		{ErrInvalidConfig, KindInvalidConfig},
		{ErrEmptyResult, KindEmptyResult},
		{errors.Join(ErrFetchFailure, errors.New("timeout")), KindFetchFailure},
		{errors.New("other"), KindUnknown},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestPlaylistService_GetVideos_ResultSourceLabels(t *testing.T) {
	failingFetch := func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error) {
		return nil, errors.New("status 500")
	}
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		query     model.PlaylistQuery
		fetchFn   func(ctx context.Context, playlistID string, maxResults int, apiKey string) (*youtube.PlaylistItemListResponse, error)
		coalesce  bool
		kind      ResultKind
		source    string
		wantFetch int32
	}{
		{
			name:  "invalid config never reaches the API",
			ctx:   context.Background(),
			query: func() model.PlaylistQuery { q := validQuery(); q.APIKey = ""; return q }(),
			kind:  KindInvalidConfig, source: metrics.SourceNone, wantFetch: 0,
		},
		{
			name:  "cancelled before the fetch",
			ctx:   cancelled,
			query: validQuery(),
			kind:  KindFetchFailure, source: metrics.SourceNone, wantFetch: 0,
		},
		{
			name:    "fetch failure",
			ctx:     context.Background(),
			query:   validQuery(),
			fetchFn: failingFetch,
			kind:    KindFetchFailure, source: metrics.SourceAPI, wantFetch: 1,
		},
		{
			name:     "coalesced fetch failure",
			ctx:      context.Background(),
			query:    validQuery(),
			fetchFn:  failingFetch,
			coalesce: true,
			kind:     KindFetchFailure, source: metrics.SourceAPI, wantFetch: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &mockPlaylistFetcher{fetchFn: tt.fetchFn}
			svc := NewPlaylistService(newMockPlaylistCache(), f, PlaylistServiceConfig{CoalesceFetches: tt.coalesce})

			counter := metrics.PlaylistRequestsTotal.WithLabelValues(string(tt.kind), tt.source)
			before := testutil.ToFloat64(counter)

			if _, err := svc.GetVideos(tt.ctx, tt.query); Kind(err) != tt.kind {
				t.Fatalf("Kind = %v, want %v (err = %v)", Kind(err), tt.kind, err)
			}

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("requests{%s,%s} grew by %v, want 1", tt.kind, tt.source, got)
			}
			if got := f.fetchCount.Load(); got != tt.wantFetch {
				t.Errorf("fetch count = %d, want %d", got, tt.wantFetch)
			}
		})
	}
}
