package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaker/spotify-data-viz/internal/cache"
	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/ratelimit"
	"github.com/husaker/spotify-data-viz/internal/spotify"
	"github.com/husaker/spotify-data-viz/internal/table"
)

// fakeAPI knows every ID except those listed in unknown. Batches containing
// an ID in rateLimited are always rate limited; batches containing an ID
// in malformed get ErrMalformedResponse; batches containing an ID in
// timedOut fail like an HTTP client timeout.
type fakeAPI struct {
	mu          sync.Mutex
	batches     [][]string
	unknown     map[string]bool
	rateLimited map[string]bool
	malformed   map[string]bool
	timedOut    map[string]bool

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeAPI) begin(ids []string) error {
	f.mu.Lock()
	f.batches = append(f.batches, slices.Clone(ids))
	f.mu.Unlock()

	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(f.delay)
	f.inFlight.Add(-1)

	for _, id := range ids {
		if f.rateLimited[id] {
			return &ratelimit.RateLimitedError{RetryAfter: time.Second, HasHint: true}
		}
		if f.malformed[id] {
			return ratelimit.Permanent(errors.Wrap(spotify.ErrMalformedResponse, "test"))
		}
		if f.timedOut[id] {
			return errors.Wrap(context.DeadlineExceeded, `Get "https://api.spotify.com/v1/tracks": client timeout`)
		}
	}
	return nil
}

func (f *fakeAPI) Tracks(ctx context.Context, ids []string) (map[string]model.Track, error) {
	if err := f.begin(ids); err != nil {
		return nil, err
	}
	out := make(map[string]model.Track)
	for _, id := range ids {
		if f.unknown[id] {
			continue
		}
		out[id] = model.Track{ID: id, DurationMs: 60000, CoverURL: "cover-" + id, ArtistIDs: []string{"artist-" + id}}
	}
	return out, nil
}

func (f *fakeAPI) Artists(ctx context.Context, ids []string) (map[string]model.Artist, error) {
	if err := f.begin(ids); err != nil {
		return nil, err
	}
	out := make(map[string]model.Artist)
	for _, id := range ids {
		if f.unknown[id] {
			continue
		}
		out[id] = model.Artist{ID: id, ImageURL: "image-" + id, Genres: []string{"genre-" + id, "other"}}
	}
	return out, nil
}

func (f *fakeAPI) calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.batches)
}

func noSleep(context.Context, time.Duration) error { return nil }

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.MaxWorkers = 1
	s.RequestDelay = 0
	return s
}

func newTestEnricher(settings *config.Settings, api API, opts ...Option) *Enricher {
	requester := ratelimit.New(settings.ToRequesterConfig(), ratelimit.WithSleep(noSleep))
	opts = append([]Option{WithSleep(noSleep)}, opts...)
	return NewEnricher(settings, api, requester, opts...)
}

func ids(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i)
	}
	return out
}

func TestTracks_DedupesAndBatchesInOrder(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEnricher(testSettings(), api)

	input := append(ids("t", 45), "t00", "t07", " ", "")
	result, err := e.Tracks(context.Background(), input)
	require.NoError(t, err)

	calls := api.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, ids("t", 45)[:20], calls[0])
	assert.Equal(t, ids("t", 45)[20:40], calls[1])
	assert.Equal(t, ids("t", 45)[40:], calls[2])

	assert.Equal(t, 45, result.Summary.Found)
	assert.Equal(t, 3, result.Summary.Batches)
	assert.Len(t, result.Outcomes, 45)
	assert.Equal(t, ids("t", 45), result.IDs)

	done, total := e.GetProgress()
	assert.Equal(t, int32(3), done)
	assert.Equal(t, int32(3), total)
}

func TestTracks_FailedBatchIsIsolated(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 2
	settings.MaxWorkers = 2
	api := &fakeAPI{rateLimited: map[string]bool{"a": true}}

	var events []ProgressEvent
	var mu sync.Mutex
	e := newTestEnricher(settings, api, WithProgress(func(ev ProgressEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))

	result, err := e.Tracks(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		o := result.Outcomes[id]
		assert.Equal(t, model.StatusFailed, o.Status, id)
		var exceeded *ratelimit.RateLimitExceededError
		assert.True(t, errors.As(o.Err, &exceeded), id)
	}
	for _, id := range []string{"c", "d"} {
		track, ok := result.Get(id)
		assert.True(t, ok, id)
		assert.Equal(t, id, track.ID)
	}
	assert.Equal(t, Summary{Found: 2, Failed: 2, Batches: 2, FailedBatches: 1}, result.Summary)

	// the failing batch was tried once plus max_retries times
	attempts := 0
	for _, c := range api.calls() {
		if c[0] == "a" {
			attempts++
		}
	}
	assert.Equal(t, settings.MaxRetries+1, attempts)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, slices.ContainsFunc(events, func(ev ProgressEvent) bool { return ev.Level == LevelError }))
}

func TestTracks_ClientTimeoutIsFailure(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 2
	api := &fakeAPI{timedOut: map[string]bool{"a": true}}
	e := newTestEnricher(settings, api)

	result, err := e.Tracks(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		o := result.Outcomes[id]
		assert.Equal(t, model.StatusFailed, o.Status, id)
		var transient *ratelimit.TransientNetworkError
		assert.True(t, errors.As(o.Err, &transient), id)
	}
	assert.Equal(t, model.StatusFound, result.Status("c"))
	assert.Equal(t, Summary{Found: 2, Failed: 2, Batches: 2, FailedBatches: 1}, result.Summary)
	assert.Len(t, result.Outcomes, 4, "every requested ID has an outcome")
}

func TestResult_StatusOfUnrequestedID(t *testing.T) {
	result := newResult[model.Track]([]string{"a"})
	result.record("a", model.Outcome[model.Track]{Status: model.StatusMissing})

	assert.Equal(t, model.StatusMissing, result.Status("a"))
	assert.Equal(t, "unknown", result.Status("zz").String())

	var nilResult *Result[model.Track]
	assert.Equal(t, "unknown", nilResult.Status("a").String())
}

func TestWorst(t *testing.T) {
	assert.Equal(t, model.StatusMissing, worst(nil))
	assert.Equal(t, model.StatusFailed, worst([]model.Status{model.StatusFound, model.StatusFailed, model.StatusMissing}))
	assert.Equal(t, "unknown", worst([]model.Status{model.StatusFailed, 0}).String())
}

func TestTracks_MissingAndMalformed(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 2
	api := &fakeAPI{
		unknown:   map[string]bool{"b": true},
		malformed: map[string]bool{"c": true},
	}
	log := &logger.TestLogger{}
	e := newTestEnricher(settings, api, WithLogger(log))

	result, err := e.Tracks(context.Background(), []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusFound, result.Status("a"))
	assert.Equal(t, model.StatusMissing, result.Status("b"))
	assert.Equal(t, model.StatusMissing, result.Status("c"))
	assert.Equal(t, model.StatusMissing, result.Status("d"))
	assert.Equal(t, Summary{Found: 1, Missing: 3, Batches: 2}, result.Summary)
	assert.True(t, log.Has("WARN", "malformed tracks response"))
	// malformed responses are permanent and not retried
	assert.Len(t, api.calls(), 2)
}

func TestTracks_SleepsBetweenBatches(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 1
	settings.BatchDelay = config.Duration(200 * time.Millisecond)

	var mu sync.Mutex
	var slept []time.Duration
	e := newTestEnricher(settings, &fakeAPI{unknown: map[string]bool{"b": true}}, WithSleep(func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		slept = append(slept, d)
		mu.Unlock()
		return nil
	}))

	_, err := e.Tracks(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond}, slept)
}

func TestTracks_RespectsWorkerLimit(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 1
	settings.MaxWorkers = 2
	api := &fakeAPI{delay: 20 * time.Millisecond}
	e := newTestEnricher(settings, api)

	_, err := e.Tracks(context.Background(), ids("t", 8))
	require.NoError(t, err)

	assert.LessOrEqual(t, api.maxInFlight.Load(), int32(2))
	assert.Len(t, api.calls(), 8)
}

func TestTracks_ContextCancelled(t *testing.T) {
	settings := testSettings()
	settings.TrackBatchSize = 1
	e := newTestEnricher(settings, &fakeAPI{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Tracks(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestTracks_Empty(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEnricher(testSettings(), api)

	result, err := e.Tracks(context.Background(), []string{"", "  "})
	require.NoError(t, err)
	assert.Empty(t, result.Outcomes)
	assert.Empty(t, api.calls())
}

func TestEnrich_DerivesArtistsFromTracks(t *testing.T) {
	api := &fakeAPI{unknown: map[string]bool{"t2": true}}
	e := newTestEnricher(testSettings(), api)

	en, err := e.Enrich(context.Background(), []string{"t1", "t2", "t3", "t1"}, FieldDuration|FieldGenres)
	require.NoError(t, err)

	require.NotNil(t, en.Tracks)
	require.NotNil(t, en.Artists)
	assert.Equal(t, []string{"artist-t1", "artist-t3"}, en.Artists.IDs)
	artist, ok := en.Artists.Get("artist-t3")
	require.True(t, ok)
	assert.Equal(t, "genre-artist-t3", artist.PrimaryGenre())
	assert.Equal(t, Summary{Found: 4, Missing: 1, Batches: 2}, en.Summary())
}

func TestEnrich_DurationOnlySkipsArtists(t *testing.T) {
	api := &fakeAPI{}
	e := newTestEnricher(testSettings(), api)

	en, err := e.Enrich(context.Background(), []string{"t1"}, FieldDuration)
	require.NoError(t, err)
	assert.Nil(t, en.Artists)
	assert.Len(t, api.calls(), 1)
}

func TestEnrichTable(t *testing.T) {
	csv := "Spotify ID,Artist,Track\n" +
		"t1,A,One\n" +
		"t2,B,Two\n" +
		"t1,A,One\n" +
		",C,Blank\n"
	tbl, err := table.Read(strings.NewReader(csv))
	require.NoError(t, err)

	api := &fakeAPI{unknown: map[string]bool{"t2": true}}
	e := newTestEnricher(testSettings(), api)

	en, err := e.EnrichTable(context.Background(), tbl, AllFields)
	require.NoError(t, err)
	assert.Equal(t, Summary{Found: 1, Missing: 1, Batches: 1}, en.Tracks.Summary)

	assert.Equal(t, "60000", tbl.Get(0, ColumnDurationMs))
	assert.Equal(t, "1.00", tbl.Get(0, ColumnDurationMin))
	assert.Equal(t, "cover-t1", tbl.Get(0, ColumnTrackCover))
	assert.Equal(t, "artist-t1", tbl.Get(0, ColumnArtistID))
	assert.Equal(t, "image-artist-t1", tbl.Get(0, ColumnArtistImage))
	assert.Equal(t, "genre-artist-t1", tbl.Get(0, ColumnGenre))
	assert.Equal(t, []string{"genre-artist-t1", "other"}, SplitGenres(tbl.Get(0, ColumnGenres)))
	assert.Equal(t, "found", tbl.Get(0, ColumnStatus))

	assert.Equal(t, "", tbl.Get(1, ColumnDurationMs))
	assert.Equal(t, "missing", tbl.Get(1, ColumnStatus))
	assert.Equal(t, tbl.Get(0, ColumnDurationMs), tbl.Get(2, ColumnDurationMs))
	assert.Equal(t, "missing", tbl.Get(3, ColumnStatus))
	assert.Equal(t, "A", tbl.Get(0, "Artist"), "original columns are preserved")
}

func TestEnrichTable_ArtistColumnAndFailure(t *testing.T) {
	csv := "Spotify ID,Artist ID\n" +
		"t1,x1\n" +
		"t2,bad\n"
	tbl, err := table.Read(strings.NewReader(csv))
	require.NoError(t, err)

	settings := testSettings()
	settings.ArtistIDColumn = "Artist ID"
	settings.ArtistBatchSize = 1
	api := &fakeAPI{rateLimited: map[string]bool{"bad": true}}
	e := newTestEnricher(settings, api)

	en, err := e.EnrichTable(context.Background(), tbl, FieldArtistImage)
	require.NoError(t, err)

	assert.Nil(t, en.Tracks, "artist column means no track lookups")
	assert.Equal(t, "image-x1", tbl.Get(0, ColumnArtistImage))
	assert.Equal(t, "found", tbl.Get(0, ColumnStatus))
	assert.Equal(t, "", tbl.Get(1, ColumnArtistImage))
	assert.Equal(t, "failed", tbl.Get(1, ColumnStatus))
	assert.False(t, tbl.HasColumn(ColumnDurationMs))
}

func TestEnrichTable_MissingColumn(t *testing.T) {
	tbl := table.New("id")
	e := newTestEnricher(testSettings(), &fakeAPI{})

	_, err := e.EnrichTable(context.Background(), tbl, AllFields)
	assert.True(t, errors.Is(err, table.ErrColumnNotFound))
}

// TestEndToEnd_CachedRepeat runs the real client against a fake API
// server: three tracks, one unknown, then the same request again within
// the cache expiry.
func TestEndToEnd_CachedRepeat(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var items []string
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			if id == "gone" {
				items = append(items, "null")
				continue
			}
			items = append(items, fmt.Sprintf(`{"id": %q, "duration_ms": 200000, "album": {"images": [{"url": "https://img/%s", "width": 640, "height": 640}]}, "artists": [{"id": "ar", "name": "Artist"}]}`, id, id))
		}
		fmt.Fprintf(w, `{"tracks": [%s]}`, strings.Join(items, ","))
	}))
	defer srv.Close()

	settings := testSettings()
	settings.CacheDir = t.TempDir()
	settings.APIBaseURL = srv.URL

	runOnce := func() *Result[model.Track] {
		c, err := cache.Open(context.Background(), settings.ToCacheConfig())
		require.NoError(t, err)
		defer c.Close()

		client := spotify.NewClient(settings.APIBaseURL, spotify.StaticToken("token"))
		e := newTestEnricher(settings, client, WithCache(c))
		result, err := e.Tracks(context.Background(), []string{"t1", "gone", "t3"})
		require.NoError(t, err)
		return result
	}

	first := runOnce()
	assert.Equal(t, Summary{Found: 2, Missing: 1, Batches: 1}, first.Summary)
	assert.Equal(t, model.StatusMissing, first.Status("gone"))
	track, ok := first.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "https://img/t3", track.CoverURL)
	assert.Equal(t, int32(1), requests.Load())

	second := runOnce()
	assert.Equal(t, first.Summary, second.Summary)
	for _, id := range first.IDs {
		assert.Equal(t, first.Outcomes[id].Status, second.Outcomes[id].Status, id)
		assert.Equal(t, first.Outcomes[id].Value.DurationMs, second.Outcomes[id].Value.DurationMs, id)
		assert.Equal(t, first.Outcomes[id].Value.CoverURL, second.Outcomes[id].Value.CoverURL, id)
	}
	assert.Equal(t, int32(1), requests.Load(), "repeat within expiry must not hit the network")
}
