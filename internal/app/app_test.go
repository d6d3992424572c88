package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/report"
)

func testSettings(t *testing.T, apiURL string) *config.Settings {
	s := config.DefaultSettings()
	s.APIBaseURL = apiURL
	s.AccessToken = "token"
	s.CacheBackend = "memory"
	s.RequestDelay = 0
	s.BatchDelay = 0
	s.MetricsFile = filepath.Join(t.TempDir(), "enrich.prom")
	return s
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.MaxWorkers = 0

	_, err := New(context.Background(), s, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidSettings))
}

func TestNew_NoCache(t *testing.T) {
	s := testSettings(t, "http://unused")
	s.EnableCache = false

	a, err := New(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Nil(t, a.Cache)
	assert.NoError(t, a.Close())
}

func TestApp_EnrichAndWriteMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		var items []string
		for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
			items = append(items, fmt.Sprintf(`{"id": %q, "name": "Song", "duration_ms": 60000, "artists": [{"id": "ar", "name": "Artist"}]}`, id))
		}
		fmt.Fprintf(w, `{"tracks": [%s]}`, strings.Join(items, ","))
	}))
	defer srv.Close()

	s := testSettings(t, srv.URL)
	log := &logger.TestLogger{}
	a, err := New(context.Background(), s, log)
	require.NoError(t, err)
	require.NotNil(t, a.Cache)

	result, err := a.Enricher().Tracks(context.Background(), []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Found)
	assert.Equal(t, model.StatusFound, result.Status("t2"))

	require.NoError(t, a.Close())

	data, err := os.ReadFile(s.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), MetricsNamespace+"_api_requests_total")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveArtwork(t *testing.T) {
	img := pngBytes(t, 40, 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write(img)
	}))
	defer srv.Close()

	s := testSettings(t, srv.URL)
	s.EnableCache = false
	log := &logger.TestLogger{}
	a, err := New(context.Background(), s, log)
	require.NoError(t, err)
	defer a.Close()

	items := []Artwork{
		{Name: "artist-01-AC/DC", URL: srv.URL + "/a.png"},
		{Name: "track-01-gone", URL: srv.URL + "/missing"},
	}

	t.Run("resized", func(t *testing.T) {
		dir := t.TempDir()
		n, err := a.SaveArtwork(context.Background(), items, dir, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		data, err := os.ReadFile(filepath.Join(dir, "artist-01-AC_DC.jpg"))
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Width)
		assert.Equal(t, 5, cfg.Height)
		assert.True(t, log.Has("WARN", "/missing"))
	})

	t.Run("original", func(t *testing.T) {
		dir := t.TempDir()
		n, err := a.SaveArtwork(context.Background(), items[:1], dir, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		data, err := os.ReadFile(filepath.Join(dir, "artist-01-AC_DC.png"))
		require.NoError(t, err)
		assert.Equal(t, img, data)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "only the renamed image remains")
	})

	t.Run("original not an image", func(t *testing.T) {
		text := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>oops</html>"))
		}))
		defer text.Close()

		dir := t.TempDir()
		n, err := a.SaveArtwork(context.Background(), []Artwork{{Name: "artist-02-X", URL: text.URL}}, dir, 0)
		require.NoError(t, err)
		assert.Zero(t, n)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestArtworkFromReport(t *testing.T) {
	r := &report.Report{
		TopArtists: []report.ArtistStat{{Name: "A", ImageURL: "https://img/a"}, {Name: "B"}},
		TopTracks:  []report.TrackStat{{Name: "Song", Artist: "A", CoverURL: "https://img/s"}},
	}

	assert.Equal(t, []Artwork{
		{Name: "artist-01-A", URL: "https://img/a"},
		{Name: "track-01-A - Song", URL: "https://img/s"},
	}, ArtworkFromReport(r))
}
