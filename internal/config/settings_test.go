package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaker/spotify-data-viz/internal/cache"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, 3, s.MaxRetries)
	assert.Equal(t, time.Second, s.BaseDelay.Std())
	assert.Equal(t, 60*time.Second, s.DefaultRetryWait.Std())
	assert.Equal(t, 200*time.Millisecond, s.BatchDelay.Std())
	assert.Equal(t, 100*time.Millisecond, s.RequestDelay.Std())
	assert.Equal(t, 20, s.TrackBatchSize)
	assert.Equal(t, 20, s.ArtistBatchSize)
	assert.Equal(t, 2, s.MaxWorkers)
	assert.True(t, s.EnableCache)
	assert.Equal(t, 24*time.Hour, s.CacheExpiry())
	assert.NoError(t, s.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"max_retries": 5, "batch_delay": "500ms", "base_delay": 2, "cache_expiry_hours": 1.5}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, s.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, s.BatchDelay.Std())
	assert.Equal(t, 2*time.Second, s.BaseDelay.Std())
	assert.Equal(t, 90*time.Minute, s.CacheExpiry())
	// untouched keys keep their defaults
	assert.Equal(t, 20, s.TrackBatchSize)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
default_retry_wait: 1m
http_timeout: 1d
cache_backend: redis
redis_addr: localhost:6379
track_id_column: track_id
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, s.DefaultRetryWait.Std())
	assert.Equal(t, 24*time.Hour, s.HTTPTimeout.Std())
	assert.Equal(t, cache.BackendRedis, s.CacheBackend)
	assert.Equal(t, "track_id", s.TrackIDColumn)
	assert.NoError(t, s.Validate())
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"batch_delay": "soon"}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			s := DefaultSettings()
			s.MaxWorkers = 4
			s.BatchDelay = Duration(0)
			s.AccessToken = "secret"

			require.NoError(t, s.Save(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "secret")

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 4, loaded.MaxWorkers)
			assert.Equal(t, time.Duration(0), loaded.BatchDelay.Std())
			assert.Equal(t, s.DefaultRetryWait, loaded.DefaultRetryWait)
			assert.Empty(t, loaded.AccessToken)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"negative retries", func(s *Settings) { s.MaxRetries = -1 }},
		{"negative delay", func(s *Settings) { s.BatchDelay = Duration(-time.Second) }},
		{"zero track batch", func(s *Settings) { s.TrackBatchSize = 0 }},
		{"track batch over cap", func(s *Settings) { s.TrackBatchSize = 51 }},
		{"artist batch over cap", func(s *Settings) { s.ArtistBatchSize = 100 }},
		{"no workers", func(s *Settings) { s.MaxWorkers = 0 }},
		{"blank id column", func(s *Settings) { s.TrackIDColumn = " " }},
		{"zero expiry", func(s *Settings) { s.CacheExpiryHours = 0 }},
		{"unknown backend", func(s *Settings) { s.CacheBackend = "s3" }},
		{"redis without addr", func(s *Settings) { s.CacheBackend = cache.BackendRedis }},
		{"file without dir", func(s *Settings) { s.CacheDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(s)

			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettings))
		})
	}
}

func TestValidate_DisabledCacheSkipsCacheChecks(t *testing.T) {
	s := DefaultSettings()
	s.EnableCache = false
	s.CacheExpiryHours = 0
	s.CacheBackend = "bogus"

	assert.NoError(t, s.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAccessToken, "tok")
	t.Setenv(EnvCacheDir, "/tmp/spotify-cache")
	t.Setenv(EnvRedisAddr, "")

	s := DefaultSettings()
	s.ApplyEnv()

	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, "/tmp/spotify-cache", s.CacheDir)
	assert.Empty(t, s.RedisAddr)
}

func TestConversions(t *testing.T) {
	s := DefaultSettings()
	s.CacheExpiryHours = 2

	rc := s.ToRequesterConfig()
	assert.Equal(t, 3, rc.MaxRetries)
	assert.Equal(t, time.Second, rc.BaseDelay)
	assert.Equal(t, 60*time.Second, rc.DefaultRetryWait)
	assert.Equal(t, 100*time.Millisecond, rc.RequestDelay)

	cc := s.ToCacheConfig()
	assert.True(t, cc.Enabled)
	assert.Equal(t, 2*time.Hour, cc.Expiry)
	assert.Equal(t, cache.BackendFile, cc.Backend)
	assert.Equal(t, s.CacheDir, cc.Dir)
}
