package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/husaker/spotify-data-viz/internal/cache"
	ioutils "github.com/husaker/spotify-data-viz/internal/ioutils"
	"github.com/husaker/spotify-data-viz/internal/ratelimit"
)

// MaxBatchSize is the most IDs the batch endpoints accept per call.
const MaxBatchSize = 50

// ErrInvalidSettings is returned by Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// Environment variables read by ApplyEnv.
const (
	EnvAccessToken = "SPOTIFY_ACCESS_TOKEN"
	EnvCacheDir    = "SPOTIFY_ENRICH_CACHE_DIR"
	EnvRedisAddr   = "SPOTIFY_ENRICH_REDIS_ADDR"
)

// Settings holds all configuration options.
type Settings struct {
	// Retry settings
	MaxRetries       int      `json:"max_retries" yaml:"max_retries"`
	BaseDelay        Duration `json:"base_delay" yaml:"base_delay"`
	DefaultRetryWait Duration `json:"default_retry_wait" yaml:"default_retry_wait"`
	RequestDelay     Duration `json:"request_delay" yaml:"request_delay"`

	// Batch settings
	BatchDelay      Duration `json:"batch_delay" yaml:"batch_delay"`
	TrackBatchSize  int      `json:"track_batch_size" yaml:"track_batch_size"`
	ArtistBatchSize int      `json:"artist_batch_size" yaml:"artist_batch_size"`
	MaxWorkers      int      `json:"max_workers" yaml:"max_workers"`

	// Cache settings
	EnableCache      bool    `json:"enable_cache" yaml:"enable_cache"`
	CacheDir         string  `json:"cache_dir" yaml:"cache_dir"`
	CacheExpiryHours float64 `json:"cache_expiry_hours" yaml:"cache_expiry_hours"`
	CacheBackend     string  `json:"cache_backend" yaml:"cache_backend"` // file, memory, redis
	RedisAddr        string  `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix      string  `json:"redis_prefix" yaml:"redis_prefix"`

	// Table settings
	TrackIDColumn  string `json:"track_id_column" yaml:"track_id_column"`
	ArtistIDColumn string `json:"artist_id_column" yaml:"artist_id_column"`

	// API settings
	APIBaseURL  string   `json:"api_base_url" yaml:"api_base_url"`
	UserAgent   string   `json:"user_agent" yaml:"user_agent"`
	HTTPTimeout Duration `json:"http_timeout" yaml:"http_timeout"`

	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`

	// AccessToken is only ever taken from the environment or flags.
	AccessToken string `json:"-" yaml:"-"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		MaxRetries:       3,
		BaseDelay:        Duration(time.Second),
		DefaultRetryWait: Duration(60 * time.Second),
		RequestDelay:     Duration(100 * time.Millisecond),

		BatchDelay:      Duration(200 * time.Millisecond),
		TrackBatchSize:  20,
		ArtistBatchSize: 20,
		MaxWorkers:      2,

		EnableCache:      true,
		CacheDir:         filepath.Join("data", "cache"),
		CacheExpiryHours: 24,
		CacheBackend:     cache.BackendFile,
		RedisPrefix:      "spotify-enrich:",

		TrackIDColumn: "Spotify ID",

		APIBaseURL:  "https://api.spotify.com/v1",
		UserAgent:   "spotify-enrich/1.0",
		HTTPTimeout: Duration(30 * time.Second),
	}
}

// Load reads settings from a JSON or YAML file, chosen by extension.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, errors.Wrapf(err, "reading settings %s", path)
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing settings %s", path)
	}

	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return ioutils.WriteFile(path, data)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// ApplyEnv overrides settings from the environment.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvAccessToken); v != "" {
		s.AccessToken = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		s.CacheDir = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		s.RedisAddr = v
	}
}

// Validate checks the settings and returns an error wrapping
// ErrInvalidSettings for the first problem found.
func (s *Settings) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidSettings, format, args...)
	}

	switch {
	case s.MaxRetries < 0:
		return invalid("max_retries must not be negative, got %d", s.MaxRetries)
	case s.BaseDelay < 0, s.DefaultRetryWait < 0, s.RequestDelay < 0, s.BatchDelay < 0:
		return invalid("delays must not be negative")
	case s.TrackBatchSize < 1 || s.TrackBatchSize > MaxBatchSize:
		return invalid("track_batch_size must be between 1 and %d, got %d", MaxBatchSize, s.TrackBatchSize)
	case s.ArtistBatchSize < 1 || s.ArtistBatchSize > MaxBatchSize:
		return invalid("artist_batch_size must be between 1 and %d, got %d", MaxBatchSize, s.ArtistBatchSize)
	case s.MaxWorkers < 1:
		return invalid("max_workers must be at least 1, got %d", s.MaxWorkers)
	case strings.TrimSpace(s.TrackIDColumn) == "":
		return invalid("track_id_column must be set")
	case s.APIBaseURL == "":
		return invalid("api_base_url must be set")
	}

	if !s.EnableCache {
		return nil
	}
	if s.CacheExpiryHours <= 0 {
		return invalid("cache_expiry_hours must be positive, got %v", s.CacheExpiryHours)
	}
	switch s.CacheBackend {
	case cache.BackendFile:
		if s.CacheDir == "" {
			return invalid("cache_dir must be set for the file cache")
		}
	case cache.BackendMemory:
	case cache.BackendRedis:
		if s.RedisAddr == "" {
			return invalid("redis_addr must be set for the redis cache")
		}
	default:
		return invalid("unknown cache_backend %q", s.CacheBackend)
	}
	return nil
}

// CacheExpiry returns the cache validity window.
func (s *Settings) CacheExpiry() time.Duration {
	return time.Duration(s.CacheExpiryHours * float64(time.Hour))
}

// ToRequesterConfig converts settings to a ratelimit.Config.
func (s *Settings) ToRequesterConfig() ratelimit.Config {
	return ratelimit.Config{
		MaxRetries:       s.MaxRetries,
		BaseDelay:        s.BaseDelay.Std(),
		DefaultRetryWait: s.DefaultRetryWait.Std(),
		RequestDelay:     s.RequestDelay.Std(),
	}
}

// ToCacheConfig converts settings to a cache.Config.
func (s *Settings) ToCacheConfig() cache.Config {
	return cache.Config{
		Enabled:     s.EnableCache,
		Expiry:      s.CacheExpiry(),
		Backend:     s.CacheBackend,
		Dir:         s.CacheDir,
		RedisAddr:   s.RedisAddr,
		RedisPrefix: s.RedisPrefix,
	}
}
