package app

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/husaker/spotify-data-viz/internal/cache"
	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/enrich"
	apihttp "github.com/husaker/spotify-data-viz/internal/http"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/metrics"
	"github.com/husaker/spotify-data-viz/internal/ratelimit"
	"github.com/husaker/spotify-data-viz/internal/spotify"
)

// MetricsNamespace prefixes every exported metric.
const MetricsNamespace = "spotify_enrich"

// App holds the long-lived services of one process.
type App struct {
	Settings *config.Settings
	Logger   logger.Logger
	Metrics  *metrics.Recorder
	HTTP     *apihttp.Client
	Cache    *cache.Cache // nil when caching is disabled

	requester *ratelimit.Requester
	spotify   *spotify.Client
}

// New validates settings and builds the services. Close must be called
// when the App is no longer needed.
func New(ctx context.Context, settings *config.Settings, log logger.Logger) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	a := &App{
		Settings: settings,
		Logger:   log,
		Metrics:  metrics.New(MetricsNamespace),
		HTTP:     apihttp.NewClient(settings.UserAgent, settings.HTTPTimeout.Std()),
	}

	if settings.EnableCache {
		c, err := OpenCache(ctx, settings, log, a.Metrics)
		if err != nil {
			return nil, err
		}
		a.Cache = c
	}

	a.requester = ratelimit.New(settings.ToRequesterConfig(),
		ratelimit.WithLogger(log.WithPrefix("[requester]")),
		ratelimit.WithMetrics(a.Metrics),
	)
	a.spotify = spotify.NewClient(settings.APIBaseURL, spotify.StaticToken(settings.AccessToken),
		spotify.WithHTTPClient(a.HTTP),
		spotify.WithLogger(log.WithPrefix("[spotify]")),
		spotify.WithMetrics(a.Metrics),
	)

	return a, nil
}

// OpenCache opens the configured cache store even when caching is
// disabled for lookups, so maintenance commands can inspect it.
func OpenCache(ctx context.Context, settings *config.Settings, log logger.Logger, m *metrics.Recorder) (*cache.Cache, error) {
	cfg := settings.ToCacheConfig()
	c, err := cache.Open(ctx, cfg,
		cache.WithLogger(log.WithPrefix("[cache]")),
		cache.WithMetrics(m),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s cache", cfg.Backend)
	}
	return c, nil
}

// Enricher returns a new Enricher sharing the App's requester, so pacing
// holds across runs.
func (a *App) Enricher(opts ...enrich.Option) *enrich.Enricher {
	base := []enrich.Option{
		enrich.WithLogger(a.Logger),
		enrich.WithMetrics(a.Metrics),
	}
	if a.Cache != nil {
		base = append(base, enrich.WithCache(a.Cache))
	}
	return enrich.NewEnricher(a.Settings, a.spotify, a.requester, append(base, opts...)...)
}

// Close writes the metrics textfile, if configured, and closes the cache.
func (a *App) Close() error {
	var err error
	if a.Settings.MetricsFile != "" {
		if werr := a.Metrics.WriteTextfile(a.Settings.MetricsFile); werr != nil {
			err = errors.Wrap(werr, "writing metrics")
		}
	}
	if cerr := a.Cache.Close(); cerr != nil {
		err = errors.CombineErrors(err, errors.Wrap(cerr, "closing cache"))
	}
	return err
}
