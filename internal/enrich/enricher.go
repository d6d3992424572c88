package enrich

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/husaker/spotify-data-viz/internal/cache"
	"github.com/husaker/spotify-data-viz/internal/config"
	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/metrics"
	"github.com/husaker/spotify-data-viz/internal/model"
	"github.com/husaker/spotify-data-viz/internal/ratelimit"
	"github.com/husaker/spotify-data-viz/internal/spotify"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents an enrichment progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// API is the provider the Enricher fetches from. *spotify.Client
// implements it.
type API interface {
	Tracks(ctx context.Context, ids []string) (map[string]model.Track, error)
	Artists(ctx context.Context, ids []string) (map[string]model.Artist, error)
}

// Enricher coordinates batched lookups.
type Enricher struct {
	settings  *config.Settings
	api       API
	requester *ratelimit.Requester
	cache     *cache.Cache
	logger    logger.Logger
	metrics   *metrics.Recorder
	sleep     ratelimit.SleepFunc

	totalBatches int32
	doneBatches  int32

	onProgress func(ProgressEvent)
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithCache enables caching of batch responses.
func WithCache(c *cache.Cache) Option {
	return func(e *Enricher) { e.cache = c }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Enricher) { e.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Enricher) { e.metrics = m }
}

func WithProgress(fn func(ProgressEvent)) Option {
	return func(e *Enricher) { e.onProgress = fn }
}

// WithSleep replaces the function used for the delay between batches.
func WithSleep(fn ratelimit.SleepFunc) Option {
	return func(e *Enricher) { e.sleep = fn }
}

// NewEnricher creates an Enricher. Without WithCache every batch is
// fetched.
func NewEnricher(settings *config.Settings, api API, requester *ratelimit.Requester, opts ...Option) *Enricher {
	e := &Enricher{
		settings:  settings,
		api:       api,
		requester: requester,
		logger:    logger.Nop(),
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetProgress returns completed and scheduled batch counts.
func (e *Enricher) GetProgress() (done, total int32) {
	return atomic.LoadInt32(&e.doneBatches), atomic.LoadInt32(&e.totalBatches)
}

// Tracks looks up track attributes for ids.
func (e *Enricher) Tracks(ctx context.Context, ids []string) (*Result[model.Track], error) {
	return run(ctx, e, spotify.EndpointTracks, ids, e.settings.TrackBatchSize, e.api.Tracks)
}

// Artists looks up artist attributes for ids.
func (e *Enricher) Artists(ctx context.Context, ids []string) (*Result[model.Artist], error) {
	return run(ctx, e, spotify.EndpointArtists, ids, e.settings.ArtistBatchSize, e.api.Artists)
}

// run fetches every batch and merges the outcomes. It only fails when ctx
// is done.
func run[T any](ctx context.Context, e *Enricher, kind string, ids []string, batchSize int,
	fetch func(context.Context, []string) (map[string]T, error)) (*Result[T], error) {

	unique := model.Dedupe(ids)
	batches := model.Chunk(unique, batchSize)
	result := newResult[T](unique)
	result.Summary.Batches = len(batches)
	if len(batches) == 0 {
		return result, nil
	}

	log := e.logger.With(map[string]interface{}{"run": uuid.NewString(), "kind": kind})
	log.Debug("looking up %d %s in %d batches", len(unique), kind, len(batches))
	e.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %d %s in %d batches", len(unique), kind, len(batches)), Level: LevelInfo})
	atomic.AddInt32(&e.totalBatches, int32(len(batches)))

	var g errgroup.Group
	g.SetLimit(max(e.settings.MaxWorkers, 1))
	var mu sync.Mutex

	for i, batch := range batches {
		if i > 0 {
			if err := e.sleep(ctx, e.settings.BatchDelay.Std()); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			start := time.Now()
			found, err := fetchBatch(ctx, e, kind, batch, fetch)
			e.metrics.BatchDuration(kind, time.Since(start))

			mu.Lock()
			defer mu.Unlock()
			merge(ctx, e, log, kind, result, batch, found, err)
			atomic.AddInt32(&e.doneBatches, 1)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.metrics.Outcomes(kind, model.StatusFound.String(), result.Summary.Found)
	e.metrics.Outcomes(kind, model.StatusMissing.String(), result.Summary.Missing)
	e.metrics.Outcomes(kind, model.StatusFailed.String(), result.Summary.Failed)

	level := LevelSuccess
	if result.Summary.FailedBatches > 0 {
		level = LevelWarning
	}
	e.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s: %s", kind, result.Summary), Level: level})
	return result, nil
}

// fetchBatch serves one batch from the cache or through the requester.
func fetchBatch[T any](ctx context.Context, e *Enricher, kind string, batch []string,
	fetch func(context.Context, []string) (map[string]T, error)) (map[string]T, error) {

	return cache.GetOrFetch(ctx, e.cache, cache.Key(kind, batch), func(ctx context.Context) (map[string]T, error) {
		return ratelimit.Execute(ctx, e.requester, func(ctx context.Context) (map[string]T, error) {
			return fetch(ctx, batch)
		})
	})
}

// merge records an outcome for every ID of a batch unless the run itself
// was cancelled. Callers hold the result lock.
func merge[T any](ctx context.Context, e *Enricher, log logger.Logger, kind string, result *Result[T], batch []string, found map[string]T, err error) {
	switch {
	case ctx.Err() != nil:
		// the run is abandoned; nothing to record

	case err == nil:
		hits := 0
		for _, id := range batch {
			if v, ok := found[id]; ok {
				result.record(id, model.Outcome[T]{Status: model.StatusFound, Value: v})
				hits++
			} else {
				result.record(id, model.Outcome[T]{Status: model.StatusMissing})
			}
		}
		e.progress(ProgressEvent{Message: fmt.Sprintf("Batch of %d %s: %d found", len(batch), kind, hits), Level: LevelVerbose})

	case errors.Is(err, spotify.ErrMalformedResponse):
		log.Warn("malformed %s response for %d ids: %v", kind, len(batch), err)
		e.progress(ProgressEvent{Message: fmt.Sprintf("Malformed response for %d %s, marked missing", len(batch), kind), Level: LevelWarning})
		for _, id := range batch {
			result.record(id, model.Outcome[T]{Status: model.StatusMissing})
		}

	default:
		result.Summary.FailedBatches++
		log.Error("%s batch of %d ids failed: %v", kind, len(batch), err)
		e.progress(ProgressEvent{Message: fmt.Sprintf("A batch of %d %s failed: %v", len(batch), kind, err), Level: LevelError})
		for _, id := range batch {
			result.record(id, model.Outcome[T]{Status: model.StatusFailed, Err: err})
		}
	}
}

func (e *Enricher) progress(event ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(event)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
