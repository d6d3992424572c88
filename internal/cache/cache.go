package cache

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/husaker/spotify-data-viz/internal/logger"
	"github.com/husaker/spotify-data-viz/internal/metrics"
)

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Enabled     bool
	Expiry      time.Duration
	Backend     string
	Dir         string
	RedisAddr   string
	RedisPrefix string
}

// Cache is an expiring cache over a Store. It is safe for concurrent use.
type Cache struct {
	store   Store
	expiry  time.Duration
	enabled bool
	now     func() time.Time
	logger  logger.Logger
	metrics *metrics.Recorder
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a Cache over store. A disabled cache never reads or writes
// the store from GetOrFetch, but maintenance operations still work.
func New(store Store, expiry time.Duration, enabled bool, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		expiry:  expiry,
		enabled: enabled,
		now:     time.Now,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open builds the store named by cfg.Backend and wraps it in a Cache.
// Backend failures here are configuration errors.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Cache, error) {
	var store Store
	switch strings.ToLower(cfg.Backend) {
	case BackendFile, "":
		fs, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		store = fs
	case BackendMemory:
		store = NewMemoryStore()
	case BackendRedis:
		rs, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix, cfg.Expiry)
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		return nil, errors.Newf("unknown cache backend %q", cfg.Backend)
	}
	return New(store, cfg.Expiry, cfg.Enabled, opts...), nil
}

// Enabled reports whether lookups use the store.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// Expiry returns the validity window of entries.
func (c *Cache) Expiry() time.Duration {
	return c.expiry
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// Close closes the store.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.store.Close()
}

func (c *Cache) fresh(e Entry) bool {
	return e.Age(c.now()) < c.expiry
}

// GetOrFetch returns the cached value for key if a fresh entry exists,
// otherwise it calls fetch and stores the result. Fetch errors are returned
// and never cached. Concurrent calls for the same key share one fetch; a
// caller whose context is cancelled returns at once, and the others retry
// on their own context when the shared fetch was abandoned that way.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if !c.Enabled() {
		if c != nil {
			c.metrics.CacheLookup(metrics.CacheDisabled)
		}
		return fetch(ctx)
	}

	for {
		ch := c.group.DoChan(key, func() (interface{}, error) {
			v, err := getOrFetch(ctx, c, key, fetch)
			if err != nil && ctx.Err() != nil {
				return nil, &abandonedError{err: err}
			}
			return v, err
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case res = <-ch:
		}

		var abandoned *abandonedError
		switch {
		case errors.As(res.Err, &abandoned):
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			// another caller's context ended its fetch; try again on ours
			continue
		case res.Err != nil:
			return zero, res.Err
		}
		if typed, ok := res.Val.(T); ok {
			return typed, nil
		}
		// same key used with another type
		return getOrFetch(ctx, c, key, fetch)
	}
}

// abandonedError marks a shared fetch that stopped because the context of
// the caller running it was done.
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

func getOrFetch[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	entry, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.warn(&CacheIOError{Op: "read", Key: key, Err: err})
		c.metrics.CacheLookup(metrics.CacheError)
	case ok && c.fresh(entry):
		var cached T
		if err := msgpack.Unmarshal(entry.Payload, &cached); err != nil {
			c.warn(&CacheIOError{Op: "decode", Key: key, Err: err})
			c.metrics.CacheLookup(metrics.CacheError)
			break
		}
		c.metrics.CacheLookup(metrics.CacheHit)
		c.logger.Trace("cache hit %s", key)
		return cached, nil
	default:
		c.metrics.CacheLookup(metrics.CacheMiss)
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	payload, err := msgpack.Marshal(value)
	if err != nil {
		c.warn(&CacheIOError{Op: "encode", Key: key, Err: err})
		return value, nil
	}
	if err := c.store.Put(ctx, Entry{Key: key, Payload: payload, CreatedAt: c.now()}); err != nil {
		c.warn(&CacheIOError{Op: "write", Key: key, Err: err})
	}
	return value, nil
}

func (c *Cache) warn(err *CacheIOError) {
	c.logger.Warn("%v; continuing without cache", err)
}

// EntryInfo describes a stored entry.
type EntryInfo struct {
	Key     string
	Age     time.Duration
	Size    int
	Expired bool
}

// ListEntries describes every stored entry, sorted by key.
func (c *Cache) ListEntries(ctx context.Context) ([]EntryInfo, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return nil, &CacheIOError{Op: "list", Err: err}
	}

	now := c.now()
	infos := make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, EntryInfo{
			Key:     e.Key,
			Age:     e.Age(now),
			Size:    len(e.Payload),
			Expired: e.Age(now) >= c.expiry,
		})
	}
	slices.SortFunc(infos, func(a, b EntryInfo) int {
		return strings.Compare(a.Key, b.Key)
	})
	return infos, nil
}

// ClearAll removes every entry and returns how many were removed.
func (c *Cache) ClearAll(ctx context.Context) (int, error) {
	n, err := c.store.Clear(ctx)
	if err != nil {
		return n, &CacheIOError{Op: "clear", Err: err}
	}
	c.logger.Info("cleared %d cache entries", n)
	return n, nil
}

// DeleteExpired removes entries whose age is at least the expiry and
// leaves the others untouched.
func (c *Cache) DeleteExpired(ctx context.Context) (int, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return 0, &CacheIOError{Op: "list", Err: err}
	}

	now := c.now()
	removed := 0
	for _, e := range entries {
		if e.Age(now) < c.expiry {
			continue
		}
		if err := c.store.Delete(ctx, e.Key); err != nil {
			return removed, &CacheIOError{Op: "delete", Key: e.Key, Err: err}
		}
		removed++
	}
	c.logger.Info("removed %d expired cache entries", removed)
	return removed, nil
}
