// Package cache provides an expiring key-value cache for provider
// responses.
//
// Entries are valid while their age is below the configured expiry. Stale
// entries are treated as absent: GetOrFetch refetches and overwrites them,
// and DeleteExpired removes them. Payloads are msgpack encoded, so any
// value msgpack can round-trip may be cached.
//
//	c, err := cache.Open(ctx, cache.Config{
//	    Enabled: true,
//	    Expiry:  24 * time.Hour,
//	    Backend: cache.BackendFile,
//	    Dir:     "data/cache",
//	})
//	tracks, err := cache.GetOrFetch(ctx, c, cache.Key("tracks", ids), fetchTracks)
//
// Storage is pluggable through Store. FileStore keeps one file per key,
// MemoryStore lives in process and RedisStore shares entries through
// Redis. A failing store never fails a lookup: read problems fall back to
// fetching and write problems are logged.
package cache
