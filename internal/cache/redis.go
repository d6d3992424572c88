package cache

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const redisQueryTimeout = 5 * time.Second

// RedisStore keeps entries as msgpack strings under a key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. The caller owns the client.
// A positive ttl lets Redis drop entries the cache would consider stale
// anyway.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to addr and verifies the server answers.
func DialRedis(ctx context.Context, addr, prefix string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	qctx, cancel := context.WithTimeout(ctx, redisQueryTimeout)
	defer cancel()
	if err := client.Ping(qctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %s", addr)
	}

	s := NewRedisStore(client, prefix, ttl)
	s.owned = true
	return s, nil
}

func (s *RedisStore) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, redisQueryTimeout)
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	data, err := s.client.Get(qctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "decoding redis entry")
	}
	return entry, true, nil
}

func (s *RedisStore) Put(ctx context.Context, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Set(qctx, s.prefix+entry.Key, data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	return s.client.Del(qctx, s.prefix+key).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entry, ok, err := s.Get(ctx, k[len(s.prefix):])
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.keys(ctx)
	if err != nil || len(keys) == 0 {
		return 0, err
	}
	qctx, cancel := s.queryCtx(ctx)
	defer cancel()
	n, err := s.client.Del(qctx, keys...).Result()
	return int(n), err
}

// Close closes the client if the store created it.
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
