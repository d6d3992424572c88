package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry is a stored payload and the time it was written.
type Entry struct {
	Key       string    `msgpack:"key"`
	Payload   []byte    `msgpack:"payload"`
	CreatedAt time.Time `msgpack:"created_at"`
}

// Age returns how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Store is the persistence backend of a Cache. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the entry for key, or false if there is none.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Put writes or replaces an entry.
	Put(ctx context.Context, entry Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns every stored entry.
	List(ctx context.Context) ([]Entry, error)
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	Close() error
}

func encodeEntry(e Entry) ([]byte, error) {
	return msgpack.Marshal(&e)
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	err := msgpack.Unmarshal(data, &e)
	return e, err
}
