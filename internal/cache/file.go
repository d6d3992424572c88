package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	ioutils "github.com/husaker/spotify-data-viz/internal/ioutils"
)

const fileExt = ".cache"

// FileStore keeps one msgpack file per key in a directory.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed and checks that it is writable.
func NewFileStore(dir string) (*FileStore, error) {
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	if err := ioutils.CheckWritable(dir); err != nil {
		return nil, err
	}

	return &FileStore{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, ioutils.SanitizeFileName(key)+fileExt)
}

func (s *FileStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	entry, err := decodeEntry(data)
	if err != nil {
		return Entry{}, false, errors.Wrap(err, "decoding cache file")
	}
	// a sanitized name can collide with another key
	if entry.Key != key {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Put writes the entry to a temporary file and renames it into place so
// readers never see a partial file.
func (s *FileStore) Put(ctx context.Context, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(s.path(entry.Key), data)
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns every entry in the directory. Files that cannot be decoded
// are returned with a zero CreatedAt so they count as expired.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		entry, err := decodeEntry(data)
		if err != nil {
			entry = Entry{Key: strings.TrimSuffix(name, fileExt), Payload: data}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FileStore) Clear(ctx context.Context) (int, error) {
	files, err := s.files()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range files {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) files() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileExt) {
			continue
		}
		names = append(names, de.Name())
	}
	return names, nil
}
