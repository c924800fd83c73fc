package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matzehuels/splice/pkg/errors"
)

// FileCache keeps one file per entry under a directory. A file holds the
// expiry as Unix nanoseconds (0 for none) on its first line, followed by the
// artifact bytes.
type FileCache struct {
	dir string
}

// NewFileCache opens a cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create cache dir %s", dir)
	}
	return &FileCache{dir: dir}, nil
}

// Get returns the artifact stored under key. Expired or unreadable entries
// are removed and count as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, false, nil
	case err != nil:
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "read cache entry")
	}

	data, expires, ok := decodeEntry(raw)
	if !ok || (!expires.IsZero() && time.Now().After(expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores data under key. The entry is written to a temporary file and
// renamed into place so concurrent readers never see a partial artifact.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create cache shard")
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write cache entry")
	}
	_, werr := tmp.Write(encodeEntry(data, expires))
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, werr, "write cache entry")
	}
	return nil
}

// Delete removes key. A missing entry is not an error.
func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete cache entry")
	}
	return nil
}

func (c *FileCache) Close() error { return nil }

// path shards entries by the first two hex digits of the key digest.
func (c *FileCache) path(key string) string {
	sum := Hash([]byte(key))
	return filepath.Join(c.dir, sum[:2], sum[2:])
}

func encodeEntry(data []byte, expires time.Time) []byte {
	var stamp int64
	if !expires.IsZero() {
		stamp = expires.UnixNano()
	}
	out := strconv.AppendInt(nil, stamp, 10)
	out = append(out, '\n')
	return append(out, data...)
}

func decodeEntry(raw []byte) ([]byte, time.Time, bool) {
	head, data, found := bytes.Cut(raw, []byte{'\n'})
	if !found {
		return nil, time.Time{}, false
	}
	stamp, err := strconv.ParseInt(string(head), 10, 64)
	if err != nil {
		return nil, time.Time{}, false
	}
	var expires time.Time
	if stamp != 0 {
		expires = time.Unix(0, stamp)
	}
	return data, expires, true
}

var _ Cache = (*FileCache)(nil)
