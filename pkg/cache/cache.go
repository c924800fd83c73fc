// Package cache stores rendered artifacts keyed by document content.
//
// Rendering a document to SVG runs Graphviz, which dominates the cost of a
// render request. The [pipeline] runner hashes the marshaled document and the
// render options into a key (see [Keyer]) and looks the artifact up before
// rendering again.
//
// Backends:
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: one key per entry, for `splice serve`
//   - [NullCache]: stores nothing, caching disabled
//
// [pipeline]: github.com/matzehuels/splice/pkg/pipeline
package cache

import (
	"context"
	"time"
)

// TTLArtifact is how long rendered artifacts are kept.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte cache with per-entry expiration.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}
