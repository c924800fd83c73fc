package cache

import (
	"context"
	"time"
)

// NullCache is the backend used when caching is switched off. Every lookup
// misses and writes are dropped, so the runner renders on every request.
type NullCache struct{}

// NewNullCache returns the disabled backend.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
