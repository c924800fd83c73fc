package store

import (
	"context"
	"sort"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// DefaultRedisPrefix prefixes every key a RedisStore writes.
const DefaultRedisPrefix = "splice:"

// RedisStore stores documents in Redis. Each document is a string key under
// <prefix>doc:<name>; a set under <prefix>index lists the stored names.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// WithTTL expires documents after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient creates a store over an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(name string) string { return s.prefix + "doc:" + name }
func (s *RedisStore) indexKey() string       { return s.prefix + "index" }

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "ping redis")
	}
	return nil
}

// Get loads the document stored under name.
func (s *RedisStore) Get(ctx context.Context, name string) (*graphdoc.Document, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err == backend.Nil {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get %s from redis", name)
	}
	return graphdoc.Unmarshal(val)
}

// Put stores the document and adds name to the index in one pipeline.
func (s *RedisStore) Put(ctx context.Context, name string, doc *graphdoc.Document) error {
	data, err := encode(name, doc)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s to redis", name)
	}
	return nil
}

// Delete removes the document and its index entry.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.SRem(ctx, s.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete %s from redis", name)
	}
	return nil
}

// List returns the indexed names whose keys still exist. Names of expired
// documents are pruned from the index.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list documents")
	}
	live := make([]string, 0, len(names))
	for _, name := range names {
		n, err := s.client.Exists(ctx, s.key(name)).Result()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "list documents")
		}
		if n == 0 {
			s.client.SRem(ctx, s.indexKey(), name)
			continue
		}
		live = append(live, name)
	}
	sort.Strings(live)
	return live, nil
}

// Close closes the redis client.
func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
