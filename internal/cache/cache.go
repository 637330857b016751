// Package cache provides a Redis-backed cache of compile results, keyed by
// the SHA-256 hash of the source text — recompiling the same source twice
// never re-runs lex/parse/analyze/generate.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
)

const keyPrefix = "lumen:compile:"

// Cache wraps a Redis client with the compile-result get/put operations.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Cache against a Redis server at addr. ttl is how long a
// cached entry survives; zero means no expiration.
func New(addr string, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// NewWithClient wraps an already-constructed client, so callers (and tests)
// can point the cache at a miniredis instance or a cluster client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// HashSource returns the cache key for a given source text.
func HashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	Ok          bool                  `json:"ok"`
	Output      string                `json:"output,omitempty"`
	Diagnostics []pipeline.Diagnostic `json:"diagnostics,omitempty"`
}

// Get looks up the compile result for source, returning ok=false on a miss.
func (c *Cache) Get(ctx context.Context, source string) (pipeline.Result, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+HashSource(source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pipeline.Result{}, false, nil
	}
	if err != nil {
		return pipeline.Result{}, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return pipeline.Result{}, false, err
	}
	return pipeline.Result{Ok: e.Ok, Output: e.Output, Diagnostics: e.Diagnostics}, true, nil
}

// Put stores result under source's hash.
func (c *Cache) Put(ctx context.Context, source string, result pipeline.Result) error {
	raw, err := json.Marshal(entry{Ok: result.Ok, Output: result.Output, Diagnostics: result.Diagnostics})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+HashSource(source), raw, c.ttl).Err()
}

// CompileCached returns the cached result for source if present, otherwise
// runs the pipeline and stores the result before returning it.
func (c *Cache) CompileCached(ctx context.Context, source string) (pipeline.Result, error) {
	if result, ok, err := c.Get(ctx, source); err != nil {
		return pipeline.Result{}, err
	} else if ok {
		return result, nil
	}

	result := pipeline.Compile(source)
	if err := c.Put(ctx, source, result); err != nil {
		return result, err
	}
	return result, nil
}

// Close releases the underlying Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
