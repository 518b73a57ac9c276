package scribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory). MemoryCache is the bundled
// in-memory implementation.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// cacheNamespace is the UUID namespace under which cache keys are derived.
var cacheNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("scribe.Cache"))

// CacheKey identifies one executed statement: the dialect it was
// compiled for, the statement text and the positional arguments in
// order.
type CacheKey struct {
	Dialect   string
	Statement string
	Args      []any
}

// String derives a stable key for the statement: a SHA1-based UUID over
// the rendered fields. Backends never see raw SQL in their key space.
func (k CacheKey) String() string {
	var sb strings.Builder
	sb.WriteString(k.Dialect)
	sb.WriteByte(0)
	sb.WriteString(k.Statement)
	for _, arg := range k.Args {
		sb.WriteByte(0)
		fmt.Fprintf(&sb, "%v", arg)
	}
	return uuid.NewSHA1(cacheNamespace, []byte(sb.String())).String()
}

// memoryEntry is one cached value with its expiry. A zero expiry means
// the value does not expire.
type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an LRU-backed in-memory Cache with per-entry TTL. It
// is safe for concurrent use. Expired entries are dropped lazily on
// read.
type MemoryCache struct {
	lru *lru.Cache[string, memoryEntry]
}

// NewMemoryCache returns a MemoryCache holding up to size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	c, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("scribe: memory cache: %w", err)
	}
	return &MemoryCache{lru: c}, nil
}

// Get retrieves a value from the cache. Missing and expired keys return
// nil, nil.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.lru.Remove(key)
		return nil, nil
	}
	return e.value, nil
}

// Set stores a value under the key. A positive ttl bounds its lifetime;
// zero keeps it until evicted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes the key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// DeletePrefix removes every key carrying the given prefix.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
	return nil
}

// Clear removes all values from the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

var _ Cache = (*MemoryCache)(nil)
