package sql

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// buildCacheNamespace is the UUID namespace under which query
// fingerprints are derived.
var buildCacheNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("scribe.BuildCache"))

// cacheEntry is one memoized compilation: the statement text and the
// parameter list a fresh build of the specification produces.
type cacheEntry struct {
	sql    string
	params []Param
}

// BuildCache memoizes compiled SELECT statements in front of a Builder.
// Specifications are fingerprinted structurally, so two equal Query
// values share one compilation regardless of where they were assembled.
//
// A cached compilation is only valid against an empty parameter
// collection; builds into a pre-seeded collection bypass the cache and
// compile directly.
type BuildCache struct {
	builder *Builder
	lru     *lru.Cache[uuid.UUID, cacheEntry]
	mu      sync.Mutex
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewBuildCache returns a cache holding up to size compiled statements
// in front of the given builder.
func NewBuildCache(b *Builder, size int) (*BuildCache, error) {
	if b == nil {
		return nil, fmt.Errorf("sql: nil builder")
	}
	c, err := lru.New[uuid.UUID, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("sql: build cache: %w", err)
	}
	return &BuildCache{builder: b, lru: c}, nil
}

// Fingerprint returns the stable cache key of a query specification: a
// SHA1-derived UUID over its msgpack encoding.
func (c *BuildCache) Fingerprint(q *Query) (uuid.UUID, error) {
	payload, err := msgpack.Marshal(q)
	if err != nil {
		return uuid.Nil, fmt.Errorf("sql: fingerprint: %w", err)
	}
	return uuid.NewSHA1(buildCacheNamespace, payload), nil
}

// BuildSelect returns the compiled statement for the query, re-using a
// previous compilation when the specification matches. Bound values are
// appended to params exactly as Builder.BuildSelect would.
func (c *BuildCache) BuildSelect(q *Query, params *Params) (string, error) {
	if q == nil || (params != nil && params.Len() > 0) {
		return c.builder.BuildSelect(q, params)
	}
	key, err := c.Fingerprint(q)
	if err != nil {
		// Specifications carrying unencodable values compile directly.
		return c.builder.BuildSelect(q, params)
	}
	if e, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		replayParams(e.params, params)
		return e.sql, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the lock: another build may have filled the entry
	// between the lookup above and here.
	if e, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		replayParams(e.params, params)
		return e.sql, nil
	}
	c.misses.Add(1)
	fresh := &Params{}
	stmt, err := c.builder.BuildSelect(q, fresh)
	if err != nil {
		return "", err
	}
	list := fresh.List()
	c.lru.Add(key, cacheEntry{sql: stmt, params: list})
	replayParams(list, params)
	return stmt, nil
}

// replayParams copies a memoized parameter list into the caller's
// collection, reproducing the state a direct build would leave.
func replayParams(list []Param, params *Params) {
	if params == nil {
		return
	}
	for _, p := range list {
		params.Add(p.Name, p.Value)
	}
}

// Hits returns the number of builds served from the cache.
func (c *BuildCache) Hits() int64 {
	return c.hits.Load()
}

// Misses returns the number of builds compiled and inserted.
func (c *BuildCache) Misses() int64 {
	return c.misses.Load()
}

// Len returns the number of cached statements.
func (c *BuildCache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached statement and resets the counters.
func (c *BuildCache) Purge() {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}
