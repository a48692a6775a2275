/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metadata

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/warmchang/citus/go/stats"
	"github.com/warmchang/citus/go/vt/log"
	"github.com/warmchang/citus/go/vt/querytree"
)

const (
	// DefaultExpiration is used when CacheConfig leaves the expiration unset.
	DefaultExpiration = 30 * time.Second
	// NoExpiration keeps entries until they are invalidated.
	NoExpiration = cache.NoExpiration
)

var cacheLookups = stats.NewCountersWithLabels(
	"MetadataCacheLookups",
	"Metadata cache lookups by result",
	"Result",
	"hit", "miss")

// CacheConfig is the configuration for a Cached lookup.
type CacheConfig struct {
	// DefaultExpiration is how long to keep an entry. Use NoExpiration to
	// keep entries forever.
	DefaultExpiration time.Duration `json:"default_expiration"`
	// CleanupInterval is how often to remove expired entries. Zero disables
	// the janitor; expired entries are then only dropped on access.
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// Cached wraps another Lookup and remembers its answers, including the
// negative ones, for a while. It is safe for concurrent use.
type Cached struct {
	source Lookup
	cache  *cache.Cache
}

var _ Lookup = (*Cached)(nil)

type cachedEntry struct {
	md *TableMetadata
	ok bool
}

// NewCached returns a Cached lookup in front of source.
func NewCached(source Lookup, cfg CacheConfig) *Cached {
	if cfg.DefaultExpiration == 0 {
		log.Warningf("metadata cache expiration unset, defaulting to %v", DefaultExpiration)
		cfg.DefaultExpiration = DefaultExpiration
	}
	return &Cached{
		source: source,
		cache:  cache.New(cfg.DefaultExpiration, cfg.CleanupInterval),
	}
}

// TableMetadata implements Lookup.
func (c *Cached) TableMetadata(relationID querytree.RelationID) (*TableMetadata, bool) {
	key := cacheKey(relationID)
	if v, found := c.cache.Get(key); found {
		cacheLookups.Add("hit", 1)
		entry := v.(cachedEntry)
		return entry.md, entry.ok
	}
	cacheLookups.Add("miss", 1)

	md, ok := c.source.TableMetadata(relationID)
	c.cache.Set(key, cachedEntry{md: md, ok: ok}, cache.DefaultExpiration)
	return md, ok
}

// Invalidate drops the cached entry of one relation.
func (c *Cached) Invalidate(relationID querytree.RelationID) {
	c.cache.Delete(cacheKey(relationID))
}

// Flush drops every cached entry.
func (c *Cached) Flush() {
	c.cache.Flush()
}

// Len returns the number of cached entries, expired ones included.
func (c *Cached) Len() int {
	return c.cache.ItemCount()
}

func cacheKey(relationID querytree.RelationID) string {
	return strconv.FormatUint(uint64(relationID), 10)
}
