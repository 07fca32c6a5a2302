// Package cache implements the cache-aside protocol shared by every category.
//
// A read first consults the store. [Lookup] classifies what it finds as a
// [Hit], a [Miss] (no rows) or [Stale] (first row older than the category's
// window) without touching the store. [Resolve] acts on that outcome: hits
// are returned as stored, misses are fetched from the provider and persisted,
// and stale rows are deleted before the same fetch runs. Stale rows are never
// returned to a caller.
//
// Refetches are collapsed per (table, location_id) inside one process, and
// the store is re-read inside the collapsed call so a refresh that has just
// landed is served instead of being evicted again.
//
// [Resolver] produces the [domain.Location] that keys every category. Locations
// never expire, so it also keeps an LRU of resolved queries in front of the store.
package cache
