// Package typecache memoizes type descriptors keyed by (type identifier,
// direction).
//
// The cache holds exactly one entry. Successive operations nearly always
// touch the same type, so one slot with strict invalidation is enough. A
// request for the cached type under the other direction is a caller bug:
// with WithStrict(true) it fails with a cache_direction_conflict error,
// otherwise the slot is dropped, a warning is logged and the descriptor is
// rebuilt for the requested direction.
//
// A Cache belongs to one caller. Give each goroutine its own.
package typecache
