// Package cachemanager caches values that are expensive to build, such as
// tokenizers compiled from declaration documents.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values under string-like keys with a TTL.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K)
	Flush(ctx context.Context)
	Len() int
}
