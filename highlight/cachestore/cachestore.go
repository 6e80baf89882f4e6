// Package cachestore is a small namespaced TTL cache. The engine uses it for
// moderator-permission lookups on the status surface and for the single-use
// operator cache-clear marker. Filter configuration is deliberately never
// cached here.
package cachestore

import (
	"context"
)

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
