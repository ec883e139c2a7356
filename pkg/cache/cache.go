// Package cache provides byte caches for derived layout data.
//
// The HTTP API computes pixel geometry for a stored layout at a given
// container width. That result depends only on the layout's fingerprint and
// the width, so it is cached under [GeometryKey] and reused until the layout
// changes.
//
// # Implementations
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//
// [Prefixed] namespaces keys and [Instrument] reports hits and misses to the
// observability hooks. Both wrap any Cache.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/matzehuels/gridboard/pkg/observability"
)

// Cache is a byte-oriented key/value cache with per-entry expiry.
type Cache interface {
	// Get returns the cached value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GeometryKey returns the cache key for the pixel geometry of a layout with
// the given fingerprint rendered at width pixels.
func GeometryKey(fingerprint string, width float64) string {
	sum := sha256.Sum256([]byte(fingerprint + "@" + strconv.FormatFloat(width, 'f', -1, 64)))
	return "geometry:" + hex.EncodeToString(sum[:])
}

// =============================================================================
// Prefixed
// =============================================================================

// prefixed adds a fixed prefix to every key of an inner cache.
type prefixed struct {
	inner  Cache
	prefix string
}

// Prefixed wraps c so every key is stored as prefix+key. This keeps several
// deployments apart on one shared backend.
func Prefixed(c Cache, prefix string) Cache {
	if prefix == "" {
		return c
	}
	return &prefixed{inner: c, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.inner.Close() }

// =============================================================================
// Instrument
// =============================================================================

// instrumented reports cache traffic to the observability hooks.
type instrumented struct {
	inner   Cache
	keyType string
}

// Instrument wraps c so hits, misses and writes are reported to
// observability.Cache() under keyType.
func Instrument(c Cache, keyType string) Cache {
	return &instrumented{inner: c, keyType: keyType}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := i.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, i.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, i.keyType)
		}
	}
	return data, ok, err
}

func (i *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := i.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, i.keyType, len(data))
	}
	return err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	return i.inner.Delete(ctx, key)
}

func (i *instrumented) Close() error { return i.inner.Close() }
