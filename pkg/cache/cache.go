package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// failed, not that the key is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds the keys gitdot stores values under.
type Keyer interface {
	// LogKey names a raw commit log read from a source with the given
	// fingerprint.
	LogKey(fingerprint string) string
	// RenderKey names an image rendered from a DOT document.
	RenderKey(dotHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the settings that change a rendered image.
type RenderKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LogKey implements Keyer.
func (DefaultKeyer) LogKey(fingerprint string) string {
	return "log:" + fingerprint
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(dotHash string, opts RenderKeyOpts) string {
	return hashKey("render", dotHash, opts)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several tools or
// repositories can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LogKey implements Keyer.
func (k *ScopedKeyer) LogKey(fingerprint string) string {
	return k.prefix + k.inner.LogKey(fingerprint)
}

// RenderKey implements Keyer.
func (k *ScopedKeyer) RenderKey(dotHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(dotHash, opts)
}

// NullCache stores nothing; every Get is a miss. It backs --no-cache and
// runners created without a cache.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
