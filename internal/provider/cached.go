package provider

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// currentCacheVersion defines the version of the cached route payload.
const currentCacheVersion = 1

// CachedRouteProvider serves repeated queries from a CacheStore.
type CachedRouteProvider struct {
	inner contract.RouteProvider
	cache contract.CacheStore
	ttl   time.Duration
	now   func() time.Time
}

var _ contract.RouteProvider = &CachedRouteProvider{} // Compile-time check

// NewCachedRouteProvider wraps inner with cache. Entries older than ttl are refetched.
func NewCachedRouteProvider(inner contract.RouteProvider, cache contract.CacheStore, ttl time.Duration) *CachedRouteProvider {
	return &CachedRouteProvider{inner: inner, cache: cache, ttl: ttl, now: time.Now}
}

// Name implements the RouteProvider interface.
func (p *CachedRouteProvider) Name() string {
	return p.inner.Name()
}

// Route returns a cached summary when fresh, otherwise asks the inner provider
// and stores its answer. Cache write failures are logged and ignored.
func (p *CachedRouteProvider) Route(ctx context.Context, from, to schema.Coordinate) (schema.RouteSummary, error) {
	key := cacheKey(p.inner.Name(), from, to)

	if summary, ok := p.checkCacheHit(key); ok {
		return summary, nil
	}

	summary, err := p.inner.Route(ctx, from, to)
	if err != nil {
		return schema.RouteSummary{}, err
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := p.cache.Set(key, data, currentCacheVersion, p.now().Unix()); err != nil {
			contract.LogWarn("Failed to cache route response", err)
		}
	}
	return summary, nil
}

func (p *CachedRouteProvider) checkCacheHit(key string) (schema.RouteSummary, bool) {
	data, version, ts, err := p.cache.Get(key)
	if err != nil || version != currentCacheVersion {
		return schema.RouteSummary{}, false
	}
	if p.now().Sub(time.Unix(ts, 0)) > p.ttl {
		return schema.RouteSummary{}, false
	}
	var summary schema.RouteSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return schema.RouteSummary{}, false
	}
	return summary, true
}

// cacheKey hashes the provider name and both endpoints at micro-degree precision.
func cacheKey(name string, from, to schema.Coordinate) string {
	key := fmt.Sprintf("%s:%.6f,%.6f:%.6f,%.6f", name, from.Lat, from.Lon, to.Lat, to.Lon)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
