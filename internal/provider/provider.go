// Package provider implements informational route providers.
// A provider answer is metadata for the report and never changes the computed path.
package provider

import (
	"fmt"

	"github.com/safepath/safepath/internal/contract"
	"github.com/safepath/safepath/schema"
)

// New returns the provider selected by cfg, wrapped with the response cache when
// one is available. It returns nil when no provider is configured.
func New(cfg *contract.Config, cache contract.CacheStore) (contract.RouteProvider, error) {
	var p contract.RouteProvider
	switch cfg.Provider {
	case schema.NoProvider, "":
		return nil, nil
	case schema.MockProvider:
		p = NewMockRouteProvider(cfg.ProviderLatency, cfg.ProviderSeed)
	case schema.HTTPProvider:
		p = NewHTTPRouteProvider(cfg.ProviderURL, cfg.ProviderKey, WithTimeout(cfg.ProviderTimeout))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	if cache != nil && cfg.Provider != schema.MockProvider {
		p = NewCachedRouteProvider(p, cache, contract.DefaultCacheTTL)
	}
	return p, nil
}
