// Package iocache is for caching provider I/O and keeping run history.
package iocache

import (
	"sync"

	"github.com/safepath/safepath/internal/contract"
)

// StoreManager owns the provider cache and the run history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetCacheStore returns the provider response cache, or nil when disabled.
func (mgr *StoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the run history store, or nil when disabled.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
