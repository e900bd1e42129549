package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-memory CacheInterface backend, the default for
// single-instance deployments. Resolution entries expire by TTL; the
// go-cache janitor sweeps expired ones periodically and reads drop them
// lazily in between.
type CacheService struct {
	store *cache.Cache
}

var _ CacheInterface = (*CacheService)(nil)

// NewCacheService builds an in-memory cache. defaultExpiration applies
// to entries stored without an explicit duration; cleanUpInterval is
// the janitor's sweep period.
func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	return &CacheService{store: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.store.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	return cs.store.Get(key)
}

func (cs *CacheService) Delete(key string) {
	cs.store.Delete(key)
}

// GetOrSet returns the cached value for key, running loader and caching
// its result on a miss. Loader failures are not cached.
func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

// Close is a no-op; the in-memory store holds no connections.
func (cs *CacheService) Close() error {
	return nil
}
