// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a size-bounded cache of decoded values keyed by string, with hit/miss
// counters.
type LRU[V any] struct {
	inner     *lru.Cache
	hit, miss atomic.Int64
}

// NewLRU creates an LRU cache. maxSize must be > 0.
func NewLRU[V any](maxSize int) (*LRU[V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[V]{inner: c}, nil
}

// Get returns the cached value for key.
func (l *LRU[V]) Get(key string) (V, bool) {
	if v, ok := l.inner.Get(key); ok {
		l.hit.Add(1)
		return v.(V), true
	}
	l.miss.Add(1)
	var zero V
	return zero, false
}

// Add caches value under key.
func (l *LRU[V]) Add(key string, value V) {
	l.inner.Add(key, value)
}

// Remove evicts key.
func (l *LRU[V]) Remove(key string) {
	l.inner.Remove(key)
}

// Len returns the number of cached entries.
func (l *LRU[V]) Len() int {
	return l.inner.Len()
}

// GetOrLoad first tries the cache and falls back to the loader on a miss.
// Loader errors are returned as is and nothing is cached.
func (l *LRU[V]) GetOrLoad(key string, load func(key string) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	l.Add(key, v)
	return v, nil
}

// Stats returns the number of hits and misses so far.
func (l *LRU[V]) Stats() (hit, miss int64) {
	return l.hit.Load(), l.miss.Load()
}
