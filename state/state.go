// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/cache"
	"github.com/vechain/rewards/kv"
)

// key spaces
const (
	poolBucket    = kv.Bucket("p")
	miningBucket  = kv.Bucket("m")
	balanceBucket = kv.Bucket("b")
)

// DefaultCacheSize is the number of raw records kept in memory.
const DefaultCacheSize = 4096

// State is the durable store of every record.
type State struct {
	db       kv.Store
	pools    kv.Store
	minings  kv.Store
	balances kv.Store
	raw      *cache.LRU[[]byte]
}

// New creates a state over db, caching up to cacheSize raw records.
func New(db kv.Store, cacheSize int) (*State, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	raw, err := cache.NewLRU[[]byte](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create record cache")
	}
	return &State{
		db:       db,
		pools:    poolBucket.NewStore(db),
		minings:  miningBucket.NewStore(db),
		balances: balanceBucket.NewStore(db),
		raw:      raw,
	}, nil
}

// NewStage starts a change set.
func (s *State) NewStage() *Stage {
	return newStage(s)
}

// CacheStats returns raw cache hits and misses.
func (s *State) CacheStats() (hit, miss int64) {
	return s.raw.Stats()
}

// load returns the raw record under bucket/addr, or nil when absent.
func (s *State) load(bucket kv.Bucket, store kv.Store, addr base.Address) ([]byte, error) {
	cacheKey := string(bucket.Key(addr.Bytes()))
	if data, ok := s.raw.Get(cacheKey); ok {
		return data, nil
	}
	data, err := store.Get(addr.Bytes())
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "load %s", addr)
	}
	s.raw.Add(cacheKey, data)
	return data, nil
}

// Pools lists the addresses of every stored pool in key order.
func (s *State) Pools() ([]base.Address, error) {
	return addresses(s.pools, "pools")
}

// Minings lists the addresses of every stored mining in key order.
func (s *State) Minings() ([]base.Address, error) {
	return addresses(s.minings, "minings")
}

func addresses(store kv.Store, name string) ([]base.Address, error) {
	it := store.Iterate(kv.Range{})
	defer it.Release()

	var addrs []base.Address
	for it.Next() {
		addrs = append(addrs, base.BytesToAddress(it.Key()))
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrapf(err, "iterate %s", name)
	}
	return addrs, nil
}
