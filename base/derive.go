// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package base

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
)

// Seeds of the derived record addresses.
const (
	PoolSeed   = "reward_pool"
	MiningSeed = "mining"
	VaultSeed  = "vault"
)

type blake2bState struct {
	hash.Hash
	b32 Address
}

var blake2bStatePool = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return &blake2bState{Hash: h}
	},
}

// Derive computes the deterministic address of a record from a seed and a
// set of keys. The same inputs always map to the same address.
func Derive(seed string, keys ...Address) (addr Address) {
	w := blake2bStatePool.Get().(*blake2bState)
	w.Write([]byte(seed))
	for _, k := range keys {
		w.Write(k[:])
	}
	w.Sum(w.b32[:0])
	addr = w.b32
	w.Reset()
	blake2bStatePool.Put(w)
	return
}

// PoolAddress returns the address of the pool owned by the given authorities.
func PoolAddress(depositAuthority, fillAuthority Address) Address {
	return Derive(PoolSeed, depositAuthority, fillAuthority)
}

// MiningAddress returns the address of the owner's mining record in a pool.
func MiningAddress(owner, pool Address) Address {
	return Derive(MiningSeed, owner, pool)
}

// VaultAddress returns the address of the pool's reward vault.
func VaultAddress(pool, mint Address) Address {
	return Derive(VaultSeed, pool, mint)
}
