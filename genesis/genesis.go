// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds an empty store with balances and pools.
package genesis

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/reward"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/token"
)

// Account is an initial token allocation.
type Account struct {
	Address base.Address `yaml:"address"`
	Balance uint64       `yaml:"balance"`
}

// Pool is a pool created at genesis.
type Pool struct {
	DepositAuthority    base.Address `yaml:"depositAuthority"`
	DistributeAuthority base.Address `yaml:"distributeAuthority"`
	FillAuthority       base.Address `yaml:"fillAuthority"`
	RewardMint          base.Address `yaml:"rewardMint"`
}

// Genesis is the user supplied initial state.
type Genesis struct {
	Accounts []Account `yaml:"accounts"`
	Pools    []Pool    `yaml:"pools"`
}

// Load reads a yaml genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis document.
func Parse(data []byte) (*Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (g *Genesis) Validate() error {
	seen := make(map[base.Address]bool)
	for _, a := range g.Accounts {
		if a.Balance == 0 {
			return fmt.Errorf("%s: balance must be a non-zero integer", a.Address)
		}
		if seen[a.Address] {
			return fmt.Errorf("%s: duplicated account", a.Address)
		}
		seen[a.Address] = true
	}
	pools := make(map[base.Address]bool)
	for _, p := range g.Pools {
		if p.DepositAuthority.IsZero() || p.DistributeAuthority.IsZero() || p.FillAuthority.IsZero() {
			return errors.New("pool authorities must be set")
		}
		addr := base.PoolAddress(p.DepositAuthority, p.FillAuthority)
		if pools[addr] {
			return fmt.Errorf("%s: duplicated pool", addr)
		}
		pools[addr] = true
	}
	return nil
}

// Build writes the genesis into st and returns the created pool addresses.
func (g *Genesis) Build(st *state.Stage) ([]base.Address, error) {
	for _, a := range g.Accounts {
		if err := token.Mint(st, a.Address, a.Balance); err != nil {
			return nil, errors.WithMessagef(err, "mint %s", a.Address)
		}
	}
	addrs := make([]base.Address, 0, len(g.Pools))
	for _, p := range g.Pools {
		addr := base.PoolAddress(p.DepositAuthority, p.FillAuthority)
		pool := reward.NewPool(reward.Authorities{
			Deposit:    p.DepositAuthority,
			Distribute: p.DistributeAuthority,
			Fill:       p.FillAuthority,
		}, p.RewardMint)
		if err := st.CreatePool(addr, pool); err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
