// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/state"
)

var (
	funder  = base.Address{1}
	deposit = base.Address{2}
	dist    = base.Address{3}
	fill    = base.Address{4}
	mint    = base.Address{5}
)

func document() string {
	return fmt.Sprintf(`
accounts:
  - address: %s
    balance: 1000000
pools:
  - depositAuthority: %s
    distributeAuthority: %s
    fillAuthority: %s
    rewardMint: %s
`, funder, deposit, dist, fill, mint)
}

func TestLoadAndBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(document()), 0o600))

	g, err := Load(path)
	require.NoError(t, err)
	require.Len(t, g.Accounts, 1)
	assert.Equal(t, funder, g.Accounts[0].Address)
	require.Len(t, g.Pools, 1)
	assert.Equal(t, mint, g.Pools[0].RewardMint)

	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	s, err := state.New(db, 0)
	require.NoError(t, err)

	st := s.NewStage()
	pools, err := g.Build(st)
	require.NoError(t, err)
	require.NoError(t, st.Commit())
	assert.Equal(t, []base.Address{base.PoolAddress(deposit, fill)}, pools)

	st = s.NewStage()
	bal, err := st.Balance(funder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), bal)
	p, err := st.Pool(pools[0])
	require.NoError(t, err)
	assert.Equal(t, dist, p.Authorities.Distribute)

	// applying twice collides on the pool
	_, err = g.Build(s.NewStage())
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "accounts: ["},
		{"bad address", "accounts:\n  - address: '0OIl'\n    balance: 1\n"},
		{"zero balance", fmt.Sprintf("accounts:\n  - address: %s\n    balance: 0\n", funder)},
		{"duplicate", fmt.Sprintf("accounts:\n  - address: %s\n    balance: 1\n  - address: %s\n    balance: 2\n", funder, funder)},
		{"missing authority", fmt.Sprintf("pools:\n  - depositAuthority: %s\n", deposit)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
