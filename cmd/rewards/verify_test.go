// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/reward"
	"github.com/vechain/rewards/state"
)

func TestVerifyState(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	st, err := state.New(db, 0)
	require.NoError(t, err)

	var (
		owner  = base.Address{1}
		mint   = base.Address{2}
		pool   = base.PoolAddress(base.Address{3}, base.Address{4})
		ghost  = base.Address{5}
		funded = base.PoolAddress(base.Address{6}, base.Address{7})
	)

	stage := st.NewStage()
	p := reward.NewPool(reward.Authorities{}, mint)
	p.Calculator.TokensAvailable = 100
	require.NoError(t, stage.CreatePool(pool, p))
	require.NoError(t, stage.SetBalance(base.VaultAddress(pool, mint), 40))

	p = reward.NewPool(reward.Authorities{}, mint)
	p.Calculator.TokensAvailable = 10
	require.NoError(t, stage.CreatePool(funded, p))
	require.NoError(t, stage.SetBalance(base.VaultAddress(funded, mint), 10))

	require.NoError(t, stage.CreateMining(base.MiningAddress(owner, pool), reward.NewMining(pool, owner)))
	require.NoError(t, stage.CreateMining(base.MiningAddress(owner, ghost), reward.NewMining(ghost, owner)))
	require.NoError(t, stage.CreateMining(base.Address{9}, reward.NewMining(pool, owner)))
	require.NoError(t, stage.Commit())

	problems, err := verifyState(st, false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"pool " + pool.String() + ": vault holds 40, 100 not yet distributed",
		"mining " + base.MiningAddress(owner, ghost).String() + ": pool " + ghost.String() + " not found",
		"mining " + base.Address{9}.String() + ": derives to " + base.MiningAddress(owner, pool).String(),
	}, problems)
}
