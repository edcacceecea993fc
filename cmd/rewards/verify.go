// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/state"
)

// verifyState decodes every stored record and reports the inconsistencies
// found between them. A non-nil error means the scan itself failed.
func verifyState(st *state.State, progress bool) ([]string, error) {
	pools, err := st.Pools()
	if err != nil {
		return nil, err
	}
	minings, err := st.Minings()
	if err != nil {
		return nil, err
	}

	bar := pb.New(len(pools) + len(minings)).
		SetMaxWidth(90)
	bar.NotPrint = !progress
	bar.Start()
	defer bar.Finish()

	var (
		problems []string
		stage    = st.NewStage()
	)
	for _, addr := range pools {
		pool, err := stage.Pool(addr)
		if err != nil {
			return nil, errors.WithMessagef(err, "pool %s", addr)
		}
		vault := base.VaultAddress(addr, pool.RewardMint)
		bal, err := stage.Balance(vault)
		if err != nil {
			return nil, err
		}
		if bal < pool.Calculator.TokensAvailable {
			problems = append(problems, fmt.Sprintf("pool %s: vault holds %d, %d not yet distributed", addr, bal, pool.Calculator.TokensAvailable))
		}
		bar.Increment()
	}
	for _, addr := range minings {
		m, err := stage.Mining(addr)
		if err != nil {
			return nil, errors.WithMessagef(err, "mining %s", addr)
		}
		if derived := base.MiningAddress(m.Owner, m.Pool); derived != addr {
			problems = append(problems, fmt.Sprintf("mining %s: derives to %s", addr, derived))
		}
		if _, err := stage.Pool(m.Pool); err != nil {
			if !errors.Is(err, reverts.ErrAccountNotFound) {
				return nil, err
			}
			problems = append(problems, fmt.Sprintf("mining %s: pool %s not found", addr, m.Pool))
		}
		bar.Increment()
	}
	return problems, nil
}
