// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/daymap"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/reward"
)

// MaxRecordSize bounds the encoded size of any record.
const MaxRecordSize = 10 * 1024 * 1024

// growth returns a GrowFunc that adds daymap.GrowthStep slots as long as the
// resulting record, sized by sizeOf, stays within MaxRecordSize.
func growth(collection string, sizeOf func(newCap int) int) daymap.GrowFunc {
	return func(current int) (int, error) {
		next := current + daymap.GrowthStep
		if size := sizeOf(next); size > MaxRecordSize {
			return 0, errors.Wrapf(reverts.ErrRecordTooLarge, "%s: %d bytes", collection, size)
		}
		metricRecordGrowth().AddWithLabel(1, map[string]string{"collection": collection})
		return next, nil
	}
}

func installPoolGrowth(p *reward.Pool) {
	c := &p.Calculator
	c.StakeDiffs.SetGrowFunc(growth("pool_stake_diffs", func(n int) int {
		return PoolSize(n, c.CumulativeIndex.Capacity())
	}))
	c.CumulativeIndex.SetGrowFunc(growth("pool_cumulative_index", func(n int) int {
		return PoolSize(c.StakeDiffs.Capacity(), n)
	}))
}

func installMiningGrowth(m *reward.Mining) {
	m.StakeDiffs.SetGrowFunc(growth("mining_stake_diffs", MiningSize))
}
