// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/daymap"
	"github.com/vechain/rewards/fixedpoint"
)

// Default number of pre-allocated entries per collection.
const (
	DefaultPoolDiffsCapacity   = 365
	DefaultCumulativeCapacity  = 365
	DefaultMiningDiffsCapacity = 100
)

// Calculator owns the pool wide distribution index and the schedule of
// future total share decrements.
type Calculator struct {
	// Index is the cumulative rewards per unit of weighted stake.
	Index fixedpoint.Index
	// StakeDiffs holds, per expiry day, the weighted stake leaving the pool.
	StakeDiffs daymap.Ledger
	// CumulativeIndex snapshots Index after each day's distribution.
	CumulativeIndex    *daymap.Map[fixedpoint.Index]
	DistributionEndsAt uint64
	TokensAvailable    uint64
}

func NewCalculator() Calculator {
	return Calculator{
		StakeDiffs:      daymap.NewLedger(DefaultPoolDiffsCapacity),
		CumulativeIndex: daymap.New[fixedpoint.Index](DefaultCumulativeCapacity),
	}
}

// ConsumeOldModifiers applies every decrement due by today to totalShare and
// forgets the applied entries.
func (c *Calculator) ConsumeOldModifiers(today, totalShare uint64) (uint64, error) {
	return c.StakeDiffs.Consume(today, totalShare)
}

// UpdateIndex spreads rewards over totalShare and snapshots the resulting
// absolute index at day.
func (c *Calculator) UpdateIndex(rewards, totalShare, day uint64) error {
	delta, err := fixedpoint.IndexDelta(rewards, totalShare)
	if err != nil {
		return err
	}
	index, err := c.Index.Add(delta)
	if err != nil {
		return err
	}
	if err := c.CumulativeIndex.Set(day, index); err != nil {
		return err
	}
	c.Index = index
	return nil
}

// RewardsToDistribute returns the amount released by one daily distribution
// at now. The whole balance is released once the distribution window closes.
func (c *Calculator) RewardsToDistribute(now uint64) (uint64, error) {
	daysLeft := fixedpoint.SatSubU64(c.DistributionEndsAt, now) / base.SecondsPerDay
	if daysLeft == 0 {
		return c.TokensAvailable, nil
	}
	return fixedpoint.DailyRate(c.TokensAvailable, daysLeft)
}

// Distributed reports whether a distribution already happened on day.
func (c *Calculator) Distributed(day uint64) bool {
	return c.CumulativeIndex.Has(day)
}

// IndexBefore returns the index snapshot taken on the last distribution day
// strictly before ts, or zero.
func (c *Calculator) IndexBefore(ts uint64) fixedpoint.Index {
	e, _ := c.CumulativeIndex.Before(ts)
	return e.Value
}

// IndexAsOf returns the index snapshot taken on the last distribution day
// not after day, or zero.
func (c *Calculator) IndexAsOf(day uint64) fixedpoint.Index {
	e, _ := c.CumulativeIndex.AtOrBefore(day)
	return e.Value
}
