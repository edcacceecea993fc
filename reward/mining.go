// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/daymap"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/reverts"
)

// Mining is the per depositor record of a pool.
type Mining struct {
	Pool  base.Address
	Owner base.Address
	// Share is the owner's weighted stake, excluding delegated stake.
	Share uint64
	// StakeFromOthers is the stake routed to this mining by delegators.
	StakeFromOthers  uint64
	UnclaimedRewards uint64
	// Index is the pool index this mining was last settled against.
	Index      fixedpoint.Index
	StakeDiffs daymap.Ledger

	ClaimingRestricted   bool
	WithdrawalRestricted bool
	// WithdrawalRestrictedUntil lifts the withdrawal restriction at that
	// time; zero keeps it until explicitly allowed.
	WithdrawalRestrictedUntil uint64
}

func NewMining(pool, owner base.Address) *Mining {
	return &Mining{
		Pool:       pool,
		Owner:      owner,
		StakeDiffs: daymap.NewLedger(DefaultMiningDiffsCapacity),
	}
}

// Clone returns a deep copy of m.
func (m *Mining) Clone() *Mining {
	cpy := *m
	cpy.StakeDiffs = m.StakeDiffs.Clone()
	return &cpy
}

// RefreshRewards settles rewards accrued since the last refresh. Each due
// expiry is credited at the share that held before it, against the index of
// the last distribution preceding the expiry day, and only then applied.
func (m *Mining) RefreshRewards(c *Calculator, now uint64) error {
	today := base.StartOfDay(now)
	share, err := fixedpoint.AddU64(m.Share, m.StakeFromOthers)
	if err != nil {
		return err
	}

	err = m.StakeDiffs.DrainDue(today, func(day uint64, diff uint64) error {
		if err := m.updateIndex(c.IndexBefore(day), share); err != nil {
			return err
		}
		var err error
		share, err = fixedpoint.SubU64(share, diff)
		return err
	})
	if err != nil {
		return err
	}

	if err := m.updateIndex(c.IndexAsOf(today), share); err != nil {
		return err
	}

	m.Share, err = fixedpoint.SubU64(share, m.StakeFromOthers)
	return err
}

func (m *Mining) updateIndex(target fixedpoint.Index, share uint64) error {
	rewards, err := fixedpoint.Accrued(target, m.Index, share)
	if err != nil {
		return err
	}
	if rewards > 0 {
		if m.UnclaimedRewards, err = fixedpoint.AddU64(m.UnclaimedRewards, rewards); err != nil {
			return err
		}
	}
	m.Index = target
	return nil
}

// Claim takes the unclaimed rewards out of the record.
func (m *Mining) Claim() (uint64, error) {
	if m.ClaimingRestricted {
		return 0, reverts.ErrClaimingRestricted
	}
	amount := m.UnclaimedRewards
	m.UnclaimedRewards = 0
	return amount, nil
}

func (m *Mining) RestrictClaiming() error {
	if m.ClaimingRestricted {
		return reverts.ErrAlreadyRestricted
	}
	m.ClaimingRestricted = true
	return nil
}

func (m *Mining) AllowClaiming() error {
	if !m.ClaimingRestricted {
		return reverts.ErrNotRestricted
	}
	m.ClaimingRestricted = false
	return nil
}

// WithdrawalRestrictedAt reports whether withdrawals are blocked at now.
func (m *Mining) WithdrawalRestrictedAt(now uint64) bool {
	return m.WithdrawalRestricted &&
		(m.WithdrawalRestrictedUntil == 0 || now < m.WithdrawalRestrictedUntil)
}

// RestrictWithdrawal blocks withdrawals until the given time, or until
// allowed again when until is zero. A lapsed restriction may be renewed.
func (m *Mining) RestrictWithdrawal(until, now uint64) error {
	if m.WithdrawalRestrictedAt(now) {
		return reverts.ErrAlreadyRestricted
	}
	m.WithdrawalRestricted = true
	m.WithdrawalRestrictedUntil = until
	return nil
}

func (m *Mining) AllowWithdrawal() error {
	if !m.WithdrawalRestricted {
		return reverts.ErrNotRestricted
	}
	m.WithdrawalRestricted = false
	m.WithdrawalRestrictedUntil = 0
	return nil
}
