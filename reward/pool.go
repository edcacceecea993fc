// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/reverts"
)

// Authorities of a pool. Each one gates a distinct class of operations.
type Authorities struct {
	Deposit    base.Address
	Distribute base.Address
	Fill       base.Address
}

// Pool is the reward pool record.
type Pool struct {
	Authorities
	RewardMint base.Address
	// TotalShare is the sum of every mining's share and stake from others.
	TotalShare uint64
	Calculator Calculator
}

func NewPool(auth Authorities, rewardMint base.Address) *Pool {
	return &Pool{
		Authorities: auth,
		RewardMint:  rewardMint,
		Calculator:  NewCalculator(),
	}
}

// Clone returns a deep copy of p.
func (p *Pool) Clone() *Pool {
	cpy := *p
	cpy.Calculator.StakeDiffs = p.Calculator.StakeDiffs.Clone()
	cpy.Calculator.CumulativeIndex = p.Calculator.CumulativeIndex.Clone()
	return &cpy
}

// ConsumeOldModifiers brings TotalShare to the day of now.
func (p *Pool) ConsumeOldModifiers(now uint64) error {
	total, err := p.Calculator.ConsumeOldModifiers(base.StartOfDay(now), p.TotalShare)
	if err != nil {
		return errors.Wrap(err, "consume pool modifiers")
	}
	p.TotalShare = total
	return nil
}

// Distribute spreads rewards over the current total share once per day.
// It reports whether anything happened; a second call on the same day is a
// no-op.
func (p *Pool) Distribute(rewards, now uint64) (bool, error) {
	if p.TotalShare == 0 {
		return false, reverts.ErrNoDeposits
	}
	today := base.StartOfDay(now)
	if err := p.ConsumeOldModifiers(now); err != nil {
		return false, err
	}
	if p.Calculator.Distributed(today) {
		return false, nil
	}
	if p.TotalShare == 0 {
		return false, reverts.ErrNoDeposits
	}
	left, err := fixedpoint.SubU64(p.Calculator.TokensAvailable, rewards)
	if err != nil {
		return false, err
	}
	if err := p.Calculator.UpdateIndex(rewards, p.TotalShare, today); err != nil {
		return false, err
	}
	p.Calculator.TokensAvailable = left
	return true, nil
}

// DistributeRewards releases today's share of the vault and returns the
// amount distributed, zero when today's distribution already happened.
func (p *Pool) DistributeRewards(now uint64) (uint64, error) {
	rewards, err := p.Calculator.RewardsToDistribute(now)
	if err != nil {
		return 0, err
	}
	done, err := p.Distribute(rewards, now)
	if err != nil || !done {
		return 0, err
	}
	return rewards, nil
}

// FillVault adds amount to the distributable balance and moves the end of
// the distribution window to the day of endsAt.
func (p *Pool) FillVault(amount, endsAt, now uint64) error {
	if amount == 0 {
		return reverts.ErrZeroAmount
	}
	endDay := base.StartOfDay(endsAt)
	if endDay < base.StartOfDay(now) {
		return reverts.ErrDistributionInThePast
	}
	c := &p.Calculator
	shift, err := fixedpoint.SubU64(endDay, base.StartOfDay(c.DistributionEndsAt))
	if err != nil {
		return err
	}
	newEnd, err := fixedpoint.AddU64(c.DistributionEndsAt, shift)
	if err != nil {
		return err
	}
	tokens, err := fixedpoint.AddU64(c.TokensAvailable, amount)
	if err != nil {
		return err
	}
	c.DistributionEndsAt = newEnd
	c.TokensAvailable = tokens
	return nil
}

// Reconcile brings the pool and m to the day of now and returns the handle
// through which m may be mutated.
func (p *Pool) Reconcile(m *Mining, now uint64) (*Session, error) {
	if err := p.ConsumeOldModifiers(now); err != nil {
		return nil, err
	}
	if err := m.RefreshRewards(&p.Calculator, now); err != nil {
		return nil, errors.Wrap(err, "refresh mining")
	}
	return &Session{
		pool:   p,
		mining: m,
		now:    now,
		today:  base.StartOfDay(now),
	}, nil
}
