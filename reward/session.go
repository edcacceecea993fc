// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/lockup"
	"github.com/vechain/rewards/reverts"
)

// Session is a pool and a mining reconciled to the same day. Every stake
// mutation goes through it, so none can run on stale state.
type Session struct {
	pool   *Pool
	mining *Mining
	now    uint64
	today  uint64
}

// Delegate is a delegate mining reconciled within a session.
type Delegate struct {
	mining *Mining
}

func (d *Delegate) Mining() *Mining {
	if d == nil {
		return nil
	}
	return d.mining
}

func (s *Session) Pool() *Pool     { return s.pool }
func (s *Session) Mining() *Mining { return s.mining }
func (s *Session) Today() uint64   { return s.today }

// Delegate reconciles d for use as a delegate of the session's mining.
// The session's own mining stands for no delegate and yields nil.
func (s *Session) Delegate(d *Mining) (*Delegate, error) {
	if d == nil || d == s.mining {
		return nil, nil
	}
	if d.Pool != s.mining.Pool {
		return nil, reverts.ErrDelegateNotInPool
	}
	if err := d.RefreshRewards(&s.pool.Calculator, s.now); err != nil {
		return nil, errors.Wrap(err, "refresh delegate")
	}
	return &Delegate{mining: d}, nil
}

func (s *Session) addShare(amount uint64) (err error) {
	if s.pool.TotalShare, err = fixedpoint.AddU64(s.pool.TotalShare, amount); err != nil {
		return
	}
	s.mining.Share, err = fixedpoint.AddU64(s.mining.Share, amount)
	return
}

func (s *Session) subShare(amount uint64) (err error) {
	if s.pool.TotalShare, err = fixedpoint.SubU64(s.pool.TotalShare, amount); err != nil {
		return
	}
	s.mining.Share, err = fixedpoint.SubU64(s.mining.Share, amount)
	return
}

func (s *Session) routeTo(d *Delegate, amount uint64) (err error) {
	if d == nil {
		return nil
	}
	if d.mining.StakeFromOthers, err = fixedpoint.AddU64(d.mining.StakeFromOthers, amount); err != nil {
		return
	}
	s.pool.TotalShare, err = fixedpoint.AddU64(s.pool.TotalShare, amount)
	return
}

func (s *Session) routeFrom(d *Delegate, amount uint64) (err error) {
	if d == nil {
		return nil
	}
	if d.mining.StakeFromOthers, err = fixedpoint.SubU64(d.mining.StakeFromOthers, amount); err != nil {
		return
	}
	s.pool.TotalShare, err = fixedpoint.SubU64(s.pool.TotalShare, amount)
	return
}

// Deposit locks amount for period. The stake counts with the period's
// multiplier until the lockup ends, then with the flex multiplier.
func (s *Session) Deposit(amount uint64, period lockup.Period, delegate *Delegate) error {
	if amount == 0 {
		return reverts.ErrZeroAmount
	}
	multiplier, err := period.Multiplier()
	if err != nil {
		return err
	}
	weighted, err := fixedpoint.MulU64(amount, multiplier)
	if err != nil {
		return err
	}
	flexMultiplier, _ := lockup.Flex.Multiplier()
	baseline, err := fixedpoint.MulU64(amount, flexMultiplier)
	if err != nil {
		return err
	}
	diff, err := fixedpoint.SubU64(weighted, baseline)
	if err != nil {
		return err
	}
	end, err := period.EndTimestamp(s.now)
	if err != nil {
		return err
	}

	if err := s.addShare(weighted); err != nil {
		return err
	}
	if err := s.pool.Calculator.StakeDiffs.Add(end, diff); err != nil {
		return errors.Wrap(err, "schedule pool modifier")
	}
	if err := s.mining.StakeDiffs.Add(end, diff); err != nil {
		return errors.Wrap(err, "schedule mining modifier")
	}
	return s.routeTo(delegate, amount)
}

// Unlocked returns the weighted stake not backing any pending lockup
// modifier. Only this part may leave the mining.
func (s *Session) Unlocked() (uint64, error) {
	pending, err := s.mining.StakeDiffs.Sum()
	if err != nil {
		return 0, err
	}
	return fixedpoint.SatSubU64(s.mining.Share, pending), nil
}

// Withdraw removes amount of weighted stake.
func (s *Session) Withdraw(amount uint64, delegate *Delegate) error {
	if s.mining.WithdrawalRestrictedAt(s.now) {
		return reverts.ErrWithdrawalRestricted
	}
	return s.withdraw(amount, delegate)
}

func (s *Session) withdraw(amount uint64, delegate *Delegate) error {
	unlocked, err := s.Unlocked()
	if err != nil {
		return err
	}
	if amount > unlocked {
		return reverts.ErrStakeLocked
	}
	if err := s.subShare(amount); err != nil {
		return err
	}
	if err := s.pool.ConsumeOldModifiers(s.now); err != nil {
		return err
	}
	return s.routeFrom(delegate, amount)
}

// Slash removes amount of weighted stake as a penalty. It ignores the
// withdrawal restriction and credits nothing back to any delegate.
func (s *Session) Slash(amount uint64) error {
	return s.withdraw(amount, nil)
}

// Extend describes a stake being relocked.
type Extend struct {
	OldPeriod        lockup.Period
	NewPeriod        lockup.Period
	OldStart         uint64
	BaseAmount       uint64
	AdditionalAmount uint64
}

// Extend relocks an existing deposit, optionally topped up, under a new
// period. The part of the old deposit still weighted is rolled back first.
func (s *Session) Extend(e Extend, delegate *Delegate) error {
	oldMultiplier, err := e.OldPeriod.Multiplier()
	if err != nil {
		return err
	}
	// flex deposits carry no scheduled modifier and count as expired
	var oldExpiry uint64
	if e.OldPeriod != lockup.Flex {
		if oldExpiry, err = e.OldPeriod.EndTimestamp(e.OldStart); err != nil {
			return err
		}
	}
	flexMultiplier, _ := lockup.Flex.Multiplier()
	baseline, err := fixedpoint.MulU64(e.BaseAmount, flexMultiplier)
	if err != nil {
		return err
	}

	if s.today < oldExpiry {
		current, err := fixedpoint.MulU64(e.BaseAmount, oldMultiplier)
		if err != nil {
			return err
		}
		diff, err := fixedpoint.SubU64(current, baseline)
		if err != nil {
			return err
		}
		if diff > 0 {
			if err := s.pool.Calculator.StakeDiffs.Reduce(oldExpiry, diff); err != nil {
				return errors.Wrap(err, "cancel pool modifier")
			}
			if err := s.mining.StakeDiffs.Reduce(oldExpiry, diff); err != nil {
				return errors.Wrap(err, "cancel mining modifier")
			}
		}
		if err := s.subShare(current); err != nil {
			return err
		}
	} else if err := s.subShare(baseline); err != nil {
		return err
	}

	if err := s.routeFrom(delegate, e.BaseAmount); err != nil {
		return err
	}

	amount, err := fixedpoint.AddU64(e.BaseAmount, e.AdditionalAmount)
	if err != nil {
		return err
	}
	return s.Deposit(amount, e.NewPeriod, delegate)
}

// ChangeDelegate moves staked from the old delegate to the new one. A nil
// delegate stands for none.
func (s *Session) ChangeDelegate(oldDelegate, newDelegate *Delegate, staked uint64) error {
	if oldDelegate.Mining() == newDelegate.Mining() {
		return reverts.ErrDelegatesAreTheSame
	}
	if err := s.routeFrom(oldDelegate, staked); err != nil {
		return err
	}
	return s.routeTo(newDelegate, staked)
}

// Claim takes the mining's accrued rewards; the caller pays them out.
func (s *Session) Claim() (uint64, error) {
	return s.mining.Claim()
}

// CheckClosable fails while the mining still holds stake of its own or
// delegated to it, or unclaimed rewards.
func (s *Session) CheckClosable() error {
	if s.mining.Share != 0 || s.mining.StakeDiffs.Len() != 0 {
		return reverts.ErrStakeMustBeWithdrawn
	}
	if s.mining.StakeFromOthers != 0 {
		return reverts.ErrStakeFromOthersMustBeZero
	}
	if s.mining.UnclaimedRewards != 0 {
		return reverts.ErrRewardsMustBeClaimed
	}
	return nil
}
