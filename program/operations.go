// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/reward"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/token"
)

func miningEvent(op string, ref MiningRef, amount uint64) *logdb.Event {
	mining := ref.Mining
	return &logdb.Event{
		Op:     op,
		Pool:   ref.Pool,
		Mining: &mining,
		Signer: ref.Signer,
		Amount: amount,
	}
}

// InitializePool creates the pool derived from the deposit and fill
// authorities and returns its address.
func (p *Program) InitializePool(payer base.Address, params InitPoolParams) (base.Address, error) {
	addr := base.PoolAddress(params.DepositAuthority, params.FillAuthority)
	ev := &logdb.Event{Op: OpInitializePool, Pool: addr, Signer: payer}

	err := p.exec(ev, func(st *state.Stage, _ uint64) error {
		pool := reward.NewPool(reward.Authorities{
			Deposit:    params.DepositAuthority,
			Distribute: params.DistributeAuthority,
			Fill:       params.FillAuthority,
		}, params.RewardMint)
		return st.CreatePool(addr, pool)
	})
	if err != nil {
		return base.Address{}, err
	}
	return addr, nil
}

// InitializeMining creates the owner's mining in pool and returns its address.
func (p *Program) InitializeMining(pool, owner base.Address) (base.Address, error) {
	addr := base.MiningAddress(owner, pool)
	ev := &logdb.Event{Op: OpInitializeMining, Pool: pool, Mining: &addr, Signer: owner}

	err := p.exec(ev, func(st *state.Stage, _ uint64) error {
		if _, err := st.Pool(pool); err != nil {
			return err
		}
		return st.CreateMining(addr, reward.NewMining(pool, owner))
	})
	if err != nil {
		return base.Address{}, err
	}
	return addr, nil
}

func (p *Program) DepositMining(params DepositParams) error {
	return p.exec(miningEvent(OpDeposit, params.MiningRef, params.Amount), func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		d, err := delegate(st, s, params.Delegate)
		if err != nil {
			return err
		}
		return s.Deposit(params.Amount, params.Period, d)
	})
}

func (p *Program) WithdrawMining(params WithdrawParams) error {
	return p.exec(miningEvent(OpWithdraw, params.MiningRef, params.Amount), func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		d, err := delegate(st, s, params.Delegate)
		if err != nil {
			return err
		}
		return s.Withdraw(params.Amount, d)
	})
}

func (p *Program) ExtendStake(params ExtendParams) error {
	ev := miningEvent(OpExtend, params.MiningRef, params.AdditionalAmount)
	return p.exec(ev, func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		d, err := delegate(st, s, params.Delegate)
		if err != nil {
			return err
		}
		return s.Extend(reward.Extend{
			OldPeriod:        params.OldPeriod,
			NewPeriod:        params.NewPeriod,
			OldStart:         params.OldStart,
			BaseAmount:       params.BaseAmount,
			AdditionalAmount: params.AdditionalAmount,
		}, d)
	})
}

func (p *Program) ChangeDelegate(params ChangeDelegateParams) error {
	ev := miningEvent(OpChangeDelegate, params.MiningRef, params.StakedAmount)
	return p.exec(ev, func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		oldDelegate, err := delegate(st, s, params.OldDelegate)
		if err != nil {
			return err
		}
		newDelegate, err := delegate(st, s, params.NewDelegate)
		if err != nil {
			return err
		}
		return s.ChangeDelegate(oldDelegate, newDelegate, params.StakedAmount)
	})
}

// FillVault moves amount from the fill authority to the pool's vault and
// extends the distribution window.
func (p *Program) FillVault(params FillParams) error {
	ev := &logdb.Event{Op: OpFillVault, Pool: params.Pool, Signer: params.Signer, Amount: params.Amount}
	return p.exec(ev, func(st *state.Stage, now uint64) error {
		pool, err := st.Pool(params.Pool)
		if err != nil {
			return err
		}
		if err := checkSigner(params.Signer, pool.Fill); err != nil {
			return err
		}
		if err := checkVault(pool, params.Pool, params.Vault); err != nil {
			return err
		}
		if err := pool.FillVault(params.Amount, params.DistributionEndsAt, now); err != nil {
			return err
		}
		return errors.WithMessage(token.Transfer(st, params.Signer, params.Vault, params.Amount), "fund vault")
	})
}

// DistributeRewards releases today's share of the vault to the pool index
// and returns the amount released.
func (p *Program) DistributeRewards(pool, signer base.Address) (uint64, error) {
	ev := &logdb.Event{Op: OpDistributeRewards, Pool: pool, Signer: signer}
	err := p.exec(ev, func(st *state.Stage, now uint64) error {
		rp, err := st.Pool(pool)
		if err != nil {
			return err
		}
		if err := checkSigner(signer, rp.Authorities.Distribute); err != nil {
			return err
		}
		ev.Amount, err = rp.DistributeRewards(now)
		return err
	})
	if err != nil {
		return 0, err
	}
	metricDistributedTokens().Add(int64(ev.Amount))
	return ev.Amount, nil
}

// Claim pays the mining's accrued rewards out of the vault and returns the
// amount paid.
func (p *Program) Claim(params ClaimParams) (uint64, error) {
	ev := miningEvent(OpClaim, params.MiningRef, 0)
	err := p.exec(ev, func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleOwner, now)
		if err != nil {
			return err
		}
		if err := checkVault(s.Pool(), params.Pool, params.Vault); err != nil {
			return err
		}
		if ev.Amount, err = s.Claim(); err != nil {
			return err
		}
		dest := params.Destination
		if dest.IsZero() {
			dest = params.Owner
		}
		return errors.WithMessage(token.Transfer(st, params.Vault, dest, ev.Amount), "pay rewards")
	})
	if err != nil {
		return 0, err
	}
	return ev.Amount, nil
}

func (p *Program) Slash(params SlashParams) error {
	return p.exec(miningEvent(OpSlash, params.MiningRef, params.Amount), func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		return s.Slash(params.Amount)
	})
}

func (p *Program) RestrictClaiming(ref MiningRef) error {
	return p.exec(miningEvent(OpRestrictClaiming, ref, 0), func(st *state.Stage, now uint64) error {
		s, err := session(st, ref, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		return s.Mining().RestrictClaiming()
	})
}

func (p *Program) AllowClaiming(ref MiningRef) error {
	return p.exec(miningEvent(OpAllowClaiming, ref, 0), func(st *state.Stage, now uint64) error {
		s, err := session(st, ref, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		return s.Mining().AllowClaiming()
	})
}

func (p *Program) RestrictWithdrawal(params RestrictWithdrawalParams) error {
	return p.exec(miningEvent(OpRestrictWithdrawal, params.MiningRef, 0), func(st *state.Stage, now uint64) error {
		s, err := session(st, params.MiningRef, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		return s.Mining().RestrictWithdrawal(params.Until, now)
	})
}

func (p *Program) AllowWithdrawal(ref MiningRef) error {
	return p.exec(miningEvent(OpAllowWithdrawal, ref, 0), func(st *state.Stage, now uint64) error {
		s, err := session(st, ref, roleDepositAuthority, now)
		if err != nil {
			return err
		}
		return s.Mining().AllowWithdrawal()
	})
}

// CloseMining deletes a mining that holds neither delegated stake nor
// unclaimed rewards.
func (p *Program) CloseMining(ref MiningRef) error {
	return p.exec(miningEvent(OpCloseMining, ref, 0), func(st *state.Stage, now uint64) error {
		s, err := session(st, ref, roleOwner, now)
		if err != nil {
			return err
		}
		if err := s.CheckClosable(); err != nil {
			return err
		}
		return st.DeleteMining(ref.Mining)
	})
}
