// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token moves the reward token between balances.
package token

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/reverts"
)

// Balances is the balance sheet transfers operate on.
type Balances interface {
	Balance(addr base.Address) (uint64, error)
	SetBalance(addr base.Address, v uint64) error
}

// Transfer moves amount from one balance to another. Zero amounts are a no-op.
func Transfer(b Balances, from, to base.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fromBal, err := b.Balance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return errors.Wrapf(reverts.ErrInsufficientFunds, "%s has %d, needs %d", from, fromBal, amount)
	}
	if err := b.SetBalance(from, fromBal-amount); err != nil {
		return err
	}
	toBal, err := b.Balance(to)
	if err != nil {
		return err
	}
	sum, err := fixedpoint.AddU64(toBal, amount)
	if err != nil {
		return err
	}
	return b.SetBalance(to, sum)
}

// Mint credits amount to addr out of thin air. Used for genesis allocations.
func Mint(b Balances, to base.Address, amount uint64) error {
	bal, err := b.Balance(to)
	if err != nil {
		return err
	}
	sum, err := fixedpoint.AddU64(bal, amount)
	if err != nil {
		return err
	}
	return b.SetBalance(to, sum)
}
