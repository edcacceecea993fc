// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/reward"
	"github.com/vechain/rewards/state"
)

// signerRole names who must sign a mining operation.
type signerRole int

const (
	roleDepositAuthority signerRole = iota
	roleOwner
)

func checkSigner(signer, expected base.Address) error {
	if signer != expected {
		return errors.Wrapf(reverts.ErrInvalidAuthority, "signer %s", signer)
	}
	return nil
}

func checkDerived(addr, expected base.Address) error {
	if addr != expected {
		return errors.Wrapf(reverts.ErrInvalidDerivedAddress, "%s", addr)
	}
	return nil
}

// loadMining loads and authorizes the pool and mining ref points to.
func loadMining(st *state.Stage, ref MiningRef, role signerRole) (*reward.Pool, *reward.Mining, error) {
	pool, err := st.Pool(ref.Pool)
	if err != nil {
		return nil, nil, err
	}
	switch role {
	case roleDepositAuthority:
		err = checkSigner(ref.Signer, pool.Deposit)
	case roleOwner:
		err = checkSigner(ref.Signer, ref.Owner)
	}
	if err != nil {
		return nil, nil, err
	}
	if err := checkDerived(ref.Mining, base.MiningAddress(ref.Owner, ref.Pool)); err != nil {
		return nil, nil, err
	}
	m, err := st.Mining(ref.Mining)
	if err != nil {
		return nil, nil, err
	}
	if m.Owner != ref.Owner || m.Pool != ref.Pool {
		return nil, nil, errors.Wrapf(reverts.ErrInvalidAccountOwner, "mining %s", ref.Mining)
	}
	return pool, m, nil
}

// session loads, authorizes and reconciles the mining ref points to.
func session(st *state.Stage, ref MiningRef, role signerRole, now uint64) (*reward.Session, error) {
	pool, m, err := loadMining(st, ref, role)
	if err != nil {
		return nil, err
	}
	return pool.Reconcile(m, now)
}

// delegate loads the mining at addr as a delegate of s. A nil addr means no
// delegate.
func delegate(st *state.Stage, s *reward.Session, addr *base.Address) (*reward.Delegate, error) {
	if addr == nil {
		return nil, nil
	}
	m, err := st.Mining(*addr)
	if err != nil {
		return nil, errors.WithMessage(err, "delegate")
	}
	if err := checkDerived(*addr, base.MiningAddress(m.Owner, m.Pool)); err != nil {
		return nil, err
	}
	return s.Delegate(m)
}

func checkVault(pool *reward.Pool, poolAddr, vault base.Address) error {
	return checkDerived(vault, base.VaultAddress(poolAddr, pool.RewardMint))
}
