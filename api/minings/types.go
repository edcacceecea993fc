// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package minings

import (
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/lockup"
	"github.com/vechain/rewards/reward"
)

type StakeDiff struct {
	Day    uint64 `json:"day"`
	Amount uint64 `json:"amount"`
}

type Mining struct {
	Address                   base.Address     `json:"address"`
	Pool                      base.Address     `json:"pool"`
	Owner                     base.Address     `json:"owner"`
	Share                     uint64           `json:"share"`
	StakeFromOthers           uint64           `json:"stakeFromOthers"`
	UnclaimedRewards          uint64           `json:"unclaimedRewards"`
	Index                     fixedpoint.Index `json:"index"`
	StakeDiffs                []StakeDiff      `json:"stakeDiffs"`
	ClaimingRestricted        bool             `json:"claimingRestricted"`
	WithdrawalRestricted      bool             `json:"withdrawalRestricted"`
	WithdrawalRestrictedUntil uint64           `json:"withdrawalRestrictedUntil"`
}

func convertMining(addr base.Address, m *reward.Mining) *Mining {
	out := &Mining{
		Address:                   addr,
		Pool:                      m.Pool,
		Owner:                     m.Owner,
		Share:                     m.Share,
		StakeFromOthers:           m.StakeFromOthers,
		UnclaimedRewards:          m.UnclaimedRewards,
		Index:                     m.Index,
		StakeDiffs:                make([]StakeDiff, 0, m.StakeDiffs.Len()),
		ClaimingRestricted:        m.ClaimingRestricted,
		WithdrawalRestricted:      m.WithdrawalRestricted,
		WithdrawalRestrictedUntil: m.WithdrawalRestrictedUntil,
	}
	m.StakeDiffs.Ascend(func(day, amount uint64) bool {
		out.StakeDiffs = append(out.StakeDiffs, StakeDiff{day, amount})
		return true
	})
	return out
}

// Caller identifies who acts on a mining: Owner derives the mining address,
// Signer is checked against the required authority.
type Caller struct {
	Owner  base.Address `json:"owner"`
	Signer base.Address `json:"signer"`
}

type DepositRequest struct {
	Caller
	Amount   uint64        `json:"amount"`
	Period   lockup.Period `json:"period"`
	Delegate *base.Address `json:"delegate,omitempty"`
}

type WithdrawRequest struct {
	Caller
	Amount   uint64        `json:"amount"`
	Delegate *base.Address `json:"delegate,omitempty"`
}

type ExtendRequest struct {
	Caller
	OldPeriod        lockup.Period `json:"oldPeriod"`
	NewPeriod        lockup.Period `json:"newPeriod"`
	OldStart         uint64        `json:"oldStart"`
	BaseAmount       uint64        `json:"baseAmount"`
	AdditionalAmount uint64        `json:"additionalAmount"`
	Delegate         *base.Address `json:"delegate,omitempty"`
}

type ChangeDelegateRequest struct {
	Caller
	OldDelegate  *base.Address `json:"oldDelegate,omitempty"`
	NewDelegate  *base.Address `json:"newDelegate,omitempty"`
	StakedAmount uint64        `json:"stakedAmount"`
}

type ClaimRequest struct {
	Caller
	Vault       base.Address `json:"vault"`
	Destination base.Address `json:"destination"`
}

type SlashRequest struct {
	Caller
	Amount uint64 `json:"amount"`
}

type RestrictWithdrawalRequest struct {
	Caller
	Until uint64 `json:"until"`
}
