// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/lockup"
)

// Operation names, as recorded in the event log and metrics.
const (
	OpInitializePool     = "initialize_pool"
	OpInitializeMining   = "initialize_mining"
	OpDeposit            = "deposit"
	OpWithdraw           = "withdraw"
	OpExtend             = "extend"
	OpChangeDelegate     = "change_delegate"
	OpFillVault          = "fill_vault"
	OpDistributeRewards  = "distribute_rewards"
	OpClaim              = "claim"
	OpSlash              = "slash"
	OpRestrictClaiming   = "restrict_claiming"
	OpAllowClaiming      = "allow_claiming"
	OpRestrictWithdrawal = "restrict_withdrawal"
	OpAllowWithdrawal    = "allow_withdrawal"
	OpCloseMining        = "close_mining"
)

type InitPoolParams struct {
	DepositAuthority    base.Address `json:"depositAuthority"`
	DistributeAuthority base.Address `json:"distributeAuthority"`
	FillAuthority       base.Address `json:"fillAuthority"`
	RewardMint          base.Address `json:"rewardMint"`
}

// MiningRef locates a mining record and the identities it must match.
type MiningRef struct {
	Pool   base.Address `json:"pool"`
	Mining base.Address `json:"mining"`
	Owner  base.Address `json:"owner"`
	Signer base.Address `json:"signer"`
}

type DepositParams struct {
	MiningRef
	Amount   uint64        `json:"amount"`
	Period   lockup.Period `json:"period"`
	Delegate *base.Address `json:"delegate,omitempty"`
}

type WithdrawParams struct {
	MiningRef
	Amount   uint64        `json:"amount"`
	Delegate *base.Address `json:"delegate,omitempty"`
}

type ExtendParams struct {
	MiningRef
	OldPeriod        lockup.Period `json:"oldPeriod"`
	NewPeriod        lockup.Period `json:"newPeriod"`
	OldStart         uint64        `json:"oldStart"`
	BaseAmount       uint64        `json:"baseAmount"`
	AdditionalAmount uint64        `json:"additionalAmount"`
	Delegate         *base.Address `json:"delegate,omitempty"`
}

type ChangeDelegateParams struct {
	MiningRef
	OldDelegate  *base.Address `json:"oldDelegate,omitempty"`
	NewDelegate  *base.Address `json:"newDelegate,omitempty"`
	StakedAmount uint64        `json:"stakedAmount"`
}

type FillParams struct {
	Pool               base.Address `json:"pool"`
	Vault              base.Address `json:"vault"`
	Signer             base.Address `json:"signer"`
	Amount             uint64       `json:"amount"`
	DistributionEndsAt uint64       `json:"distributionEndsAt"`
}

type ClaimParams struct {
	MiningRef
	Vault base.Address `json:"vault"`
	// Destination receives the rewards; zero means the owner.
	Destination base.Address `json:"destination"`
}

type SlashParams struct {
	MiningRef
	Amount uint64 `json:"amount"`
}

type RestrictWithdrawalParams struct {
	MiningRef
	// Until lifts the restriction at that time; zero keeps it until allowed.
	Until uint64 `json:"until"`
}
