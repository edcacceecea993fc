// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/program"
	"github.com/vechain/rewards/reward"
)

type DayAmount struct {
	Day    uint64 `json:"day"`
	Amount uint64 `json:"amount"`
}

type DayIndex struct {
	Day   uint64           `json:"day"`
	Index fixedpoint.Index `json:"index"`
}

type Pool struct {
	Address             base.Address     `json:"address"`
	Vault               base.Address     `json:"vault"`
	DepositAuthority    base.Address     `json:"depositAuthority"`
	DistributeAuthority base.Address     `json:"distributeAuthority"`
	FillAuthority       base.Address     `json:"fillAuthority"`
	RewardMint          base.Address     `json:"rewardMint"`
	TotalShare          uint64           `json:"totalShare"`
	Index               fixedpoint.Index `json:"index"`
	DistributionEndsAt  uint64           `json:"distributionEndsAt"`
	TokensAvailable     uint64           `json:"tokensAvailable"`
	StakeDiffs          []DayAmount      `json:"stakeDiffs"`
	CumulativeIndex     []DayIndex       `json:"cumulativeIndex"`
}

func convertPool(addr base.Address, p *reward.Pool) *Pool {
	c := &p.Calculator
	out := &Pool{
		Address:             addr,
		Vault:               base.VaultAddress(addr, p.RewardMint),
		DepositAuthority:    p.Deposit,
		DistributeAuthority: p.Authorities.Distribute,
		FillAuthority:       p.Fill,
		RewardMint:          p.RewardMint,
		TotalShare:          p.TotalShare,
		Index:               c.Index,
		DistributionEndsAt:  c.DistributionEndsAt,
		TokensAvailable:     c.TokensAvailable,
		StakeDiffs:          make([]DayAmount, 0, c.StakeDiffs.Len()),
		CumulativeIndex:     make([]DayIndex, 0, c.CumulativeIndex.Len()),
	}
	c.StakeDiffs.Ascend(func(day, amount uint64) bool {
		out.StakeDiffs = append(out.StakeDiffs, DayAmount{day, amount})
		return true
	})
	c.CumulativeIndex.Ascend(func(day uint64, index fixedpoint.Index) bool {
		out.CumulativeIndex = append(out.CumulativeIndex, DayIndex{day, index})
		return true
	})
	return out
}

type InitPoolRequest struct {
	Payer base.Address `json:"payer"`
	program.InitPoolParams
}

type FillRequest struct {
	Vault              base.Address `json:"vault"`
	Signer             base.Address `json:"signer"`
	Amount             uint64       `json:"amount"`
	DistributionEndsAt uint64       `json:"distributionEndsAt"`
}

type SignerRequest struct {
	Signer base.Address `json:"signer"`
}

type InitMiningRequest struct {
	Owner base.Address `json:"owner"`
}

type Event struct {
	Seq       int64         `json:"seq"`
	Op        string        `json:"op"`
	Pool      base.Address  `json:"pool"`
	Mining    *base.Address `json:"mining,omitempty"`
	Signer    base.Address  `json:"signer"`
	Amount    uint64        `json:"amount"`
	Timestamp uint64        `json:"timestamp"`
}

// ConvertEvent converts a stored event into its json form.
func ConvertEvent(ev *logdb.Event) *Event {
	return &Event{
		Seq:       ev.Seq,
		Op:        ev.Op,
		Pool:      ev.Pool,
		Mining:    ev.Mining,
		Signer:    ev.Signer,
		Amount:    ev.Amount,
		Timestamp: ev.Timestamp,
	}
}

func convertEvents(events []*logdb.Event) []*Event {
	out := make([]*Event, 0, len(events))
	for _, ev := range events {
		out = append(out, ConvertEvent(ev))
	}
	return out
}
