// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "github.com/vechain/rewards/base"

// Event records one successful operation.
type Event struct {
	Seq       int64
	Op        string
	Pool      base.Address
	Mining    *base.Address // nil for pool level operations
	Signer    base.Address
	Amount    uint64
	Timestamp uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventFilter selects events. Nil fields match everything.
type EventFilter struct {
	Pool    *base.Address
	Mining  *base.Address
	Op      string
	After   int64 // only events with a greater sequence number
	Order   Order
	Options *Options
}
