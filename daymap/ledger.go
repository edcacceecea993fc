// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package daymap

import (
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/reverts"
)

// Ledger schedules decrements of a weighted stake by the day they take effect.
type Ledger struct {
	*Map[uint64]
}

func NewLedger(capacity int) Ledger {
	return Ledger{New[uint64](capacity)}
}

// Add schedules amount more on day. Zero amounts are not recorded.
func (l Ledger) Add(day, amount uint64) error {
	if amount == 0 {
		return nil
	}
	cur, _ := l.Get(day)
	sum, err := fixedpoint.AddU64(cur, amount)
	if err != nil {
		return err
	}
	return l.Set(day, sum)
}

// Reduce cancels amount of the decrement scheduled on day, removing the
// entry once it reaches zero.
func (l Ledger) Reduce(day, amount uint64) error {
	cur, ok := l.Get(day)
	if !ok {
		return reverts.ErrNoModifierAtDate
	}
	left, err := fixedpoint.SubU64(cur, amount)
	if err != nil {
		return err
	}
	if left == 0 {
		l.Delete(day)
		return nil
	}
	return l.Set(day, left)
}

// Consume applies every decrement due by today to total.
func (l Ledger) Consume(today, total uint64) (uint64, error) {
	err := l.DrainDue(today, func(_ uint64, diff uint64) error {
		var err error
		total, err = fixedpoint.SubU64(total, diff)
		return err
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Sum returns the total of all scheduled decrements.
func (l Ledger) Sum() (uint64, error) {
	var (
		sum uint64
		err error
	)
	l.Ascend(func(_ uint64, v uint64) bool {
		sum, err = fixedpoint.AddU64(sum, v)
		return err == nil
	})
	return sum, err
}

func (l Ledger) Clone() Ledger {
	return Ledger{l.Map.Clone()}
}
