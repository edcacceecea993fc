// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lockup

import (
	"fmt"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/reverts"
)

// Period is a lockup selection. The numeric values are stored in records and
// must stay stable.
type Period uint8

const (
	None Period = iota
	ThreeMonths
	SixMonths
	OneYear
	Flex
)

type policy struct {
	name       string
	multiplier uint64
	days       uint64
}

var policies = map[Period]policy{
	ThreeMonths: {"three_months", 2, 90},
	SixMonths:   {"six_months", 4, 180},
	OneYear:     {"one_year", 6, 365},
	Flex:        {"flex", 1, 5},
}

// Valid reports whether p can back a deposit.
func (p Period) Valid() bool {
	_, ok := policies[p]
	return ok
}

// Multiplier returns the weight applied to an amount locked for p.
func (p Period) Multiplier() (uint64, error) {
	pol, ok := policies[p]
	if !ok {
		return 0, reverts.ErrInvalidLockupPeriod
	}
	return pol.multiplier, nil
}

// Days returns the lockup duration in days.
func (p Period) Days() (uint64, error) {
	pol, ok := policies[p]
	if !ok {
		return 0, reverts.ErrInvalidLockupPeriod
	}
	return pol.days, nil
}

// EndTimestamp returns the day on which a lockup started at start expires.
func (p Period) EndTimestamp(start uint64) (uint64, error) {
	days, err := p.Days()
	if err != nil {
		return 0, err
	}
	return base.StartOfDay(start) + base.Days(days), nil
}

func (p Period) String() string {
	if pol, ok := policies[p]; ok {
		return pol.name
	}
	if p == None {
		return "none"
	}
	return fmt.Sprintf("period(%d)", uint8(p))
}

// Parse converts the text form of a period.
func Parse(s string) (Period, error) {
	for p, pol := range policies {
		if pol.name == s {
			return p, nil
		}
	}
	return None, reverts.ErrInvalidLockupPeriod
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, reverts.ErrInvalidLockupPeriod
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
