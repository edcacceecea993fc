// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedpoint provides the checked integer arithmetic used by reward
// accounting. Ratios are scaled by Precision; no floating point is involved.
package fixedpoint

import (
	"math/bits"

	"github.com/vechain/rewards/reverts"
)

// Precision is the scale of every index value.
const Precision uint64 = 10_000_000_000_000_000

// AddU64 returns a+b, failing on overflow.
func AddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, reverts.ErrMathOverflow
	}
	return sum, nil
}

// SubU64 returns a-b, failing on underflow.
func SubU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, reverts.ErrMathOverflow
	}
	return diff, nil
}

// MulU64 returns a*b, failing on overflow.
func MulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, reverts.ErrMathOverflow
	}
	return lo, nil
}

// SatSubU64 returns a-b clamped at zero.
func SatSubU64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
