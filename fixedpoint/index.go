// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedpoint

import (
	"encoding/binary"
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/reverts"
)

// IndexBits is the width of an index value.
const IndexBits = 128

// Index is a cumulative reward-per-share value scaled by Precision.
// It is bounded to 128 bits; the zero value is a valid zero index.
type Index struct {
	v uint256.Int
}

var (
	_ json.Marshaler   = (*Index)(nil)
	_ json.Unmarshaler = (*Index)(nil)

	precision = uint256.NewInt(Precision)
)

// NewIndex creates an index from a raw scaled value.
func NewIndex(raw uint64) Index {
	var i Index
	i.v.SetUint64(raw)
	return i
}

// ParseIndex parses a decimal index value.
func ParseIndex(s string) (Index, error) {
	var i Index
	if err := i.v.SetFromDecimal(s); err != nil {
		return Index{}, errors.Wrap(err, "parse index")
	}
	if i.v.BitLen() > IndexBits {
		return Index{}, reverts.ErrMathOverflow
	}
	return i, nil
}

// IndexFromBytes16 decodes a little-endian 16 byte index.
func IndexFromBytes16(b [16]byte) Index {
	var i Index
	i.v[0] = binary.LittleEndian.Uint64(b[:8])
	i.v[1] = binary.LittleEndian.Uint64(b[8:])
	return i
}

// Bytes16 encodes the index as 16 little-endian bytes.
func (i Index) Bytes16() (b [16]byte) {
	binary.LittleEndian.PutUint64(b[:8], i.v[0])
	binary.LittleEndian.PutUint64(b[8:], i.v[1])
	return
}

// Add returns i+o, failing when the sum exceeds 128 bits.
func (i Index) Add(o Index) (Index, error) {
	var r Index
	r.v.Add(&i.v, &o.v)
	if r.v.BitLen() > IndexBits {
		return Index{}, reverts.ErrMathOverflow
	}
	return r, nil
}

// Sub returns i-o, failing on underflow.
func (i Index) Sub(o Index) (Index, error) {
	var r Index
	if _, underflow := r.v.SubOverflow(&i.v, &o.v); underflow {
		return Index{}, reverts.ErrMathOverflow
	}
	return r, nil
}

// Cmp compares i and o, returning -1, 0 or +1.
func (i Index) Cmp(o Index) int {
	return i.v.Cmp(&o.v)
}

func (i Index) IsZero() bool {
	return i.v.IsZero()
}

func (i Index) String() string {
	return i.v.Dec()
}

// MarshalJSON encodes the index as a decimal string; 128 bit values do not
// survive a round trip through JSON numbers.
func (i *Index) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Index) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseIndex(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// IndexDelta returns rewards*Precision/totalShare.
func IndexDelta(rewards, totalShare uint64) (Index, error) {
	if totalShare == 0 {
		return Index{}, reverts.ErrDivisionByZero
	}
	var d Index
	d.v.SetUint64(rewards)
	d.v.Mul(&d.v, precision)
	d.v.Div(&d.v, uint256.NewInt(totalShare))
	return d, nil
}

// Accrued returns (target-base)*share/Precision, the rewards earned by share
// while the index moved from base to target.
func Accrued(target, base Index, share uint64) (uint64, error) {
	delta, err := target.Sub(base)
	if err != nil {
		return 0, err
	}
	var r uint256.Int
	// delta < 2^128 and share < 2^64, the product fits 256 bits
	r.Mul(&delta.v, uint256.NewInt(share))
	r.Div(&r, precision)
	if !r.IsUint64() {
		return 0, reverts.ErrInvalidPrimitiveConversion
	}
	return r.Uint64(), nil
}

// DailyRate splits tokens evenly across days using the precision scale.
func DailyRate(tokens, days uint64) (uint64, error) {
	if days == 0 {
		return 0, reverts.ErrDivisionByZero
	}
	var r uint256.Int
	r.SetUint64(tokens)
	r.Mul(&r, precision)
	r.Div(&r, uint256.NewInt(days))
	r.Div(&r, precision)
	return r.Uint64(), nil
}
