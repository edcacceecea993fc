// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/daymap"
	"github.com/vechain/rewards/fixedpoint"
	"github.com/vechain/rewards/reward"
)

// Record tags, the first byte of every encoded record.
const (
	tagPool   byte = 1
	tagMining byte = 2
)

const (
	addrLen      = base.AddressLength
	indexLen     = 16
	mapHeaderLen = 8 // capacity u32, length u32

	diffEntryLen  = 8 + 8
	indexEntryLen = 8 + indexLen

	poolHeaderLen   = 1 + 4*addrLen + 8 + indexLen + 8 + 8
	miningHeaderLen = 1 + 2*addrLen + 3*8 + indexLen + 1 + 8
)

const (
	flagClaimingRestricted byte = 1 << iota
	flagWithdrawalRestricted
)

var errCorrupted = errors.New("corrupted record")

// PoolSize is the encoded size of a pool whose maps have the given capacities.
func PoolSize(diffsCap, cumulativeCap int) int {
	return poolHeaderLen + mapHeaderLen + diffsCap*diffEntryLen + mapHeaderLen + cumulativeCap*indexEntryLen
}

// MiningSize is the encoded size of a mining whose diff map has the given capacity.
func MiningSize(diffsCap int) int {
	return miningHeaderLen + mapHeaderLen + diffsCap*diffEntryLen
}

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v byte)           { e.buf = append(e.buf, v) }
func (e *encoder) u32(v uint32)        { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) u64(v uint64)        { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) addr(a base.Address) { e.buf = append(e.buf, a[:]...) }

func (e *encoder) index(i fixedpoint.Index) {
	b := i.Bytes16()
	e.buf = append(e.buf, b[:]...)
}

// ledger writes every slot of the capacity; unused slots are zero.
func (e *encoder) ledger(l daymap.Ledger) {
	e.u32(uint32(l.Capacity()))
	e.u32(uint32(l.Len()))
	l.Ascend(func(day uint64, v uint64) bool {
		e.u64(day)
		e.u64(v)
		return true
	})
	e.buf = append(e.buf, make([]byte, (l.Capacity()-l.Len())*diffEntryLen)...)
}

func (e *encoder) indexMap(m *daymap.Map[fixedpoint.Index]) {
	e.u32(uint32(m.Capacity()))
	e.u32(uint32(m.Len()))
	m.Ascend(func(day uint64, v fixedpoint.Index) bool {
		e.u64(day)
		e.index(v)
		return true
	})
	e.buf = append(e.buf, make([]byte, (m.Capacity()-m.Len())*indexEntryLen)...)
}

type decoder struct {
	buf []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if len(d.buf) < n {
		d.err = errors.Wrap(errCorrupted, "unexpected end of record")
		return make([]byte, n)
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *decoder) u8() byte           { return d.take(1)[0] }
func (d *decoder) u32() uint32        { return binary.LittleEndian.Uint32(d.take(4)) }
func (d *decoder) u64() uint64        { return binary.LittleEndian.Uint64(d.take(8)) }
func (d *decoder) addr() base.Address { return base.BytesToAddress(d.take(addrLen)) }

func (d *decoder) index() fixedpoint.Index {
	var b [indexLen]byte
	copy(b[:], d.take(indexLen))
	return fixedpoint.IndexFromBytes16(b)
}

func (d *decoder) mapHeader(entryLen int) (capacity, length int) {
	capacity, length = int(d.u32()), int(d.u32())
	if d.err == nil && length > capacity {
		d.err = errors.Wrapf(errCorrupted, "map length %d exceeds capacity %d", length, capacity)
	}
	if d.err == nil && len(d.buf) < capacity*entryLen {
		d.err = errors.Wrap(errCorrupted, "map slots truncated")
	}
	return
}

// ascending rejects out of order or duplicated keys.
func (d *decoder) ascending(prev *uint64, first bool, day uint64) {
	if d.err == nil && !first && day <= *prev {
		d.err = errors.Wrapf(errCorrupted, "map key %d not ascending", day)
	}
	*prev = day
}

func (d *decoder) ledger() daymap.Ledger {
	capacity, length := d.mapHeader(diffEntryLen)
	if d.err != nil {
		return daymap.NewLedger(0)
	}
	l := daymap.NewLedger(capacity)
	var prev uint64
	for i := 0; i < length; i++ {
		day, v := d.u64(), d.u64()
		d.ascending(&prev, i == 0, day)
		if d.err == nil {
			if err := l.Set(day, v); err != nil {
				d.err = errors.Wrap(errCorrupted, err.Error())
			}
		}
	}
	d.take((capacity - length) * diffEntryLen)
	return l
}

func (d *decoder) indexMap() *daymap.Map[fixedpoint.Index] {
	capacity, length := d.mapHeader(indexEntryLen)
	if d.err != nil {
		return daymap.New[fixedpoint.Index](0)
	}
	m := daymap.New[fixedpoint.Index](capacity)
	var prev uint64
	for i := 0; i < length; i++ {
		day, v := d.u64(), d.index()
		d.ascending(&prev, i == 0, day)
		if d.err == nil {
			if err := m.Set(day, v); err != nil {
				d.err = errors.Wrap(errCorrupted, err.Error())
			}
		}
	}
	d.take((capacity - length) * indexEntryLen)
	return m
}

func (d *decoder) finish() error {
	if d.err == nil && len(d.buf) != 0 {
		d.err = errors.Wrapf(errCorrupted, "%d trailing bytes", len(d.buf))
	}
	return d.err
}

// EncodePool serializes p into its fixed width little endian layout.
func EncodePool(p *reward.Pool) []byte {
	c := &p.Calculator
	e := encoder{make([]byte, 0, PoolSize(c.StakeDiffs.Capacity(), c.CumulativeIndex.Capacity()))}
	e.u8(tagPool)
	e.addr(p.Deposit)
	e.addr(p.Authorities.Distribute)
	e.addr(p.Fill)
	e.addr(p.RewardMint)
	e.u64(p.TotalShare)
	e.index(c.Index)
	e.u64(c.DistributionEndsAt)
	e.u64(c.TokensAvailable)
	e.ledger(c.StakeDiffs)
	e.indexMap(c.CumulativeIndex)
	return e.buf
}

func DecodePool(data []byte) (*reward.Pool, error) {
	d := decoder{buf: data}
	if tag := d.u8(); d.err == nil && tag != tagPool {
		return nil, errors.Wrapf(errCorrupted, "tag %d is not a pool", tag)
	}
	p := &reward.Pool{}
	p.Deposit = d.addr()
	p.Authorities.Distribute = d.addr()
	p.Fill = d.addr()
	p.RewardMint = d.addr()
	p.TotalShare = d.u64()
	p.Calculator.Index = d.index()
	p.Calculator.DistributionEndsAt = d.u64()
	p.Calculator.TokensAvailable = d.u64()
	p.Calculator.StakeDiffs = d.ledger()
	p.Calculator.CumulativeIndex = d.indexMap()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return p, nil
}

// EncodeMining serializes m into its fixed width little endian layout.
func EncodeMining(m *reward.Mining) []byte {
	e := encoder{make([]byte, 0, MiningSize(m.StakeDiffs.Capacity()))}
	e.u8(tagMining)
	e.addr(m.Pool)
	e.addr(m.Owner)
	e.u64(m.Share)
	e.u64(m.StakeFromOthers)
	e.u64(m.UnclaimedRewards)
	e.index(m.Index)
	var flags byte
	if m.ClaimingRestricted {
		flags |= flagClaimingRestricted
	}
	if m.WithdrawalRestricted {
		flags |= flagWithdrawalRestricted
	}
	e.u8(flags)
	e.u64(m.WithdrawalRestrictedUntil)
	e.ledger(m.StakeDiffs)
	return e.buf
}

func DecodeMining(data []byte) (*reward.Mining, error) {
	d := decoder{buf: data}
	if tag := d.u8(); d.err == nil && tag != tagMining {
		return nil, errors.Wrapf(errCorrupted, "tag %d is not a mining", tag)
	}
	m := &reward.Mining{}
	m.Pool = d.addr()
	m.Owner = d.addr()
	m.Share = d.u64()
	m.StakeFromOthers = d.u64()
	m.UnclaimedRewards = d.u64()
	m.Index = d.index()
	flags := d.u8()
	if d.err == nil && flags&^(flagClaimingRestricted|flagWithdrawalRestricted) != 0 {
		d.err = errors.Wrapf(errCorrupted, "unknown flags %#x", flags)
	}
	m.ClaimingRestricted = flags&flagClaimingRestricted != 0
	m.WithdrawalRestricted = flags&flagWithdrawalRestricted != 0
	m.WithdrawalRestrictedUntil = d.u64()
	m.StakeDiffs = d.ledger()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeBalance(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func decodeBalance(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, errors.Wrapf(errCorrupted, "balance of %d bytes", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}
