// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/kv"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/reward"
)

var errCommitted = errors.New("stage already committed")

// staged is a record loaded into or created by a stage.
type staged[T any] struct {
	value   T
	raw     []byte // as loaded, nil when absent from the store
	dirty   bool
	deleted bool
}

// Stage buffers record changes until Commit.
type Stage struct {
	state     *State
	pools     map[base.Address]*staged[*reward.Pool]
	minings   map[base.Address]*staged[*reward.Mining]
	balances  map[base.Address]*staged[uint64]
	committed bool
}

func newStage(s *State) *Stage {
	return &Stage{
		state:    s,
		pools:    make(map[base.Address]*staged[*reward.Pool]),
		minings:  make(map[base.Address]*staged[*reward.Mining]),
		balances: make(map[base.Address]*staged[uint64]),
	}
}

func (st *Stage) loadPool(addr base.Address) (*staged[*reward.Pool], error) {
	if e, ok := st.pools[addr]; ok {
		return e, nil
	}
	raw, err := st.state.load(poolBucket, st.state.pools, addr)
	if err != nil || raw == nil {
		return nil, err
	}
	p, err := DecodePool(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode pool %s", addr)
	}
	installPoolGrowth(p)
	e := &staged[*reward.Pool]{value: p, raw: raw}
	st.pools[addr] = e
	return e, nil
}

// Pool returns the pool at addr. Changes to the returned value are committed
// with the stage.
func (st *Stage) Pool(addr base.Address) (*reward.Pool, error) {
	e, err := st.loadPool(addr)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.Wrapf(reverts.ErrAccountNotFound, "pool %s", addr)
	}
	return e.value, nil
}

// CreatePool stores a new pool at addr.
func (st *Stage) CreatePool(addr base.Address, p *reward.Pool) error {
	e, err := st.loadPool(addr)
	if err != nil {
		return err
	}
	if e != nil {
		return errors.Wrapf(reverts.ErrAccountAlreadyInitialized, "pool %s", addr)
	}
	installPoolGrowth(p)
	st.pools[addr] = &staged[*reward.Pool]{value: p, dirty: true}
	return nil
}

func (st *Stage) loadMining(addr base.Address) (*staged[*reward.Mining], error) {
	if e, ok := st.minings[addr]; ok {
		if e.deleted {
			return nil, nil
		}
		return e, nil
	}
	raw, err := st.state.load(miningBucket, st.state.minings, addr)
	if err != nil || raw == nil {
		return nil, err
	}
	m, err := DecodeMining(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode mining %s", addr)
	}
	installMiningGrowth(m)
	e := &staged[*reward.Mining]{value: m, raw: raw}
	st.minings[addr] = e
	return e, nil
}

// Mining returns the mining at addr. Changes to the returned value are
// committed with the stage.
func (st *Stage) Mining(addr base.Address) (*reward.Mining, error) {
	e, err := st.loadMining(addr)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.Wrapf(reverts.ErrAccountNotFound, "mining %s", addr)
	}
	return e.value, nil
}

// CreateMining stores a new mining at addr.
func (st *Stage) CreateMining(addr base.Address, m *reward.Mining) error {
	e, err := st.loadMining(addr)
	if err != nil {
		return err
	}
	if e != nil {
		return errors.Wrapf(reverts.ErrAccountAlreadyInitialized, "mining %s", addr)
	}
	installMiningGrowth(m)
	if prev, ok := st.minings[addr]; ok {
		// re-created after a delete in the same stage
		prev.value, prev.dirty, prev.deleted = m, true, false
		return nil
	}
	st.minings[addr] = &staged[*reward.Mining]{value: m, dirty: true}
	return nil
}

// DeleteMining removes the mining at addr.
func (st *Stage) DeleteMining(addr base.Address) error {
	e, err := st.loadMining(addr)
	if err != nil {
		return err
	}
	if e == nil {
		return errors.Wrapf(reverts.ErrAccountNotFound, "mining %s", addr)
	}
	e.deleted = true
	return nil
}

// Balance returns the token balance of addr, zero when never funded.
func (st *Stage) Balance(addr base.Address) (uint64, error) {
	if e, ok := st.balances[addr]; ok {
		return e.value, nil
	}
	raw, err := st.state.load(balanceBucket, st.state.balances, addr)
	if err != nil {
		return 0, err
	}
	e := &staged[uint64]{raw: raw}
	if raw != nil {
		if e.value, err = decodeBalance(raw); err != nil {
			return 0, errors.Wrapf(err, "decode balance %s", addr)
		}
	}
	st.balances[addr] = e
	return e.value, nil
}

// SetBalance sets the token balance of addr.
func (st *Stage) SetBalance(addr base.Address, v uint64) error {
	if _, err := st.Balance(addr); err != nil {
		return err
	}
	e := st.balances[addr]
	e.value, e.dirty = v, true
	return nil
}

type pendingWrite struct {
	cacheKey string
	data     []byte // nil for deletion
}

func stage[T any](batch kv.Batch, bucket kv.Bucket, entries map[base.Address]*staged[T], encode func(T) []byte, writes []pendingWrite) ([]pendingWrite, error) {
	putter := bucket.NewPutter(batch)
	for addr, e := range entries {
		cacheKey := string(bucket.Key(addr.Bytes()))
		if e.deleted {
			if e.raw == nil {
				continue
			}
			if err := putter.Delete(addr.Bytes()); err != nil {
				return nil, err
			}
			writes = append(writes, pendingWrite{cacheKey: cacheKey})
			continue
		}
		if e.raw == nil && !e.dirty {
			continue
		}
		data := encode(e.value)
		if e.raw != nil && bytes.Equal(data, e.raw) {
			continue
		}
		if err := putter.Put(addr.Bytes(), data); err != nil {
			return nil, err
		}
		writes = append(writes, pendingWrite{cacheKey, data})
	}
	return writes, nil
}

// Commit writes every changed record in one batch. The stage cannot be used
// afterwards.
func (st *Stage) Commit() error {
	if st.committed {
		return errCommitted
	}
	st.committed = true

	batch := st.state.db.NewBatch()
	var (
		writes []pendingWrite
		err    error
	)
	if writes, err = stage(batch, poolBucket, st.pools, EncodePool, writes); err != nil {
		return errors.Wrap(err, "stage pools")
	}
	if writes, err = stage(batch, miningBucket, st.minings, EncodeMining, writes); err != nil {
		return errors.Wrap(err, "stage minings")
	}
	if writes, err = stage(batch, balanceBucket, st.balances, encodeBalance, writes); err != nil {
		return errors.Wrap(err, "stage balances")
	}
	for _, w := range writes {
		if len(w.data) > MaxRecordSize {
			return errors.Wrapf(reverts.ErrRecordTooLarge, "%d bytes", len(w.data))
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write batch")
	}
	for _, w := range writes {
		if w.data == nil {
			st.state.raw.Remove(w.cacheKey)
			metricRecordWrites().AddWithLabel(1, map[string]string{"kind": "delete"})
		} else {
			st.state.raw.Add(w.cacheKey, w.data)
			metricRecordWrites().AddWithLabel(1, map[string]string{"kind": "put"})
		}
	}
	return nil
}
