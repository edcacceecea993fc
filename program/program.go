// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package program exposes the reward operations. Each call runs alone, loads
// the records it touches into a stage, reconciles them to the current day,
// applies the transition and commits every change at once or none.
package program

import (
	"context"
	"strconv"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/reward"
	"github.com/vechain/rewards/state"
)

var logger = log.WithContext("pkg", "program")

type Program struct {
	mu      sync.Mutex
	state   *state.State
	logs    *logdb.LogDB
	clock   clockwork.Clock
	changed chan struct{}
}

// New creates a program over st. logs may be nil to disable the event
// history.
func New(st *state.State, logs *logdb.LogDB, clock clockwork.Clock) *Program {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Program{
		state:   st,
		logs:    logs,
		clock:   clock,
		changed: make(chan struct{}),
	}
}

// Now returns the current time in seconds.
func (p *Program) Now() uint64 {
	return uint64(p.clock.Now().Unix())
}

// exec runs fn on a fresh stage and commits it when fn succeeds. fn may fill
// in the event amount.
func (p *Program) exec(ev *logdb.Event, fn func(st *state.Stage, now uint64) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.clock.Now()
	now := uint64(start.Unix())

	st := p.state.NewStage()
	err := fn(st, now)
	if err == nil {
		err = st.Commit()
	}

	result := "ok"
	if err != nil {
		result = "error"
		if code, ok := reverts.CodeOf(err); ok {
			result = "revert_" + strconv.Itoa(int(code))
		}
	}
	metricOperationCount().AddWithLabel(1, map[string]string{"op": ev.Op, "result": result})
	metricOperationDuration().ObserveWithLabels(p.clock.Since(start).Milliseconds(), map[string]string{"op": ev.Op})

	if err != nil {
		logger.Debug("operation rejected", "op", ev.Op, "pool", ev.Pool, "err", err)
		return err
	}
	logger.Debug("operation applied", "op", ev.Op, "pool", ev.Pool, "amount", ev.Amount)

	if p.logs != nil {
		ev.Timestamp = now
		if _, err := p.logs.Insert(context.Background(), ev); err != nil {
			logger.Warn("failed to record event", "op", ev.Op, "err", err)
		}
	}
	close(p.changed)
	p.changed = make(chan struct{})
	return nil
}

// Changed returns a channel that is closed when the next operation commits.
func (p *Program) Changed() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changed
}

// Pool returns the stored pool at addr.
func (p *Program) Pool(addr base.Address) (*reward.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.NewStage().Pool(addr)
}

// Mining returns the stored mining at addr.
func (p *Program) Mining(addr base.Address) (*reward.Mining, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.NewStage().Mining(addr)
}

// ReconciledMining returns the mining at addr as it would be after a
// reconcile at the current time. Nothing is persisted.
func (p *Program) ReconciledMining(addr base.Address) (*reward.Mining, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.state.NewStage()
	m, err := st.Mining(addr)
	if err != nil {
		return nil, err
	}
	pool, err := st.Pool(m.Pool)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Reconcile(m, p.Now()); err != nil {
		return nil, err
	}
	return m, nil
}

// Balance returns the token balance of addr.
func (p *Program) Balance(addr base.Address) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.NewStage().Balance(addr)
}

// Pools lists every pool address.
func (p *Program) Pools() ([]base.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Pools()
}

// Events queries the operation history. It returns nil when the history is
// disabled.
func (p *Program) Events(ctx context.Context, filter *logdb.EventFilter) ([]*logdb.Event, error) {
	if p.logs == nil {
		return nil, nil
	}
	return p.logs.FilterEvents(ctx, filter)
}
