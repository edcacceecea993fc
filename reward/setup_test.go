// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/lockup"
)

// genesisDay is a day aligned start time for every scenario.
var genesisDay = base.Days(19_700)

type testEnv struct {
	poolAddr base.Address
	pool     *Pool
	minings  map[string]*Mining
	now      uint64
}

func newTestEnv() *testEnv {
	auth := Authorities{
		Deposit:    base.Derive("deposit"),
		Distribute: base.Derive("distribute"),
		Fill:       base.Derive("fill"),
	}
	return &testEnv{
		poolAddr: base.PoolAddress(auth.Deposit, auth.Fill),
		pool:     NewPool(auth, base.Derive("mint")),
		minings:  make(map[string]*Mining),
		now:      genesisDay,
	}
}

func (e *testEnv) mining(name string) *Mining {
	if name == "" {
		return nil
	}
	m, ok := e.minings[name]
	if !ok {
		m = NewMining(e.poolAddr, base.Derive(name))
		e.minings[name] = m
	}
	return m
}

func (e *testEnv) session(t *testing.T, name string) *Session {
	s, err := e.pool.Reconcile(e.mining(name), e.now)
	require.NoError(t, err, "reconcile %s", name)
	return s
}

func (e *testEnv) delegate(t *testing.T, s *Session, name string) *Delegate {
	d, err := s.Delegate(e.mining(name))
	require.NoError(t, err, "reconcile delegate %s", name)
	return d
}

// reconcileAll refreshes every mining and checks that the pool's total
// share matches the sum of the individual stakes.
func (e *testEnv) reconcileAll(t *testing.T) {
	var sum uint64
	for name := range e.minings {
		s := e.session(t, name)
		sum += s.Mining().Share + s.Mining().StakeFromOthers
		assert.LessOrEqual(t, s.Mining().Index.Cmp(e.pool.Calculator.Index), 0, "%s index ahead of pool", name)
	}
	assert.Equal(t, e.pool.TotalShare, sum, "total share does not match the minings")
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Deposit(name string, amount uint64, period lockup.Period, delegate string) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		s := st.env.session(t, name)
		err := s.Deposit(amount, period, st.env.delegate(t, s, delegate))
		if err != nil {
			t.Fatalf("failed to deposit %d for %s: %v", amount, name, err)
		}
		t.Logf("%s deposited %d for %s", name, amount, period)
	})
}

func (st *TestSequence) Withdraw(name string, amount uint64, delegate string) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		s := st.env.session(t, name)
		if err := s.Withdraw(amount, st.env.delegate(t, s, delegate)); err != nil {
			t.Fatalf("failed to withdraw %d for %s: %v", amount, name, err)
		}
		t.Logf("%s withdrew %d", name, amount)
	})
}

func (st *TestSequence) Extend(name string, e Extend, delegate string) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		s := st.env.session(t, name)
		if err := s.Extend(e, st.env.delegate(t, s, delegate)); err != nil {
			t.Fatalf("failed to extend stake of %s: %v", name, err)
		}
		t.Logf("%s extended %d from %s to %s", name, e.BaseAmount, e.OldPeriod, e.NewPeriod)
	})
}

func (st *TestSequence) AdvanceDays(n uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.now += base.Days(n)
		t.Logf("advanced %d days", n)
	})
}

// Fill adds amount to the vault, distributable until days from now.
func (st *TestSequence) Fill(amount uint64, days uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.env.pool.FillVault(amount, st.env.now+base.Days(days), st.env.now)
		if err != nil {
			t.Fatalf("failed to fill %d: %v", amount, err)
		}
		t.Logf("filled %d over %d days", amount, days)
	})
}

func (st *TestSequence) Distribute(expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		distributed, err := st.env.pool.DistributeRewards(st.env.now)
		if err != nil {
			t.Fatalf("failed to distribute: %v", err)
		}
		assert.Equal(t, expected, distributed, "distributed amount mismatch")
		t.Logf("distributed %d", distributed)
	})
}

func (st *TestSequence) Claim(name string, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		amount, err := st.env.session(t, name).Claim()
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", name, err)
		}
		assert.Equal(t, expected, amount, "%s claimed amount mismatch", name)
		t.Logf("%s claimed %d", name, amount)
	})
}

func (st *TestSequence) CheckConservation() *TestSequence {
	return st.AddFunc(st.env.reconcileAll)
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type MiningAssertions struct {
	env  *testEnv
	name string

	share           *uint64
	stakeFromOthers *uint64
	unclaimed       *uint64
	diffs           *int
}

func AssertMining(env *testEnv, name string) *MiningAssertions {
	return &MiningAssertions{env: env, name: name}
}

func (ma *MiningAssertions) Share(expected uint64) *MiningAssertions {
	ma.share = &expected
	return ma
}

func (ma *MiningAssertions) StakeFromOthers(expected uint64) *MiningAssertions {
	ma.stakeFromOthers = &expected
	return ma
}

func (ma *MiningAssertions) Unclaimed(expected uint64) *MiningAssertions {
	ma.unclaimed = &expected
	return ma
}

func (ma *MiningAssertions) Diffs(expected int) *MiningAssertions {
	ma.diffs = &expected
	return ma
}

// Assert reconciles the mining before checking it.
func (ma *MiningAssertions) Assert(t *testing.T) {
	m := ma.env.session(t, ma.name).Mining()

	if ma.share != nil {
		assert.Equal(t, *ma.share, m.Share, "mining %s share mismatch", ma.name)
	}
	if ma.stakeFromOthers != nil {
		assert.Equal(t, *ma.stakeFromOthers, m.StakeFromOthers, "mining %s stake from others mismatch", ma.name)
	}
	if ma.unclaimed != nil {
		assert.Equal(t, *ma.unclaimed, m.UnclaimedRewards, "mining %s unclaimed rewards mismatch", ma.name)
	}
	if ma.diffs != nil {
		assert.Equal(t, *ma.diffs, m.StakeDiffs.Len(), "mining %s diffs mismatch", ma.name)
	}
}

type PoolAssertions struct {
	env *testEnv

	totalShare *uint64
	tokens     *uint64
	diffs      *int
}

func AssertPool(env *testEnv) *PoolAssertions {
	return &PoolAssertions{env: env}
}

func (pa *PoolAssertions) TotalShare(expected uint64) *PoolAssertions {
	pa.totalShare = &expected
	return pa
}

func (pa *PoolAssertions) Tokens(expected uint64) *PoolAssertions {
	pa.tokens = &expected
	return pa
}

func (pa *PoolAssertions) Diffs(expected int) *PoolAssertions {
	pa.diffs = &expected
	return pa
}

func (pa *PoolAssertions) Assert(t *testing.T) {
	p := pa.env.pool
	require.NoError(t, p.ConsumeOldModifiers(pa.env.now))

	if pa.totalShare != nil {
		assert.Equal(t, *pa.totalShare, p.TotalShare, "pool total share mismatch")
	}
	if pa.tokens != nil {
		assert.Equal(t, *pa.tokens, p.Calculator.TokensAvailable, "pool tokens mismatch")
	}
	if pa.diffs != nil {
		assert.Equal(t, *pa.diffs, p.Calculator.StakeDiffs.Len(), "pool diffs mismatch")
	}
}
