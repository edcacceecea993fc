// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package program

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/lockup"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/state"
	"github.com/vechain/rewards/token"
)

var (
	depositAuth    = base.Address{0xd1}
	distributeAuth = base.Address{0xd2}
	fillAuth       = base.Address{0xd3}
	mint           = base.Address{0xee}
	alice          = base.Address{0xa1}
	bob            = base.Address{0xb1}
)

type testProgram struct {
	*Program
	t     *testing.T
	clock *clockwork.FakeClock
	pool  base.Address
	vault base.Address
}

func newTestProgram(t *testing.T) *testProgram {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Unix(int64(base.Days(19_700))+3600, 0))
	p := &testProgram{Program: New(st, logs, clock), t: t, clock: clock}

	p.pool, err = p.InitializePool(alice, InitPoolParams{
		DepositAuthority:    depositAuth,
		DistributeAuthority: distributeAuth,
		FillAuthority:       fillAuth,
		RewardMint:          mint,
	})
	require.NoError(t, err)
	p.vault = base.VaultAddress(p.pool, mint)

	stage := st.NewStage()
	require.NoError(t, token.Mint(stage, fillAuth, 10_000_000))
	require.NoError(t, stage.Commit())
	return p
}

func (p *testProgram) ref(owner base.Address) MiningRef {
	return MiningRef{
		Pool:   p.pool,
		Mining: base.MiningAddress(owner, p.pool),
		Owner:  owner,
		Signer: depositAuth,
	}
}

func (p *testProgram) ownerRef(owner base.Address) MiningRef {
	ref := p.ref(owner)
	ref.Signer = owner
	return ref
}

func (p *testProgram) initMining(owner base.Address) {
	addr, err := p.InitializeMining(p.pool, owner)
	require.NoError(p.t, err)
	assert.Equal(p.t, base.MiningAddress(owner, p.pool), addr)
}

func (p *testProgram) deposit(owner base.Address, amount uint64, period lockup.Period) {
	require.NoError(p.t, p.DepositMining(DepositParams{MiningRef: p.ref(owner), Amount: amount, Period: period}))
}

func (p *testProgram) fill(amount uint64, days uint64) {
	require.NoError(p.t, p.FillVault(FillParams{
		Pool:               p.pool,
		Vault:              p.vault,
		Signer:             fillAuth,
		Amount:             amount,
		DistributionEndsAt: p.Now() + base.Days(days),
	}))
}

func (p *testProgram) claim(owner base.Address) uint64 {
	amount, err := p.Claim(ClaimParams{MiningRef: p.ownerRef(owner), Vault: p.vault})
	require.NoError(p.t, err)
	return amount
}

func (p *testProgram) balance(addr base.Address) uint64 {
	bal, err := p.Balance(addr)
	require.NoError(p.t, err)
	return bal
}

func TestTwoMinersSplitRewards(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.initMining(bob)
	p.deposit(alice, 100, lockup.ThreeMonths)
	p.deposit(bob, 100, lockup.ThreeMonths)

	p.fill(1_000_000, 0)
	assert.Equal(t, uint64(1_000_000), p.balance(p.vault))
	assert.Equal(t, uint64(9_000_000), p.balance(fillAuth))

	released, err := p.DistributeRewards(p.pool, distributeAuth)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), released)

	// same day is a no-op
	released, err = p.DistributeRewards(p.pool, distributeAuth)
	require.NoError(t, err)
	assert.Zero(t, released)

	pending, err := p.ReconciledMining(base.MiningAddress(alice, p.pool))
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), pending.UnclaimedRewards)
	stored, err := p.Mining(base.MiningAddress(alice, p.pool))
	require.NoError(t, err)
	assert.Zero(t, stored.UnclaimedRewards, "preview does not persist")

	assert.Equal(t, uint64(500_000), p.claim(alice))
	assert.Equal(t, uint64(500_000), p.claim(bob))
	assert.Zero(t, p.claim(bob))
	assert.Equal(t, uint64(500_000), p.balance(alice))
	assert.Equal(t, uint64(500_000), p.balance(bob))
	assert.Zero(t, p.balance(p.vault))

	pool, err := p.Pool(p.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), pool.TotalShare)
	assert.Zero(t, pool.Calculator.TokensAvailable)
}

func TestExpiryAcrossDays(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.deposit(alice, 100, lockup.ThreeMonths)

	p.clock.Advance(91 * 24 * time.Hour)
	p.fill(1_000, 0)
	_, err := p.DistributeRewards(p.pool, distributeAuth)
	require.NoError(t, err)

	pool, err := p.Pool(p.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), pool.TotalShare, "expired stake weighs 1x")
	assert.Equal(t, uint64(1_000), p.claim(alice))
}

func TestAuthorization(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)

	ref := p.ref(alice)
	ref.Signer = alice
	err := p.DepositMining(DepositParams{MiningRef: ref, Amount: 1, Period: lockup.Flex})
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)

	ref = p.ref(alice)
	ref.Mining = base.MiningAddress(bob, p.pool)
	err = p.DepositMining(DepositParams{MiningRef: ref, Amount: 1, Period: lockup.Flex})
	assert.ErrorIs(t, err, reverts.ErrInvalidDerivedAddress)

	err = p.FillVault(FillParams{Pool: p.pool, Vault: p.vault, Signer: depositAuth, Amount: 1, DistributionEndsAt: p.Now()})
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)

	err = p.FillVault(FillParams{Pool: p.pool, Vault: alice, Signer: fillAuth, Amount: 1, DistributionEndsAt: p.Now()})
	assert.ErrorIs(t, err, reverts.ErrInvalidDerivedAddress)

	_, err = p.DistributeRewards(p.pool, fillAuth)
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)

	_, err = p.Claim(ClaimParams{MiningRef: p.ref(alice), Vault: p.vault})
	assert.ErrorIs(t, err, reverts.ErrInvalidAuthority)

	_, err = p.InitializeMining(base.Address{0x99}, alice)
	assert.ErrorIs(t, err, reverts.ErrAccountNotFound)

	_, err = p.InitializeMining(p.pool, alice)
	assert.ErrorIs(t, err, reverts.ErrAccountAlreadyInitialized)

	_, err = p.InitializePool(alice, InitPoolParams{DepositAuthority: depositAuth, FillAuthority: fillAuth})
	assert.ErrorIs(t, err, reverts.ErrAccountAlreadyInitialized)
}

func TestFailedOperationWritesNothing(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.deposit(alice, 100, lockup.Flex)

	// funding more than the fill authority holds fails after the pool was
	// already updated in the stage
	err := p.FillVault(FillParams{Pool: p.pool, Vault: p.vault, Signer: fillAuth, Amount: 20_000_000, DistributionEndsAt: p.Now()})
	assert.ErrorIs(t, err, reverts.ErrInsufficientFunds)

	pool, err := p.Pool(p.pool)
	require.NoError(t, err)
	assert.Zero(t, pool.Calculator.TokensAvailable)
	assert.Zero(t, p.balance(p.vault))

	_, err = p.DistributeRewards(p.pool, distributeAuth)
	require.NoError(t, err)
}

func TestDelegation(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.initMining(bob)
	bobMining := base.MiningAddress(bob, p.pool)

	require.NoError(t, p.DepositMining(DepositParams{MiningRef: p.ref(alice), Amount: 100, Period: lockup.Flex, Delegate: &bobMining}))
	m, err := p.Mining(bobMining)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), m.StakeFromOthers)

	// bob cannot leave while holding alice's stake
	assert.ErrorIs(t, p.CloseMining(p.ownerRef(bob)), reverts.ErrStakeFromOthersMustBeZero)

	require.NoError(t, p.ChangeDelegate(ChangeDelegateParams{MiningRef: p.ref(alice), OldDelegate: &bobMining, StakedAmount: 100}))
	m, err = p.Mining(bobMining)
	require.NoError(t, err)
	assert.Zero(t, m.StakeFromOthers)

	err = p.ChangeDelegate(ChangeDelegateParams{MiningRef: p.ref(alice), StakedAmount: 100})
	assert.ErrorIs(t, err, reverts.ErrDelegatesAreTheSame)

	// a mining from another pool is rejected
	otherPool, err := p.InitializePool(alice, InitPoolParams{DepositAuthority: bob, FillAuthority: bob, RewardMint: mint})
	require.NoError(t, err)
	other, err := p.InitializeMining(otherPool, bob)
	require.NoError(t, err)
	err = p.DepositMining(DepositParams{MiningRef: p.ref(alice), Amount: 1, Period: lockup.Flex, Delegate: &other})
	assert.ErrorIs(t, err, reverts.ErrDelegateNotInPool)

	require.NoError(t, p.CloseMining(p.ownerRef(bob)))
	_, err = p.Mining(bobMining)
	assert.ErrorIs(t, err, reverts.ErrAccountNotFound)

	pools, err := p.Pools()
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestRestrictions(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.deposit(alice, 100, lockup.Flex)

	require.NoError(t, p.RestrictClaiming(p.ref(alice)))
	assert.ErrorIs(t, p.RestrictClaiming(p.ref(alice)), reverts.ErrAlreadyRestricted)
	_, err := p.Claim(ClaimParams{MiningRef: p.ownerRef(alice), Vault: p.vault})
	assert.ErrorIs(t, err, reverts.ErrClaimingRestricted)
	require.NoError(t, p.AllowClaiming(p.ref(alice)))
	assert.ErrorIs(t, p.AllowClaiming(p.ref(alice)), reverts.ErrNotRestricted)

	until := p.Now() + base.Days(2)
	require.NoError(t, p.RestrictWithdrawal(RestrictWithdrawalParams{MiningRef: p.ref(alice), Until: until}))
	err = p.WithdrawMining(WithdrawParams{MiningRef: p.ref(alice), Amount: 10})
	assert.ErrorIs(t, err, reverts.ErrWithdrawalRestricted)

	// slashing ignores the restriction
	require.NoError(t, p.Slash(SlashParams{MiningRef: p.ref(alice), Amount: 10}))

	p.clock.Advance(3 * 24 * time.Hour)
	require.NoError(t, p.WithdrawMining(WithdrawParams{MiningRef: p.ref(alice), Amount: 10}))

	require.NoError(t, p.RestrictWithdrawal(RestrictWithdrawalParams{MiningRef: p.ref(alice)}))
	require.NoError(t, p.AllowWithdrawal(p.ref(alice)))

	m, err := p.Mining(base.MiningAddress(alice, p.pool))
	require.NoError(t, err)
	assert.Equal(t, uint64(80), m.Share)

	err = p.WithdrawMining(WithdrawParams{MiningRef: p.ref(alice), Amount: 81})
	assert.ErrorIs(t, err, reverts.ErrStakeLocked)
	assert.ErrorIs(t, p.CloseMining(p.ownerRef(alice)), reverts.ErrStakeMustBeWithdrawn)
	require.NoError(t, p.WithdrawMining(WithdrawParams{MiningRef: p.ref(alice), Amount: 80}))
	require.NoError(t, p.CloseMining(p.ownerRef(alice)))
}

func TestExtendStake(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	start := p.Now()
	p.deposit(alice, 100, lockup.ThreeMonths)

	require.NoError(t, p.ExtendStake(ExtendParams{
		MiningRef:        p.ref(alice),
		OldPeriod:        lockup.ThreeMonths,
		NewPeriod:        lockup.OneYear,
		OldStart:         start,
		BaseAmount:       100,
		AdditionalAmount: 50,
	}))

	m, err := p.Mining(base.MiningAddress(alice, p.pool))
	require.NoError(t, err)
	assert.Equal(t, uint64(900), m.Share)
	pool, err := p.Pool(p.pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), pool.TotalShare)
}

func TestEvents(t *testing.T) {
	p := newTestProgram(t)
	p.initMining(alice)
	p.deposit(alice, 100, lockup.Flex)
	p.fill(500, 0)
	_, err := p.DistributeRewards(p.pool, distributeAuth)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), p.claim(alice))
	// rejected operations are not recorded
	assert.Error(t, p.DepositMining(DepositParams{MiningRef: p.ref(alice), Amount: 0, Period: lockup.Flex}))

	events, err := p.Events(context.Background(), &logdb.EventFilter{Pool: &p.pool})
	require.NoError(t, err)
	var ops []string
	for _, ev := range events {
		ops = append(ops, ev.Op)
		assert.Equal(t, p.Now(), ev.Timestamp)
	}
	assert.Equal(t, []string{OpInitializePool, OpInitializeMining, OpDeposit, OpFillVault, OpDistributeRewards, OpClaim}, ops)
	assert.Equal(t, uint64(500), events[4].Amount)
	assert.Equal(t, uint64(500), events[5].Amount)
}
