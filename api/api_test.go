// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/api/middleware"
	"github.com/vechain/rewards/api/minings"
	"github.com/vechain/rewards/api/pools"
	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/program"
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
)

var ts *httptest.Server

func initAPIServer(t *testing.T) *program.Program {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)

	stage := st.NewStage()
	require.NoError(t, token.Mint(stage, fillAuth, 1_000_000))
	require.NoError(t, stage.Commit())

	clock := clockwork.NewFakeClockAt(time.Unix(int64(base.Days(19_700))+3600, 0))
	p := program.New(st, logs, clock)

	handler, closeSubs := New(p, Options{AllowedOrigins: "*", EnableMetrics: true, LogsLimit: 10})
	ts = httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
	})
	return p
}

func httpGet(t *testing.T, url string) ([]byte, int, http.Header) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode, res.Header
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func decode[T any](t *testing.T, data []byte) T {
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestAPI(t *testing.T) {
	p := initAPIServer(t)

	body, status := httpPost(t, ts.URL+"/pools", pools.InitPoolRequest{
		Payer: alice,
		InitPoolParams: program.InitPoolParams{
			DepositAuthority:    depositAuth,
			DistributeAuthority: distributeAuth,
			FillAuthority:       fillAuth,
			RewardMint:          mint,
		},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	pool := decode[map[string]base.Address](t, body)["address"]
	vault := base.VaultAddress(pool, mint)
	poolURL := ts.URL + "/pools/" + pool.String()

	body, status, _ = httpGet(t, ts.URL+"/pools")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []base.Address{pool}, decode[[]base.Address](t, body))

	body, status = httpPost(t, poolURL+"/minings", pools.InitMiningRequest{Owner: alice})
	require.Equal(t, http.StatusOK, status, string(body))
	mining := decode[map[string]base.Address](t, body)["address"]
	assert.Equal(t, base.MiningAddress(alice, pool), mining)
	miningURL := poolURL + "/minings/" + mining.String()

	t.Run("deposit", func(t *testing.T) {
		req := map[string]any{"owner": alice, "signer": depositAuth, "amount": 100, "period": "three_months"}
		body, status := httpPost(t, miningURL+"/deposit", req)
		require.Equal(t, http.StatusOK, status, string(body))

		body, status, _ = httpGet(t, miningURL)
		require.Equal(t, http.StatusOK, status)
		m := decode[minings.Mining](t, body)
		assert.Equal(t, uint64(200), m.Share)
		assert.Equal(t, alice, m.Owner)
		assert.Equal(t, pool, m.Pool)
	})

	t.Run("wrong signer", func(t *testing.T) {
		req := map[string]any{"owner": alice, "signer": alice, "amount": 100, "period": "flex"}
		body, status := httpPost(t, miningURL+"/deposit", req)
		assert.Equal(t, http.StatusForbidden, status)
		errBody := decode[utils.ErrorBody](t, body)
		require.NotNil(t, errBody.Code)
		assert.Equal(t, reverts.ErrInvalidAuthority.Code(), *errBody.Code)
	})

	t.Run("bad period", func(t *testing.T) {
		req := map[string]any{"owner": alice, "signer": depositAuth, "amount": 100, "period": "forever"}
		_, status := httpPost(t, miningURL+"/deposit", req)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("fill and distribute", func(t *testing.T) {
		body, status := httpPost(t, poolURL+"/fill", pools.FillRequest{
			Vault:              vault,
			Signer:             fillAuth,
			Amount:             1000,
			DistributionEndsAt: p.Now(),
		})
		require.Equal(t, http.StatusOK, status, string(body))

		body, status = httpPost(t, poolURL+"/distribute", pools.SignerRequest{Signer: distributeAuth})
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, uint64(1000), decode[map[string]uint64](t, body)["amount"])

		body, status, _ = httpGet(t, poolURL)
		require.Equal(t, http.StatusOK, status)
		pl := decode[pools.Pool](t, body)
		assert.Equal(t, vault, pl.Vault)
		assert.Equal(t, uint64(200), pl.TotalShare)
		assert.Zero(t, pl.TokensAvailable)
		assert.NotEmpty(t, pl.CumulativeIndex)

		body, status, _ = httpGet(t, miningURL+"?reconcile=true")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, uint64(1000), decode[minings.Mining](t, body).UnclaimedRewards)
	})

	t.Run("claim", func(t *testing.T) {
		body, status := httpPost(t, miningURL+"/claim", minings.ClaimRequest{
			Caller: minings.Caller{Owner: alice, Signer: alice},
			Vault:  vault,
		})
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, uint64(1000), decode[map[string]uint64](t, body)["amount"])

		body, status, _ = httpGet(t, ts.URL+"/balances/"+alice.String())
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"address":"`+alice.String()+`","balance":1000}`, string(body))
	})

	t.Run("restrictions", func(t *testing.T) {
		caller := minings.Caller{Owner: alice, Signer: depositAuth}
		_, status := httpPost(t, miningURL+"/restrict-claiming", caller)
		require.Equal(t, http.StatusOK, status)
		body, status := httpPost(t, miningURL+"/restrict-claiming", caller)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, reverts.ErrAlreadyRestricted.Code(), *decode[utils.ErrorBody](t, body).Code)

		body, status, _ = httpGet(t, miningURL)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, decode[minings.Mining](t, body).ClaimingRestricted)

		_, status = httpPost(t, miningURL+"/allow-claiming", caller)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("events", func(t *testing.T) {
		body, status, _ := httpGet(t, poolURL+"/events?op="+program.OpClaim)
		require.Equal(t, http.StatusOK, status)
		events := decode[[]pools.Event](t, body)
		require.Len(t, events, 1)
		assert.Equal(t, uint64(1000), events[0].Amount)
		require.NotNil(t, events[0].Mining)
		assert.Equal(t, mining, *events[0].Mining)

		body, status, _ = httpGet(t, poolURL+"/events?order=desc&limit=2")
		require.Equal(t, http.StatusOK, status)
		events = decode[[]pools.Event](t, body)
		require.Len(t, events, 2)
		assert.Greater(t, events[0].Seq, events[1].Seq)

		_, status, _ = httpGet(t, poolURL+"/events?limit=11")
		assert.Equal(t, http.StatusBadRequest, status)
		_, status, _ = httpGet(t, poolURL+"/events?order=sideways")
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("not found", func(t *testing.T) {
		body, status, _ := httpGet(t, ts.URL+"/pools/"+base.Address{0x42}.String())
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, reverts.ErrAccountNotFound.Code(), *decode[utils.ErrorBody](t, body).Code)

		// a mining is only visible under its own pool
		_, status, _ = httpGet(t, ts.URL+"/pools/"+base.Address{0x42}.String()+"/minings/"+mining.String())
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("bad request", func(t *testing.T) {
		body, status, _ := httpGet(t, ts.URL+"/pools/not-an-address")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Nil(t, decode[utils.ErrorBody](t, body).Code)

		_, status = httpPost(t, poolURL+"/distribute", map[string]any{"signer": distributeAuth, "extra": 1})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("request id", func(t *testing.T) {
		_, _, header := httpGet(t, ts.URL+"/pools")
		assert.NotEmpty(t, header.Get(middleware.RequestIDHeader))
	})
}
