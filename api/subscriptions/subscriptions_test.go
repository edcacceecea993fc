// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/rewards/api/pools"
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/lvldb"
	"github.com/vechain/rewards/program"
	"github.com/vechain/rewards/state"
)

var (
	depositAuth = base.Address{0xd1}
	fillAuth    = base.Address{0xd3}
	alice       = base.Address{0xa1}
	bob         = base.Address{0xb1}
)

func newServer(t *testing.T) (*program.Program, *httptest.Server) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	logs, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { logs.Close() })
	st, err := state.New(db, 0)
	require.NoError(t, err)
	p := program.New(st, logs, nil)

	subs := New(p, []string{"https://app.example.org"})
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
	})
	return p, ts
}

func initPool(t *testing.T, p *program.Program) base.Address {
	pool, err := p.InitializePool(alice, program.InitPoolParams{
		DepositAuthority:    depositAuth,
		DistributeAuthority: depositAuth,
		FillAuthority:       fillAuth,
		RewardMint:          base.Address{0xee},
	})
	require.NoError(t, err)
	return pool
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *pools.Event {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev pools.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func TestSubscribeFromPos(t *testing.T) {
	p, ts := newServer(t)
	pool := initPool(t, p)

	conn := dial(t, ts, "pos=0&pool="+pool.String())

	ev := readEvent(t, conn)
	assert.Equal(t, program.OpInitializePool, ev.Op)
	assert.Equal(t, int64(1), ev.Seq)

	_, err := p.InitializeMining(pool, bob)
	require.NoError(t, err)

	ev = readEvent(t, conn)
	assert.Equal(t, program.OpInitializeMining, ev.Op)
	require.NotNil(t, ev.Mining)
	assert.Equal(t, base.MiningAddress(bob, pool), *ev.Mining)
}

func TestSubscribeNewOnly(t *testing.T) {
	p, ts := newServer(t)
	pool := initPool(t, p)

	conn := dial(t, ts, "mining="+base.MiningAddress(alice, pool).String())

	// filtered out
	_, err := p.InitializeMining(pool, bob)
	require.NoError(t, err)
	_, err = p.InitializeMining(pool, alice)
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, program.OpInitializeMining, ev.Op)
	assert.Equal(t, int64(3), ev.Seq)
}

func TestSubscribeRejects(t *testing.T) {
	_, ts := newServer(t)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events"

	_, resp, err := websocket.DefaultDialer.Dial(u+"?pos=-1", nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(u+"?pool=bad", nil)
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{"https://evil.example.org"}})
	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": []string{"https://app.example.org"}})
	require.NoError(t, err)
	conn.Close()
}
