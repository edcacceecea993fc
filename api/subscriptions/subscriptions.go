// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/api/pools"
	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/log"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/program"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// events sent per query.
	batchSize = 100
)

type Subscriptions struct {
	program  *program.Program
	upgrader *websocket.Upgrader
	done     chan struct{}
}

func New(p *program.Program, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		program: p,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// parseFilter reads pool, mining and pos. Without pos only events recorded
// after the subscription are sent.
func (s *Subscriptions) parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	query := req.URL.Query()
	filter := &logdb.EventFilter{Order: logdb.ASC, Op: query.Get("op")}
	for _, name := range []string{"pool", "mining"} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		addr, err := base.ParseAddress(v)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, name))
		}
		if name == "pool" {
			filter.Pool = &addr
		} else {
			filter.Mining = &addr
		}
	}

	if pos := query.Get("pos"); pos != "" {
		seq, err := strconv.ParseInt(pos, 10, 64)
		if err != nil || seq < 0 {
			return nil, utils.BadRequest(errors.New("pos: expect a non-negative integer"))
		}
		filter.After = seq
		return filter, nil
	}
	latest, err := s.program.Events(req.Context(), &logdb.EventFilter{
		Order:   logdb.DESC,
		Options: &logdb.Options{Limit: 1},
	})
	if err != nil {
		return nil, err
	}
	if len(latest) > 0 {
		filter.After = latest[0].Seq
	}
	return filter, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := s.parseFilter(req)
	if err != nil {
		return err
	}
	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer func() { s.closeConn(conn, err) }()

	err = s.pipe(req.Context(), conn, filter)
	return nil
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var closeMsg []byte
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	if err := conn.WriteMessage(websocket.CloseMessage, closeMsg); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

// pipe streams matching events until the peer goes away or the server closes.
func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, filter *logdb.EventFilter) error {
	closed := make(chan struct{})
	// the read loop handles control frames and detects the peer closing
	go func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "err", err)
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	filter.Options = &logdb.Options{Limit: batchSize}
	for {
		// take the channel before querying so a commit in between is not missed
		changed := s.program.Changed()
		events, err := s.program.Events(ctx, filter)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return err
			}
			if err := conn.WriteJSON(pools.ConvertEvent(ev)); err != nil {
				return err
			}
			filter.After = ev.Seq
		}
		if len(events) == batchSize {
			continue
		}

		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case <-changed:
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close ends every open subscription.
func (s *Subscriptions) Close() {
	close(s.done)
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
