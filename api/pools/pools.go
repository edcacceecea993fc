// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/logdb"
	"github.com/vechain/rewards/program"
)

type Pools struct {
	program   *program.Program
	logsLimit uint64
}

func New(p *program.Program, logsLimit uint64) *Pools {
	return &Pools{
		program:   p,
		logsLimit: logsLimit,
	}
}

func (p *Pools) handleListPools(w http.ResponseWriter, _ *http.Request) error {
	addrs, err := p.program.Pools()
	if err != nil {
		return err
	}
	if addrs == nil {
		addrs = []base.Address{}
	}
	return utils.WriteJSON(w, addrs)
}

func (p *Pools) handleInitPool(w http.ResponseWriter, req *http.Request) error {
	var body InitPoolRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	addr, err := p.program.InitializePool(body.Payer, body.InitPoolParams)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"address": addr})
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	pool, err := p.program.Pool(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertPool(addr, pool))
}

func (p *Pools) handleFill(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	var body FillRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.program.FillVault(program.FillParams{
		Pool:               addr,
		Vault:              body.Vault,
		Signer:             body.Signer,
		Amount:             body.Amount,
		DistributionEndsAt: body.DistributionEndsAt,
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (p *Pools) handleDistribute(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	var body SignerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := p.program.DistributeRewards(addr, body.Signer)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"amount": amount})
}

func (p *Pools) handleInitMining(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	var body InitMiningRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	mining, err := p.program.InitializeMining(addr, body.Owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"address": mining})
}

func parseUint(query map[string][]string, name string, def uint64) (uint64, error) {
	v := query[name]
	if len(v) == 0 || v[0] == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(v[0], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

func (p *Pools) handleEvents(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	query := req.URL.Query()
	filter := &logdb.EventFilter{
		Pool:  &addr,
		Op:    query.Get("op"),
		Order: logdb.ASC,
	}
	if m := query.Get("mining"); m != "" {
		mining, err := base.ParseAddress(m)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "mining"))
		}
		filter.Mining = &mining
	}
	switch order := query.Get("order"); order {
	case "", string(logdb.ASC):
	case string(logdb.DESC):
		filter.Order = logdb.DESC
	default:
		return utils.BadRequest(errors.Errorf("order: unknown value %q", order))
	}
	offset, err := parseUint(query, "offset", 0)
	if err != nil {
		return err
	}
	limit, err := parseUint(query, "limit", p.logsLimit)
	if err != nil {
		return err
	}
	if limit > p.logsLimit {
		return utils.BadRequest(errors.Errorf("limit: exceeds maximum %d", p.logsLimit))
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}

	events, err := p.program.Events(req.Context(), filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertEvents(events))
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleListPools))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleInitPool))
	sub.Path("/{pool}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{pool}/fill").
		Methods(http.MethodPost).
		Name("POST /pools/{pool}/fill").
		HandlerFunc(utils.WrapHandlerFunc(p.handleFill))
	sub.Path("/{pool}/distribute").
		Methods(http.MethodPost).
		Name("POST /pools/{pool}/distribute").
		HandlerFunc(utils.WrapHandlerFunc(p.handleDistribute))
	sub.Path("/{pool}/minings").
		Methods(http.MethodPost).
		Name("POST /pools/{pool}/minings").
		HandlerFunc(utils.WrapHandlerFunc(p.handleInitMining))
	sub.Path("/{pool}/events").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/events").
		HandlerFunc(utils.WrapHandlerFunc(p.handleEvents))
}
