// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package minings

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/program"
	"github.com/vechain/rewards/reverts"
	"github.com/vechain/rewards/reward"
)

type Minings struct {
	program *program.Program
}

func New(p *program.Program) *Minings {
	return &Minings{p}
}

// parse decodes the body into v and returns the mining the request targets.
func parse[T interface{ caller() Caller }](req *http.Request, v T) (program.MiningRef, error) {
	pool, err := utils.AddressVar(req, "pool")
	if err != nil {
		return program.MiningRef{}, err
	}
	mining, err := utils.AddressVar(req, "mining")
	if err != nil {
		return program.MiningRef{}, err
	}
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return program.MiningRef{}, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	c := v.caller()
	return program.MiningRef{
		Pool:   pool,
		Mining: mining,
		Owner:  c.Owner,
		Signer: c.Signer,
	}, nil
}

func (c *Caller) caller() Caller { return *c }

func (m *Minings) handleGetMining(w http.ResponseWriter, req *http.Request) error {
	pool, err := utils.AddressVar(req, "pool")
	if err != nil {
		return err
	}
	addr, err := utils.AddressVar(req, "mining")
	if err != nil {
		return err
	}
	var mining *reward.Mining
	if req.URL.Query().Get("reconcile") == "true" {
		mining, err = m.program.ReconciledMining(addr)
	} else {
		mining, err = m.program.Mining(addr)
	}
	if err != nil {
		return err
	}
	if mining.Pool != pool {
		return errors.Wrapf(reverts.ErrAccountNotFound, "mining %s in pool %s", addr, pool)
	}
	return utils.WriteJSON(w, convertMining(addr, mining))
}

func (m *Minings) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	var body DepositRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.DepositMining(program.DepositParams{
		MiningRef: ref,
		Amount:    body.Amount,
		Period:    body.Period,
		Delegate:  body.Delegate,
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (m *Minings) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.WithdrawMining(program.WithdrawParams{
		MiningRef: ref,
		Amount:    body.Amount,
		Delegate:  body.Delegate,
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (m *Minings) handleExtend(w http.ResponseWriter, req *http.Request) error {
	var body ExtendRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.ExtendStake(program.ExtendParams{
		MiningRef:        ref,
		OldPeriod:        body.OldPeriod,
		NewPeriod:        body.NewPeriod,
		OldStart:         body.OldStart,
		BaseAmount:       body.BaseAmount,
		AdditionalAmount: body.AdditionalAmount,
		Delegate:         body.Delegate,
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (m *Minings) handleChangeDelegate(w http.ResponseWriter, req *http.Request) error {
	var body ChangeDelegateRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.ChangeDelegate(program.ChangeDelegateParams{
		MiningRef:    ref,
		OldDelegate:  body.OldDelegate,
		NewDelegate:  body.NewDelegate,
		StakedAmount: body.StakedAmount,
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (m *Minings) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	amount, err := m.program.Claim(program.ClaimParams{
		MiningRef:   ref,
		Vault:       body.Vault,
		Destination: body.Destination,
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"amount": amount})
}

func (m *Minings) handleSlash(w http.ResponseWriter, req *http.Request) error {
	var body SlashRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.Slash(program.SlashParams{MiningRef: ref, Amount: body.Amount}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

func (m *Minings) handleRestrictWithdrawal(w http.ResponseWriter, req *http.Request) error {
	var body RestrictWithdrawalRequest
	ref, err := parse(req, &body)
	if err != nil {
		return err
	}
	if err := m.program.RestrictWithdrawal(program.RestrictWithdrawalParams{MiningRef: ref, Until: body.Until}); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{})
}

// simple wraps operations that need nothing beyond the mining ref.
func (m *Minings) simple(op func(program.MiningRef) error) utils.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) error {
		var body Caller
		ref, err := parse(req, &body)
		if err != nil {
			return err
		}
		if err := op(ref); err != nil {
			return err
		}
		return utils.WriteJSON(w, utils.M{})
	}
}

func (m *Minings) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{mining}").
		Methods(http.MethodGet).
		Name("GET /pools/{pool}/minings/{mining}").
		HandlerFunc(utils.WrapHandlerFunc(m.handleGetMining))

	routes := []struct {
		action  string
		handler utils.HandlerFunc
	}{
		{"deposit", m.handleDeposit},
		{"withdraw", m.handleWithdraw},
		{"extend", m.handleExtend},
		{"delegate", m.handleChangeDelegate},
		{"claim", m.handleClaim},
		{"slash", m.handleSlash},
		{"restrict-claiming", m.simple(m.program.RestrictClaiming)},
		{"allow-claiming", m.simple(m.program.AllowClaiming)},
		{"restrict-withdrawal", m.handleRestrictWithdrawal},
		{"allow-withdrawal", m.simple(m.program.AllowWithdrawal)},
		{"close", m.simple(m.program.CloseMining)},
	}
	for _, r := range routes {
		sub.Path("/{mining}/" + r.action).
			Methods(http.MethodPost).
			Name("POST /pools/{pool}/minings/{mining}/" + r.action).
			HandlerFunc(utils.WrapHandlerFunc(r.handler))
	}
}
