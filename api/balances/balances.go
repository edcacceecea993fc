// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package balances

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/rewards/api/utils"
	"github.com/vechain/rewards/program"
)

type Balances struct {
	program *program.Program
}

func New(p *program.Program) *Balances {
	return &Balances{p}
}

func (b *Balances) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req, "address")
	if err != nil {
		return err
	}
	bal, err := b.program.Balance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"address": addr, "balance": bal})
}

func (b *Balances) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBalance))
}
