// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/rewards/base"
	"github.com/vechain/rewards/reverts"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// ErrorBody is the JSON body of every failed request. Code is set for
// rejected operations only.
type ErrorBody struct {
	Code    *reverts.Code `json:"code,omitempty"`
	Message string        `json:"message"`
}

// statusOf maps a revert to the http status reported for it.
func statusOf(rev *reverts.ErrRevert) int {
	switch rev.Class() {
	case reverts.ClassAuthorization:
		return http.StatusForbidden
	case reverts.ClassNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// Reverts are responded with their code and a status of their class,
// httpError with its status, anything else with http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := http.StatusInternalServerError
		body := ErrorBody{Message: err.Error()}

		var he *httpError
		if rev, ok := reverts.As(err); ok {
			code := rev.Code()
			body.Code = &code
			status = statusOf(rev)
		} else if errors.As(err, &he) {
			status = he.status
		}
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(&body)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any

// AddressVar parses the named route variable as an address.
func AddressVar(r *http.Request, name string) (base.Address, error) {
	addr, err := base.ParseAddress(mux.Vars(r)[name])
	if err != nil {
		return base.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}
