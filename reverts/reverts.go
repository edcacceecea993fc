// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Code is the stable numeric identifier of a rejection.
type Code uint32

// Class groups codes by the kind of failure.
type Class uint8

const (
	ClassBusiness Class = iota
	ClassAuthorization
	ClassArithmetic
	ClassInvariant
	ClassNotFound
)

type ErrRevert struct {
	code    Code
	class   Class
	message string
}

func New(code Code, class Class, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		class:   class,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Code() Code {
	return e.code
}

func (e *ErrRevert) Class() Class {
	return e.class
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// As returns the first revert in err's chain.
func As(err error) (*ErrRevert, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CodeOf returns the code of the first revert in err's chain.
func CodeOf(err error) (Code, bool) {
	if ve, ok := As(err); ok {
		return ve.code, true
	}
	return 0, false
}
