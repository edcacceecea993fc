// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// Codes are part of the client contract and must never be renumbered.
var (
	ErrInvalidAccountOwner        = New(0, ClassAuthorization, "account owner mismatch")
	ErrMathOverflow               = New(1, ClassArithmetic, "math operation overflow")
	ErrDivisionByZero             = New(2, ClassArithmetic, "division by zero")
	ErrInvalidAuthority           = New(3, ClassAuthorization, "invalid authority")
	ErrInvalidDerivedAddress      = New(4, ClassAuthorization, "invalid derived address")
	ErrInvalidLockupPeriod        = New(5, ClassBusiness, "invalid lockup period")
	ErrZeroAmount                 = New(6, ClassBusiness, "amount must be greater than zero")
	ErrNoDeposits                 = New(7, ClassInvariant, "no deposits to distribute against")
	ErrDistributionInThePast      = New(8, ClassBusiness, "distribution end lies in the past")
	ErrNoModifierAtDate           = New(9, ClassInvariant, "no weighted stake modifier at date")
	ErrDelegatesAreTheSame        = New(10, ClassInvariant, "old and new delegate are the same")
	ErrClaimingRestricted         = New(11, ClassBusiness, "claiming is restricted")
	ErrWithdrawalRestricted       = New(12, ClassBusiness, "withdrawal is restricted")
	ErrAlreadyRestricted          = New(13, ClassInvariant, "already restricted")
	ErrNotRestricted              = New(14, ClassInvariant, "not restricted")
	ErrRewardsMustBeClaimed       = New(15, ClassBusiness, "rewards must be claimed first")
	ErrStakeFromOthersMustBeZero  = New(16, ClassBusiness, "stake from others must be zero")
	ErrAccountAlreadyInitialized  = New(17, ClassInvariant, "account already initialized")
	ErrAccountNotFound            = New(18, ClassNotFound, "account not found")
	ErrDelegateNotInPool          = New(19, ClassAuthorization, "delegate mining belongs to another pool")
	ErrRecordTooLarge             = New(20, ClassInvariant, "record exceeds maximum size")
	ErrInsufficientFunds          = New(21, ClassBusiness, "insufficient funds")
	ErrInvalidPrimitiveConversion = New(22, ClassArithmetic, "invalid primitive conversion")
	ErrStakeLocked                = New(23, ClassBusiness, "amount exceeds unlocked stake")
	ErrStakeMustBeWithdrawn       = New(24, ClassBusiness, "stake must be withdrawn first")
)

var all = []*ErrRevert{
	ErrInvalidAccountOwner,
	ErrMathOverflow,
	ErrDivisionByZero,
	ErrInvalidAuthority,
	ErrInvalidDerivedAddress,
	ErrInvalidLockupPeriod,
	ErrZeroAmount,
	ErrNoDeposits,
	ErrDistributionInThePast,
	ErrNoModifierAtDate,
	ErrDelegatesAreTheSame,
	ErrClaimingRestricted,
	ErrWithdrawalRestricted,
	ErrAlreadyRestricted,
	ErrNotRestricted,
	ErrRewardsMustBeClaimed,
	ErrStakeFromOthersMustBeZero,
	ErrAccountAlreadyInitialized,
	ErrAccountNotFound,
	ErrDelegateNotInPool,
	ErrRecordTooLarge,
	ErrInsufficientFunds,
	ErrInvalidPrimitiveConversion,
	ErrStakeLocked,
	ErrStakeMustBeWithdrawn,
}

// ByCode looks up the revert registered under code.
func ByCode(code Code) (*ErrRevert, bool) {
	for _, e := range all {
		if e.code == code {
			return e, true
		}
	}
	return nil, false
}
