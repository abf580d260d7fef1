package ledger

import "errors"

var (
	// ErrZeroAmount indicates a deposit or withdrawal of zero value.
	ErrZeroAmount = errors.New("ledger: amount must be greater than zero")

	// ErrBelowMinimum indicates a deposit smaller than MinimumDeposit.
	ErrBelowMinimum = errors.New("ledger: deposit below minimum")

	// ErrUnauthorized indicates a withdrawal from an identity that has never deposited.
	ErrUnauthorized = errors.New("ledger: identity has no deposit record")

	// ErrInsufficientBalance indicates a withdrawal exceeding the recorded balance.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrLockActive indicates a withdrawal attempted before the lock period elapsed.
	ErrLockActive = errors.New("ledger: funds are still locked")

	// ErrBalanceOverflow indicates a credit that would wrap a uint64 balance.
	ErrBalanceOverflow = errors.New("ledger: balance overflow")
)
