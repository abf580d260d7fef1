package payout

import "errors"

var (
	// ErrNoOutputs indicates a payout was requested with nothing to pay.
	ErrNoOutputs = errors.New("payout: no outputs")

	// ErrZeroOutput indicates an output with a zero amount.
	ErrZeroOutput = errors.New("payout: output amount is zero")

	// ErrInvalidAddress indicates a recipient address that does not parse.
	ErrInvalidAddress = errors.New("payout: invalid recipient address")

	// ErrInsufficientFunds indicates the funding UTXOs cannot cover the
	// outputs plus the estimated fee.
	ErrInsufficientFunds = errors.New("payout: insufficient funds")

	// ErrScriptBuild indicates a locking script could not be constructed.
	ErrScriptBuild = errors.New("payout: failed to build script")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("payout: failed to sign transaction")

	// ErrInvalidTx indicates a transaction that could not be deserialized.
	ErrInvalidTx = errors.New("payout: invalid transaction")

	// ErrNoMatchingOutput indicates a deposit transaction with no output
	// paying the treasury address.
	ErrNoMatchingOutput = errors.New("payout: no output pays the treasury address")

	// ErrNilKey indicates a missing signing key.
	ErrNilKey = errors.New("payout: nil private key")

	// ErrNilChain indicates a missing chain service.
	ErrNilChain = errors.New("payout: nil chain service")
)
