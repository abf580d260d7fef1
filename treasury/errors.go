package treasury

import "errors"

var (
	// ErrNotAuthorized indicates a privileged call from an identity other
	// than the controller.
	ErrNotAuthorized = errors.New("treasury: caller is not the controller")

	// ErrNotDue indicates a cycle attempted before the quarter elapsed.
	ErrNotDue = errors.New("treasury: quarter has not elapsed")

	// ErrInsufficientPool indicates the pool cannot cover the request: a
	// forced cycle below the threshold, or a withdrawal larger than the
	// value actually held.
	ErrInsufficientPool = errors.New("treasury: pool below required amount")

	// ErrOperationInProgress indicates a state-mutating call while another
	// operation holds the treasury, including reentrant payout callbacks.
	ErrOperationInProgress = errors.New("treasury: operation already in progress")

	// ErrZeroAmount indicates a zero-value revenue submission.
	ErrZeroAmount = errors.New("treasury: amount must be greater than zero")

	// ErrDuplicateDeposit indicates a deposit transaction that was already
	// credited.
	ErrDuplicateDeposit = errors.New("treasury: deposit transaction already credited")

	// ErrNoOperating indicates construction without an operating recipient.
	ErrNoOperating = errors.New("treasury: operating recipient is required")

	// ErrNoTreasuryAddress indicates an on-chain deposit without a
	// configured receiving address.
	ErrNoTreasuryAddress = errors.New("treasury: no receiving address configured")

	// ErrNoChainService indicates a txid lookup without a chain service.
	ErrNoChainService = errors.New("treasury: no chain service configured")

	// ErrStateNotPersisted indicates value moved on-chain but the new state
	// could not be written to the store. The in-memory state matches the
	// chain; the store lags until the next successful save. Calls returning
	// it carry a non-nil result.
	ErrStateNotPersisted = errors.New("treasury: state not persisted")
)
