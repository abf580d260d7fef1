package distribution

import "errors"

var (
	// ErrNoRecipients indicates a required recipient class is empty at
	// distribution time. The whole cycle aborts; nothing is disbursed.
	ErrNoRecipients = errors.New("distribution: required recipient class is empty")

	// ErrEmptyPool indicates a plan was requested for a zero pool.
	ErrEmptyPool = errors.New("distribution: pool is empty")
)
