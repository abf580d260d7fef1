package oracle

import "errors"

// Oracle error types.
var (
	// ErrEmptyQuery is returned when a query contains no text.
	ErrEmptyQuery = errors.New("oracle: query is empty")

	// ErrOracleUnavailable is returned when the oracle endpoint cannot be
	// reached or rejects the submission.
	ErrOracleUnavailable = errors.New("oracle: endpoint unavailable")

	// ErrUnknownRequest is returned when a response arrives for a request
	// ID that was never submitted.
	ErrUnknownRequest = errors.New("oracle: unknown request id")

	// ErrAlreadyAnswered is returned when a response arrives for a request
	// that already has one.
	ErrAlreadyAnswered = errors.New("oracle: request already answered")
)
