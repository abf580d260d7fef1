package registry

import "errors"

var (
	// ErrEmptyRecipient indicates an empty recipient string.
	ErrEmptyRecipient = errors.New("registry: empty recipient")

	// ErrInvalidAddress indicates a recipient is not a valid P2PKH address.
	ErrInvalidAddress = errors.New("registry: invalid address")

	// ErrNoResolver indicates a paymail handle was given but no resolver is configured.
	ErrNoResolver = errors.New("registry: no resolver configured for paymail handles")

	// ErrResolveFailed indicates paymail handle resolution failed.
	ErrResolveFailed = errors.New("registry: handle resolution failed")
)
