package store

import "errors"

var (
	// ErrNilSnapshot indicates a nil snapshot was passed to SaveSnapshot.
	ErrNilSnapshot = errors.New("store: nil snapshot")

	// ErrNoSnapshot indicates the database holds no snapshot yet.
	ErrNoSnapshot = errors.New("store: no snapshot")

	// ErrNilEvent indicates a nil event was passed to AppendEvent.
	ErrNilEvent = errors.New("store: nil event")

	// ErrEmptyTxID indicates an empty txid.
	ErrEmptyTxID = errors.New("store: empty txid")

	// ErrDuplicateTx indicates a txid that was already marked seen.
	ErrDuplicateTx = errors.New("store: duplicate txid")
)
