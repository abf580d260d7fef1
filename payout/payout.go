// Package payout moves treasury value on-chain. It builds, signs and
// broadcasts the P2PKH transactions behind depositor withdrawals and the
// batch distribution transaction that pays every recipient of a cycle in a
// single atomic delivery, and verifies inbound deposit transactions.
package payout

import (
	"context"
	"fmt"
)

// Output is one P2PKH payment carried by a payout transaction.
type Output struct {
	Address string
	Amount  uint64
}

// Receipt reports a broadcast payout transaction.
type Receipt struct {
	TxID string
	Fee  uint64
	Size int
}

// Service delivers treasury value to recipient addresses. Implementations
// must be atomic per call: either every output is delivered by one
// transaction or none is.
type Service interface {
	// Send pays every output in a single transaction and returns its receipt.
	Send(ctx context.Context, outputs []Output) (*Receipt, error)
}

// OutputError reports which output of a payout failed to build, so callers
// can map the failure back to the recipient that caused it.
type OutputError struct {
	Index int
	Err   error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("payout: output %d: %v", e.Index, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
