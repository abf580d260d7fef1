package treasury

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libtreasury-go/payout"
	"github.com/bitfsorg/libtreasury-go/store"
)

// WithdrawResult reports a completed withdrawal.
type WithdrawResult struct {
	Balance uint64 // account balance after the withdrawal
	TxID    string // transfer txid, empty without a payout service
}

// Withdraw debits amount from the identity's account and pushes the value
// to it through the payout service. The account must exist, hold enough
// balance and be past its lock period, and the pool must actually hold the
// amount: past distributions draw from the pooled balance, so the pool can
// be smaller than the sum of recorded balances.
//
// Nothing is debited if the transfer fails.
func (t *Treasury) Withdraw(ctx context.Context, identity string, amount uint64) (*WithdrawResult, error) {
	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock()
	if err := t.ledger.CanWithdraw(identity, amount, now); err != nil {
		return nil, err
	}
	if amount > t.pool {
		return nil, fmt.Errorf("%w: pool holds %d sat, withdrawal needs %d sat",
			ErrInsufficientPool, t.pool, amount)
	}

	txid := ""
	if t.payout != nil {
		receipt, err := t.payout.Send(ctx, []payout.Output{{Address: identity, Amount: amount}})
		if err != nil {
			return nil, fmt.Errorf("treasury: withdrawal transfer: %w", err)
		}
		txid = receipt.TxID
	}

	prev := t.snapshot()
	if err := t.ledger.Withdraw(identity, amount, now); err != nil {
		return nil, err
	}
	t.pool -= amount

	res := &WithdrawResult{Balance: t.ledger.Balance(identity), TxID: txid}
	if err := t.commit(store.EventWithdrawal, identity, amount, txid, ""); err != nil {
		if t.payout == nil {
			// Nothing left the treasury; undo the debit.
			t.rollback(prev)
			return nil, err
		}
		// The transfer is on-chain, so the debit must stand. The store
		// catches up on the next successful save.
		return res, fmt.Errorf("%w: withdrawal delivered as %s: %v", ErrStateNotPersisted, txid, err)
	}

	return res, nil
}
