package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfsorg/libtreasury-go/ledger"
	"github.com/bitfsorg/libtreasury-go/payout"
	"github.com/bitfsorg/libtreasury-go/registry"
	"github.com/bitfsorg/libtreasury-go/store"
)

// DepositResult reports a credited deposit.
type DepositResult struct {
	NewDepositor bool      // true when this identity deposited for the first time
	Balance      uint64    // account balance after the deposit
	UnlocksAt    time.Time // when the full balance becomes withdrawable
	TxID         string    // deposit txid for on-chain deposits, else empty
}

// Deposit credits amount to the identity's account and adds it to the pool.
// The identity must be a valid address. A first deposit enrolls the identity
// in the stakeholder registry; every deposit, including a top-up, restarts
// the lock on the entire balance.
func (t *Treasury) Deposit(identity string, amount uint64) (*DepositResult, error) {
	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.credit(identity, amount, "")
}

// credit applies one deposit. Caller holds the guard and the lock. For
// on-chain deposits txid is the verified transaction, committed to the
// replay guard together with the credit.
func (t *Treasury) credit(identity string, amount uint64, txid string) (*DepositResult, error) {
	if err := registry.ValidateAddress(identity); err != nil {
		return nil, err
	}
	if t.pool+amount < t.pool {
		return nil, fmt.Errorf("%w: pool", ledger.ErrBalanceOverflow)
	}

	prev := t.snapshot()
	now := t.clock()
	first, err := t.ledger.Deposit(identity, amount, now)
	if err != nil {
		return nil, err
	}
	if first {
		t.stakeholder.Add(registry.Entry{Address: identity})
	}
	t.pool += amount

	if err := t.commit(store.EventDeposit, identity, amount, txid, txid); err != nil {
		t.rollback(prev)
		return nil, err
	}

	unlocksAt, _ := t.ledger.UnlockTime(identity)
	return &DepositResult{
		NewDepositor: first,
		Balance:      t.ledger.Balance(identity),
		UnlocksAt:    unlocksAt,
		TxID:         txid,
	}, nil
}

// ReceiveRevenue adds platform revenue to the pool without touching any
// depositor account. The source identity is recorded in the audit log and
// may be empty. Returns the pool balance after the credit.
func (t *Treasury) ReceiveRevenue(source string, amount uint64) (uint64, error) {
	if err := t.beginOp(); err != nil {
		return 0, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount == 0 {
		return 0, ErrZeroAmount
	}
	if t.pool+amount < t.pool {
		return 0, fmt.Errorf("%w: pool", ledger.ErrBalanceOverflow)
	}
	t.pool += amount

	if err := t.commit(store.EventRevenue, source, amount, "", ""); err != nil {
		t.pool -= amount
		return 0, err
	}
	return t.pool, nil
}

// DepositFromTx verifies that rawTx pays the treasury's receiving address
// and credits the total to identity's account. The same transaction cannot
// be credited twice.
func (t *Treasury) DepositFromTx(rawTx []byte, identity string) (*DepositResult, error) {
	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.creditFromTx(rawTx, identity)
}

// DepositFromTxID fetches the transaction from the chain service and credits
// it like DepositFromTx.
func (t *Treasury) DepositFromTxID(ctx context.Context, txid, identity string) (*DepositResult, error) {
	if err := t.beginOp(); err != nil {
		return nil, err
	}
	defer t.endOp()
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.chain == nil {
		return nil, ErrNoChainService
	}
	rawTx, err := t.chain.GetRawTx(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("treasury: fetch deposit tx: %w", err)
	}
	return t.creditFromTx(rawTx, identity)
}

// creditFromTx verifies and credits one on-chain deposit. Caller holds the
// guard and the lock.
func (t *Treasury) creditFromTx(rawTx []byte, identity string) (*DepositResult, error) {
	if t.address == "" {
		return nil, ErrNoTreasuryAddress
	}
	proof, err := payout.VerifyDeposit(rawTx, t.address)
	if err != nil {
		return nil, err
	}

	seen, err := t.txSeen(proof.TxID)
	if err != nil {
		return nil, err
	}
	if seen {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateDeposit, proof.TxID)
	}
	if err := registry.ValidateAddress(identity); err != nil {
		return nil, err
	}
	if proof.Amount < ledger.MinimumDeposit {
		return nil, fmt.Errorf("%w: tx pays %d sat, minimum is %d sat",
			ledger.ErrBelowMinimum, proof.Amount, ledger.MinimumDeposit)
	}

	// The txid enters the replay guard in the same commit as the credit:
	// a credited deposit can never replay, and an uncommitted one stays
	// creditable after a store failure.
	return t.credit(identity, proof.Amount, proof.TxID)
}
