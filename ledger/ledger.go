// Package ledger implements per-depositor principal accounting for the
// BitFS revenue treasury.
//
// Each depositor has a single account holding a satoshi balance and the
// timestamp of their most recent deposit. Every deposit, including a top-up,
// restarts the 30-day lock on the entire balance. Accounts are created on
// first deposit and never deleted; an identity with an account is a seen
// depositor even after withdrawing to zero.
//
// The ledger performs no locking of its own. Callers (the treasury) serialize
// all access.
package ledger

import (
	"fmt"
	"time"
)

const (
	// Coin is one whole value unit in satoshis.
	Coin = uint64(100_000_000)

	// MinimumDeposit is the smallest accepted deposit (1 coin).
	MinimumDeposit = Coin

	// LockPeriod is the holding period applied to a depositor's entire
	// balance after each deposit.
	LockPeriod = 30 * 24 * time.Hour
)

// Account holds the principal state for a single depositor.
type Account struct {
	Balance     uint64 // satoshis
	DepositedAt int64  // unix seconds of the most recent deposit
}

// unlockAt returns the unix time at which the account's funds unlock.
func (a Account) unlockAt() int64 {
	return a.DepositedAt + int64(LockPeriod/time.Second)
}

// Ledger maps depositor identities (P2PKH address strings) to accounts.
type Ledger struct {
	accounts map[string]*Account
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

// Restore rebuilds a ledger from a persisted account snapshot.
func Restore(accounts map[string]Account) *Ledger {
	l := New()
	for addr, acct := range accounts {
		a := acct
		l.accounts[addr] = &a
	}
	return l
}

// Deposit credits amount to the identity's account, creating it on first
// deposit. The deposit timestamp is set to now on every call, so a top-up
// restarts the lock period for the entire balance, not just the increment.
//
// Returns true when the identity deposited for the first time.
func (l *Ledger) Deposit(identity string, amount uint64, now time.Time) (bool, error) {
	if amount == 0 {
		return false, ErrZeroAmount
	}
	if amount < MinimumDeposit {
		return false, fmt.Errorf("%w: %d satoshis, minimum %d", ErrBelowMinimum, amount, MinimumDeposit)
	}

	acct, ok := l.accounts[identity]
	if !ok {
		l.accounts[identity] = &Account{Balance: amount, DepositedAt: now.Unix()}
		return true, nil
	}

	if acct.Balance+amount < acct.Balance {
		return false, fmt.Errorf("%w: %d + %d satoshis", ErrBalanceOverflow, acct.Balance, amount)
	}
	acct.Balance += amount
	acct.DepositedAt = now.Unix()
	return false, nil
}

// CanWithdraw checks every withdrawal precondition without mutating state.
// It returns nil exactly when Withdraw with the same arguments would succeed.
func (l *Ledger) CanWithdraw(identity string, amount uint64, now time.Time) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	acct, ok := l.accounts[identity]
	if !ok {
		return ErrUnauthorized
	}
	if amount > acct.Balance {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientBalance, acct.Balance, amount)
	}
	if unlock := acct.unlockAt(); now.Unix() < unlock {
		return fmt.Errorf("%w: until %s", ErrLockActive, time.Unix(unlock, 0).UTC().Format(time.RFC3339))
	}
	return nil
}

// Withdraw debits amount from the identity's account. The account entry is
// kept even when the balance reaches zero, so the identity remains a seen
// depositor. Validation happens before any mutation; a rejected withdrawal
// leaves the ledger unchanged.
func (l *Ledger) Withdraw(identity string, amount uint64, now time.Time) error {
	if err := l.CanWithdraw(identity, amount, now); err != nil {
		return err
	}
	l.accounts[identity].Balance -= amount
	return nil
}

// Balance returns the identity's recorded balance, zero for unknown identities.
func (l *Ledger) Balance(identity string) uint64 {
	if acct, ok := l.accounts[identity]; ok {
		return acct.Balance
	}
	return 0
}

// Account returns a copy of the identity's account state.
func (l *Ledger) Account(identity string) (Account, bool) {
	if acct, ok := l.accounts[identity]; ok {
		return *acct, true
	}
	return Account{}, false
}

// HasDeposited reports whether the identity has ever made a deposit.
func (l *Ledger) HasDeposited(identity string) bool {
	_, ok := l.accounts[identity]
	return ok
}

// UnlockTime returns when the identity's funds unlock. The second return is
// false for identities that never deposited.
func (l *Ledger) UnlockTime(identity string) (time.Time, bool) {
	acct, ok := l.accounts[identity]
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(acct.unlockAt(), 0), true
}

// Total returns the sum of all recorded balances.
func (l *Ledger) Total() uint64 {
	var sum uint64
	for _, acct := range l.accounts {
		sum += acct.Balance
	}
	return sum
}

// Len returns the number of accounts ever created.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Snapshot returns a copy of all accounts for persistence.
func (l *Ledger) Snapshot() map[string]Account {
	out := make(map[string]Account, len(l.accounts))
	for addr, acct := range l.accounts {
		out[addr] = *acct
	}
	return out
}
