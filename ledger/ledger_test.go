package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Deposit tests ---

func TestDeposit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		wantErr error
	}{
		{"zero amount", 0, ErrZeroAmount},
		{"one satoshi", 1, ErrBelowMinimum},
		{"just below minimum", MinimumDeposit - 1, ErrBelowMinimum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			_, err := l.Deposit("addr-a", tt.amount, t0)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, uint64(0), l.Balance("addr-a"))
			assert.False(t, l.HasDeposited("addr-a"))
		})
	}
}

func TestDeposit_FirstAndTopUp(t *testing.T) {
	l := New()

	first, err := l.Deposit("addr-a", MinimumDeposit, t0)
	require.NoError(t, err)
	assert.True(t, first, "first deposit creates the account")
	assert.Equal(t, MinimumDeposit, l.Balance("addr-a"))

	later := t0.Add(10 * 24 * time.Hour)
	first, err = l.Deposit("addr-a", 2*Coin, later)
	require.NoError(t, err)
	assert.False(t, first, "top-up must not report a new depositor")
	assert.Equal(t, 3*Coin, l.Balance("addr-a"))

	acct, ok := l.Account("addr-a")
	require.True(t, ok)
	assert.Equal(t, later.Unix(), acct.DepositedAt, "top-up resets the deposit timestamp")
}

func TestDeposit_TopUpRestartsLockForWholeBalance(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", 5*Coin, t0)
	require.NoError(t, err)

	// Top up one day before the original lock would expire.
	topUp := t0.Add(29 * 24 * time.Hour)
	_, err = l.Deposit("addr-a", Coin, topUp)
	require.NoError(t, err)

	// The original unlock time has passed, but the whole balance is locked
	// again relative to the top-up.
	atOriginalUnlock := t0.Add(LockPeriod)
	err = l.Withdraw("addr-a", Coin, atOriginalUnlock)
	assert.ErrorIs(t, err, ErrLockActive)

	err = l.Withdraw("addr-a", 6*Coin, topUp.Add(LockPeriod))
	assert.NoError(t, err)
}

func TestDeposit_TopUpOverflowRejected(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", math.MaxUint64, t0)
	require.NoError(t, err)

	later := t0.Add(24 * time.Hour)
	_, err = l.Deposit("addr-a", Coin, later)
	assert.ErrorIs(t, err, ErrBalanceOverflow)

	// The rejected top-up changed nothing, the lock timestamp included.
	assert.Equal(t, uint64(math.MaxUint64), l.Balance("addr-a"))
	acct, ok := l.Account("addr-a")
	require.True(t, ok)
	assert.Equal(t, t0.Unix(), acct.DepositedAt)
}

// --- Withdraw tests ---

func TestWithdraw_Preconditions(t *testing.T) {
	unlocked := t0.Add(LockPeriod)

	tests := []struct {
		name     string
		identity string
		amount   uint64
		now      time.Time
		wantErr  error
	}{
		{"zero amount", "addr-a", 0, unlocked, ErrZeroAmount},
		{"never deposited", "addr-b", Coin, unlocked, ErrUnauthorized},
		{"over balance", "addr-a", 11 * Coin, unlocked, ErrInsufficientBalance},
		{"still locked", "addr-a", Coin, t0.Add(LockPeriod - time.Second), ErrLockActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New()
			_, err := l.Deposit("addr-a", 10*Coin, t0)
			require.NoError(t, err)

			err = l.Withdraw(tt.identity, tt.amount, tt.now)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 10*Coin, l.Balance("addr-a"), "rejected withdrawal must not change state")
		})
	}
}

func TestWithdraw_AtExactUnlockTime(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", 2*Coin, t0)
	require.NoError(t, err)

	err = l.Withdraw("addr-a", Coin, t0.Add(LockPeriod))
	assert.NoError(t, err, "withdrawal at exactly depositedAt+lockPeriod succeeds")
	assert.Equal(t, Coin, l.Balance("addr-a"))
}

func TestWithdraw_ToZeroKeepsAccount(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", Coin, t0)
	require.NoError(t, err)

	require.NoError(t, l.Withdraw("addr-a", Coin, t0.Add(LockPeriod)))
	assert.Equal(t, uint64(0), l.Balance("addr-a"))
	assert.True(t, l.HasDeposited("addr-a"), "emptied account still counts as seen depositor")
	assert.Equal(t, 1, l.Len())
}

func TestCanWithdraw_MatchesWithdraw(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", 3*Coin, t0)
	require.NoError(t, err)

	now := t0.Add(LockPeriod)
	require.NoError(t, l.CanWithdraw("addr-a", 2*Coin, now))
	assert.Equal(t, 3*Coin, l.Balance("addr-a"), "CanWithdraw must not mutate")
	require.NoError(t, l.Withdraw("addr-a", 2*Coin, now))
	assert.Equal(t, Coin, l.Balance("addr-a"))
}

// --- Conservation and queries ---

func TestConservation_DepositsMinusWithdrawals(t *testing.T) {
	l := New()
	now := t0

	var deposited, withdrawn uint64
	deposits := []struct {
		addr   string
		amount uint64
	}{
		{"addr-a", 5 * Coin},
		{"addr-b", 2 * Coin},
		{"addr-a", 3 * Coin},
		{"addr-c", MinimumDeposit},
	}
	for _, d := range deposits {
		_, err := l.Deposit(d.addr, d.amount, now)
		require.NoError(t, err)
		deposited += d.amount
	}

	now = now.Add(LockPeriod)
	for _, w := range []struct {
		addr   string
		amount uint64
	}{
		{"addr-a", 4 * Coin},
		{"addr-b", Coin},
	} {
		require.NoError(t, l.Withdraw(w.addr, w.amount, now))
		withdrawn += w.amount
	}

	assert.Equal(t, deposited-withdrawn, l.Total())
	assert.Equal(t, 3, l.Len())
}

func TestUnlockTime(t *testing.T) {
	l := New()

	_, ok := l.UnlockTime("addr-a")
	assert.False(t, ok)

	_, err := l.Deposit("addr-a", Coin, t0)
	require.NoError(t, err)

	unlock, ok := l.UnlockTime("addr-a")
	require.True(t, ok)
	assert.Equal(t, t0.Add(LockPeriod).Unix(), unlock.Unix())
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	l := New()
	_, err := l.Deposit("addr-a", 5*Coin, t0)
	require.NoError(t, err)
	_, err = l.Deposit("addr-b", 2*Coin, t0.Add(time.Hour))
	require.NoError(t, err)

	restored := Restore(l.Snapshot())
	assert.Equal(t, l.Total(), restored.Total())
	assert.Equal(t, l.Len(), restored.Len())

	got, ok := restored.Account("addr-b")
	require.True(t, ok)
	want, _ := l.Account("addr-b")
	assert.Equal(t, want, got)

	// The snapshot is a copy; mutating the restored ledger must not leak back.
	require.NoError(t, restored.Withdraw("addr-a", Coin, t0.Add(LockPeriod)))
	assert.Equal(t, 5*Coin, l.Balance("addr-a"))
}
