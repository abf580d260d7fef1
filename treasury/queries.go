package treasury

import (
	"time"

	"github.com/bitfsorg/libtreasury-go/distribution"
	"github.com/bitfsorg/libtreasury-go/oracle"
	"github.com/bitfsorg/libtreasury-go/registry"
	"github.com/bitfsorg/libtreasury-go/store"
)

// Pool returns the undistributed pooled balance in satoshis.
func (t *Treasury) Pool() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pool
}

// Balance returns the identity's recorded principal balance.
func (t *Treasury) Balance(identity string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.Balance(identity)
}

// HasDeposited reports whether the identity ever deposited.
func (t *Treasury) HasDeposited(identity string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.HasDeposited(identity)
}

// UnlockTime returns when the identity's balance becomes withdrawable.
// The second return is false for identities that never deposited.
func (t *Treasury) UnlockTime(identity string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.UnlockTime(identity)
}

// TotalDeposits returns the sum of every recorded account balance.
func (t *Treasury) TotalDeposits() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.Total()
}

// Depositors returns how many identities have ever deposited.
func (t *Treasury) Depositors() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.Len()
}

// CommunityRecipients returns the community registry in registration order.
func (t *Treasury) CommunityRecipients() []registry.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.community.Entries()
}

// StakeholderRecipients returns the stakeholder registry in registration
// order: seeded entries first, then depositors in first-deposit order.
func (t *Treasury) StakeholderRecipients() []registry.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stakeholder.Entries()
}

// OperatingRecipient returns the operating-cost recipient.
func (t *Treasury) OperatingRecipient() registry.Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.operating
}

// Controller returns the identity allowed to call DistributeRevenue.
func (t *Treasury) Controller() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.controller
}

// Address returns the treasury's on-chain receiving address.
func (t *Treasury) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.address
}

// Oracle returns the treasury's AI query client, nil when none is
// configured. The oracle shares no ledger state.
func (t *Treasury) Oracle() oracle.Service {
	return t.oracle
}

// ProjectedShares splits the current pool 60/30/10 without running a cycle.
func (t *Treasury) ProjectedShares() (community, stakeholder, operating uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return distribution.Split(t.pool)
}

// DistributedTo returns the cumulative amount distributed to an address
// within a class across all cycles.
func (t *Treasury) DistributedTo(class distribution.Class, address string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records.DistributedTo(class, address)
}

// OperatingDistributed returns the cumulative operating-cost payout total.
func (t *Treasury) OperatingDistributed() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records.Operating
}

// TotalDistributed returns the cumulative amount disbursed across all
// classes and cycles.
func (t *Treasury) TotalDistributed() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.records.Total()
}

// LastDistribution returns when the last cycle ran, or the construction
// time if none has.
func (t *Treasury) LastDistribution() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Unix(t.lastDistribution, 0)
}

// NextEligibleAt returns the earliest time the quarter gate opens. The pool
// threshold must also be met for a cycle to actually run.
func (t *Treasury) NextEligibleAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return time.Unix(t.lastDistribution+int64(t.quarter/time.Second), 0)
}

// Events returns audit log entries in append order. A positive limit
// restricts the result to the most recent entries.
func (t *Treasury) Events(limit int) []*store.Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	events := t.events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]*store.Event, len(events))
	copy(out, events)
	return out
}
