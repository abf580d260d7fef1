// Package store persists treasury state in a bbolt database: the full state
// snapshot written after every successful mutating operation, an append-only
// audit log of deposits, withdrawals, revenue and distributions, and the set
// of credited deposit txids used to reject replays.
package store

import (
	"github.com/bitfsorg/libtreasury-go/ledger"
	"github.com/bitfsorg/libtreasury-go/registry"
)

// Snapshot is the complete persisted treasury state. A reopened treasury
// restored from its latest snapshot resumes exactly where it stopped.
type Snapshot struct {
	Accounts               map[string]ledger.Account
	Community              []registry.Entry
	Stakeholder            []registry.Entry
	Operating              registry.Entry
	Controller             string
	Pool                   uint64
	LastDistribution       int64
	CommunityDistributed   map[string]uint64
	StakeholderDistributed map[string]uint64
	OperatingDistributed   uint64
}

// EventType labels an audit log entry.
type EventType string

const (
	EventDeposit      EventType = "deposit"
	EventWithdrawal   EventType = "withdrawal"
	EventRevenue      EventType = "revenue"
	EventDistribution EventType = "distribution"
)

// Event is one append-only audit log entry.
type Event struct {
	ID      string    // unique event id
	Type    EventType // what happened
	Address string    // identity the event concerns, empty for distributions
	Amount  uint64    // satoshis moved
	TxID    string    // on-chain txid when value moved on-chain, else empty
	Time    int64     // unix seconds
}
