// Package treasury implements the BitFS revenue treasury: a pooled balance
// fed by depositor principal and platform revenue, distributed every quarter
// across three recipient classes on a fixed 60/30/10 split.
//
// The Treasury is the shared business logic layer. Daemon adapters, CLI
// commands and keeper loops all call Treasury methods to move value. State
// mutations run strictly one at a time behind an in-progress guard, so a
// payout callback re-entering the treasury mid-operation is rejected instead
// of observing half-applied state.
package treasury

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bitfsorg/libtreasury-go/distribution"
	"github.com/bitfsorg/libtreasury-go/ledger"
	"github.com/bitfsorg/libtreasury-go/network"
	"github.com/bitfsorg/libtreasury-go/oracle"
	"github.com/bitfsorg/libtreasury-go/payout"
	"github.com/bitfsorg/libtreasury-go/registry"
	"github.com/bitfsorg/libtreasury-go/store"
)

const (
	// Quarter is the default interval between distribution cycles.
	Quarter = 90 * 24 * time.Hour

	// MinimumPool is the default pool threshold, 30 coins. The pool must
	// strictly exceed it before a cycle may run.
	MinimumPool = 30 * ledger.Coin
)

// Treasury holds the pooled balance, the depositor ledger, the three
// recipient registries and the cumulative distribution records.
type Treasury struct {
	mu   sync.RWMutex
	busy atomic.Bool // in-progress operation guard

	ledger      *ledger.Ledger
	community   *registry.Registry
	stakeholder *registry.Registry
	operating   registry.Entry
	records     *distribution.Records

	pool             uint64
	lastDistribution int64  // unix seconds of the last cycle (or construction)
	controller       string // identity allowed to force a cycle
	address          string // on-chain receiving address, "" disables tx deposits

	quarter time.Duration
	minPool uint64

	payout payout.Service       // optional; nil = accounting only
	chain  network.ChainService // optional; deposit lookup by txid
	store  *store.BoltStore     // optional persistence
	oracle oracle.Service       // optional; off-ledger query boundary

	clock  func() time.Time
	events []*store.Event
	seen   map[string]struct{} // credited deposit txids when store == nil
}

// Params configures a new Treasury.
type Params struct {
	// Operating is the single operating-cost recipient, an address or a
	// paymail handle. Required; it cannot be changed after construction.
	Operating string

	// Community is the initial community registry, addresses or paymail
	// handles. May be empty, but a cycle cannot run until it has at least
	// one member.
	Community []string

	// Stakeholder seeds the stakeholder registry. Usually empty;
	// depositors enroll themselves on first deposit.
	Stakeholder []string

	// Controller is the identity allowed to call DistributeRevenue.
	// Defaults to the operating recipient's address.
	Controller string

	// Address is the treasury's on-chain receiving address, required for
	// crediting deposits from raw transactions.
	Address string

	// Quarter overrides the distribution interval. Defaults to Quarter.
	Quarter time.Duration

	// MinimumPool overrides the pool threshold. Defaults to MinimumPool.
	MinimumPool uint64

	// Resolver resolves paymail handles in recipient lists. Optional;
	// without it only raw addresses are accepted.
	Resolver registry.AddressResolver

	// Payout delivers value on-chain. Optional; nil keeps the treasury in
	// accounting-only mode.
	Payout payout.Service

	// Chain fetches deposit transactions by txid. Optional.
	Chain network.ChainService

	// Oracle is the off-ledger AI query client. Optional; it shares no
	// state with the treasury and is carried for the treasury's callers.
	Oracle oracle.Service

	// Store persists state across restarts. Optional. When it already
	// holds a snapshot, the snapshot wins over Params recipients.
	Store *store.BoltStore

	// Clock is the treasury's time source, defaulting to time.Now. The
	// quarter countdown starts at whatever it returns during construction.
	Clock func() time.Time
}

// New creates a Treasury. With a Store carrying a snapshot the persisted
// state is restored; otherwise the registries are built from Params and the
// quarter countdown starts at construction time.
func New(params Params) (*Treasury, error) {
	t := &Treasury{
		quarter: params.Quarter,
		minPool: params.MinimumPool,
		address: params.Address,
		payout:  params.Payout,
		chain:   params.Chain,
		store:   params.Store,
		oracle:  params.Oracle,
		clock:   params.Clock,
		seen:    make(map[string]struct{}),
	}
	if t.clock == nil {
		t.clock = time.Now
	}
	if t.quarter <= 0 {
		t.quarter = Quarter
	}
	if params.MinimumPool == 0 {
		t.minPool = MinimumPool
	}

	if t.store != nil {
		snap, err := t.store.LoadSnapshot()
		switch {
		case err == nil:
			if err := t.restore(snap); err != nil {
				return nil, err
			}
			events, err := t.store.Events(0)
			if err != nil {
				return nil, fmt.Errorf("treasury: load events: %w", err)
			}
			t.events = events
			return t, nil
		case !errors.Is(err, store.ErrNoSnapshot):
			return nil, fmt.Errorf("treasury: load snapshot: %w", err)
		}
	}

	if err := t.initialize(params); err != nil {
		return nil, err
	}
	if t.store != nil {
		if err := t.store.SaveSnapshot(t.snapshot()); err != nil {
			return nil, fmt.Errorf("treasury: save initial snapshot: %w", err)
		}
	}
	return t, nil
}

// initialize builds fresh state from Params.
func (t *Treasury) initialize(params Params) error {
	if params.Operating == "" {
		return ErrNoOperating
	}
	operating, err := registry.ParseRecipient(params.Operating, params.Resolver)
	if err != nil {
		return fmt.Errorf("treasury: operating recipient: %w", err)
	}
	community, err := registry.FromRecipients(params.Community, params.Resolver)
	if err != nil {
		return fmt.Errorf("treasury: community registry: %w", err)
	}
	stakeholder, err := registry.FromRecipients(params.Stakeholder, params.Resolver)
	if err != nil {
		return fmt.Errorf("treasury: stakeholder registry: %w", err)
	}

	t.ledger = ledger.New()
	t.community = community
	t.stakeholder = stakeholder
	t.operating = operating
	t.records = distribution.NewRecords()
	t.controller = params.Controller
	if t.controller == "" {
		t.controller = operating.Address
	}
	t.lastDistribution = t.clock().Unix()
	return nil
}

// restore rebuilds state from a persisted snapshot.
func (t *Treasury) restore(snap *store.Snapshot) error {
	if snap.Operating.Address == "" {
		return fmt.Errorf("%w: snapshot has no operating recipient", ErrNoOperating)
	}
	t.ledger = ledger.Restore(snap.Accounts)
	t.community = registry.Restore(snap.Community)
	t.stakeholder = registry.Restore(snap.Stakeholder)
	t.operating = snap.Operating
	t.records = distribution.RestoreRecords(
		snap.CommunityDistributed, snap.StakeholderDistributed, snap.OperatingDistributed)
	t.controller = snap.Controller
	t.pool = snap.Pool
	t.lastDistribution = snap.LastDistribution
	return nil
}

// snapshot captures the full state for persistence. Caller holds the lock.
func (t *Treasury) snapshot() *store.Snapshot {
	return &store.Snapshot{
		Accounts:               t.ledger.Snapshot(),
		Community:              t.community.Entries(),
		Stakeholder:            t.stakeholder.Entries(),
		Operating:              t.operating,
		Controller:             t.controller,
		Pool:                   t.pool,
		LastDistribution:       t.lastDistribution,
		CommunityDistributed:   copyAmounts(t.records.Community),
		StakeholderDistributed: copyAmounts(t.records.Stakeholder),
		OperatingDistributed:   t.records.Operating,
	}
}

func copyAmounts(m map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// beginOp acquires the single-operation guard. Every state-mutating entry
// point holds it for the full operation, so a second caller, including a
// payout callback re-entering the treasury, fails fast instead of
// interleaving.
func (t *Treasury) beginOp() error {
	if !t.busy.CompareAndSwap(false, true) {
		return ErrOperationInProgress
	}
	return nil
}

// endOp releases the single-operation guard.
func (t *Treasury) endOp() { t.busy.Store(false) }

// commit persists the mutated state: the audit log entry, the snapshot and,
// for on-chain deposits, the credited txid, written in one store transaction.
// Only a successful commit appends the entry to the in-memory log, so a
// failed commit leaves nothing recorded anywhere. Caller holds the lock.
func (t *Treasury) commit(typ store.EventType, address string, amount uint64, txid, seenTxID string) error {
	ev := &store.Event{
		ID:      uuid.NewString(),
		Type:    typ,
		Address: address,
		Amount:  amount,
		TxID:    txid,
		Time:    t.clock().Unix(),
	}
	if t.store != nil {
		if err := t.store.Commit(t.snapshot(), ev, seenTxID); err != nil {
			return fmt.Errorf("treasury: commit state: %w", err)
		}
	} else if seenTxID != "" {
		t.seen[seenTxID] = struct{}{}
	}
	t.events = append(t.events, ev)
	return nil
}

// rollback restores the pre-operation snapshot after a failed commit, so a
// rejected call leaves the treasury exactly as it found it. Caller holds the
// lock.
func (t *Treasury) rollback(prev *store.Snapshot) {
	_ = t.restore(prev)
}

// txSeen reports whether a deposit txid was already credited.
func (t *Treasury) txSeen(txid string) (bool, error) {
	if t.store != nil {
		return t.store.SeenTx(txid)
	}
	_, ok := t.seen[txid]
	return ok, nil
}

// SetClock replaces the treasury's time source. Tests use it to step
// through lock and quarter windows deterministically.
func (t *Treasury) SetClock(clock func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if clock != nil {
		t.clock = clock
	}
}

// Close persists the final state and closes the store, if any.
func (t *Treasury) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.store == nil {
		return nil
	}
	saveErr := t.store.SaveSnapshot(t.snapshot())
	closeErr := t.store.Close()
	if saveErr != nil {
		return fmt.Errorf("treasury: save snapshot: %w", saveErr)
	}
	return closeErr
}
