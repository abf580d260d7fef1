package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketState  = []byte("state")
	bucketEvents = []byte("events")
	bucketSeen   = []byte("seen_txids")

	keySnapshot = []byte("snapshot")
)

// BoltStore wraps a bbolt database for treasury state storage.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketState, bucketEvents, bucketSeen} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// seqKey encodes an event sequence number as an 8-byte big-endian key for
// sorted storage.
func seqKey(n uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, n)
	return k
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// SaveSnapshot overwrites the stored treasury state.
func (s *BoltStore) SaveSnapshot(snap *Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	data, err := encodeGob(snap)
	if err != nil {
		return fmt.Errorf("boltstore: encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketState).Put(keySnapshot, data); err != nil {
			return fmt.Errorf("boltstore: put snapshot: %w", err)
		}
		return nil
	})
}

// LoadSnapshot retrieves the stored treasury state.
// Returns ErrNoSnapshot when none has been saved.
func (s *BoltStore) LoadSnapshot() (*Snapshot, error) {
	var snap Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keySnapshot)
		if data == nil {
			return ErrNoSnapshot
		}
		if err := decodeGob(data, &snap); err != nil {
			return fmt.Errorf("boltstore: decode snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// AppendEvent appends one entry to the audit log.
func (s *BoltStore) AppendEvent(ev *Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	data, err := encodeGob(ev)
	if err != nil {
		return fmt.Errorf("boltstore: encode event: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: event sequence: %w", err)
		}
		if err := b.Put(seqKey(seq), data); err != nil {
			return fmt.Errorf("boltstore: put event: %w", err)
		}
		return nil
	})
}

// Commit writes the snapshot, appends the event and, when seenTxID is not
// empty, marks the credited txid, all in one transaction. A failure persists
// nothing, so the stored state can never hold one part of a mutation without
// the others.
func (s *BoltStore) Commit(snap *Snapshot, ev *Event, seenTxID string) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	if ev == nil {
		return ErrNilEvent
	}
	snapData, err := encodeGob(snap)
	if err != nil {
		return fmt.Errorf("boltstore: encode snapshot: %w", err)
	}
	evData, err := encodeGob(ev)
	if err != nil {
		return fmt.Errorf("boltstore: encode event: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketState).Put(keySnapshot, snapData); err != nil {
			return fmt.Errorf("boltstore: put snapshot: %w", err)
		}
		events := tx.Bucket(bucketEvents)
		seq, err := events.NextSequence()
		if err != nil {
			return fmt.Errorf("boltstore: event sequence: %w", err)
		}
		if err := events.Put(seqKey(seq), evData); err != nil {
			return fmt.Errorf("boltstore: put event: %w", err)
		}
		if seenTxID != "" {
			seen := tx.Bucket(bucketSeen)
			if seen.Get([]byte(seenTxID)) != nil {
				return ErrDuplicateTx
			}
			if err := seen.Put([]byte(seenTxID), []byte{}); err != nil {
				return fmt.Errorf("boltstore: put seen txid: %w", err)
			}
		}
		return nil
	})
}

// Events returns audit log entries in append order. A positive limit
// restricts the result to the most recent entries.
func (s *BoltStore) Events(limit int) ([]*Event, error) {
	var events []*Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(events) == limit {
				break
			}
			var ev Event
			if err := decodeGob(v, &ev); err != nil {
				return fmt.Errorf("boltstore: decode event: %w", err)
			}
			events = append(events, &ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Walked newest-first; restore append order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// EventCount returns the total number of audit log entries.
func (s *BoltStore) EventCount() (uint64, error) {
	var count uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = uint64(tx.Bucket(bucketEvents).Stats().KeyN)
		return nil
	})
	return count, err
}

// MarkTxSeen records a credited deposit txid.
// Returns ErrDuplicateTx if the txid was already recorded.
func (s *BoltStore) MarkTxSeen(txid string) error {
	if txid == "" {
		return ErrEmptyTxID
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSeen)
		if b.Get([]byte(txid)) != nil {
			return ErrDuplicateTx
		}
		if err := b.Put([]byte(txid), []byte{}); err != nil {
			return fmt.Errorf("boltstore: put seen txid: %w", err)
		}
		return nil
	})
}

// SeenTx reports whether a deposit txid was already credited.
func (s *BoltStore) SeenTx(txid string) (bool, error) {
	if txid == "" {
		return false, ErrEmptyTxID
	}
	var seen bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		seen = tx.Bucket(bucketSeen).Get([]byte(txid)) != nil
		return nil
	})
	return seen, err
}
