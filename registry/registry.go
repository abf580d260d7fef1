// Package registry holds the ordered recipient lists for the three treasury
// payout classes. The community registry is seeded at construction; the
// stakeholder registry is seeded at construction and grown by first-time
// deposits; the operating-cost recipient is a single fixed entry.
//
// Registries are ordered and duplicate-tolerant: an identity appearing twice
// receives two shares. They never shrink.
package registry

import (
	"fmt"
	"strings"

	"github.com/bsv-blockchain/go-sdk/script"
)

// Entry is a single registry member. Address is always a P2PKH address
// string; Handle preserves the paymail handle the entry was registered
// under, when there was one.
type Entry struct {
	Address string
	Handle  string
}

// AddressResolver resolves a paymail handle (alias@domain) to a P2PKH
// address string. Implemented by the paymail package.
type AddressResolver interface {
	ResolveAddress(handle string) (string, error)
}

// ValidateAddress checks that addr parses as a P2PKH address.
func ValidateAddress(addr string) error {
	if addr == "" {
		return ErrEmptyRecipient
	}
	if _, err := script.NewAddressFromString(addr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	return nil
}

// ParseRecipient turns a recipient string into an Entry. A string containing
// "@" is treated as a paymail handle and resolved to an address; anything
// else must be a valid P2PKH address. The resolver may be nil when no
// handles are expected.
func ParseRecipient(s string, resolver AddressResolver) (Entry, error) {
	if s == "" {
		return Entry{}, ErrEmptyRecipient
	}
	if !strings.Contains(s, "@") {
		if err := ValidateAddress(s); err != nil {
			return Entry{}, err
		}
		return Entry{Address: s}, nil
	}

	if resolver == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrNoResolver, s)
	}
	addr, err := resolver.ResolveAddress(s)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q: %v", ErrResolveFailed, s, err)
	}
	if err := ValidateAddress(addr); err != nil {
		return Entry{}, fmt.Errorf("%w: resolved %q to %q: %v", ErrResolveFailed, s, addr, err)
	}
	return Entry{Address: addr, Handle: s}, nil
}

// Registry is an ordered, duplicate-tolerant list of entries.
type Registry struct {
	entries []Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// FromRecipients parses each recipient string and returns the populated
// registry. Order is preserved; duplicates are kept.
func FromRecipients(recipients []string, resolver AddressResolver) (*Registry, error) {
	r := New()
	for i, s := range recipients {
		entry, err := ParseRecipient(s, resolver)
		if err != nil {
			return nil, fmt.Errorf("registry: recipient %d: %w", i, err)
		}
		r.Add(entry)
	}
	return r, nil
}

// Restore rebuilds a registry from persisted entries.
func Restore(entries []Entry) *Registry {
	r := New()
	r.entries = append(r.entries, entries...)
	return r
}

// Add appends an entry. Duplicates are allowed; a duplicated identity
// receives one share per occurrence during distribution.
func (r *Registry) Add(e Entry) {
	r.entries = append(r.entries, e)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Contains reports whether any entry has the given address.
func (r *Registry) Contains(address string) bool {
	for _, e := range r.entries {
		if e.Address == address {
			return true
		}
	}
	return false
}

// Addresses returns the entry addresses in registration order.
func (r *Registry) Addresses() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Address
	}
	return out
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
