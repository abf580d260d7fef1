package paymail

import (
	"errors"
	"fmt"
	"net"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
)

// Resolver resolves paymail handles to P2PKH payout addresses.
//
// Client performs capability discovery and the PKI request. DNS, when set,
// consults the domain's bsvalias SRV record and sends discovery to the host
// it names; domains without a record are served directly. Using a
// DNSSECResolver for DNS makes validation mandatory: an unauthenticated SRV
// response aborts resolution instead of falling back to the bare domain.
type Resolver struct {
	Client  HTTPClient
	DNS     DNSResolver
	Testnet bool // derive testnet address prefixes
}

// NewResolver returns a Resolver that queries each handle's own domain over
// the default HTTP client and derives mainnet addresses.
func NewResolver() *Resolver {
	return &Resolver{Client: DefaultHTTPClient}
}

// ResolveAddress resolves alias@domain to the P2PKH address derived from the
// handle's PKI public key. It satisfies the recipient registry's resolver
// interface.
func (r *Resolver) ResolveAddress(handle string) (string, error) {
	alias, domain, err := ParseHandle(handle)
	if err != nil {
		return "", err
	}

	client := r.Client
	if client == nil {
		client = DefaultHTTPClient
	}

	host := domain
	if r.DNS != nil {
		endpoints, err := ResolveEndpointsWithResolver(domain, r.DNS)
		switch {
		case err == nil:
			host = endpoints[0]
		case srvAbsent(err):
			// A domain without SRV records serves paymail itself.
		default:
			// Transient lookup failures and DNSSEC violations abort:
			// falling back here would skip a host the domain declared.
			return "", err
		}
	}

	caps, err := DiscoverCapabilitiesWithClient(host, client)
	if err != nil {
		return "", err
	}
	if caps.PKI == "" {
		return "", fmt.Errorf("%w: no PKI capability found for %s", ErrPKIResolution, domain)
	}

	pubKey, err := fetchPKI(caps.PKI, alias, domain, client)
	if err != nil {
		return "", err
	}

	return AddressFromPubKey(pubKey, !r.Testnet)
}

// srvAbsent reports whether an SRV lookup error means the domain
// authoritatively has no bsvalias record, as opposed to a resolver failure.
func srvAbsent(err error) bool {
	if errors.Is(err, ErrNoEndpoints) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

// AddressFromPubKey derives the P2PKH address paying the holder of a
// compressed secp256k1 public key.
func AddressFromPubKey(pub []byte, mainnet bool) (string, error) {
	if err := validateCompressedPubKey(pub); err != nil {
		return "", err
	}

	pk, err := ec.PublicKeyFromBytes(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}

	addr, err := script.NewAddressFromPublicKey(pk, mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}

	return addr.AddressString, nil
}

// validateCompressedPubKey checks that raw bytes represent a valid compressed public key.
// A compressed secp256k1 public key is exactly 33 bytes with prefix 0x02 or 0x03.
func validateCompressedPubKey(pub []byte) error {
	if len(pub) != 33 {
		return fmt.Errorf("%w: expected 33 bytes, got %d", ErrInvalidPubKey, len(pub))
	}
	if pub[0] != 0x02 && pub[0] != 0x03 {
		return fmt.Errorf("%w: invalid prefix byte 0x%02x", ErrInvalidPubKey, pub[0])
	}
	return nil
}
