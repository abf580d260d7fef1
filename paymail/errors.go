package paymail

import "errors"

var (
	// ErrInvalidHandle indicates a handle is not of the form alias@domain.
	ErrInvalidHandle = errors.New("paymail: invalid handle")

	// ErrDNSLookupFailed indicates a DNS SRV lookup failed.
	ErrDNSLookupFailed = errors.New("paymail: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the upstream resolver did not
	// authenticate the DNS response (AD flag missing).
	ErrDNSSECValidationFailed = errors.New("paymail: DNSSEC validation failed")

	// ErrPaymailDiscovery indicates .well-known/bsvalias fetch failed.
	ErrPaymailDiscovery = errors.New("paymail: capability discovery failed")

	// ErrPKIResolution indicates the paymail PKI endpoint returned an error.
	ErrPKIResolution = errors.New("paymail: PKI resolution failed")

	// ErrNoEndpoints indicates no SRV records were found for the domain.
	ErrNoEndpoints = errors.New("paymail: no endpoints found")

	// ErrInvalidPubKey indicates a public key is not a valid compressed secp256k1 key.
	ErrInvalidPubKey = errors.New("paymail: invalid compressed public key")

	// ErrAddressResolution indicates the P2P payment destination resolution failed.
	ErrAddressResolution = errors.New("paymail: address resolution failed")
)
