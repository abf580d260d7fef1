// Package paymail resolves recipient paymail handles for payout routing.
//
// A handle (alias@domain) names a payout recipient without pinning an
// address. Resolution follows the bsvalias convention: capability discovery
// via /.well-known/bsvalias, then a PKI request for the handle's compressed
// public key, from which the P2PKH payout address is derived. A bsvalias
// SRV record may redirect discovery to a dedicated paymail host, optionally
// validated with DNSSEC.
package paymail

import (
	"fmt"
	"strings"
)

// ParseHandle splits a paymail handle into its alias and domain parts.
// A handle has the form alias@domain with both parts non-empty.
func ParseHandle(handle string) (alias, domain string, err error) {
	trimmed := strings.TrimSpace(handle)
	if trimmed == "" {
		return "", "", fmt.Errorf("%w: empty handle", ErrInvalidHandle)
	}

	parts := strings.SplitN(trimmed, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q is not alias@domain", ErrInvalidHandle, handle)
	}
	if strings.Contains(parts[1], "@") {
		return "", "", fmt.Errorf("%w: %q has multiple @ separators", ErrInvalidHandle, handle)
	}

	return parts[0], parts[1], nil
}
