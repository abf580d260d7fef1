package paymail

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// MaxPaymailResponseSize caps how much of a paymail response body is read.
// Anything past the cap is discarded rather than buffered.
const MaxPaymailResponseSize = 1 << 20 // 1 MiB

// Capabilities holds the service URLs a paymail host advertises in its
// .well-known/bsvalias document.
type Capabilities struct {
	PKI                string // URL template for public key infrastructure
	PaymentDestination string // URL template for P2P payment destination
	PublicProfile      string // URL template for profile info
	VerifyPubKey       string // URL template for key verification
}

// PKIResponse holds the response from a paymail PKI endpoint.
type PKIResponse struct {
	BSVAlias string `json:"bsvalias"`
	Handle   string `json:"handle"`
	PubKey   string `json:"pubkey"` // Hex-encoded compressed public key
}

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// DefaultHTTPClient is the production HTTP client.
var DefaultHTTPClient HTTPClient = http.DefaultClient

// wellKnownResponse represents the JSON structure of .well-known/bsvalias.
type wellKnownResponse struct {
	BSVAlias     string                 `json:"bsvalias"`
	Capabilities map[string]interface{} `json:"capabilities"`
}

// Known paymail capability URNs.
const (
	capPKI         = "pki"
	capPaymentDest = "paymentDestination"

	// BRFC IDs used by servers that key capabilities by identifier.
	capPKIFull           = "6745385c3fc0"
	capPublicProfile     = "f12f968c92d6"
	capVerifyPubKey      = "a9f510c16bde"
	capP2PPaymentDest    = "2a40af698840"
	capAddressResolution = "759684b1a19a"
)

// DiscoverCapabilities fetches .well-known/bsvalias from a domain
// and returns the capabilities the paymail host advertises.
func DiscoverCapabilities(domain string) (*Capabilities, error) {
	return DiscoverCapabilitiesWithClient(domain, DefaultHTTPClient)
}

// DiscoverCapabilitiesWithClient fetches capabilities using the provided HTTP client.
func DiscoverCapabilitiesWithClient(domain string, client HTTPClient) (*Capabilities, error) {
	if domain == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrPaymailDiscovery)
	}

	wkURL := "https://" + domain + "/.well-known/bsvalias"
	resp, err := client.Get(wkURL)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrPaymailDiscovery, wkURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrPaymailDiscovery, wkURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPaymailResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrPaymailDiscovery, err)
	}

	var wk wellKnownResponse
	if err := json.Unmarshal(body, &wk); err != nil {
		return nil, fmt.Errorf("%w: parsing JSON: %w", ErrPaymailDiscovery, err)
	}

	caps := &Capabilities{}

	// Extract capability URLs from the capabilities map. Servers key these
	// either by name or by BRFC ID.
	for key, val := range wk.Capabilities {
		urlStr, ok := val.(string)
		if !ok {
			continue
		}
		// Capability endpoints must be https.
		if !strings.HasPrefix(urlStr, "https://") {
			continue
		}
		switch {
		case key == capPKI || key == capPKIFull || strings.Contains(key, "pki"):
			caps.PKI = urlStr
		case key == capPaymentDest || key == capP2PPaymentDest || key == capAddressResolution ||
			strings.Contains(key, "payment-destination"):
			caps.PaymentDestination = urlStr
		case key == capPublicProfile || strings.Contains(key, "public-profile"):
			caps.PublicProfile = urlStr
		case key == capVerifyPubKey || strings.Contains(key, "verify-pubkey"):
			caps.VerifyPubKey = urlStr
		}
	}

	return caps, nil
}

// ResolvePKI resolves a paymail alias to its public key using the PKI
// capability. Returns the compressed public key bytes registered for the
// handle.
func ResolvePKI(alias, domain string) ([]byte, error) {
	return ResolvePKIWithClient(alias, domain, DefaultHTTPClient)
}

// ResolvePKIWithClient resolves PKI using the provided HTTP client.
func ResolvePKIWithClient(alias, domain string, client HTTPClient) ([]byte, error) {
	if alias == "" || domain == "" {
		return nil, fmt.Errorf("%w: alias and domain are required", ErrPKIResolution)
	}

	caps, err := DiscoverCapabilitiesWithClient(domain, client)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPKIResolution, err)
	}

	if caps.PKI == "" {
		return nil, fmt.Errorf("%w: no PKI capability found for %s", ErrPKIResolution, domain)
	}

	return fetchPKI(caps.PKI, alias, domain, client)
}

// fetchPKI fetches a handle's public key from a PKI URL template. The
// template's {alias} and {domain.tld} variables are substituted with the
// handle's parts, escaped to prevent path traversal.
func fetchPKI(template, alias, domain string, client HTTPClient) ([]byte, error) {
	pkiURL := strings.ReplaceAll(template, "{alias}", url.PathEscape(alias))
	pkiURL = strings.ReplaceAll(pkiURL, "{domain.tld}", url.PathEscape(domain))

	resp, err := client.Get(pkiURL)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrPKIResolution, pkiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned status %d", ErrPKIResolution, pkiURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPaymailResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrPKIResolution, err)
	}

	var pki PKIResponse
	if err := json.Unmarshal(body, &pki); err != nil {
		return nil, fmt.Errorf("%w: parsing PKI response: %w", ErrPKIResolution, err)
	}

	if pki.PubKey == "" {
		return nil, fmt.Errorf("%w: empty public key in response", ErrPKIResolution)
	}

	pubKeyBytes, err := hex.DecodeString(pki.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex public key: %w", ErrInvalidPubKey, err)
	}

	if err := validateCompressedPubKey(pubKeyBytes); err != nil {
		return nil, err
	}

	return pubKeyBytes, nil
}
