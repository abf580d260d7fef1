package paymail

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPostClient wraps an httptest.Server to implement PostClient.
// It supports both GET (for capability discovery) and POST (for payment destination).
type mockPostClient struct {
	mockHTTPClient
}

func (m *mockPostClient) Post(url, contentType string, body io.Reader) (*http.Response, error) {
	m.requests = append(m.requests, url)

	req, err := http.NewRequest(http.MethodPost, m.rewriteURL(url), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return http.DefaultClient.Do(req)
}

// setupPaymentDestinationServer creates a test server that advertises
// a payment destination capability and responds to POST requests.
func setupPaymentDestinationServer(t *testing.T, outputs []PaymentOutput) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/.well-known/bsvalias", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"bsvalias": "1.0",
			"capabilities": map[string]interface{}{
				"pki":          "https://example.com/api/v1/bsvalias/pki/{alias}@{domain.tld}",
				"2a40af698840": "https://example.com/api/v1/bsvalias/p2p-payment-destination/{alias}@{domain.tld}",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/api/v1/bsvalias/p2p-payment-destination/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp := map[string]interface{}{
			"outputs": outputs,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})

	return httptest.NewServer(mux)
}

func TestResolvePaymentDestination_Success(t *testing.T) {
	outputs := []PaymentOutput{
		{Script: "76a91489abcdefabbaabbaabbaabbaabbaabbaabbaabba88ac", Satoshis: 1000},
	}
	server := setupPaymentDestinationServer(t, outputs)
	defer server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	result, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "76a91489abcdefabbaabbaabbaabbaabbaabbaabbaabba88ac", result[0].Script)
	assert.Equal(t, uint64(1000), result[0].Satoshis)
}

func TestResolvePaymentDestination_InvalidHandle(t *testing.T) {
	for _, handle := range []string{"", "alice", "@example.com", "alice@"} {
		_, err := ResolvePaymentDestinationWithClient(handle, &mockPostClient{mockHTTPClient{}})
		assert.ErrorIs(t, err, ErrInvalidHandle, "handle %q", handle)
	}
}

func TestResolvePaymentDestination_SendsTreasuryMetadata(t *testing.T) {
	var posted []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/bsvalias", func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"bsvalias": "1.0",
			"capabilities": map[string]interface{}{
				"2a40af698840": "https://example.com/api/v1/bsvalias/p2p-payment-destination/{alias}@{domain.tld}",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/v1/bsvalias/p2p-payment-destination/", func(w http.ResponseWriter, r *http.Request) {
		posted, _ = io.ReadAll(r.Body)
		resp := map[string]interface{}{
			"outputs": []PaymentOutput{{Script: "76a914aabb88ac", Satoshis: 1}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	_, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	require.NoError(t, err)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(posted, &meta))
	assert.Equal(t, "BitFS Treasury", meta["senderName"])
	assert.Equal(t, "revenue share", meta["purpose"])
}

func TestResolvePaymentDestination_NoCapability(t *testing.T) {
	// Server without payment destination capability
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]interface{}{
			"bsvalias": "1.0",
			"capabilities": map[string]interface{}{
				"pki": "https://example.com/api/v1/bsvalias/pki/{alias}@{domain.tld}",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	_, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressResolution)
}

func TestResolvePaymentDestination_EmptyOutputs(t *testing.T) {
	server := setupPaymentDestinationServer(t, []PaymentOutput{})
	defer server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	_, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrAddressResolution)
}

func TestResolvePaymentDestination_MultipleOutputs(t *testing.T) {
	outputs := []PaymentOutput{
		{Script: "76a91489abcdefabbaabbaabbaabbaabbaabbaabbaabba88ac", Satoshis: 500},
		{Script: "76a914aabbccddaabbccddaabbccddaabbccddaabbccdd88ac", Satoshis: 500},
	}
	server := setupPaymentDestinationServer(t, outputs)
	defer server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	result, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, uint64(500), result[0].Satoshis)
	assert.Equal(t, uint64(500), result[1].Satoshis)
}

func TestResolvePaymentDestination_ServerGone(t *testing.T) {
	server := setupPaymentDestinationServer(t, []PaymentOutput{{Script: "76a914aabb88ac", Satoshis: 1}})
	server.Close()

	client := &mockPostClient{mockHTTPClient{server: server}}
	_, err := ResolvePaymentDestinationWithClient("alice@example.com", client)
	assert.ErrorIs(t, err, ErrAddressResolution)
}
