package network

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "testuser", user)
		assert.Equal(t, "testpass", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getblockcount", req.Method)

		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`100`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL, User: "testuser", Password: "testpass"})
	var height int
	err := client.Call(context.Background(), "getblockcount", nil, &height)
	require.NoError(t, err)
	assert.Equal(t, 100, height)
}

func TestRPCClientRPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := rpcResponse{
			ID:    req.ID,
			Error: &rpcError{Code: -5, Message: "No such mempool or blockchain transaction"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	var result json.RawMessage
	err := client.Call(context.Background(), "getrawtransaction", []interface{}{"badtxid"}, &result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such mempool")
}

func TestRPCClientConnectionError(t *testing.T) {
	client := NewRPCClient(RPCConfig{URL: "http://localhost:1"})
	var result int
	err := client.Call(context.Background(), "getblockcount", nil, &result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestRPCClientIDMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := rpcResponse{ID: 9999, Result: json.RawMessage(`1`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	var result int
	err := client.Call(context.Background(), "getblockcount", nil, &result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestListUnspent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "listunspent", req.Method)

		result := `[{"txid":"aa11","vout":1,"amount":0.5,"scriptPubKey":"76a914","address":"1Addr","confirmations":6}]`
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(result)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	utxos, err := client.ListUnspent(context.Background(), "1Addr")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "aa11", utxos[0].TxID)
	assert.Equal(t, uint32(1), utxos[0].Vout)
	assert.Equal(t, uint64(50_000_000), utxos[0].Amount, "0.5 BTC converts to satoshis")
	assert.Equal(t, int64(6), utxos[0].Confirmations)
}

func TestBroadcastTx(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req rpcRequest
			json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "sendrawtransaction", req.Method)
			resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`"deadbeef"`)}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewRPCClient(RPCConfig{URL: server.URL})
		txid, err := client.BroadcastTx(context.Background(), "0100")
		require.NoError(t, err)
		assert.Equal(t, "deadbeef", txid)
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req rpcRequest
			json.NewDecoder(r.Body).Decode(&req)
			resp := rpcResponse{
				ID:    req.ID,
				Error: &rpcError{Code: -26, Message: "dust"},
			}
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewRPCClient(RPCConfig{URL: server.URL})
		_, err := client.BroadcastTx(context.Background(), "0100")
		assert.ErrorIs(t, err, ErrBroadcastRejected)
	})
}

func TestGetRawTx(t *testing.T) {
	raw := []byte{0x01, 0x00, 0x00, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "getrawtransaction", req.Method)
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`"` + hex.EncodeToString(raw) + `"`)}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	got, err := client.GetRawTx(context.Background(), "aa11")
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestImportAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "importaddress", req.Method)
		require.Len(t, req.Params, 3)
		assert.Equal(t, "1Addr", req.Params[0])

		resp := rpcResponse{ID: req.ID}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewRPCClient(RPCConfig{URL: server.URL})
	assert.NoError(t, client.ImportAddress(context.Background(), "1Addr"))
}
