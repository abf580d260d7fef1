package payout

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/libtreasury-go/network"
)

// makeKey generates a fresh key and its mainnet address.
func makeKey(t *testing.T) (*ec.PrivateKey, string) {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	addr, err := script.NewAddressFromPublicKey(priv.PubKey(), true)
	require.NoError(t, err)
	return priv, addr.AddressString
}

// makeUTXO builds a funding UTXO locked to the given address.
func makeUTXO(t *testing.T, address string, vout uint32, amount uint64) *network.UTXO {
	t.Helper()
	addr, err := script.NewAddressFromString(address)
	require.NoError(t, err)
	ls, err := p2pkh.Lock(addr)
	require.NoError(t, err)
	return &network.UTXO{
		TxID:         strings.Repeat("ab", 32),
		Vout:         vout,
		Amount:       amount,
		ScriptPubKey: hex.EncodeToString(ls.Bytes()),
		Address:      address,
	}
}

// lockingScriptFor returns the P2PKH locking script bytes for an address.
func lockingScriptFor(t *testing.T, address string) []byte {
	t.Helper()
	addr, err := script.NewAddressFromString(address)
	require.NoError(t, err)
	ls, err := p2pkh.Lock(addr)
	require.NoError(t, err)
	return ls.Bytes()
}

// --- BuildTx tests ---

func TestBuildTxPaysEveryOutput(t *testing.T) {
	key, fundAddr := makeKey(t)
	_, addr1 := makeKey(t)
	_, addr2 := makeKey(t)

	outputs := []Output{
		{Address: addr1, Amount: 10_000},
		{Address: addr2, Amount: 25_000},
	}
	utxos := []*network.UTXO{makeUTXO(t, fundAddr, 0, 100_000)}

	built, err := BuildTx(outputs, utxos, key, fundAddr, 0)
	require.NoError(t, err)
	require.NotNil(t, built)

	tx, err := transaction.NewTransactionFromBytes(built.RawTx)
	require.NoError(t, err)

	// Two recipient outputs plus change.
	require.Len(t, tx.Outputs, 3)
	assert.Equal(t, uint64(10_000), tx.Outputs[0].Satoshis)
	assert.Equal(t, uint64(25_000), tx.Outputs[1].Satoshis)
	assert.Equal(t, lockingScriptFor(t, addr1), tx.Outputs[0].LockingScript.Bytes())
	assert.Equal(t, lockingScriptFor(t, addr2), tx.Outputs[1].LockingScript.Bytes())

	// Change returns to the funding address and conserves value.
	assert.Equal(t, lockingScriptFor(t, fundAddr), tx.Outputs[2].LockingScript.Bytes())
	assert.Equal(t, uint64(100_000)-10_000-25_000-built.Fee, tx.Outputs[2].Satoshis)
	assert.Equal(t, tx.Outputs[2].Satoshis, built.Change)

	// The single input is signed.
	require.Len(t, tx.Inputs, 1)
	require.NotNil(t, tx.Inputs[0].UnlockingScript)
	assert.NotEmpty(t, tx.Inputs[0].UnlockingScript.Bytes())

	assert.Equal(t, tx.TxID().String(), built.TxID)
	assert.Equal(t, len(built.RawTx), built.Size)
}

func TestBuildTxSelectsMultipleUTXOs(t *testing.T) {
	key, fundAddr := makeKey(t)
	_, dest := makeKey(t)

	outputs := []Output{{Address: dest, Amount: 90_000}}
	utxos := []*network.UTXO{
		makeUTXO(t, fundAddr, 0, 50_000),
		makeUTXO(t, fundAddr, 1, 50_000),
	}

	built, err := BuildTx(outputs, utxos, key, fundAddr, 0)
	require.NoError(t, err)

	tx, err := transaction.NewTransactionFromBytes(built.RawTx)
	require.NoError(t, err)
	assert.Len(t, tx.Inputs, 2)
	for _, in := range tx.Inputs {
		require.NotNil(t, in.UnlockingScript)
		assert.NotEmpty(t, in.UnlockingScript.Bytes())
	}
}

func TestBuildTxDustChangeAbsorbedIntoFee(t *testing.T) {
	key, fundAddr := makeKey(t)
	_, dest := makeKey(t)

	outputs := []Output{{Address: dest, Amount: 10_000}}
	baseFee := EstimateFee(EstimateSize(1, 2), DefaultFeeRate)
	// Surplus of exactly 100 sat is below the dust limit.
	utxos := []*network.UTXO{makeUTXO(t, fundAddr, 0, 10_000+baseFee+100)}

	built, err := BuildTx(outputs, utxos, key, fundAddr, 0)
	require.NoError(t, err)

	tx, err := transaction.NewTransactionFromBytes(built.RawTx)
	require.NoError(t, err)
	assert.Len(t, tx.Outputs, 1)
	assert.Equal(t, uint64(0), built.Change)
	assert.Equal(t, baseFee+100, built.Fee)
}

func TestBuildTxValidation(t *testing.T) {
	key, fundAddr := makeKey(t)
	_, dest := makeKey(t)
	utxos := []*network.UTXO{makeUTXO(t, fundAddr, 0, 100_000)}

	t.Run("no outputs", func(t *testing.T) {
		_, err := BuildTx(nil, utxos, key, fundAddr, 0)
		assert.ErrorIs(t, err, ErrNoOutputs)
	})

	t.Run("nil key", func(t *testing.T) {
		_, err := BuildTx([]Output{{Address: dest, Amount: 1000}}, utxos, nil, fundAddr, 0)
		assert.ErrorIs(t, err, ErrNilKey)
	})

	t.Run("zero amount reports output index", func(t *testing.T) {
		outputs := []Output{
			{Address: dest, Amount: 1000},
			{Address: dest, Amount: 0},
		}
		_, err := BuildTx(outputs, utxos, key, fundAddr, 0)
		require.ErrorIs(t, err, ErrZeroOutput)
		var oe *OutputError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, 1, oe.Index)
	})

	t.Run("bad address reports output index", func(t *testing.T) {
		outputs := []Output{{Address: "not-an-address", Amount: 1000}}
		_, err := BuildTx(outputs, utxos, key, fundAddr, 0)
		require.ErrorIs(t, err, ErrInvalidAddress)
		var oe *OutputError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, 0, oe.Index)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		outputs := []Output{{Address: dest, Amount: 200_000}}
		_, err := BuildTx(outputs, utxos, key, fundAddr, 0)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})

	t.Run("bad UTXO txid", func(t *testing.T) {
		bad := makeUTXO(t, fundAddr, 0, 100_000)
		bad.TxID = "zz"
		_, err := BuildTx([]Output{{Address: dest, Amount: 1000}}, []*network.UTXO{bad}, key, fundAddr, 0)
		assert.ErrorIs(t, err, ErrScriptBuild)
	})
}

// --- Fee estimation tests ---

func TestEstimateSize(t *testing.T) {
	assert.Equal(t, 10+148+34, EstimateSize(1, 1))
	assert.Equal(t, 10+2*148+3*34, EstimateSize(2, 3))
}

func TestEstimateFee(t *testing.T) {
	tests := []struct {
		name string
		size int
		rate uint64
		want uint64
	}{
		{"exact kilobyte", 1000, 1, 1},
		{"rounds up", 1001, 1, 2},
		{"under a kilobyte", 250, 1, 1},
		{"zero rate uses default", 500, 0, 1},
		{"higher rate", 2000, 5, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateFee(tt.size, tt.rate))
		})
	}
}

// --- OutputError tests ---

func TestOutputErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &OutputError{Index: 3, Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "output 3")
}
