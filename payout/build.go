package payout

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/bitfsorg/libtreasury-go/network"
)

const (
	// DustLimit is the smallest change value worth keeping. Change at or
	// below this threshold is left to the miner as extra fee.
	DustLimit = uint64(546)

	// DefaultFeeRate is the default fee rate in sat/KB.
	DefaultFeeRate = uint64(1)
)

// EstimateSize estimates the serialized size in bytes of a payout
// transaction. All inputs and outputs are plain P2PKH.
func EstimateSize(numInputs, numOutputs int) int {
	// Base: version(4) + locktime(4) + input count varint(1) + output count varint(1) = 10
	// Per input: prevhash(32) + previndex(4) + scriptlen varint(1) + script(~107 for P2PKH) + sequence(4) = 148
	// Per output: value(8) + scriptlen varint(1) + script(~25 for P2PKH) = 34
	return 10 + numInputs*148 + numOutputs*34
}

// EstimateFee estimates the fee in satoshis for a transaction of the given
// size at the given rate in sat/KB.
func EstimateFee(txSizeBytes int, feeRate uint64) uint64 {
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	fee := uint64(txSizeBytes) * feeRate
	// Ceiling division by 1000
	return (fee + 999) / 1000
}

// BuildResult carries a signed payout transaction ready for broadcast.
type BuildResult struct {
	RawTx  []byte
	Hex    string
	TxID   string
	Fee    uint64
	Size   int
	Change uint64
}

// BuildTx assembles and signs a transaction paying every output, funded
// from utxos belonging to key's address. UTXOs are consumed in order until
// the outputs and the estimated fee are covered; the surplus returns to
// changeAddr when it exceeds the dust limit.
func BuildTx(outputs []Output, utxos []*network.UTXO, key *ec.PrivateKey, changeAddr string, feeRate uint64) (*BuildResult, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	if key == nil {
		return nil, ErrNilKey
	}
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}

	// Build the locking script for each output up front so a bad recipient
	// is reported before anything is funded.
	lockScripts := make([]*script.Script, len(outputs))
	outputsSum := uint64(0)
	for i, out := range outputs {
		if out.Amount == 0 {
			return nil, &OutputError{Index: i, Err: ErrZeroOutput}
		}
		addr, err := script.NewAddressFromString(out.Address)
		if err != nil {
			return nil, &OutputError{Index: i, Err: fmt.Errorf("%w: %w", ErrInvalidAddress, err)}
		}
		ls, err := p2pkh.Lock(addr)
		if err != nil {
			return nil, &OutputError{Index: i, Err: fmt.Errorf("%w: %w", ErrScriptBuild, err)}
		}
		lockScripts[i] = ls
		outputsSum += out.Amount
	}

	// Greedy coin selection: consume UTXOs in order, re-estimating the fee
	// as inputs accumulate. One extra output is reserved for change.
	needed := func(numInputs int) uint64 {
		return outputsSum + EstimateFee(EstimateSize(numInputs, len(outputs)+1), feeRate)
	}
	var (
		selected  []*network.UTXO
		available uint64
	)
	for _, u := range utxos {
		if u == nil || u.Amount == 0 {
			continue
		}
		selected = append(selected, u)
		available += u.Amount
		if available >= needed(len(selected)) {
			break
		}
	}
	if available < needed(len(selected)) {
		return nil, fmt.Errorf("%w: need %d sat, have %d sat",
			ErrInsufficientFunds, needed(len(selected)), available)
	}

	estSize := EstimateSize(len(selected), len(outputs)+1)
	fee := EstimateFee(estSize, feeRate)

	// The funding UTXOs all belong to key's address; its P2PKH script is
	// the source locking script used for signing when the node did not
	// return one.
	keyAddr, err := script.NewAddressFromPublicKey(key.PubKey(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: funding address: %w", ErrScriptBuild, err)
	}
	keyScript, err := p2pkh.Lock(keyAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: funding script: %w", ErrScriptBuild, err)
	}

	sdkTx := transaction.NewTransaction()

	for _, u := range selected {
		utxoHash, err := txidToHash(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid UTXO TxID: %w", ErrScriptBuild, err)
		}
		sdkTx.AddInput(&transaction.TransactionInput{
			SourceTXID:       utxoHash,
			SourceTxOutIndex: u.Vout,
			SequenceNumber:   transaction.DefaultSequenceNumber,
		})
	}

	for i, out := range outputs {
		sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
			Satoshis:      out.Amount,
			LockingScript: lockScripts[i],
		})
	}

	change := available - outputsSum - fee
	if change > DustLimit {
		addr, err := script.NewAddressFromString(changeAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: change address: %w", ErrScriptBuild, err)
		}
		changeScript, err := p2pkh.Lock(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: change script: %w", ErrScriptBuild, err)
		}
		sdkTx.Outputs = append(sdkTx.Outputs, &transaction.TransactionOutput{
			Satoshis:      change,
			LockingScript: changeScript,
		})
	} else {
		// Dust change is absorbed into the fee.
		fee += change
		change = 0
	}

	// Sign every input with the treasury key.
	unlocker, err := p2pkh.Unlock(key, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	for i, u := range selected {
		sourceScript := keyScript
		if u.ScriptPubKey != "" {
			raw, err := hex.DecodeString(u.ScriptPubKey)
			if err != nil {
				return nil, fmt.Errorf("%w: UTXO script: %w", ErrScriptBuild, err)
			}
			sourceScript = script.NewFromBytes(raw)
		}
		sdkTx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      u.Amount,
			LockingScript: sourceScript,
		})
		sdkTx.Inputs[i].UnlockingScriptTemplate = unlocker
	}
	if err := sdkTx.Sign(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	rawTx := sdkTx.Bytes()
	return &BuildResult{
		RawTx:  rawTx,
		Hex:    sdkTx.Hex(),
		TxID:   sdkTx.TxID().String(),
		Fee:    fee,
		Size:   len(rawTx),
		Change: change,
	}, nil
}

// txidToHash converts a display-order txid hex string (as returned by node
// RPC) into the internal byte-order hash go-sdk expects.
func txidToHash(txid string) (*chainhash.Hash, error) {
	raw, err := hex.DecodeString(txid)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return chainhash.NewHash(raw)
}
