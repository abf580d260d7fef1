package payout

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
)

// DepositProof identifies a verified on-chain deposit.
type DepositProof struct {
	TxID   string
	Amount uint64
}

// VerifyDeposit checks that rawTx pays the treasury address and returns the
// total satoshis carried by its matching P2PKH outputs.
//
// WARNING: This function does NOT verify input signatures. Callers MUST
// independently confirm the transaction is accepted by the network (mempool
// or confirmed) before crediting the depositor.
//
// WARNING: This function does NOT prevent replay. Callers MUST track
// credited TxIDs so the same transaction cannot be deposited twice.
func VerifyDeposit(rawTx []byte, address string) (*DepositProof, error) {
	if len(rawTx) == 0 {
		return nil, fmt.Errorf("%w: empty raw transaction", ErrInvalidTx)
	}

	tx, err := transaction.NewTransactionFromBytes(rawTx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTx, err)
	}

	expectedAddr, err := script.NewAddressFromString(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	expectedPKH := []byte(expectedAddr.PublicKeyHash)
	if len(expectedPKH) == 0 {
		return nil, fmt.Errorf("%w: empty public key hash from address", ErrInvalidAddress)
	}

	// Sum every P2PKH output paying the treasury address. A deposit may be
	// split across several outputs of the same transaction.
	total := uint64(0)
	found := false
	for _, output := range tx.Outputs {
		if output.LockingScript == nil {
			continue
		}
		if !output.LockingScript.IsP2PKH() {
			continue
		}
		outputPKH, err := output.LockingScript.PublicKeyHash()
		if err != nil {
			continue
		}
		if !bytes.Equal(outputPKH, expectedPKH) {
			continue
		}
		total += output.Satoshis
		found = true
	}
	if !found {
		return nil, ErrNoMatchingOutput
	}

	return &DepositProof{TxID: tx.TxID().String(), Amount: total}, nil
}
