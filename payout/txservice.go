package payout

import (
	"context"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"

	"github.com/bitfsorg/libtreasury-go/network"
)

// Compile-time interface check.
var _ Service = (*TxService)(nil)

// TxService is the on-chain Service implementation. Payouts are funded from
// the UTXO set of the treasury key's address, signed with that key and
// broadcast through a ChainService.
type TxService struct {
	chain   network.ChainService
	key     *ec.PrivateKey
	address string
	feeRate uint64
}

// NewTxService creates a payout service funded by key. The funding address
// is derived from key's public key. A zero feeRate selects DefaultFeeRate.
func NewTxService(chain network.ChainService, key *ec.PrivateKey, feeRate uint64) (*TxService, error) {
	if chain == nil {
		return nil, ErrNilChain
	}
	if key == nil {
		return nil, ErrNilKey
	}
	addr, err := script.NewAddressFromPublicKey(key.PubKey(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: funding address: %w", ErrScriptBuild, err)
	}
	if feeRate == 0 {
		feeRate = DefaultFeeRate
	}
	return &TxService{
		chain:   chain,
		key:     key,
		address: addr.AddressString,
		feeRate: feeRate,
	}, nil
}

// Address returns the funding address payouts are drawn from. Value sent
// here becomes spendable by the service.
func (s *TxService) Address() string {
	return s.address
}

// Send implements Service. The funding address is imported watch-only
// before listing UTXOs so a fresh node can still find them.
func (s *TxService) Send(ctx context.Context, outputs []Output) (*Receipt, error) {
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	if err := s.chain.ImportAddress(ctx, s.address); err != nil {
		return nil, fmt.Errorf("payout: import address: %w", err)
	}
	utxos, err := s.chain.ListUnspent(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("payout: list unspent: %w", err)
	}

	built, err := BuildTx(outputs, utxos, s.key, s.address, s.feeRate)
	if err != nil {
		return nil, err
	}

	txid, err := s.chain.BroadcastTx(ctx, built.Hex)
	if err != nil {
		return nil, fmt.Errorf("payout: broadcast: %w", err)
	}
	if txid == "" {
		txid = built.TxID
	}
	return &Receipt{TxID: txid, Fee: built.Fee, Size: built.Size}, nil
}
