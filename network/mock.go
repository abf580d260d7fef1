package network

import "context"

// Compile-time interface check.
var _ ChainService = (*MockChainService)(nil)

// MockChainService is a test double for ChainService.
// All function fields must be set before the corresponding method is called.
type MockChainService struct {
	ListUnspentFn   func(ctx context.Context, address string) ([]*UTXO, error)
	BroadcastTxFn   func(ctx context.Context, rawTxHex string) (string, error)
	GetRawTxFn      func(ctx context.Context, txid string) ([]byte, error)
	ImportAddressFn func(ctx context.Context, address string) error
}

func (m *MockChainService) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	return m.ListUnspentFn(ctx, address)
}

func (m *MockChainService) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastTxFn(ctx, rawTxHex)
}

func (m *MockChainService) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	return m.GetRawTxFn(ctx, txid)
}

func (m *MockChainService) ImportAddress(ctx context.Context, address string) error {
	return m.ImportAddressFn(ctx, address)
}
