package payout

import "context"

// Compile-time interface check.
var _ Service = (*MockService)(nil)

// MockService is a test double for Service. When SendFn is nil, Send
// succeeds with a canned receipt.
type MockService struct {
	SendFn func(ctx context.Context, outputs []Output) (*Receipt, error)

	// Sent records the outputs of every successful default-path call.
	Sent [][]Output
}

func (m *MockService) Send(ctx context.Context, outputs []Output) (*Receipt, error) {
	if m.SendFn != nil {
		return m.SendFn(ctx, outputs)
	}
	m.Sent = append(m.Sent, outputs)
	return &Receipt{TxID: "mocktxid"}, nil
}
