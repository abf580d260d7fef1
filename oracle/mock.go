package oracle

import (
	"context"
	"time"
)

// Compile-time interface check.
var _ Service = (*MockService)(nil)

// MockService is a test double for Service. When the function fields are
// nil, Ask succeeds with a canned request and Record succeeds silently.
type MockService struct {
	AskFn    func(ctx context.Context, query string) (*Request, error)
	RecordFn func(id, response string) error

	// Asked records the queries of every default-path Ask call.
	Asked []string
}

func (m *MockService) Ask(ctx context.Context, query string) (*Request, error) {
	if m.AskFn != nil {
		return m.AskFn(ctx, query)
	}
	m.Asked = append(m.Asked, query)
	return &Request{ID: "mockrequest", Query: query, AskedAt: time.Now().Unix()}, nil
}

func (m *MockService) Record(id, response string) error {
	if m.RecordFn != nil {
		return m.RecordFn(id, response)
	}
	return nil
}
