// Package oracle provides the client boundary for the off-chain AI query
// service.
//
// Queries are free text and answered asynchronously: Ask submits a query to
// the oracle endpoint and tracks it under a fresh request ID, and the oracle
// later delivers its response through the callback handler, which records it
// against the tracked request. The oracle channel carries no funds and shares
// no state with the treasury ledger.
package oracle

import "context"

// Request tracks one query through its ask/answer lifecycle.
type Request struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	Response   string `json:"response,omitempty"`
	Answered   bool   `json:"answered"`
	AskedAt    int64  `json:"asked_at"`    // Unix timestamp
	AnsweredAt int64  `json:"answered_at"` // Unix timestamp, zero until answered
}

// Service is the oracle request/response channel.
type Service interface {
	// Ask submits a free-text query to the oracle and returns the tracked
	// request. The response arrives later via Record.
	Ask(ctx context.Context, query string) (*Request, error)

	// Record stores the oracle's free-text response against a previously
	// submitted request.
	Record(id, response string) error
}

// askPayload is the JSON body posted to the oracle endpoint.
type askPayload struct {
	ID    string `json:"id"`
	Query string `json:"query"`
}

// callbackPayload is the JSON body the oracle posts back with a response.
type callbackPayload struct {
	ID       string `json:"id"`
	Response string `json:"response"`
}
