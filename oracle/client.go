package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Compile-time interface check.
var _ Service = (*Client)(nil)

// Client submits queries to an HTTP oracle endpoint and records the
// responses the oracle delivers back through the callback handler.
// It is safe for concurrent use.
type Client struct {
	endpoint string
	client   *http.Client

	mu       sync.Mutex
	requests map[string]*Request
}

// NewClient creates an oracle client for the given endpoint URL.
// The client maintains a connection pool for efficient reuse.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		requests: make(map[string]*Request),
	}
}

// Ask submits a free-text query to the oracle endpoint as a JSON POST and
// registers the request for a later callback. The request is tracked only
// after the oracle accepts the submission, so an unreachable oracle leaves
// nothing pending.
//
// Ask returns ErrEmptyQuery for blank queries and ErrOracleUnavailable when
// the endpoint cannot be reached or replies with a non-2xx status.
func (c *Client) Ask(ctx context.Context, query string) (*Request, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	req := &Request{
		ID:      uuid.NewString(),
		Query:   query,
		AskedAt: time.Now().Unix(),
	}

	body, err := json.Marshal(askPayload{ID: req.ID, Query: req.Query})
	if err != nil {
		return nil, fmt.Errorf("oracle: marshal query: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("oracle: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrOracleUnavailable, resp.StatusCode, string(respBody))
	}

	c.mu.Lock()
	c.requests[req.ID] = req
	c.mu.Unlock()

	out := *req
	return &out, nil
}

// Record stores the oracle's response against a submitted request.
// It returns ErrUnknownRequest for an ID that was never submitted and
// ErrAlreadyAnswered if a response was recorded before.
func (c *Client) Record(id, response string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.requests[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	if req.Answered {
		return fmt.Errorf("%w: %s", ErrAlreadyAnswered, id)
	}

	req.Response = response
	req.Answered = true
	req.AnsweredAt = time.Now().Unix()
	return nil
}

// Get returns a copy of the tracked request with the given ID.
func (c *Client) Get(id string) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, ok := c.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	out := *req
	return &out, nil
}

// Pending returns copies of all requests still waiting for a response.
func (c *Client) Pending() []*Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pending []*Request
	for _, req := range c.requests {
		if !req.Answered {
			out := *req
			pending = append(pending, &out)
		}
	}
	return pending
}
