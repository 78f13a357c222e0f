// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the thin client for the chat completion endpoint.
//
// The exchange is a plain request/response: the client sends the ordered
// conversation transcript as {role, content} pairs and receives a reply
// containing at least a content string and a creation timestamp. When no
// endpoint is configured the client answers locally through a deterministic
// mock responder, so the rest of the application never special-cases the
// unconfigured state.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/parley/internal/model"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds one completion request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for transient failures.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 8 * time.Second

	// MaxResponseSize caps the response body read. A chat reply has no
	// business being this large.
	MaxResponseSize = 1 * 1024 * 1024

	// requestsPerSecond is the client-side rate cap on the endpoint.
	requestsPerSecond = 2
)

// ApologyReply is the fixed user-visible text a caller writes into the
// pending assistant message when the endpoint fails terminally.
const ApologyReply = "Sorry - something went wrong while fetching a reply. Please try again."

// sharedHTTPClient pools connections across all completion requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyReply indicates the endpoint answered without content.
	ErrEmptyReply = errors.New("endpoint returned an empty reply")
)

// APIError is a non-success response from the chat endpoint.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("chat endpoint error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("chat endpoint error (HTTP %d)", e.Status)
}

// retryable reports whether the failure is worth another attempt.
func (e *APIError) retryable() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one {role, content} pair of the request transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the completion request body.
type Request struct {
	Messages []Message `json:"messages"`
}

// Reply is the completion response body.
type Reply struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FromTranscript converts store messages into wire messages, preserving
// order.
func FromTranscript(msgs []*model.Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat endpoint, or to the local mock when no endpoint
// is configured.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	mock       *MockResponder
}

// NewClient creates a client for the given endpoint. An empty baseURL
// selects the local mock responder.
func NewClient(baseURL, apiKey string) *Client {
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: sharedHTTPClient,
		limiter:    rate.NewLimiter(requestsPerSecond, 1),
		maxRetries: DefaultMaxRetries,
	}
	if baseURL == "" {
		c.mock = NewMockResponder()
	}
	return c
}

// IsConfigured reports whether a real endpoint is configured.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// Complete sends the transcript and returns the assistant reply. All
// transport and status failures come back as errors; the caller converts
// them into the apology state update, never a crash.
func (c *Client) Complete(ctx context.Context, messages []Message) (*Reply, error) {
	if c.mock != nil {
		return c.mock.Reply(messages), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		reply, err := c.complete(ctx, messages)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// complete performs one request attempt.
func (c *Client) complete(ctx context.Context, messages []Message) (*Reply, error) {
	body, err := json.Marshal(Request{Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	var reply Reply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	if reply.Content == "" {
		return nil, ErrEmptyReply
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now()
	}
	return &reply, nil
}

// errorMessage extracts a message from an error body, tolerating plain text.
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	const max = 200
	if len(data) > max {
		data = data[:max]
	}
	return string(bytes.TrimSpace(data))
}

// sleepBackoff waits for the exponential backoff delay of the given attempt,
// honoring context cancellation.
func sleepBackoff(ctx context.Context, attempt int) error {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
