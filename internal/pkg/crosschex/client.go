package crosschex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/config"
)

const (
	DefaultBaseURL = "https://api.eu.crosschexcloud.com/"
	DefaultPerPage = 100

	maxResponseBytes = 32 << 20
)

// Client talks to the CrossChex Cloud JSON API. It holds no tokens; see
// TokenProvider for that.
type Client struct {
	baseURL     string
	http        *http.Client
	perPage     int
	concurrency int
	now         func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock sets the clock used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client from the provider configuration
func NewClient(cfg config.CrossChexConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:     cfg.BaseURL,
		http:        &http.Client{Timeout: cfg.Timeout},
		perPage:     cfg.PerPage,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.perPage <= 0 {
		c.perPage = DefaultPerPage
	}
	if c.concurrency <= 0 {
		c.concurrency = 1
	}
	if cfg.Timeout <= 0 {
		c.http.Timeout = 30 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents a CrossChex API error: a non-2xx answer or an
// Exception envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crosschex API error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unauthorized reports whether the provider rejected the token or keys.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "AUTH_ERROR" || e.Code == "TOKEN_ERROR"
}

// call posts one envelope and decodes the answer's payload into out.
func (c *Client) call(ctx context.Context, req request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", req.Header.action(), err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", req.Header.action(), err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.Header.action(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", req.Header.action(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       http.StatusText(resp.StatusCode),
			Message:    snippet(raw),
		}
	}

	var env response
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.Header.action(), err)
	}
	if env.isException() {
		var ex exceptionPayload
		_ = json.Unmarshal(env.Payload, &ex)
		return &APIError{StatusCode: resp.StatusCode, Code: ex.Type, Message: ex.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", req.Header.action(), err)
	}
	return nil
}

func snippet(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
