// Package admin provides a client for the directory admin API
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/dirkit/internal/common"
	"github.com/bobmcallan/dirkit/internal/interfaces"
)

const (
	DefaultBaseURL   = "https://admin.googleapis.com/admin/directory/v1"
	DefaultCustomer  = "my_customer"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
	DefaultPageSize  = 500
)

// Client implements the DirectoryClient interface. The access token is
// read from the TokenSource once at construction and never reassigned,
// so a single instance is safe to share across goroutines.
type Client struct {
	baseURL    string
	customer   string
	token      string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithCustomer sets the customer scope used by user searches
func WithCustomer(customer string) ClientOption {
	return func(c *Client) {
		c.customer = customer
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a directory client holding the token produced by the
// given source. Construct the TokenSource first: its constructor fails
// when the token exchange is rejected, so a client is only ever built
// with a usable token.
func NewClient(source interfaces.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		customer: DefaultCustomer,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	if source != nil {
		c.token = source.Token()
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do issues one authenticated request and decodes the JSON response into
// out. A nil body means a bare GET-style call; a non-nil body is JSON
// serialized. Only transport-level failures (connection, non-parseable
// body) return an error here: application error envelopes are decoded
// into out and every caller inspects them before treating the response
// as a success.
func (c *Client) do(ctx context.Context, method, reqURL string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.New().String()[:8]
	c.logger.Debug().Str("request_id", reqID).Str("method", method).Str("url", reqURL).Msg("Directory API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Error().Err(err).Str("request_id", reqID).Dur("elapsed", elapsed).Msg("Directory API request failed")
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Info().Str("request_id", reqID).Str("method", method).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("Directory API call")

	// Deletes return an empty body on success
	if len(bytes.TrimSpace(data)) == 0 || out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Ensure Client implements DirectoryClient
var _ interfaces.DirectoryClient = (*Client)(nil)
