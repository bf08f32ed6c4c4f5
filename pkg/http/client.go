// Package http provides the transport used to download news sources.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when no other User-Agent is configured.
const DefaultUserAgent = "newsfeed/1.0"

// DefaultMaxBodySize bounds how much of a response body is read.
const DefaultMaxBodySize int64 = 10 << 20

// ClientConfig represents HTTP client configuration
type ClientConfig struct {
	Timeout     time.Duration
	UserAgent   string
	Headers     map[string]string
	MaxBodySize int64
}

// DefaultConfig returns default HTTP client configuration
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:     5 * time.Second,
		UserAgent:   DefaultUserAgent,
		Headers:     make(map[string]string),
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Client fetches raw documents. It never retries: a failed fetch is reported to the caller as is.
type Client struct {
	client *http.Client
	config *ClientConfig
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	return &Client{
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// Fetch performs a GET request and returns the response body.
// Per-call headers override the configured defaults. Any non-2xx response is a *StatusError.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform GET request: %w", err)
	}

	body, err := ReadResponseBody(resp, c.config.MaxBodySize)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := EnsureSuccess(resp); err != nil {
		return nil, err
	}

	slog.Debug("Fetched source", "url", url, "bytes", len(body), "duration", time.Since(start))
	return body, nil
}
