package base

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// HTTPClient provides common HTTP functionality for providers
type HTTPClient struct {
	client  *http.Client
	baseURL string
	name    string // provider name for logging
}

// NewHTTPClient creates a new HTTP client with the given timeout
func NewHTTPClient(providerName string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = 30 * time.Second // default timeout
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		name: providerName,
	}
}

// SetBaseURL sets the base URL for all requests
func (c *HTTPClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Timeout returns the client-level timeout.
func (c *HTTPClient) Timeout() time.Duration {
	return c.client.Timeout
}

// PostForm makes a POST request with an application/x-www-form-urlencoded body
func (c *HTTPClient) PostForm(ctx context.Context, endpoint string, form url.Values) (*HTTPResponse, error) {
	target := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", fmt.Sprintf("AlipayGW/%s", c.name))

	// Field values are not logged; they may carry one-time tokens.
	log.Debug().
		Str("provider", c.name).
		Str("method", http.MethodPost).
		Str("url", target).
		Msg("making HTTP request")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().
			Str("provider", c.name).
			Str("url", target).
			Err(err).
			Msg("HTTP request failed")
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return c.handleResponse(resp)
}

// handleResponse processes the HTTP response
func (c *HTTPClient) handleResponse(resp *http.Response) (*HTTPResponse, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	log.Debug().
		Str("provider", c.name).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("received HTTP response")

	return httpResp, nil
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// IsSuccess checks if the response indicates success (2xx status code)
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// String returns the response body as a string
func (r *HTTPResponse) String() string {
	return string(r.Body)
}
