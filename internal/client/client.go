// Package client performs verification calls, remotely over HTTP or in-process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/trustlens/internal/model"
)

// ErrBadResponse is returned when the service answers with something other
// than a valid verification result
var ErrBadResponse = errors.New("bad verification response")

// DefaultTimeout is used when the configured timeout is zero
const DefaultTimeout = 15 * time.Second

// Verifier produces a verification result for text
type Verifier interface {
	Verify(ctx context.Context, text string) (*model.VerificationResult, error)
}

// VerifyRequest is the POST /verify body
type VerifyRequest struct {
	Text string `json:"text"`
}

// HealthStatus is the GET / response
type HealthStatus struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// HTTPClient calls a remote verification service
type HTTPClient struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	maxBytes   int64
}

// NewHTTPClient creates a client for the service at cfg.Endpoint
func NewHTTPClient(cfg model.ClientConfig) *HTTPClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		endpoint:  cfg.Endpoint,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// Verify posts text to the service. There is exactly one attempt; transport
// and decode failures are returned to the caller, never retried.
func (c *HTTPClient) Verify(ctx context.Context, text string) (*model.VerificationResult, error) {
	body, err := json.Marshal(VerifyRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var result model.VerificationResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &result, nil
}

// Health probes GET / on the service host
func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	u.Path = "/"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var status HealthStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	// Read body with size limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%w: %d %s", ErrBadResponse, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%w: unexpected status %d", ErrBadResponse, resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	return nil
}
