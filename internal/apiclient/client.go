// Package apiclient talks to the restaurant REST backend on behalf of one browser session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TokenSource is the durable storage the bearer token lives in.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
}

// Client handles all communication with the backend API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	logger         *zap.Logger
}

// New creates a client for the backend at baseURL. The timeout bounds every request.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithSession returns a copy of c that reads the bearer token from tokens and calls
// onUnauthorized after any 401 response has removed the token.
func (c *Client) WithSession(tokens TokenSource, onUnauthorized func(ctx context.Context)) *Client {
	cp := *c
	cp.tokens = tokens
	cp.onUnauthorized = onUnauthorized
	return &cp
}

// request describes one call to the backend.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	header      http.Header
}

// do is the single helper every endpoint goes through. It attaches the bearer token, classifies
// failures and decodes a successful JSON body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestSetup, err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	} else {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestSetup, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	backendLatency.WithLabelValues(r.method).Observe(time.Since(start).Seconds())
	if err != nil {
		backendRequests.WithLabelValues(r.method, statusClass(0)).Inc()
		c.logger.Warn("backend unavailable",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()
	backendRequests.WithLabelValues(r.method, statusClass(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.expire(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body errorBody
		_ = json.Unmarshal(raw, &body)
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Debug("backend rejected request",
			zap.String("method", r.method),
			zap.String("path", r.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// expire removes the stored token and raises the session-expired signal.
func (c *Client) expire(ctx context.Context) {
	sessionExpirations.Inc()
	if c.tokens != nil {
		if err := c.tokens.ClearToken(ctx); err != nil {
			c.logger.Error("failed to remove token after 401", zap.Error(err))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, header http.Header, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path, header: header}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRequestSetup, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, request{method: method, path: path, body: body, header: header}, out)
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
