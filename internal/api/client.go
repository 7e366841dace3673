package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropbinge/dropbinge/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Dropbinge/1.0"
)

// TokenSource supplies the current bearer token; "" means anonymous.
type TokenSource func() string

// Client is the HTTP client for the tracking service (follow API and the
// catalog proxy). Concurrent identical GETs are coalesced: for any
// (credential, path) pair at most one network call is outstanding, and all
// waiters share its result. The coalescing entry is dropped as soon as the
// call settles, so a later identical request always issues a fresh call.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
	logger     *slog.Logger

	inflight singleflight.Group
}

// NewClient creates a new service API client.
func NewClient(baseURL string, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Get performs a coalesced GET and decodes the response into dest.
func (c *Client) Get(ctx context.Context, path string, dest interface{}) error {
	key := c.token() + ":" + path

	v, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		return c.doRequest(ctx, http.MethodGet, path, nil)
	})
	if err != nil {
		return err
	}

	if dest == nil {
		return nil
	}
	// Each caller decodes its own copy of the shared body.
	if err := json.Unmarshal(v.([]byte), dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, dest interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, dest)
}

// Patch performs a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, dest interface{}) error {
	return c.send(ctx, http.MethodPatch, path, body, dest)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

// send performs a mutating request. Mutations never participate in
// coalescing.
func (c *Client) send(ctx context.Context, method, path string, body, dest interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		payload = data
	}

	respBody, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doRequest performs one HTTP round trip with auth headers and maps
// failure classes to sentinel errors.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	reqURL := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, domain.ErrAuthFailed
	case http.StatusNotFound:
		return nil, domain.ErrFollowNotFound
	case http.StatusConflict:
		return nil, domain.ErrAlreadyFollowing
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("api request error", "status", resp.StatusCode, "body", string(respBody))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return respBody, nil
}
