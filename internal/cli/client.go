package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// adminHeader carries the admin password on privileged requests
const adminHeader = "X-Admin-Password"

// Client is an HTTP client for the API
type Client struct {
	baseURL       string
	adminPassword string
	httpClient    *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, adminPassword string) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		adminPassword: adminPassword,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Do performs an HTTP request. admin attaches the admin password.
func (c *Client) Do(ctx context.Context, method, path string, admin bool, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if admin {
		if c.adminPassword == "" {
			return fmt.Errorf("admin password required (--admin-password or PONGCTL_ADMIN_PASSWORD)")
		}
		req.Header.Set(adminHeader, c.adminPassword)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check for error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	// Parse successful response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, false, result)
}

// AdminPost performs a POST request with the admin password
func (c *Client) AdminPost(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodPost, path, true, result)
}
