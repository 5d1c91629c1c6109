package userservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EnsurePath is the user service endpoint that creates a profile if missing
const EnsurePath = "/api/users/ensure"

// Ensurer makes sure a user exists in the user service
type Ensurer interface {
	EnsureUserExists(ctx context.Context, username string) error
}

type ensureRequest struct {
	Username string `json:"username"`
}

// Client calls the user service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a user service client. timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EnsureUserExists posts the username to the ensure endpoint.
// Any non-2xx response is an error.
func (c *Client) EnsureUserExists(ctx context.Context, username string) error {
	body, err := json.Marshal(ensureRequest{Username: username})
	if err != nil {
		return fmt.Errorf("marshal ensure request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EnsurePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ensure request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("user service returned status %d", resp.StatusCode)
	}
	return nil
}
