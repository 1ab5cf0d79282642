// Package upstash is a minimal client for the Upstash Redis REST API.
package upstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNil is returned by Get when the key does not exist.
var ErrNil = errors.New("upstash: nil reply")

// Client sends Redis commands to an Upstash REST endpoint.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Upstash REST client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Get returns the string value stored at key, or ErrNil.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	var res *string
	if err := c.command(ctx, &res, "GET", key); err != nil {
		return "", err
	}
	if res == nil {
		return "", ErrNil
	}
	return *res, nil
}

// Set stores value at key, overwriting any previous value.
func (c *Client) Set(ctx context.Context, key, value string) error {
	var res string
	if err := c.command(ctx, &res, "SET", key, value); err != nil {
		return err
	}
	if res != "OK" {
		return fmt.Errorf("upstash SET %s: unexpected reply %q", key, res)
	}
	return nil
}

// Incr atomically increments the integer at key and returns the new value.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	var res int64
	if err := c.command(ctx, &res, "INCR", key); err != nil {
		return 0, err
	}
	return res, nil
}

// Ping checks connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	var res string
	return c.command(ctx, &res, "PING")
}

// command posts a Redis command as a JSON array and decodes the "result"
// field into out.
func (c *Client) command(ctx context.Context, out any, args ...string) error {
	body, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal upstash command: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build upstash %s request: %w", args[0], err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call upstash %s: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upstash %s response: %w", args[0], err)
	}

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return fmt.Errorf("upstash %s error %d: %s", args[0], resp.StatusCode, string(raw))
	}
	if reply.Error != "" {
		return fmt.Errorf("upstash %s error %d: %s", args[0], resp.StatusCode, reply.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstash %s error %d: %s", args[0], resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(reply.Result, out); err != nil {
		return fmt.Errorf("failed to decode upstash %s result: %w", args[0], err)
	}
	return nil
}
