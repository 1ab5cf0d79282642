package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Client is the HTTP wrapper for the Asana REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Asana client authenticated with a personal access
// token. A zero timeout leaves the transport default in place.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetTask fetches a single task via GET /tasks/{gid}.
func (c *Client) GetTask(ctx context.Context, gid string) (*Task, error) {
	var out envelope[Task]
	query := url.Values{"opt_fields": {"name,resource_type"}}
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(gid), query, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateTask updates a task via PUT /tasks/{gid}.
func (c *Client) UpdateTask(ctx context.Context, gid string, req UpdateTaskRequest) (*Task, error) {
	var out envelope[Task]
	in := envelope[UpdateTaskRequest]{Data: req}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(gid), nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetWorkspaces lists the workspaces visible to the token.
func (c *Client) GetWorkspaces(ctx context.Context) ([]Workspace, error) {
	var out envelope[[]Workspace]
	if err := c.do(ctx, http.MethodGet, "/workspaces", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetProjects lists the projects of a workspace.
func (c *Client) GetProjects(ctx context.Context, workspaceID string) ([]Project, error) {
	var out envelope[[]Project]
	query := url.Values{"workspace": {workspaceID}}
	if err := c.do(ctx, http.MethodGet, "/projects", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetWebhooks lists the webhooks registered on a resource of a workspace.
func (c *Client) GetWebhooks(ctx context.Context, workspaceID, resourceID string) ([]Webhook, error) {
	var out envelope[[]Webhook]
	query := url.Values{"workspace": {workspaceID}}
	if resourceID != "" {
		query.Set("resource", resourceID)
	}
	if err := c.do(ctx, http.MethodGet, "/webhooks", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateWebhook registers a webhook. Asana performs the X-Hook-Secret
// handshake against target before this call returns.
func (c *Client) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*Webhook, error) {
	var out envelope[Webhook]
	in := envelope[CreateWebhookRequest]{Data: req}
	if err := c.do(ctx, http.MethodPost, "/webhooks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteWebhook removes a webhook by gid.
func (c *Client) DeleteWebhook(ctx context.Context, gid string) error {
	var out envelope[json.RawMessage]
	return c.do(ctx, http.MethodDelete, "/webhooks/"+url.PathEscape(gid), nil, nil, &out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal asana %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build asana %s %s request: %w", method, path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call asana %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode asana %s %s response: %w", method, path, err)
	}
	return nil
}
