package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// tunnelsResponse matches the /api/tunnels response of the ngrok agent API.
type tunnelsResponse struct {
	Tunnels []struct {
		PublicURL string `json:"public_url"`
		Proto     string `json:"proto"`
	} `json:"tunnels"`
}

var errNoTunnel = errors.New("ngrok has no active tunnels")

type tunnelDetector struct {
	apiBase  string
	attempts int
	interval time.Duration
	client   *http.Client
}

func newTunnelDetector(apiBase string) tunnelDetector {
	return tunnelDetector{
		apiBase:  apiBase,
		attempts: 5,
		interval: 2 * time.Second,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// publicURL returns the public URL of the local ngrok agent, preferring
// HTTPS tunnels. Used as the webhook target when none is given, so a locally
// running server can complete the handshake.
func (d tunnelDetector) publicURL(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		url, err := d.fetch(ctx)
		if err == nil {
			return url, nil
		}
		lastErr = err

		if attempt < d.attempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(d.interval):
			}
		}
	}
	return "", fmt.Errorf("ngrok API at %s after %d attempts: %w", d.apiBase, d.attempts, lastErr)
}

func (d tunnelDetector) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.apiBase+"/api/tunnels", nil)
	if err != nil {
		return "", fmt.Errorf("create ngrok API request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tunnels tunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tunnels); err != nil {
		return "", fmt.Errorf("decode ngrok API response: %w", err)
	}

	for _, t := range tunnels.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	if len(tunnels.Tunnels) > 0 {
		return tunnels.Tunnels[0].PublicURL, nil
	}
	return "", errNoTunnel
}
