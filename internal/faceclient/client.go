package faceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckResult reports whether a reference image is usable for client-side
// face comparison: exactly one face, reasonable quality.
type CheckResult struct {
	FacesDetected int     `json:"faces_detected"`
	Quality       float64 `json:"quality"`
	Usable        bool    `json:"usable"`
}

// Client calls the face analysis microservice. The service is advisory only:
// it never gates login, it just flags enrollment images that will frustrate
// the browser-side comparison later.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client with configurable skip mode for dev environments
// without the face service.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // face processing can take time
		},
	}
}

// Health checks service availability.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face service unhealthy: %d", resp.StatusCode)
	}
	return nil
}

// CheckImage asks the face service to assess a reference image. image may be
// an HTTPS URL or a base64 payload.
func (c *Client) CheckImage(ctx context.Context, image string) (*CheckResult, error) {
	if c.Skip {
		return &CheckResult{FacesDetected: 1, Quality: 0.95, Usable: true}, nil
	}

	payload, err := json.Marshal(map[string]string{"image": image})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/check", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face check request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("face check failed: %d", resp.StatusCode)
	}

	var result CheckResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("face check decode failed: %w", err)
	}
	return &result, nil
}
