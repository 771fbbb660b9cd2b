package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL is where OpenCompass publishes the OpenVLM results.
const DefaultURL = "http://opencompass.openxlab.space/assets/OpenVLM.json"

// Client fetches the leaderboard document.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a client for url, or DefaultURL when empty.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
	}
}

// Fetch downloads and decodes the leaderboard.
func (c *Client) Fetch(ctx context.Context) (*Leaderboard, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var lb Leaderboard
	if err := json.NewDecoder(resp.Body).Decode(&lb); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return &lb, nil
}

// HTTPError represents a non-200 answer from the leaderboard host.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("leaderboard %d: %s", e.StatusCode, e.Message)
}
