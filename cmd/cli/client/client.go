package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vlmbench/vlmbench/internal/api"
	"github.com/vlmbench/vlmbench/internal/catalog"
	"github.com/vlmbench/vlmbench/internal/export"
	"github.com/vlmbench/vlmbench/internal/pipeline"
	"github.com/vlmbench/vlmbench/internal/scoring"
)

// Client wraps HTTP calls to the vlmbench API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Points queries GET /api/v1/points with view-state, range and weight
// parameters.
func (c *Client) Points(ctx context.Context, q url.Values) (*api.PointsResponse, error) {
	var resp api.PointsResponse
	if err := c.doGet(ctx, c.endpoint("/api/v1/points", q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggest queries GET /api/v1/suggest.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]pipeline.Suggestion, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []pipeline.Suggestion
	if err := c.doGet(ctx, c.endpoint("/api/v1/suggest", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compare queries GET /api/v1/compare.
func (c *Client) Compare(ctx context.Context, q url.Values) (*pipeline.Comparison, error) {
	var out pipeline.Comparison
	if err := c.doGet(ctx, c.endpoint("/api/v1/compare", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Presets fetches GET /api/v1/weights/presets.
func (c *Client) Presets(ctx context.Context) ([]scoring.Preset, error) {
	var out []scoring.Preset
	if err := c.doGet(ctx, c.baseURL+"/api/v1/weights/presets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WeightBreakdown is the body of GET /api/v1/weights.
type WeightBreakdown struct {
	Weights    scoring.Weights  `json:"weights"`
	IsDefault  bool             `json:"isDefault"`
	Normalized scoring.Weights  `json:"normalized"`
	Breakdown  []scoring.Ranked `json:"breakdown"`
}

// Weights fetches GET /api/v1/weights for the weights encoded in q.
func (c *Client) Weights(ctx context.Context, q url.Values) (*WeightBreakdown, error) {
	var out WeightBreakdown
	if err := c.doGet(ctx, c.endpoint("/api/v1/weights", q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status fetches GET /healthz. A dataset that is not ready is reported in
// the returned status, not as an error.
func (c *Client) Status(ctx context.Context) (*catalog.Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, c.readError(resp)
	}
	var st catalog.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &st, nil
}

// Download streams an export in format f to w and returns the server's
// suggested filename.
func (c *Client) Download(ctx context.Context, f export.Format, q url.Values, w io.Writer) (string, error) {
	path := "/api/v1/chart." + string(f)
	if f == export.FormatCSV {
		path = "/api/v1/export.csv"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", c.readError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("read export: %w", err)
	}
	_, params, _ := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	return params["filename"], nil
}

// Upload asks the server to render and publish an export, returning its
// location.
func (c *Client) Upload(ctx context.Context, f export.Format, q url.Values) (string, error) {
	q = cloneValues(q)
	q.Set("format", string(f))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/v1/exports", q), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", c.readError(resp)
	}
	var result struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Location, nil
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (c *Client) doGet(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var apiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
}
