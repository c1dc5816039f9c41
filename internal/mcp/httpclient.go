package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// HTTPClient implements DataSource by calling the IronLog REST API. Used
// for remote MCP mode where the binary runs locally (stdio) but data lives
// on the server (typically reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions", nil)
	if err != nil {
		return nil, err
	}
	var sessions []models.WorkoutSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*models.WorkoutSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var session models.WorkoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return &session, nil
}

func (c *HTTPClient) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	body, err := c.get(ctx, "/api/v1/templates", nil)
	if err != nil {
		return nil, err
	}
	var templates []models.WorkoutTemplate
	if err := json.Unmarshal(body, &templates); err != nil {
		return nil, fmt.Errorf("httpclient: decode templates: %w", err)
	}
	return templates, nil
}

func (c *HTTPClient) PersonalRecords(ctx context.Context) (map[string]float64, error) {
	body, err := c.get(ctx, "/api/v1/prs", nil)
	if err != nil {
		return nil, err
	}
	prs := map[string]float64{}
	if err := json.Unmarshal(body, &prs); err != nil {
		return nil, fmt.Errorf("httpclient: decode prs: %w", err)
	}
	return prs, nil
}

func (c *HTTPClient) TrainingVolume(ctx context.Context, start, end string) (map[string]float64, error) {
	params := url.Values{}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}
	body, err := c.get(ctx, "/api/v1/volume", params)
	if err != nil {
		return nil, err
	}
	volume := map[string]float64{}
	if err := json.Unmarshal(body, &volume); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume: %w", err)
	}
	return volume, nil
}
