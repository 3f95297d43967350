package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/summary"
)

// HTTPClient implements DataSource by calling the liftlog REST API. It lets
// the MCP binary run while the server process owns the database.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, v any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) RecentSessions(ctx context.Context, limit int) ([]history.SessionOverview, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var sessions []history.SessionOverview
	if err := c.get(ctx, "/api/v1/sessions", params, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, exerciseID int64) ([]models.ExerciseSet, error) {
	var sets []models.ExerciseSet
	path := fmt.Sprintf("/api/v1/exercises/%d/history", exerciseID)
	if err := c.get(ctx, path, nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) Summarize(ctx context.Context, sessionID int64) (*summary.Summary, error) {
	var sum summary.Summary
	path := fmt.Sprintf("/api/v1/sessions/%d/summary", sessionID)
	if err := c.get(ctx, path, nil, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error) {
	params := url.Values{}
	if muscleGroup != "" {
		params.Set("muscle_group", muscleGroup)
	}
	var exercises []models.Exercise
	if err := c.get(ctx, "/api/v1/exercises", params, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
