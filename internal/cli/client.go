package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spacesedan/redditpersona/internal/models"
)

const (
	DEFAULT_SERVER_URL = "http://localhost:3001"
	CLIENT_TIMEOUT     = 60 * time.Second
	CLIENT_USER_AGENT  = "redditpersona-cli/1.0"
)

// APIClient talks to a running persona server.
type APIClient struct {
	client *resty.Client
}

type AnalyzeOptions struct {
	Comprehensive bool
	ExportPath    string
	SimulatePost  bool
}

type AnalyzeResponse struct {
	Success      bool                   `json:"success"`
	Data         *models.AnalysisResult `json:"data"`
	ExportStatus string                 `json:"exportStatus,omitempty"`
	Alert        string                 `json:"alert,omitempty"`
}

type HealthResponse struct {
	Status           string `json:"status"`
	Timestamp        string `json:"timestamp"`
	RedditConfigured bool   `json:"reddit_configured"`
	LLMConfigured    bool   `json:"llm_configured"`
	LLMProvider      string `json:"llm_provider"`
	CacheEnabled     bool   `json:"cache_enabled"`
	EventsEnabled    bool   `json:"events_enabled"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Field      string `json:"field,omitempty"`
	Raw        string `json:"raw,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

func NewAPIClient(serverURL string) *APIClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(serverURL, "/"))
	client.SetTimeout(CLIENT_TIMEOUT)
	client.SetHeader("User-Agent", CLIENT_USER_AGENT)
	client.SetHeader("Accept", "application/json")

	return &APIClient{client: client}
}

func (a *APIClient) Analyze(ctx context.Context, username string, opts AnalyzeOptions) (*AnalyzeResponse, error) {
	var out AnalyzeResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"username":      username,
			"comprehensive": opts.Comprehensive,
			"exportPath":    opts.ExportPath,
			"simulatePost":  opts.SimulatePost,
		}).
		Post("/api/analyze")
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse analyze response: %w", err)
	}
	if out.Data == nil || out.Data.Persona == nil {
		return nil, fmt.Errorf("analyze response carried no persona")
	}
	return &out, nil
}

func (a *APIClient) Health(ctx context.Context) (*HealthResponse, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		Get("/api/health")
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}

	var out HealthResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse health response: %w", err)
	}
	return &out, nil
}

func apiError(resp *resty.Response) error {
	apiErr := &APIError{}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(resp.String())
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}
