// Package llm provides the Messages API client used as the content-generation
// collaborator: it proposes a day's activity and a new player's abilities.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	DefaultModel = "claude-haiku-4-5-20251001"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("LLM client not configured")
	// ErrRateLimited is returned when the local per-minute budget is spent.
	ErrRateLimited = errors.New("LLM rate limit exceeded")
)

// APIError is a non-200 reply from the Messages API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client. Zero fields take defaults.
type Options struct {
	APIKey       string
	Model        string
	Timeout      time.Duration
	MaxPerMinute int
	Endpoint     string
}

// Client wraps the Messages API.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client

	// Rate limiting: max calls per minute.
	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates a new API client.
// Returns nil if the API key is empty (LLM features disabled).
func NewClient(opts Options) *Client {
	if opts.APIKey == "" {
		return nil
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxPerMinute <= 0 {
		opts.MaxPerMinute = 20
	}
	if opts.Endpoint == "" {
		opts.Endpoint = apiURL
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		endpoint:   opts.Endpoint,
		httpClient: &http.Client{Timeout: opts.Timeout},
		maxPerMin:  opts.MaxPerMinute,
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// maxResponse bounds how much of a reply is read.
const maxResponse = 1 << 20

// Complete sends a prompt and returns the concatenated text blocks of the
// reply.
func (c *Client) Complete(ctx context.Context, system, userPrompt string, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if err := c.take(); err != nil {
		return "", err
	}

	body, err := json.Marshal(request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  []Message{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, respBody)
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response (stop reason %q)", apiResp.StopReason)
	}

	slog.Debug("llm call",
		"model", c.model,
		"stop_reason", apiResp.StopReason,
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)
	return text.String(), nil
}

// take spends one call from the per-minute budget.
func (c *Client) take() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		return fmt.Errorf("%w (%d calls/min)", ErrRateLimited, c.maxPerMin)
	}
	c.callCount++
	return nil
}

// parseAPIError reads the {"error":{"type","message"}} envelope, falling
// back to the raw body.
func parseAPIError(status int, body []byte) error {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	e := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		e.Type, e.Message = env.Error.Type, env.Error.Message
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}
