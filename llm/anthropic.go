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
	"time"

	"github.com/lead-agent/prospect/models"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"

	// DefaultModel is the judge model used unless configured otherwise.
	DefaultModel = "claude-3-5-sonnet-20241022"

	keyPrefix = "sk-ant-"
)

// fallbackModels are tried in order when the configured model errors.
var fallbackModels = []string{
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

// Client is a lightweight Anthropic Messages API client for short
// verification and enrichment prompts. It uses net/http directly — no
// third-party SDK needed.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates an LLM client. The key must carry the provider's
// sk-ant- prefix; a foreign key fails here rather than on the first call.
// Pass a nil http.Client to use a default with a 30 second timeout.
func NewClient(apiKey, model string, httpClient *http.Client) (*Client, error) {
	if !strings.HasPrefix(apiKey, keyPrefix) {
		return nil, models.NewProfileError(models.ErrCodeLLMAuthFailure, "API key must start with sk-ant-", nil)
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, model: model, httpClient: httpClient}, nil
}

// messageRequest is the Messages API request body.
type messageRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messageResponse is the minimal Messages API response we need.
type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// messageErrorResponse captures an API error from the provider.
type messageErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt as a single user message and returns the first
// text block, trimmed. Model-level failures walk the fallback ladder; an
// auth failure aborts the ladder since no model will accept the key.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	candidates := []string{c.model}
	for _, m := range fallbackModels {
		if m != c.model {
			candidates = append(candidates, m)
		}
	}

	var lastErr error
	for _, m := range candidates {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := c.complete(ctx, m, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var pe *models.ProfileError
		if errors.As(err, &pe) && pe.Code == models.ErrCodeLLMAuthFailure {
			return "", err
		}
		slog.Warn("model failed, trying next", "model", m, "error", err)
	}
	return "", lastErr
}

// complete performs one Messages API call against a specific model.
func (c *Client) complete(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewProfileError(models.ErrCodeLLMFailure, "LLM request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewProfileError(models.ErrCodeLLMFailure, "failed to read LLM response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, respBody)
	}

	var msg messageResponse
	if err := json.Unmarshal(respBody, &msg); err != nil {
		return "", models.NewProfileError(models.ErrCodeLLMFailure, "failed to parse LLM response", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", models.NewProfileError(models.ErrCodeLLMFailure, "LLM returned no text content", nil)
}

// classifyAPIError maps HTTP status codes to appropriate error codes.
func classifyAPIError(statusCode int, body []byte) *models.ProfileError {
	var errResp messageErrorResponse
	msg := "LLM API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewProfileError(models.ErrCodeLLMAuthFailure, msg, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewProfileError(models.ErrCodeLLMRateLimited, msg, nil)
	default:
		return models.NewProfileError(models.ErrCodeLLMFailure, fmt.Sprintf("LLM API returned %d: %s", statusCode, msg), nil)
	}
}
