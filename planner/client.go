/*
Package planner turns chat conversations into structured shop actions.

PURPOSE:
  The back-office chat is powered by a hosted LLM. This package owns
  the model boundary: the HTTP client for the chat-completions API, the
  system prompt that teaches the model the action schema and the role
  matrix, and the Planner that converts a conversation into a Plan
  (natural-language reply + optional structured action).

FAILURE POLICY:
  The chat must keep working when the model does not. Every upstream
  failure is mapped to a reply-only Plan with an explanation, never an
  error to the HTTP caller:
  - missing API key    -> "AI not configured" reply
  - quota exhausted    -> billing/quota reply
  - other API failures -> status + detail reply
  - unparseable output -> the raw model text becomes the reply

SEE ALSO:
  - dispatch: executes the planned actions
  - api/handlers.go: the /api/chat endpoint
*/
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionClient is the model boundary. Implementations return the
// raw assistant message content for a conversation.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Sentinel errors for the failure taxonomy the Planner recovers from.
var (
	// ErrNotConfigured means no API key was provided.
	ErrNotConfigured = errors.New("planner: API key not configured")
	// ErrQuotaExceeded means the upstream account is out of quota.
	ErrQuotaExceeded = errors.New("planner: quota exceeded")
)

// UpstreamError carries an API failure that is neither a missing key
// nor exhausted quota.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("planner: upstream request failed with status %d: %s", e.Status, e.Message)
}

// Config holds the OpenAI-compatible API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4.1",
		Timeout: 60 * time.Second,
	}
}

// OpenAIClient implements CompletionClient against any
// OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	mu          sync.Mutex
	lastRequest time.Time
}

// NewOpenAIClient creates a client from config, filling in defaults
// for unset fields.
func NewOpenAIClient(config Config) *OpenAIClient {
	def := DefaultConfig(config.APIKey)
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	return &OpenAIClient{
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Complete sends the conversation and returns the assistant content.
// The request asks for a JSON object response at low temperature,
// since the planner needs deterministic structured output.
func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	// Rate limiting between consecutive requests.
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := chatRequest{
		Model:          c.model,
		Messages:       messages,
		Temperature:    0.25,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry loop for transient failures.
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			apiMsg, apiCode := parseAPIError(body)
			if resp.StatusCode == http.StatusTooManyRequests {
				if apiCode == "insufficient_quota" {
					// Out of quota is not transient, retrying burns time.
					return "", ErrQuotaExceeded
				}
				lastErr = &UpstreamError{Status: resp.StatusCode, Message: apiMsg}
				continue
			}
			return "", &UpstreamError{Status: resp.StatusCode, Message: apiMsg}
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if parsed.Error != nil {
			return "", &UpstreamError{Status: resp.StatusCode, Message: parsed.Error.Message}
		}
		if len(parsed.Choices) == 0 {
			return "", fmt.Errorf("no completion returned")
		}
		return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

// parseAPIError extracts message and code from an error body, falling
// back to the raw text.
func parseAPIError(body []byte) (msg, code string) {
	var parsed struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message, parsed.Error.Code
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text, ""
	}
	return "failed to call the AI API", ""
}
