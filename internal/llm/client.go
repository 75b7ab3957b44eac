// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the shared Anthropic messages API client used by every
// stage that calls a language model: query planning, snippet parsing,
// enrichment, and chat intent extraction.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Completer is the strategy interface stages depend on. Tests substitute a
// canned implementation; production uses Client.
type Completer interface {
	// Complete sends one prompt and returns the model's text reply.
	Complete(ctx context.Context, prompt string) (string, error)
}

// messagesAPIURL is a package variable so tests can point the client at a
// local httptest server.
var messagesAPIURL = "https://api.anthropic.com/v1/messages"

// backoffBase controls the exponential backoff between retried calls.
// Tests override this to avoid real sleeps.
var backoffBase = time.Second

const (
	defaultMaxRetries = 3
	defaultMaxTokens  = 4096
)

// calls counts process-wide model invocations. Shared across concurrent runs,
// so all access goes through atomics.
var calls atomic.Int64

// Calls reports the total number of model API calls made by this process.
func Calls() int64 { return calls.Load() }

// Client calls the Anthropic messages API.
type Client struct {
	// APIKey authenticates the request.
	APIKey string

	// Model is the model identifier, e.g. "claude-sonnet-4-5-20250929".
	Model string

	// MaxTokens caps the reply length. Zero uses 4096.
	MaxTokens int

	// Temperature is the sampling temperature. Zero leaves the API default.
	Temperature float64

	// MaxRetries is how many times a failed call is retried. Zero uses 3.
	MaxRetries int

	// HTTPClient is the HTTP client to use. Nil uses http.DefaultClient.
	HTTPClient *http.Client
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt and returns the concatenated text blocks of the
// reply. Transport errors, non-200 statuses, and empty replies are retried
// with exponential backoff before giving up.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	maxRetries := c.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := c.call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Context errors will not improve with retries.
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(apiRequest{
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: c.Temperature,
		Messages:    []apiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, messagesAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	calls.Add(1)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("model API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return sb.String(), nil
}

// StripCodeFence removes a surrounding Markdown code fence, including any
// language tag on the opening line. Model replies wrap JSON in fences often
// enough that every JSON boundary parses through this first.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		// Single-line fence like ```{"a":1}```.
		s = strings.TrimPrefix(s, "json")
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
