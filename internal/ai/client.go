// Package ai implements the suggestion collaborators: single-shot calls to
// a hosted model with schema-constrained JSON output. Failures of any kind
// surface as a single suggestion error; the caller never retries.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elotech/helpdesk/internal/config"
	"github.com/elotech/helpdesk/pkg/util"
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient builds a client from config. Returns nil when no API key is
// configured; callers treat a nil client as "remote suggestions disabled".
func NewClient(cfg config.AIConfig) *Client {
	if !cfg.Enabled() {
		return nil
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete issues one chat completion and unmarshals the JSON content of
// the first choice into out.
func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: &formatSpec{Type: "json_object"},
	})
	if err != nil {
		return util.NewSuggestionFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return util.NewSuggestionFailed(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return util.NewSuggestionFailed(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return util.NewSuggestionFailed(fmt.Errorf("model endpoint returned %d: %s", resp.StatusCode, string(raw)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return util.NewSuggestionFailed(err)
	}
	if len(parsed.Choices) == 0 {
		return util.NewSuggestionFailed(fmt.Errorf("empty completion"))
	}
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), out); err != nil {
		return util.NewSuggestionFailed(fmt.Errorf("unparseable model output: %w", err))
	}
	return nil
}
