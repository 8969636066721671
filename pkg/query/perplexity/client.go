// Package perplexity implements query.Client on the Perplexity chat completions API.
package perplexity

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

	"github.com/metaarchitect/research-engine/pkg/query"
	"github.com/metaarchitect/research-engine/pkg/remote"
)

const (
	serviceName = "perplexity"

	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "sonar-pro"
	DefaultTimeout = 120 * time.Second
)

// Options configures the client.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client asks questions through the chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *slog.Logger
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Citations []string        `json:"citations"`
	Error     json.RawMessage `json:"error"`
}

// NewClient creates a Perplexity client.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("perplexity api key is required")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  opts.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "perplexity"),
	}, nil
}

// Model is the model name sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Ask sends question as a single user message.
func (c *Client) Ask(ctx context.Context, question string) (query.Answer, error) {
	payload, err := json.Marshal(completionRequest{
		Model:    c.model,
		Messages: []message{{Role: "user", Content: question}},
	})
	if err != nil {
		return query.Answer{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return query.Answer{}, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return query.Answer{}, remote.Wrap(serviceName, "Ask", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return query.Answer{}, remote.Wrap(serviceName, "Ask", err)
	}

	var completion completionResponse
	decodeErr := json.Unmarshal(data, &completion)

	if resp.StatusCode >= http.StatusBadRequest {
		detail := strings.TrimSpace(string(data))
		if decodeErr == nil && len(completion.Error) > 0 {
			detail = string(completion.Error)
		}

		return query.Answer{}, remote.New(serviceName, "Ask", resp.StatusCode, detail)
	}

	if decodeErr != nil {
		return query.Answer{}, remote.Wrap(serviceName, "Ask", fmt.Errorf("failed to decode response: %w", decodeErr))
	}

	if len(completion.Error) > 0 && string(completion.Error) != "null" {
		return query.Answer{}, remote.New(serviceName, "Ask", resp.StatusCode, string(completion.Error))
	}

	answer := query.Answer{Citations: completion.Citations}
	if len(completion.Choices) > 0 {
		answer.Content = completion.Choices[0].Message.Content
	}

	if answer.Citations == nil {
		answer.Citations = []string{}
	}

	c.logger.DebugContext(ctx, "Question answered",
		"duration", time.Since(started),
		"citations", len(answer.Citations),
	)

	return answer, nil
}
