// Package openai asks an OpenAI-compatible chat completions endpoint for a
// structured score prediction.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/PablitoTheChicken/ForReal-Server/internal/app/predictions"
	"github.com/PablitoTheChicken/ForReal-Server/internal/providers"
)

const (
	providerName       = "openai"
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultHTTPTimeout = 10 * time.Second

	systemPrompt = "You are a football analyst. Predict the most likely full-time score. " +
		"Answer only with the JSON object requested."
)

// ErrEmptyResponse is returned when the completion carries no score.
var ErrEmptyResponse = errors.New("openai: empty completion")

// scoreSchema constrains the structured output to {"score": "H-A"}.
var scoreSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"score": {
			"type": "string",
			"description": "Full-time score as home-away, e.g. 2-1",
			"pattern": "^\\d{1,2}-\\d{1,2}$"
		}
	},
	"required": ["score"],
	"additionalProperties": false
}`)

// Config controls how the client reaches the completions API.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client implements predictions.Predictor.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	api        *goopenai.Client
}

// NewClient constructs a Client with defaults for empty fields.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = baseURL
	apiCfg.HTTPClient = httpClient

	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		api:        goopenai.NewClientWithConfig(apiCfg),
	}
}

// PredictScore returns the raw score string produced by the model. The caller
// validates it against the score pattern.
func (c *Client) PredictScore(ctx context.Context, m predictions.Match) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt(m)},
		},
		Temperature: 0.2,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   "score_prediction",
				Schema: scoreSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("openai: refused: %s", msg.Refusal)
	}

	var parsed struct {
		Score string `json:"score"`
	}
	if err := json.Unmarshal([]byte(msg.Content), &parsed); err != nil {
		return "", fmt.Errorf("openai: parse structured output: %w", err)
	}
	if parsed.Score == "" {
		return "", ErrEmptyResponse
	}
	return parsed.Score, nil
}

// upstreamError maps SDK errors onto providers.UpstreamError so status codes
// reach logs and metrics the same way as the fixture upstream.
func upstreamError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &providers.UpstreamError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Body: []byte(apiErr.Message), Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &providers.UpstreamError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Body: []byte(err.Error()), Err: err}
	}
	return &providers.UpstreamError{Provider: providerName, Err: err}
}

func prompt(m predictions.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s vs %s.", m.Home, m.Away)
	if m.League != "" {
		fmt.Fprintf(&b, " Competition: %s.", m.League)
	}
	if m.Season != "" {
		fmt.Fprintf(&b, " Season: %s.", m.Season)
	}
	if m.Date != "" {
		fmt.Fprintf(&b, " Kickoff: %s.", m.Date)
	}
	b.WriteString(" Give the predicted full-time score as home-away.")
	return b.String()
}
