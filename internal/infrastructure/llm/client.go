// Package llm talks to an OpenAI-compatible chat completion endpoint. By default that is
// Gemini's OpenAI-compatible surface, so the credential is a Gemini API key.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/doeshing/sns-guardian/internal/domain"
)

const maxTokens = 1024

// Client holds the credential. It lives only on the privileged side of the bridge.
type Client struct {
	api   *openai.Client
	model string
}

// Config selects the endpoint and model.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient builds a client. An empty key yields domain.ErrConfig.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: llm api key not set", domain.ErrConfig)
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = domain.DefaultLLMModel
	}
	return &Client{api: openai.NewClientWithConfig(apiCfg), model: model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Analysis asks for a risk analysis and returns the raw model text.
func (c *Client) Analysis(ctx context.Context, text, replyingTo string) (string, error) {
	return c.complete(ctx, AnalysisSystemPrompt(), AnalysisUserPrompt(text, replyingTo))
}

// Pattern asks for discussion-pattern detection and returns the raw model text.
func (c *Client) Pattern(ctx context.Context, text, conversation, platform string) (string, error) {
	return c.complete(ctx, PatternSystemPrompt(), PatternUserPrompt(text, conversation, platform))
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", domain.ErrParse)
	}
	return resp.Choices[0].Message.Content, nil
}

// StatusCode extracts the HTTP status behind an LLM error, or 0 when there is none.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func classify(err error) error {
	switch code := StatusCode(err); {
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: chat completion: %v", domain.ErrTransport, err)
	}
}
