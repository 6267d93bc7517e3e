package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient calls the OpenAI chat-completions API (or any compatible
// endpoint) for summarization, reference, and keyword requests.
type OpenAIClient struct {
	client *openai.Client
	model  string

	// Stats tracks recent call latencies for the /api/stats/llm endpoint.
	Stats *Stats
}

// Config holds the generation client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAIClient builds a client. The API key is required; a missing key
// is a configuration error surfaced before any pipeline run.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		Stats:  NewStats(time.Hour),
	}, nil
}

func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	c.Stats.Record(time.Since(start).Milliseconds())

	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response from %s", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyError maps API failures onto RetryableError where a retry can
// plausibly succeed.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retryableStatus(apiErr.HTTPStatusCode) {
			return &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return fmt.Errorf("openai api error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if retryableStatus(reqErr.HTTPStatusCode) {
			return &RetryableError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
		}
		return fmt.Errorf("openai request error %d: %w", reqErr.HTTPStatusCode, reqErr)
	}

	return fmt.Errorf("openai request failed: %w", err)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
