package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"docqa/internal/logger"
)

// ErrEmptyResponse means the endpoint answered without any generated text.
var ErrEmptyResponse = errors.New("llm returned no content")

type Role string

const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    Role
	Content string
}

// Generator turns a conversation into the next assistant reply.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type Config struct {
	URL         string // OpenAI-compatible base URL, e.g. http://localhost:11434/v1
	Model       string
	Key         string
	MaxTokens   int
	Temperature float32
	Retries     uint64
	Backoff     time.Duration
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	api *openai.Client
	cfg Config
}

func NewClient(cfg Config) *Client {
	oc := openai.DefaultConfig(cfg.Key)
	if cfg.URL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.URL, "/")
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	return &Client{api: openai.NewClientWithConfig(oc), cfg: cfg}
}

// Generate sends messages and returns the first choice. Rate limits, server
// errors and transport failures are retried with exponential backoff.
func (c *Client) Generate(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	log := logger.FromContext(ctx)
	backoff := retry.WithMaxRetries(c.cfg.Retries, retry.NewExponential(c.cfg.Backoff))

	var resp openai.ChatCompletionResponse
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(ctx, req)
		if callErr != nil {
			if isRetryable(callErr) {
				log.Warn("LLM call failed, retrying", "model", c.cfg.Model, "attempt", attempt, "error", callErr)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", c.cfg.Model, err)
	}

	content, ok := firstContent(resp)
	if !ok {
		return "", ErrEmptyResponse
	}
	return content, nil
}

func firstContent(resp openai.ChatCompletionResponse) (string, bool) {
	if len(resp.Choices) == 0 {
		return "", false
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	return content, content != ""
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	// transport failures
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
