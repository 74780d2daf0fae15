// Package llm wraps an OpenAI-compatible chat completion endpoint.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a single chat turn.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// SystemPrompt creates a system message.
func SystemPrompt(content string) Message {
	return Message{Role: openai.ChatMessageRoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: openai.ChatMessageRoleUser, Content: content}
}

// Normalized completion failures. Callers branch on these with errors.Is;
// none of them is retried here, since a duplicated generation is costly and
// the endpoint exposes no idempotency key.
var (
	// ErrTimeout means the endpoint did not answer within the configured deadline.
	ErrTimeout = errors.New("completion timed out")
	// ErrAPIFailure means the endpoint returned a structured error.
	ErrAPIFailure = errors.New("completion API failure")
	// ErrEmpty means the endpoint answered with no usable text.
	ErrEmpty = errors.New("empty completion")
)

// CompletionService is the chat completion capability consumed by the server.
type CompletionService interface {
	// Complete sends the conversation to the model and returns the completion
	// text. A non-empty systemPrompt is prepended as a single system turn.
	Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error)
}

// Config holds the completion provider configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type provider struct {
	client *openai.Client
	config Config
}

// NewProvider creates a CompletionService backed by an OpenAI-compatible endpoint.
func NewProvider(cfg Config) CompletionService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

func (p *provider) Complete(ctx context.Context, messages []Message, systemPrompt string) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range messages {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	slog.Debug("sending completion request",
		"model", p.config.Model,
		"messages", len(llmMessages))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    llmMessages,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrTimeout, p.config.Timeout)
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("%w: %s", ErrAPIFailure, apiErr.Message)
		}
		return "", fmt.Errorf("%w: %v", ErrAPIFailure, err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmpty
	}

	answer := resp.Choices[0].Message.Content
	slog.Debug("completion received", "length", len(answer))
	return answer, nil
}
