package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/llms/openai/openaiclient"
	"github.com/sevigo/stairreg/schema"
)

const DefaultModel = "openai/gpt-4o-mini"

var (
	ErrNoAPIKey     = errors.New("openai: API key is required")
	ErrInvalidModel = errors.New("openai: invalid model specified")
	ErrNoMessages   = errors.New("openai: no messages to send")
	ErrNoContent    = errors.New("openai: no content generated")
)

// LLM talks to any endpoint implementing the OpenAI chat completions API.
type LLM struct {
	client  *openaiclient.Client
	options options
	logger  *slog.Logger
}

var _ llms.Model = (*LLM)(nil)

// New creates a client. Credentials are taken from options only.
func New(opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := openaiclient.NewClient(openaiclient.Config{
		BaseURL:     o.baseURL,
		APIKey:      o.apiKey,
		HTTPClient:  o.httpClient,
		Timeout:     o.timeout,
		MaxRetries:  o.maxRetries,
		BaseBackoff: o.baseBackoff,
		Logger:      o.logger.With("component", "openai_client"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	llm := &LLM{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "openai_llm", "model", o.model),
	}

	llm.logger.Debug("OpenAI-compatible LLM initialized", "base_url", client.GetBaseURL().String(),
		"timeout", o.timeout, "max_retries", o.maxRetries)
	return llm, nil
}

// Call is a convenience method for a single-turn conversation.
func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

// GenerateContent sends the conversation as one chat completion request.
func (l *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	start := time.Now()
	opts := llms.NewCallOptions(options...)

	model := l.options.model
	if opts.Model != "" {
		model = opts.Model
	}

	req := &openaiclient.ChatRequest{
		Model:     model,
		Messages:  convertMessages(messages),
		MaxTokens: opts.MaxTokens,
	}
	temperature := opts.Temperature
	req.Temperature = &temperature
	if opts.JSONMode {
		req.ResponseFormat = &openaiclient.ResponseFormat{Type: "json_object"}
	}

	l.logger.DebugContext(ctx, "Sending chat completion",
		"message_count", len(messages), "json_mode", opts.JSONMode, "temperature", temperature)

	resp, err := l.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	if err != nil {
		l.logger.ErrorContext(ctx, "Chat completion failed", "error", err, "duration", duration)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrNoContent
	}

	choice := resp.Choices[0]
	l.logger.InfoContext(ctx, "Chat completion finished",
		"duration", duration, "total_tokens", resp.Usage.TotalTokens, "finish_reason", choice.FinishReason)

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    choice.Message.Content,
				StopReason: choice.FinishReason,
				GenerationInfo: map[string]any{
					"PromptTokens":     resp.Usage.PromptTokens,
					"CompletionTokens": resp.Usage.CompletionTokens,
					"TotalTokens":      resp.Usage.TotalTokens,
					"Duration":         duration,
					"Model":            model,
				},
			},
		},
	}, nil
}

func convertMessages(messages []schema.MessageContent) []openaiclient.ChatMessage {
	out := make([]openaiclient.ChatMessage, 0, len(messages))
	for _, mc := range messages {
		out = append(out, openaiclient.ChatMessage{
			Role:    typeToRole(mc.Role),
			Content: mc.GetTextContent(),
		})
	}
	return out
}

func typeToRole(typ schema.ChatMessageType) string {
	switch typ {
	case schema.ChatMessageTypeSystem:
		return "system"
	case schema.ChatMessageTypeAI:
		return "assistant"
	default:
		return "user"
	}
}
