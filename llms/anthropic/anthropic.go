package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/schema"
)

const DefaultModel = "claude-3-5-haiku-latest"

// jsonInstruction stands in for a JSON response mode, which the Messages API lacks.
const jsonInstruction = "Respond with a single valid JSON object and nothing else."

var (
	ErrNoAPIKey      = errors.New("anthropic: API key is required")
	ErrInvalidModel  = errors.New("anthropic: invalid model specified")
	ErrNoContent     = errors.New("anthropic: no content generated")
	ErrNoUserMessage = errors.New("anthropic: at least one human message is required")
)

type messageFunc func(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)

// LLM implements llms.Model on top of the Anthropic Messages API.
type LLM struct {
	newMessage messageFunc
	options    options
	logger     *slog.Logger
}

var _ llms.Model = (*LLM)(nil)

func New(opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if o.model == "" {
		return nil, ErrInvalidModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(o.apiKey),
		option.WithMaxRetries(o.maxRetries),
		option.WithRequestTimeout(o.timeout),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	client := anthropic.NewClient(reqOpts...)

	llm := &LLM{
		newMessage: client.Messages.New,
		options:    o,
		logger:     o.logger.With("component", "anthropic_llm", "model", o.model),
	}
	llm.logger.Debug("Anthropic LLM initialized", "timeout", o.timeout, "max_retries", o.maxRetries)
	return llm, nil
}

func (l *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, l, prompt, options...)
}

func (l *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	start := time.Now()
	opts := llms.NewCallOptions(options...)

	params, err := l.buildParams(messages, opts)
	if err != nil {
		return nil, err
	}

	resp, err := l.newMessage(ctx, params)
	duration := time.Since(start)
	if err != nil {
		l.logger.ErrorContext(ctx, "Anthropic request failed", "error", err, "duration", duration)
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ErrNoContent
	}

	l.logger.InfoContext(ctx, "Anthropic request finished", "duration", duration,
		"input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    text.String(),
				StopReason: string(resp.StopReason),
				GenerationInfo: map[string]any{
					"PromptTokens":     resp.Usage.InputTokens,
					"CompletionTokens": resp.Usage.OutputTokens,
					"Duration":         duration,
					"Model":            string(params.Model),
				},
			},
		},
	}, nil
}

func (l *LLM) buildParams(messages []schema.MessageContent, opts llms.CallOptions) (anthropic.MessageNewParams, error) {
	system, rest := schema.SplitSystem(messages)

	converted := make([]anthropic.MessageParam, 0, len(rest))
	hasUser := false
	for _, mc := range rest {
		block := anthropic.NewTextBlock(mc.GetTextContent())
		if mc.Role == schema.ChatMessageTypeAI {
			converted = append(converted, anthropic.NewAssistantMessage(block))
			continue
		}
		hasUser = true
		converted = append(converted, anthropic.NewUserMessage(block))
	}
	if !hasUser {
		return anthropic.MessageNewParams{}, ErrNoUserMessage
	}

	if opts.JSONMode {
		system = strings.TrimSpace(system + "\n" + jsonInstruction)
	}

	model := l.options.model
	if opts.Model != "" {
		model = opts.Model
	}
	maxTokens := l.options.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Messages:    converted,
		Temperature: anthropic.Float(opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params, nil
}
