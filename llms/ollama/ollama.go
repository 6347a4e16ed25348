package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/llms/ollama/ollamaclient"
	"github.com/sevigo/stairreg/schema"
)

// Common errors returned by the Ollama LLM implementation.
var (
	ErrEmptyResponse = errors.New("ollama: empty response received")
	ErrNoMessages    = errors.New("ollama: no messages provided")
	ErrModelNotFound = errors.New("ollama: model not found")
	ErrInvalidModel  = errors.New("ollama: invalid model specified")
)

// jsonFormat asks Ollama to constrain the output to valid JSON.
var jsonFormat = json.RawMessage(`"json"`)

// LLM runs chat completions against a local or remote Ollama server.
type LLM struct {
	client  *ollamaclient.Client
	options options
	logger  *slog.Logger
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Ollama LLM instance.
func New(opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.model == "" {
		return nil, ErrInvalidModel
	}

	client, err := ollamaclient.NewClient(o.ollamaServerURL, o.httpClient, o.timeout, o.logger.With("component", "ollama_client"))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}

	llm := &LLM{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "ollama_llm", "model", o.model),
	}

	llm.logger.Debug("Ollama LLM initialized", "url", client.GetBaseURL().String())
	return llm, nil
}

// Call implements simple prompt-based text generation.
func (o *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, o, prompt, options...)
}

// GenerateContent sends the conversation to /api/chat without streaming.
func (o *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	start := time.Now()
	opts := llms.NewCallOptions(options...)
	model := o.determineModel(opts)

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: convertToOllamaMessages(messages),
		Stream:   &stream,
		Options:  map[string]any{"temperature": opts.Temperature},
	}
	if opts.JSONMode {
		req.Format = jsonFormat
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}

	o.logger.DebugContext(ctx, "Starting Ollama chat", "message_count", len(messages), "json_mode", opts.JSONMode)

	retry := llms.RetryPolicy{MaxRetries: o.options.maxRetries, Retryable: isRetryable}
	var resp *api.ChatResponse
	err := retry.Do(ctx, o.logger, func(ctx context.Context) error {
		var callErr error
		resp, callErr = o.client.Chat(ctx, req)
		return callErr
	})
	duration := time.Since(start)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		o.logger.ErrorContext(ctx, "Ollama client failed", "error", err, "duration", duration)
		return nil, err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	o.logger.InfoContext(ctx, "Ollama chat completed", "duration", duration)
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    resp.Message.Content,
				StopReason: resp.DoneReason,
				GenerationInfo: map[string]any{
					"CompletionTokens": resp.EvalCount,
					"PromptTokens":     resp.PromptEvalCount,
					"TotalTokens":      resp.EvalCount + resp.PromptEvalCount,
					"Duration":         duration,
					"Model":            model,
				},
			},
		},
	}, nil
}

// isRetryable accepts network failures, timeouts included, and retryable
// server status codes.
func isRetryable(err error) bool {
	var se ollamaclient.StatusError
	if errors.As(err, &se) {
		return llms.RetryableStatus(se.StatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ModelExists checks if the configured model is available on the server.
func (o *LLM) ModelExists(ctx context.Context) (bool, error) {
	_, err := o.client.Show(ctx, &api.ShowRequest{Model: o.options.model})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("model existence check failed: %w", err)
	}
	return true, nil
}

func convertToOllamaMessages(messages []schema.MessageContent) []api.Message {
	chatMsgs := make([]api.Message, 0, len(messages))
	for _, mc := range messages {
		chatMsgs = append(chatMsgs, api.Message{
			Role:    typeToRole(mc.Role),
			Content: mc.GetTextContent(),
		})
	}
	return chatMsgs
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

func (o *LLM) determineModel(opts llms.CallOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return o.options.model
}
