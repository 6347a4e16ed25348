package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/schema"
)

var (
	ErrNoAPIKey      = errors.New("gemini: API key is required")
	ErrInvalidModel  = errors.New("gemini: invalid model specified")
	ErrNoContent     = errors.New("gemini: no content generated")
	ErrNoMessages    = errors.New("gemini: no messages to send")
	ErrSystemMessage = errors.New("gemini: system message must be the first message in the conversation")
)

// LLM implements the Model interface for Gemini.
type LLM struct {
	client  *genai.Client
	options options
	logger  *slog.Logger
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Gemini LLM client.
func New(ctx context.Context, opts ...Option) (*LLM, error) {
	o := applyOptions(opts...)

	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if o.model == "" {
		return nil, ErrInvalidModel
	}

	cc := &genai.ClientConfig{
		APIKey:      o.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: o.baseURL},
	}
	if o.timeout > 0 {
		cc.HTTPOptions.Timeout = genai.Ptr(o.timeout)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	llm := &LLM{
		client:  client,
		options: o,
		logger:  o.logger.With("component", "gemini_llm", "model", o.model),
	}

	llm.logger.Debug("Gemini LLM initialized successfully")
	return llm, nil
}

// Call is a convenience method for a single-turn conversation.
func (g *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}

// GenerateContent sends one non-streaming request.
func (g *LLM) GenerateContent(
	ctx context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	start := time.Now()
	callOpts := llms.NewCallOptions(options...)

	history, systemInstruction, err := convertToGeminiMessages(messages)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNoMessages
	}

	model := g.options.model
	if callOpts.Model != "" {
		model = callOpts.Model
	}

	genConfig := buildConfig(callOpts, systemInstruction)
	retry := llms.RetryPolicy{MaxRetries: g.options.maxRetries, Retryable: isRetryable}

	var resp *genai.GenerateContentResponse
	err = retry.Do(ctx, g.logger, func(ctx context.Context) error {
		var callErr error
		resp, callErr = g.client.Models.GenerateContent(ctx, model, history, genConfig)
		return callErr
	})
	duration := time.Since(start)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini client failed", "error", err, "duration", duration)
		return nil, err
	}
	return responseToSchema(resp, model, duration)
}

// isRetryable accepts transport failures, per-attempt timeouts and
// retryable API status codes.
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llms.RetryableStatus(apiErr.Code)
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded)
}

func buildConfig(callOpts llms.CallOptions, systemInstruction *genai.Content) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(float32(callOpts.Temperature)),
		SystemInstruction: systemInstruction,
	}
	if callOpts.JSONMode {
		genConfig.ResponseMIMEType = "application/json"
	}
	if callOpts.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(callOpts.MaxTokens)
	}
	return genConfig
}

// convertToGeminiMessages converts the generic schema to Gemini's native types.
func convertToGeminiMessages(messages []schema.MessageContent) ([]*genai.Content, *genai.Content, error) {
	geminiContents := make([]*genai.Content, 0, len(messages))
	var systemInstruction *genai.Content

	for i, msg := range messages {
		var role genai.Role
		switch msg.Role {
		case schema.ChatMessageTypeAI:
			role = genai.RoleModel
		case schema.ChatMessageTypeSystem:
			if i != 0 {
				return nil, nil, ErrSystemMessage
			}
			systemInstruction = genai.NewContentFromText(msg.GetTextContent(), genai.RoleUser)
			continue
		default:
			role = genai.RoleUser
		}

		parts := make([]*genai.Part, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			switch part := p.(type) {
			case schema.TextContent:
				parts = append(parts, genai.NewPartFromText(part.String()))
			default:
				return nil, nil, fmt.Errorf("unsupported content part type: %T", part)
			}
		}
		geminiContents = append(geminiContents, genai.NewContentFromParts(parts, role))
	}
	return geminiContents, systemInstruction, nil
}

// responseToSchema converts Gemini's response to the generic schema.
func responseToSchema(resp *genai.GenerateContentResponse, model string, duration time.Duration) (*llms.ContentResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, ErrNoContent
	}

	choice := resp.Candidates[0]
	if choice.Content == nil || len(choice.Content.Parts) == 0 {
		return nil, ErrNoContent
	}

	var builder strings.Builder
	for _, part := range choice.Content.Parts {
		builder.WriteString(part.Text)
	}

	var totalTokens int32
	if resp.UsageMetadata != nil {
		totalTokens = resp.UsageMetadata.TotalTokenCount
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    builder.String(),
				StopReason: string(choice.FinishReason),
				GenerationInfo: map[string]any{
					"TotalTokens": totalTokens,
					"Duration":    duration,
					"Model":       model,
				},
			},
		},
	}, nil
}
