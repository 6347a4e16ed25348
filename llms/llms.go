package llms

import (
	"context"
	"errors"

	"github.com/sevigo/stairreg/schema"
)

// ErrEmptyResponse is returned when a model answers without any choice.
var ErrEmptyResponse = errors.New("llms: empty response from model")

type Model interface {
	GenerateContent(ctx context.Context, messages []schema.MessageContent, options ...CallOption) (*ContentResponse, error)
	Call(ctx context.Context, prompt string, options ...CallOption) (string, error)
}

func GenerateFromSinglePrompt(ctx context.Context, llm Model, prompt string, options ...CallOption) (string, error) {
	msg := schema.MessageContent{
		Role:  schema.ChatMessageTypeHuman,
		Parts: []schema.ContentPart{schema.TextContent{Text: prompt}},
	}

	resp, err := llm.GenerateContent(ctx, []schema.MessageContent{msg}, options...)
	if err != nil {
		return "", err
	}

	choices := resp.Choices
	if len(choices) < 1 {
		return "", ErrEmptyResponse
	}
	return choices[0].Content, nil
}

func TextParts(role schema.ChatMessageType, parts ...string) schema.MessageContent {
	result := schema.MessageContent{
		Role:  role,
		Parts: make([]schema.ContentPart, 0, len(parts)),
	}
	for _, part := range parts {
		result.Parts = append(result.Parts, schema.TextContent{Text: part})
	}
	return result
}
