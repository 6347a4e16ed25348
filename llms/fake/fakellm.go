package fake

import (
	"context"
	"errors"
	"sync"

	"github.com/sevigo/stairreg/llms"
	"github.com/sevigo/stairreg/schema"
)

var ErrNoResponses = errors.New("no responses configured")

// LLM is a deterministic llms.Model for tests. It cycles through canned
// responses and records what it was asked.
type LLM struct {
	mu           sync.Mutex
	responses    []string
	index        int
	err          error
	lastPrompt   string
	lastMessages []schema.MessageContent
	lastOptions  llms.CallOptions
	callCount    int
}

var _ llms.Model = (*LLM)(nil)

func NewFakeLLM(responses []string) *LLM {
	return &LLM{
		responses: responses,
	}
}

// GenerateContent returns the next predefined response in the cycle.
// The recorded prompt is the text of the last message in the conversation.
func (f *LLM) GenerateContent(
	_ context.Context,
	messages []schema.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	f.lastMessages = append([]schema.MessageContent(nil), messages...)
	f.lastOptions = llms.NewCallOptions(options...)
	if len(messages) > 0 {
		f.lastPrompt = messages[len(messages)-1].GetTextContent()
	}

	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, ErrNoResponses
	}

	response := f.responses[f.index]
	f.index = (f.index + 1) % len(f.responses)

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: response},
		},
	}, nil
}

// Call is a simplified interface for generating responses from a string prompt.
func (f *LLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// Reset resets the response index, recorded calls and injected error.
func (f *LLM) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.index = 0
	f.callCount = 0
	f.lastPrompt = ""
	f.lastMessages = nil
	f.lastOptions = llms.CallOptions{}
	f.err = nil
}

// AddResponse appends a new response to the list.
func (f *LLM) AddResponse(response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response)
}

// SetError makes every following call fail with err.
func (f *LLM) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// LastPrompt returns the last prompt sent to the LLM.
func (f *LLM) LastPrompt() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPrompt, f.lastPrompt != ""
}

// LastMessages returns a copy of the messages of the last call.
func (f *LLM) LastMessages() []schema.MessageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]schema.MessageContent(nil), f.lastMessages...)
}

// LastOptions returns the resolved call options of the last call.
func (f *LLM) LastOptions() llms.CallOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOptions
}

// GetCallCount returns the number of times the LLM was called.
func (f *LLM) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}
