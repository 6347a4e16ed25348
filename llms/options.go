package llms

import "context"

type CallOption func(*CallOptions)

type CallOptions struct {
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	JSONMode    bool           `json:"json_mode"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	// StreamingFunc is only honoured by providers that can stream.
	StreamingFunc func(ctx context.Context, chunk []byte) error `json:"-"`
}

// NewCallOptions applies options over the zero value.
func NewCallOptions(options ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// WithModel overrides the model configured on the provider for one call.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithMaxTokens caps the length of the completion.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithJSONMode asks the provider to constrain output to a single JSON object.
func WithJSONMode() CallOption {
	return func(o *CallOptions) {
		o.JSONMode = true
	}
}

// WithMetadata attaches free-form metadata to the call.
func WithMetadata(metadata map[string]any) CallOption {
	return func(o *CallOptions) {
		o.Metadata = metadata
	}
}

// WithStreamingFunc specifies the streaming function to use.
func WithStreamingFunc(streamingFunc func(ctx context.Context, chunk []byte) error) CallOption {
	return func(o *CallOptions) {
		o.StreamingFunc = streamingFunc
	}
}
