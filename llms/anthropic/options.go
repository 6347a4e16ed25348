package anthropic

import (
	"log/slog"
	"time"
)

type options struct {
	model      string
	apiKey     string
	baseURL    string
	maxTokens  int
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// Option is a function type for configuring the client.
type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		model:      DefaultModel,
		maxTokens:  4096,
		timeout:    180 * time.Second,
		maxRetries: 3,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL overrides the API endpoint, e.g. for a proxy.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithMaxTokens sets the default completion budget. Anthropic requires one.
func WithMaxTokens(n int) Option {
	return func(opts *options) {
		if n > 0 {
			opts.maxTokens = n
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

func WithMaxRetries(retries int) Option {
	return func(opts *options) {
		opts.maxRetries = retries
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
