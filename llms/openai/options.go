package openai

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sevigo/stairreg/llms/openai/openaiclient"
)

// options holds configuration for the OpenAI-compatible client.
type options struct {
	model       string
	apiKey      string
	baseURL     string
	timeout     time.Duration
	maxRetries  int
	baseBackoff time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

// Option is a function type for configuring the client.
type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		model:      DefaultModel,
		baseURL:    openaiclient.DefaultBaseURL,
		timeout:    openaiclient.DefaultTimeout,
		maxRetries: openaiclient.DefaultMaxRetries,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithModel sets the model identifier, e.g. "openai/gpt-4o-mini" on OpenRouter.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithAPIKey sets the bearer token.
func WithAPIKey(apiKey string) Option {
	return func(opts *options) {
		opts.apiKey = apiKey
	}
}

// WithBaseURL points the client at any OpenAI-compatible gateway.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		if baseURL != "" {
			opts.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// WithMaxRetries sets how many times a failed request is re-sent.
func WithMaxRetries(retries int) Option {
	return func(opts *options) {
		opts.maxRetries = retries
	}
}

// WithBaseBackoff sets the first retry delay; later delays double.
func WithBaseBackoff(d time.Duration) Option {
	return func(opts *options) {
		opts.baseBackoff = d
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
