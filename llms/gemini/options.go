package gemini

import (
	"log/slog"
	"time"
)

type options struct {
	model      string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// Option configures the Gemini model.
type Option func(*options)

func applyOptions(opts ...Option) options {
	o := options{
		model:  "gemini-2.5-flash",
		logger: slog.Default(),
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

// WithBaseURL overrides the Gemini API endpoint. Empty keeps the default.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithTimeout bounds each request attempt. Zero leaves requests bounded
// only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(opts *options) {
		if d > 0 {
			opts.timeout = d
		}
	}
}

// WithMaxRetries sets how often a transient failure is resent.
func WithMaxRetries(n int) Option {
	return func(opts *options) {
		if n >= 0 {
			opts.maxRetries = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}
