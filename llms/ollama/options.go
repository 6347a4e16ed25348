package ollama

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// options holds configuration settings for the Ollama client.
type options struct {
	model           string
	ollamaServerURL *url.URL
	httpClient      *http.Client
	timeout         time.Duration
	maxRetries      int
	logger          *slog.Logger
}

// Option is a function type for configuring Ollama client options.
type Option func(*options)

// applyOptions creates a new options instance with defaults and applies the provided options.
func applyOptions(opts ...Option) options {
	o := options{
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

// WithServerURL sets the Ollama endpoint. Unparseable URLs are ignored.
func WithServerURL(rawURL string) Option {
	return func(opts *options) {
		if rawURL == "" {
			return
		}
		if parsedURL, err := url.Parse(rawURL); err == nil {
			opts.ollamaServerURL = parsedURL
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

// WithTimeout bounds each request attempt. It is ignored when an HTTP
// client is supplied.
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
